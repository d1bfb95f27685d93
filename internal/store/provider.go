package store

import (
	"errors"

	"github.com/google/uuid"
)

var ErrStoreNotFound = errors.New("store not found")

// PageStoreProvider resolves the backing store for a storefront. Multi-tenant
// deployments shard by store id; the default deployment shares one store.
type PageStoreProvider interface {
	Provide(storeID uuid.UUID) (Store, error)
}

type DefaultProvider struct {
	store Store
}

func NewDefaultProvider(store Store) *DefaultProvider {
	return &DefaultProvider{store: store}
}

func (p *DefaultProvider) Provide(storeID uuid.UUID) (Store, error) {
	return p.store, nil
}

type ShardedProvider struct {
	stores map[string]Store
}

func NewShardedProvider() *ShardedProvider {
	return &ShardedProvider{
		stores: make(map[string]Store),
	}
}

// Register binds a storefront to its backing store.
func (p *ShardedProvider) Register(storeID uuid.UUID, store Store) {
	p.stores[storeID.String()] = store
}

func (p *ShardedProvider) Provide(storeID uuid.UUID) (Store, error) {
	if store, ok := p.stores[storeID.String()]; ok {
		return store, nil
	}

	return nil, ErrStoreNotFound
}
