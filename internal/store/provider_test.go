package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDefaultProviderSharesOneStore(t *testing.T) {
	backing := NewGormStore(nil)
	provider := NewDefaultProvider(backing)

	a, err := provider.Provide(uuid.New())
	assert.NoError(t, err)
	b, err := provider.Provide(uuid.New())
	assert.NoError(t, err)

	assert.Same(t, backing, a)
	assert.Same(t, backing, b)
}

func TestShardedProviderUnknownStore(t *testing.T) {
	provider := NewShardedProvider()

	_, err := provider.Provide(uuid.New())
	assert.ErrorIs(t, err, ErrStoreNotFound)

	storeID := uuid.New()
	backing := NewGormStore(nil)
	provider.Register(storeID, backing)

	got, err := provider.Provide(storeID)
	assert.NoError(t, err)
	assert.Same(t, backing, got)
}
