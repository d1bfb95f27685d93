package cache

import (
	"context"
	"errors"
	"time"

	"github.com/emrgen/storefront/internal/model"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const publishedPageTTL = 5 * time.Minute

func publishedPageKey(id string) string {
	return "page:published:" + id
}

// PageCache holds the latest published page per id. Warmed on publish;
// without the warm the new version would not be visible until the next miss.
type PageCache interface {
	// GetLatestPublishedPage gets a published page from the cache, nil on miss.
	GetLatestPublishedPage(ctx context.Context, id uuid.UUID) (*model.LatestPublishedPage, error)
	// SetLatestPublishedPage sets a published page in the cache.
	SetLatestPublishedPage(ctx context.Context, page *model.LatestPublishedPage) error
	// DeleteLatestPublishedPage evicts a page from the cache.
	DeleteLatestPublishedPage(ctx context.Context, id uuid.UUID) error
}

var _ PageCache = (*RedisPageCache)(nil)

type RedisPageCache struct {
	redis *Redis
}

func NewRedisPageCache(redis *Redis) *RedisPageCache {
	return &RedisPageCache{redis: redis}
}

func (r *RedisPageCache) GetLatestPublishedPage(ctx context.Context, id uuid.UUID) (*model.LatestPublishedPage, error) {
	page := &model.LatestPublishedPage{}
	err := r.redis.Get(ctx, publishedPageKey(id.String()), page)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	return page, nil
}

func (r *RedisPageCache) SetLatestPublishedPage(ctx context.Context, page *model.LatestPublishedPage) error {
	return r.redis.Set(ctx, publishedPageKey(page.PageID), page, publishedPageTTL)
}

func (r *RedisPageCache) DeleteLatestPublishedPage(ctx context.Context, id uuid.UUID) error {
	return r.redis.Del(ctx, publishedPageKey(id.String()))
}
