package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Redis is a thin json-over-redis kv wrapper shared by the page cache and the
// publish event queue.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // No password set
		DB:       0,  // Use default DB
		Protocol: 2,  // Connection protocol
	})

	return &Redis{client: client}, nil
}

func (r *Redis) Client() *redis.Client {
	return r.client
}

func (r *Redis) Set(ctx context.Context, k string, v any, ttl time.Duration) error {
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, k, value, ttl).Err()
}

// Get unmarshals the cached value into out. A miss returns redis.Nil.
func (r *Redis) Get(ctx context.Context, k string, out any) error {
	res := r.client.Get(ctx, k)
	if res.Err() != nil {
		return res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(buf, out)
}

func (r *Redis) Del(ctx context.Context, k string) error {
	return r.client.Del(ctx, k).Err()
}
