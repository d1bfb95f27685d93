package queue

import (
	"context"
	"encoding/json"

	"github.com/emrgen/storefront/internal/cache"
	"github.com/sirupsen/logrus"
)

const publishChannel = "page:publish:events"

var _ PublishEventQueue = (*RedisQueue)(nil)

// RedisQueue fans publish events out over redis pub/sub. Delivery is
// at-most-once; a viewer that misses an event just refetches on the next
// navigation, which is the accepted staleness tradeoff.
type RedisQueue struct {
	redis *cache.Redis
}

func NewRedisQueue(redis *cache.Redis) *RedisQueue {
	return &RedisQueue{redis: redis}
}

func (q *RedisQueue) Publish(ctx context.Context, event *PublishEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return q.redis.Client().Publish(ctx, publishChannel, data).Err()
}

func (q *RedisQueue) Subscribe(ctx context.Context) (<-chan *PublishEvent, error) {
	sub := q.redis.Client().Subscribe(ctx, publishChannel)

	// force the subscription before events can be missed
	if _, err := sub.Receive(ctx); err != nil {
		return nil, err
	}

	events := make(chan *PublishEvent)
	go func() {
		defer close(events)
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}

				event := &PublishEvent{}
				if err := json.Unmarshal([]byte(msg.Payload), event); err != nil {
					logrus.Errorf("malformed publish event: %v", err)
					continue
				}

				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}
