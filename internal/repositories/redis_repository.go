package repositories

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const DocumentUpdatesChannel = "winelist:db_updated"

// RedisRepository carries document update notifications between server instances.
type RedisRepository struct {
	rdb *redis.Client
}

func NewRedisRepository(rdb *redis.Client) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

func (r *RedisRepository) PublishUpdate(ctx context.Context, payload []byte) error {
	return r.rdb.Publish(ctx, DocumentUpdatesChannel, payload).Err()
}

// SubscribeUpdates delivers published payloads to fn until ctx is cancelled.
// The subscription is confirmed before it returns.
func (r *RedisRepository) SubscribeUpdates(ctx context.Context, fn func(payload []byte)) error {
	sub := r.rdb.Subscribe(ctx, DocumentUpdatesChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				fn([]byte(msg.Payload))
			}
		}
	}()
	return nil
}

func (r *RedisRepository) Close() error {
	return r.rdb.Close()
}
