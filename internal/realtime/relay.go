package realtime

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type updatesTransport interface {
	PublishUpdate(ctx context.Context, payload []byte) error
	SubscribeUpdates(ctx context.Context, fn func(payload []byte)) error
}

// RedisRelay routes broadcasts through Redis pub/sub so every server instance,
// this one included, delivers them to its own clients. The payload is the document itself.
type RedisRelay struct {
	hub       *Hub
	transport updatesTransport
	log       *zap.Logger
}

func NewRedisRelay(hub *Hub, transport updatesTransport, log *zap.Logger) *RedisRelay {
	return &RedisRelay{hub: hub, transport: transport, log: log}
}

// Start subscribes to the update channel until ctx is cancelled.
func (r *RedisRelay) Start(ctx context.Context) error {
	if err := r.transport.SubscribeUpdates(ctx, r.hub.Deliver); err != nil {
		return fmt.Errorf("failed to subscribe to document updates: %w", err)
	}
	r.log.Info("real-time relay subscribed to redis")
	return nil
}

func (r *RedisRelay) BroadcastDocument(ctx context.Context, doc []byte) error {
	if err := r.transport.PublishUpdate(ctx, doc); err != nil {
		// Local clients still get the update.
		r.hub.Deliver(doc)
		return fmt.Errorf("failed to publish document update: %w", err)
	}
	return nil
}
