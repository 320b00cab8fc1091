package notifier

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/events"
)

const redisChannelPrefix = "queue.updates."

// RedisNotifier publishes ticket updates on a per-service pub/sub channel.
// Live displays subscribe to queue.updates.<service_id> and re-read the
// queue state when a message arrives.
type RedisNotifier struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNotifier wraps an existing client.
func NewRedisNotifier(client *redis.Client, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, logger: logger}
}

// Publish sends the event on the service's channel.
func (n *RedisNotifier) Publish(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := n.client.Publish(ctx, redisChannelPrefix+event.ServiceID, body).Err(); err != nil {
		n.logger.Warn("redis publish failed", zap.String("event_id", event.ID), zap.Error(err))
		return err
	}
	return nil
}

// Close is a no-op; the shared client is owned by the persistence layer.
func (n *RedisNotifier) Close() error {
	return nil
}
