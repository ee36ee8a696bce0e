package notify

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher delivers events over Redis pub/sub channels, one channel
// per topic. Subscribers attach with SUBSCRIBE order.<id> etc.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	return p.client.Publish(ctx, topic, payload).Err()
}
