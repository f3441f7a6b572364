package attrcache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisBackend is the networked attrcache backend, grounded directly
// on the teacher's services/api/internal/queue write-through caching
// pattern (redis.Client.Get/Set).
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend wraps an existing redis client. keyPrefix namespaces
// every key this process writes (e.g. "acr:").
func NewRedisBackend(client *redis.Client, keyPrefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: keyPrefix}
}

// GetRaw implements Backend.
func (b *RedisBackend) GetRaw(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// SetRaw implements Backend.
func (b *RedisBackend) SetRaw(ctx context.Context, key string, value []byte) error {
	return b.client.Set(ctx, b.prefix+key, value, 0).Err()
}

// Close implements Backend.
func (b *RedisBackend) Close() error { return b.client.Close() }
