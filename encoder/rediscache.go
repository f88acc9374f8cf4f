package encoder

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache backed by Redis (value = JSON-encoded vector).
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache creates a cache that uses the given Redis client. keys
// are stored under prefix (default "bitext:embeddings:").
func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "bitext:embeddings:"
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, key string) ([]float32, bool) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, false
	}
	return vec, true
}

// Set implements Cache.
func (r *RedisCache) Set(ctx context.Context, key string, vec []float32, ttl time.Duration) error {
	raw, err := json.Marshal(vec)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, raw, ttl).Err()
}

var _ Cache = (*RedisCache)(nil)
