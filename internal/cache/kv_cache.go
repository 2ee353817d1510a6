package cache

import (
	"context"
	"wellbeing/internal/storage"

	"github.com/redis/go-redis/v9"
)

// KVCache exposes Redis as the record store's key-value substrate.
// Keys never expire: history lives until it is deleted.
type KVCache struct {
	client *redis.Client
	prefix string
}

// NewKVCache creates a Redis-backed KV. prefix namespaces every key
// (e.g. "wellbeing:" -> "wellbeing:wellbeing_predictions").
func NewKVCache(client *redis.Client, prefix string) *KVCache {
	return &KVCache{
		client: client,
		prefix: prefix,
	}
}

func (c *KVCache) key(k string) string {
	return c.prefix + k
}

func (c *KVCache) Get(ctx context.Context, key string) (string, error) {
	data, err := c.client.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return data, nil
}

func (c *KVCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, c.key(key), value, 0).Err()
}

func (c *KVCache) Remove(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}
