package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "offerhub:cache:"

// RedisStore shares one cache across instances, which also keeps the
// effective provider quota from multiplying with horizontal scale.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore parses redisURL and verifies connectivity.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("corrupt cache entry for %s: %w", key, err)
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, nil
	}
	return &entry, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, data json.RawMessage, ttl time.Duration, tags ...string) error {
	now := time.Now()
	entry := Entry{
		Data:      data,
		CachedAt:  now,
		ExpiresAt: now.Add(ttl),
		Tags:      tags,
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisKeyPrefix+key, raw, ttl)
	for _, tag := range tags {
		pipe.SAdd(ctx, redisTagKey(tag), key)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) InvalidateTag(ctx context.Context, tag string) error {
	keys, err := s.client.SMembers(ctx, redisTagKey(tag)).Result()
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, key := range keys {
		pipe.Del(ctx, redisKeyPrefix+key)
	}
	pipe.Del(ctx, redisTagKey(tag))
	_, err = pipe.Exec(ctx)
	return err
}

func redisTagKey(tag string) string {
	return redisKeyPrefix + "tag:" + tag
}
