package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps client state in redis, namespaced per browsing session so
// two sessions never share a cart or draft slot. The pending draft gets a TTL:
// it must survive a redirect, not live forever.
type RedisStore struct {
	client   *redis.Client
	session  string
	draftTTL time.Duration
}

func NewRedisStore(client *redis.Client, session string) *RedisStore {
	return &RedisStore{
		client:   client,
		session:  session,
		draftTTL: 24 * time.Hour,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	var ttl time.Duration
	if key == KeyPendingOrder {
		ttl = s.draftTTL
	}
	if err := s.client.Set(ctx, s.redisKey(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (s *RedisStore) redisKey(key string) string {
	return fmt.Sprintf("storefront:%s:%s", s.session, key)
}
