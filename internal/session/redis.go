package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	rediskey "storefront/pkg/redis"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions as JSON strings that expire ttl after their last Set.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, id string) (*Data, error) {
	val, err := s.client.Get(ctx, rediskey.SessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var data Data
	if err := json.Unmarshal(val, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, data *Data) error {
	data.UpdatedAt = time.Now()
	val, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, rediskey.SessionKey(data.ID), val, s.ttl).Err()
}

// Destroy implements Store.
func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	return s.client.Del(ctx, rediskey.SessionKey(id)).Err()
}

// Close implements Store. The client is owned by the caller and stays open.
func (s *RedisStore) Close() error { return nil }
