package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sufrahub/sufra/cart"
)

// RedisStore persists carts in Redis so they survive server restarts for
// the lifetime of the session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(token string) string {
	return "cart:" + token
}

func (s *RedisStore) Load(ctx context.Context, token string) (*cart.Cart, error) {
	payload, err := s.client.Get(ctx, redisKey(token)).Bytes()
	c := cart.New()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return c, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(payload, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, token string, c *cart.Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(token), payload, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, redisKey(token)).Err()
}
