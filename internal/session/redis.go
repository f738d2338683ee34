package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "storefront:session:"

// RedisStore хранит каждую сессию в отдельном hash с продлеваемым сроком жизни.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore создаёт хранилище поверх клиента Redis. Нулевой ttl отключает истечение.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(sid string) string {
	return redisKeyPrefix + sid
}

// Get возвращает значение ключа сессии.
func (r *RedisStore) Get(ctx context.Context, sid, key string) (string, error) {
	v, err := r.client.HGet(ctx, redisKey(sid), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis hget: %w", err)
	}
	return v, nil
}

// Set сохраняет значение и продлевает срок жизни сессии.
func (r *RedisStore) Set(ctx context.Context, sid, key, value string) error {
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, redisKey(sid), key, value)
	if r.ttl > 0 {
		pipe.Expire(ctx, redisKey(sid), r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

// Delete удаляет ключи сессии.
func (r *RedisStore) Delete(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.HDel(ctx, redisKey(sid), keys...).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}
