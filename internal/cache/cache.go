// cache — явная зависимость на общий TTL-кэш (Redis).
// Компоненты получают Cache через конструктор; глобального клиента нет.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache — минимальный контракт кэша со строковыми значениями и TTL.
type Cache interface {
	// Get возвращает значение и признак его наличия.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set сохраняет значение с TTL (ttl<=0 — без истечения).
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX сохраняет значение, только если ключа ещё нет; true — ключ создан.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// Delete удаляет ключи; отсутствие ключа не ошибка.
	Delete(ctx context.Context, keys ...string) error
	// Exists сообщает, существует ли ключ.
	Exists(ctx context.Context, key string) (bool, error)
}

// RedisCache — реализация Cache поверх go-redis.
type RedisCache struct {
	rdb    redis.UniversalClient
	prefix string
}

// Проверка на соответствие интерфейсу Cache.
var _ Cache = (*RedisCache)(nil)

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и проверяет соединение. Если prefix пустой — используется "auth:".
func NewRedisCache(ctx context.Context, redisURL, prefix string) (*RedisCache, error) {
	const op = "cache.NewRedisCache"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithClient(rdb, prefix), nil
}

// NewWithClient оборачивает готовый клиент (используется в тестах с miniredis).
func NewWithClient(rdb redis.UniversalClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "auth:"
	}

	return &RedisCache{rdb: rdb, prefix: prefix}
}

func (c *RedisCache) key(k string) string { return c.prefix + k }

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("cache.Get: %w", err)
	}

	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}

	if err := c.rdb.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("cache.Set: %w", err)
	}

	return nil
}

func (c *RedisCache) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, c.key(key), value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache.SetNX: %w", err)
	}

	return ok, nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}

	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("cache.Delete: %w", err)
	}

	return nil
}

func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, c.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cache.Exists: %w", err)
	}

	return n > 0, nil
}

// Ping проверяет доступность Redis (readiness).
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close закрывает клиент Redis.
func (c *RedisCache) Close() error { return c.rdb.Close() }
