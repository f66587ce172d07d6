package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient создаёт клиент и проверяет соединение
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// JSONCache хранит значения типа T в redis в виде JSON.
// Любая ошибка чтения считается промахом, ошибки записи только логируются.
type JSONCache[T any] struct {
	log    *slog.Logger
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewJSONCache[T any](log *slog.Logger, client redis.Cmdable, prefix string, ttl time.Duration) *JSONCache[T] {
	return &JSONCache[T]{log: log, client: client, prefix: prefix, ttl: ttl}
}

func (c *JSONCache[T]) key(id int64) string {
	return fmt.Sprintf("%s:%d", c.prefix, id)
}

func (c *JSONCache[T]) Get(ctx context.Context, id int64) (*T, bool) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	return &v, true
}

func (c *JSONCache[T]) Set(ctx context.Context, id int64, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache marshal failed", slog.String("key", c.key(id)), slog.Any("error", err))
		return
	}
	if err := c.client.Set(ctx, c.key(id), data, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", slog.String("key", c.key(id)), slog.Any("error", err))
	}
}

func (c *JSONCache[T]) Delete(ctx context.Context, id int64) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.log.Warn("cache delete failed", slog.String("key", c.key(id)), slog.Any("error", err))
	}
}
