package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/homerec/core"
)

// RedisStore 在生产环境存放房源目录（feed.StoreFeed）与下架列表（filter.blacklist）。
// 网络错误统一包装为 UNAVAILABLE，键不存在返回 core.ErrStoreNotFound。
type RedisStore struct {
	client *redis.Client
	addr   string
}

// NewRedisStore 连接 Redis 并做一次 Ping，失败时不保留连接。
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, unavailable("ping "+addr, err)
	}
	return &RedisStore{client: client, addr: addr}, nil
}

func unavailable(op string, err error) error {
	return core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "redis "+op+" failed", err)
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, core.ErrStoreNotFound
	case err != nil:
		return nil, unavailable("get "+key, err)
	}
	return val, nil
}

// Set 写入 key；ttl 以秒为单位，缺省或 <=0 表示不过期。
func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	var expiration time.Duration
	if len(ttl) > 0 && ttl[0] > 0 {
		expiration = time.Duration(ttl[0]) * time.Second
	}
	if err := r.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return unavailable("set "+key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return unavailable("delete "+key, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
