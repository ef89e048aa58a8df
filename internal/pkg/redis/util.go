package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoTTL 会话数据必须带过期时间
var ErrNoTTL = errors.New("redis: ttl must be positive")

// Put 写入字符串值并设置过期时间
func Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrNoTTL
	}
	return Rdb.SetEx(ctx, key, value, ttl).Err()
}

// Fetch 读取字符串值，found 为 false 表示键不存在或已过期
func Fetch(ctx context.Context, key string) (value string, found bool, err error) {
	value, err = Rdb.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return value, true, nil
}

// Drop 删除若干键，返回实际删除的个数
func Drop(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	return Rdb.Del(ctx, keys...).Result()
}
