package checkers

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type RedisChecker struct {
	rdb goredis.Cmdable
}

func NewRedisChecker(rdb goredis.Cmdable) *RedisChecker {
	return &RedisChecker{rdb: rdb}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}
