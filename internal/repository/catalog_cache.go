package repository

import (
	"context"
	"course_exam_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const catalogGenerationKey = "catalog:generation"

// CatalogCache 目录只读缓存。任何内容写入都会递增代号，
// 旧代号下的键随 TTL 自然过期。Redis 为 nil 时所有操作为空操作。
type CatalogCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewCatalogCache(rdb *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{Redis: rdb, TTL: ttl}
}

func (c *CatalogCache) enabled() bool {
	return c != nil && c.Redis != nil
}

func (c *CatalogCache) key(ctx context.Context, name string) (string, error) {
	gen, err := c.Redis.Get(ctx, catalogGenerationKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("catalog:v%d:%s", gen, name), nil
}

func (c *CatalogCache) Get(ctx context.Context, name string, dst interface{}) bool {
	if !c.enabled() {
		return false
	}
	key, err := c.key(ctx, name)
	if err != nil {
		logger.Log.Warn("catalog cache unavailable", zap.Error(err))
		return false
	}
	raw, err := c.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *CatalogCache) Set(ctx context.Context, name string, v interface{}) {
	if !c.enabled() {
		return
	}
	key, err := c.key(ctx, name)
	if err != nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, key, raw, c.TTL).Err(); err != nil {
		logger.Log.Warn("catalog cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CatalogCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.Redis.Incr(ctx, catalogGenerationKey).Err(); err != nil {
		logger.Log.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}
