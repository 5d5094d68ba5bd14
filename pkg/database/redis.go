package database

import (
	"context"
	"course_exam_backend/internal/config"
	"course_exam_backend/pkg/logger"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 目录缓存只做少量 GET/SET，连接池不需要很大
const (
	redisPoolSize     = 20
	redisMinIdleConns = 2
)

func redisTimeout(cfg *config.RedisConfig) time.Duration {
	if cfg.TimeoutSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

// NewRedisClient 只构造客户端，不建立连接
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	timeout := redisTimeout(cfg)
	return redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     redisPoolSize,
		MinIdleConns: redisMinIdleConns,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
}

// InitRedis 未启用时返回 nil，调用方需按 nil 处理
func InitRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		logger.Log.Info("Redis disabled, catalog cache off")
		return nil, nil
	}

	rdb := NewRedisClient(cfg)
	if err := PingRedis(ctx, rdb, redisTimeout(cfg)); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", rdb.Options().Addr, err)
	}

	logger.Log.Info("Redis connection established",
		zap.String("addr", rdb.Options().Addr),
		zap.Int("db", cfg.DB),
		zap.Int("catalog_ttl_seconds", cfg.CatalogTTL),
	)
	return rdb, nil
}

// PingRedis 在超时内探测连接，rdb 为 nil 时视为未启用
func PingRedis(ctx context.Context, rdb *redis.Client, timeout time.Duration) error {
	if rdb == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return rdb.Ping(ctx).Err()
}
