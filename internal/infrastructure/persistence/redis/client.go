package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/inventoryhub/internal/infrastructure/config"
)

// NewClient 创建Redis客户端（会话存储用）
// 设计说明：
// 1. 配置连接池参数（PoolSize、MinIdleConns）
// 2. 配置超时参数（DialTimeout、ReadTimeout、WriteTimeout）
// 3. 测试连接可用性
func NewClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	// 测试连接
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	fmt.Println("✓ Redis连接成功")
	return client, nil
}

// NewSearchClient 创建搜索索引专用Redis客户端
// 与会话存储的关键差异：连接失败不报错退出——
// 索引是可弃置的加速器，连不上时由搜索适配器进入降级状态
func NewSearchClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Search.Addr(),
		Password:    cfg.Search.Password,
		DB:          cfg.Search.DB,
		DialTimeout: cfg.Search.DialTimeout,
		ReadTimeout: cfg.Search.OpTimeout,
	})
}
