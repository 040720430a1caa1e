package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/wholesale-phone/internal/config"

	"github.com/redis/go-redis/v9"
)

// Client Redis 缓存客户端，nil 或未启用时所有操作退化为空操作
type Client struct {
	rdb    *redis.Client
	prefix string
}

// New 根据配置创建缓存客户端，未启用时返回 nil
func New(cfg *config.RedisConfig) *Client {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	addr := strings.TrimSpace(cfg.Host)
	if addr == "" {
		addr = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "wp"
	}
	return NewWithRedis(redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", addr, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	}), prefix)
}

// NewWithRedis 基于已有 redis 连接创建客户端
func NewWithRedis(rdb *redis.Client, prefix string) *Client {
	if rdb == nil {
		return nil
	}
	return &Client{rdb: rdb, prefix: prefix}
}

// Enabled 判断缓存是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Redis 获取底层 Redis 客户端
func (c *Client) Redis() *redis.Client {
	if !c.Enabled() {
		return nil
	}
	return c.rdb
}

// Close 关闭连接
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// GetJSON 获取 JSON 缓存
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, c.BuildKey(key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func (c *Client) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.BuildKey(key), payload, ttl).Err()
}

// Del 删除缓存
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		full = append(full, c.BuildKey(key))
	}
	return c.rdb.Del(ctx, full...).Err()
}

// BuildKey 拼接带前缀的键
func (c *Client) BuildKey(key string) string {
	prefix := "wp"
	if c != nil && c.prefix != "" {
		prefix = c.prefix
	}
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return prefix
	}
	return fmt.Sprintf("%s:%s", prefix, trimmed)
}
