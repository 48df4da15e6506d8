package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/restaurant-pos/internal/model"
)

const menuKey = "pos:menu:active"

// Menu 前台菜单快照：在售分类 + 在售菜品
type Menu struct {
	Categories []*model.Category `json:"categories"`
	Dishes     []*model.Dish     `json:"dishes"`
	BuiltAt    time.Time         `json:"built_at"`
}

// MenuCache 菜单 cache-aside 缓存；client 为 nil 时所有操作都是空操作
type MenuCache struct {
	client *redis.Client
	ttl    time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMenuCache builds a cache over client; ttl <= 0 falls back to ten minutes.
func NewMenuCache(client *redis.Client, ttl time.Duration) *MenuCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &MenuCache{client: client, ttl: ttl}
}

// Get 读取缓存；未命中或反序列化失败返回 false
func (c *MenuCache) Get(ctx context.Context) (*Menu, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, menuKey).Bytes()
	if err != nil {
		c.misses.Add(1)
		return nil, false
	}
	var m Menu
	if err := json.Unmarshal(data, &m); err != nil {
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return &m, true
}

// Set 写入缓存，失败只影响命中率
func (c *MenuCache) Set(ctx context.Context, m *Menu) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, menuKey, payload, c.ttl).Err()
}

// Invalidate 菜品或分类变更后删除快照
func (c *MenuCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	err := c.client.Del(ctx, menuKey).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// Stats reports cache hits and misses since start.
func (c *MenuCache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}
