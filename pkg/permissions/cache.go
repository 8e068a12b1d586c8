package permissions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// ConfigCache caches guild permission configs in front of the store.
// A small local LRU absorbs hot-guild reads; an optional shared Redis layer
// keeps multiple instances coherent enough for a low-QPS bot.
type ConfigCache struct {
	local  *lru.LRU[string, *GuildConfig]
	redis  *redis.Client
	ttl    time.Duration
	prefix string
}

// NewConfigCache creates a config cache. The redis client may be nil, in
// which case only the local LRU is used.
func NewConfigCache(redisClient *redis.Client, maxEntries int, ttl time.Duration) *ConfigCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ConfigCache{
		local:  lru.NewLRU[string, *GuildConfig](maxEntries, nil, ttl),
		redis:  redisClient,
		ttl:    ttl,
		prefix: "barrister:guildcfg:",
	}
}

// Get returns a cached config, or nil on a miss
func (c *ConfigCache) Get(ctx context.Context, guildID string) *GuildConfig {
	if cfg, ok := c.local.Get(guildID); ok {
		return cfg
	}

	if c.redis == nil {
		return nil
	}

	data, err := c.redis.Get(ctx, c.prefix+guildID).Result()
	if err != nil {
		// redis.Nil and transport errors are both treated as a miss
		return nil
	}

	var cfg GuildConfig
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		c.redis.Del(ctx, c.prefix+guildID)
		return nil
	}
	cfg.Normalize()
	c.local.Add(guildID, &cfg)
	return &cfg
}

// Put stores a config in both cache layers
func (c *ConfigCache) Put(ctx context.Context, cfg *GuildConfig) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	c.local.Add(cfg.GuildID, cfg)

	if c.redis == nil {
		return nil
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal guild config: %w", err)
	}
	return c.redis.Set(ctx, c.prefix+cfg.GuildID, data, c.ttl).Err()
}

// Invalidate drops a guild's cached config from both layers
func (c *ConfigCache) Invalidate(ctx context.Context, guildID string) {
	c.local.Remove(guildID)
	if c.redis != nil {
		c.redis.Del(ctx, c.prefix+guildID)
	}
}
