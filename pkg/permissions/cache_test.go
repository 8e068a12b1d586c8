package permissions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestConfigCacheLocalOnly(t *testing.T) {
	cache := NewConfigCache(nil, 8, time.Minute)
	ctx := context.Background()

	assert.Nil(t, cache.Get(ctx, "G1"))

	cfg := DefaultGuildConfig("G1")
	cfg.AdminUsers = []string{"U1"}
	require.NoError(t, cache.Put(ctx, cfg))

	got := cache.Get(ctx, "G1")
	require.NotNil(t, got)
	assert.Equal(t, []string{"U1"}, got.AdminUsers)

	cache.Invalidate(ctx, "G1")
	assert.Nil(t, cache.Get(ctx, "G1"))
}

func TestConfigCacheRedisRoundTrip(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	writer := NewConfigCache(client, 8, time.Minute)
	cfg := DefaultGuildConfig("G1")
	cfg.ActionRoles[ActionLawyer] = []string{"R1"}
	require.NoError(t, writer.Put(ctx, cfg))

	// a second cache instance with a cold LRU reads through redis
	reader := NewConfigCache(client, 8, time.Minute)
	got := reader.Get(ctx, "G1")
	require.NotNil(t, got)
	assert.Equal(t, []string{"R1"}, got.ActionRoles[ActionLawyer])
	// normalization applies to configs read back from redis
	assert.Len(t, got.ActionRoles, len(AllActions()))
}

func TestConfigCacheRedisInvalidate(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	a := NewConfigCache(client, 8, time.Minute)
	require.NoError(t, a.Put(ctx, DefaultGuildConfig("G1")))

	a.Invalidate(ctx, "G1")

	b := NewConfigCache(client, 8, time.Minute)
	assert.Nil(t, b.Get(ctx, "G1"))
}

func TestConfigCacheCorruptRedisEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	require.NoError(t, mr.Set("barrister:guildcfg:G1", "not-json"))

	cache := NewConfigCache(client, 8, time.Minute)
	assert.Nil(t, cache.Get(ctx, "G1"))
	// the corrupt entry is dropped
	assert.False(t, mr.Exists("barrister:guildcfg:G1"))
}

func TestConfigCachePutNil(t *testing.T) {
	cache := NewConfigCache(nil, 8, time.Minute)
	assert.Error(t, cache.Put(context.Background(), nil))
}
