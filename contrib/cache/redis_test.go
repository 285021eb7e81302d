package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `repairdb:User:`, escapeGlob("repairdb:User:"))
	assert.Equal(t, `a\*b\?\[c\]\\`, escapeGlob(`a*b?[c]\`))
}

// TestRedis runs against the server in REPAIRDB_TEST_REDIS, e.g. localhost:6379.
func TestRedis(t *testing.T) {
	addr := os.Getenv("REPAIRDB_TEST_REDIS")
	if addr == "" {
		t.Skip("REPAIRDB_TEST_REDIS not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())

	c := NewRedis(rdb, WithNamespace("repairdb-test:"), WithScanCount(10))
	require.NoError(t, c.Clear(ctx))

	v, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, c.Set(ctx, "repairdb:User:findMany:1", []byte("u"), time.Minute))
	require.NoError(t, c.Set(ctx, "repairdb:User:count:2", []byte("c"), 0))
	require.NoError(t, c.Set(ctx, "repairdb:Printer:findMany:1", []byte("p"), 0))

	v, err = c.Get(ctx, "repairdb:User:findMany:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("u"), v)
	ttl, err := rdb.TTL(ctx, "repairdb-test:repairdb:User:findMany:1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.DeletePrefix(ctx, "repairdb:User:"))
	v, _ = c.Get(ctx, "repairdb:User:count:2")
	assert.Nil(t, v)
	v, _ = c.Get(ctx, "repairdb:Printer:findMany:1")
	assert.Equal(t, []byte("p"), v)

	require.NoError(t, c.Delete(ctx, "repairdb:Printer:findMany:1"))
	v, _ = c.Get(ctx, "repairdb:Printer:findMany:1")
	assert.Nil(t, v)
	require.NoError(t, c.Clear(ctx))
}
