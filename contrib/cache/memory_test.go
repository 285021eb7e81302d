package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairtrack/repairdb"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	v, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	buf := []byte("v1")
	require.NoError(t, m.Set(ctx, "k", buf, 0))
	buf[0] = 'x'
	v, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v, "stored value must be a copy")

	require.NoError(t, m.Set(ctx, "ttl", []byte("v2"), time.Minute))
	now = now.Add(59 * time.Second)
	v, _ = m.Get(ctx, "ttl")
	assert.Equal(t, []byte("v2"), v)
	now = now.Add(time.Second)
	v, _ = m.Get(ctx, "ttl")
	assert.Nil(t, v)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Delete(ctx, "k"))
	assert.Zero(t, m.Len())
}

func TestMemory_DeletePrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	for _, k := range []string{"User", "UserRole", "Printer"} {
		key, err := repairdb.NewCacheKey(k, "findMany", map[string]any{"take": 1})
		require.NoError(t, err)
		require.NoError(t, m.Set(ctx, key.String(), []byte(k), 0))
	}
	require.NoError(t, m.DeletePrefix(ctx, repairdb.CachePrefix("User")))
	assert.Equal(t, 2, m.Len(), "prefix ends with a separator, so UserRole survives")

	require.NoError(t, m.Clear(ctx))
	assert.Zero(t, m.Len())
}

func TestMemory_Purge(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Now()
	m.now = func() time.Time { return now }
	require.NoError(t, m.Set(ctx, "a", nil, time.Second))
	require.NoError(t, m.Set(ctx, "b", nil, 0))
	now = now.Add(2 * time.Second)
	m.Purge()
	assert.Equal(t, 1, m.Len())
}
