package repairdb_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairtrack/repairdb"
)

func TestOpIs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		op       repairdb.Op
		check    repairdb.Op
		expected bool
	}{
		{"Create is Create", repairdb.OpCreate, repairdb.OpCreate, true},
		{"Create is not Update", repairdb.OpCreate, repairdb.OpUpdate, false},
		{"UpdateOne is not Update", repairdb.OpUpdateOne, repairdb.OpUpdate, false},
		{"DeleteOne is not Delete", repairdb.OpDeleteOne, repairdb.OpDelete, false},
		{"Query is not Raw", repairdb.OpQuery, repairdb.OpRaw, false},
		{"Combined Update|UpdateOne is Update", repairdb.OpUpdate | repairdb.OpUpdateOne, repairdb.OpUpdate, true},
		{"Combined Update|UpdateOne is UpdateOne", repairdb.OpUpdate | repairdb.OpUpdateOne, repairdb.OpUpdateOne, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.op.Is(tt.check))
		})
	}
}

func TestOpIsMutation(t *testing.T) {
	t.Parallel()

	for _, op := range []repairdb.Op{repairdb.OpCreate, repairdb.OpUpdate, repairdb.OpUpdateOne, repairdb.OpDelete, repairdb.OpDeleteOne} {
		assert.True(t, op.IsMutation(), op.String())
	}
	assert.False(t, repairdb.OpQuery.IsMutation())
	assert.False(t, repairdb.OpRaw.IsMutation())
}

func TestOpString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op       repairdb.Op
		expected string
	}{
		{repairdb.OpQuery, "OpQuery"},
		{repairdb.OpCreate, "OpCreate"},
		{repairdb.OpUpdateOne, "OpUpdateOne"},
		{repairdb.OpDeleteOne, "OpDeleteOne"},
		{repairdb.OpRaw, "OpRaw"},
		{repairdb.OpUpdate | repairdb.OpUpdateOne, "OpUpdate"},
		{0, "Op(0)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.op.String())
	}
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	a, err := repairdb.NewCacheKey("Printer", "findMany", map[string]any{"take": 10, "where": "SN1"})
	require.NoError(t, err)
	b, err := repairdb.NewCacheKey("Printer", "findMany", map[string]any{"where": "SN1", "take": 10})
	require.NoError(t, err)
	assert.Equal(t, a, b, "map order must not change the key")

	c, err := repairdb.NewCacheKey("Printer", "findMany", map[string]any{"take": 11, "where": "SN1"})
	require.NoError(t, err)
	assert.NotEqual(t, a.Args, c.Args)

	assert.True(t, strings.HasPrefix(a.String(), repairdb.CachePrefix("Printer")))
	assert.Equal(t, "repairdb:Printer:findMany:"+a.Args, a.String())
	assert.False(t, strings.HasPrefix(a.String(), repairdb.CachePrefix("Print")+"findMany"))

	_, err = repairdb.NewCacheKey("Printer", "findMany", map[string]any{"fn": func() {}})
	assert.Error(t, err)
}

func TestCacheValue(t *testing.T) {
	t.Parallel()

	type row struct {
		ID        int64
		Serial    string
		CreatedAt time.Time
	}
	in := []row{{ID: 1, Serial: "SN1", CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}}
	b, err := repairdb.EncodeCacheValue(in)
	require.NoError(t, err)

	var out []row
	require.NoError(t, repairdb.DecodeCacheValue(b, &out))
	require.Len(t, out, 1)
	assert.Equal(t, in[0].Serial, out[0].Serial)
	assert.True(t, in[0].CreatedAt.Equal(out[0].CreatedAt))
}
