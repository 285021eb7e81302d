package dataloader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type printer struct {
	ID     int
	Serial string
}

type part struct {
	ID        int
	RequestID int
	Name      string
}

func TestOrderByKeys(t *testing.T) {
	t.Parallel()

	keyFn := func(p *printer) int { return p.ID }
	tests := []struct {
		name    string
		keys    []int
		values  []*printer
		serials []string
		missing []int
	}{
		{
			name:    "reordered",
			keys:    []int{1, 2, 3},
			values:  []*printer{{3, "SN3"}, {1, "SN1"}, {2, "SN2"}},
			serials: []string{"SN1", "SN2", "SN3"},
		},
		{
			name:    "missing keys",
			keys:    []int{1, 2, 3, 4},
			values:  []*printer{{1, "SN1"}, {3, "SN3"}},
			serials: []string{"SN1", "", "SN3", ""},
			missing: []int{1, 3},
		},
		{
			name:    "repeated keys",
			keys:    []int{2, 2, 1},
			values:  []*printer{{1, "SN1"}, {2, "SN2"}},
			serials: []string{"SN2", "SN2", "SN1"},
		},
		{
			name: "empty",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, errs := OrderByKeys(tt.keys, tt.values, keyFn)
			require.Len(t, got, len(tt.keys))
			require.Len(t, errs, len(tt.keys))
			for i, want := range tt.serials {
				if want == "" {
					assert.Nil(t, got[i])
					assert.ErrorIs(t, errs[i], ErrNotFound)
					continue
				}
				assert.Equal(t, want, got[i].Serial)
				assert.NoError(t, errs[i])
			}
			assert.Len(t, tt.missing, countErrors(errs))
		})
	}

	got := OrderByKeysNoError([]int{5, 1}, []*printer{{1, "SN1"}}, keyFn)
	require.Len(t, got, 2)
	assert.Nil(t, got[0])
	assert.Equal(t, "SN1", got[1].Serial)
}

func countErrors(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}

func TestGroupByKey(t *testing.T) {
	t.Parallel()

	parts := []*part{
		{ID: 1, RequestID: 10, Name: "fuser"},
		{ID: 2, RequestID: 10, Name: "roller"},
		{ID: 3, RequestID: 20, Name: "toner"},
		{ID: 4, RequestID: 10, Name: "belt"},
	}
	grouped := GroupByKey(parts, func(p *part) int { return p.RequestID })
	require.Len(t, grouped[10], 3)
	require.Len(t, grouped[20], 1)
	assert.Equal(t, []string{"fuser", "roller", "belt"}, []string{grouped[10][0].Name, grouped[10][1].Name, grouped[10][2].Name})
	assert.Empty(t, GroupByKey([]*part{}, func(p *part) int { return p.RequestID }))

	ordered := OrderGroupsByKeys([]int{20, 30, 10}, grouped)
	require.Len(t, ordered, 3)
	assert.Equal(t, "toner", ordered[0][0].Name)
	assert.Nil(t, ordered[1])
	assert.Len(t, ordered[2], 3)
	assert.Empty(t, OrderGroupsByKeys([]int{}, grouped))
}

func TestUnique(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []int{3, 1, 2}, Unique([]int{3, 1, 3, 2, 1}))
	assert.Empty(t, Unique([]string(nil)))
}

func TestChunk(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		keys []int
		size int
		want [][]int
	}{
		{"empty", nil, 2, nil},
		{"smaller than size", []int{1, 2}, 5, [][]int{{1, 2}}},
		{"exact multiple", []int{1, 2, 3, 4}, 2, [][]int{{1, 2}, {3, 4}}},
		{"remainder", []int{1, 2, 3, 4, 5}, 2, [][]int{{1, 2}, {3, 4}, {5}}},
		{"no limit", []int{1, 2, 3}, 0, [][]int{{1, 2, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Chunk(tt.keys, tt.size))
		})
	}

	chunks := Chunk([]int{1, 2, 3}, 2)
	chunks[0] = append(chunks[0], 9)
	assert.Equal(t, []int{3}, chunks[1], "appending to a chunk must not overwrite the next one")
}

func TestBatch(t *testing.T) {
	t.Parallel()

	t.Run("one call per chunk", func(t *testing.T) {
		var calls [][]int
		got, err := Batch(context.Background(), []int{1, 2, 3, 4, 5}, 2, func(_ context.Context, keys []int) ([]*printer, error) {
			calls = append(calls, keys)
			out := make([]*printer, 0, len(keys))
			for _, k := range keys {
				out = append(out, &printer{ID: k})
			}
			return out, nil
		})
		require.NoError(t, err)
		assert.Len(t, calls, 3)
		require.Len(t, got, 5)
		assert.Equal(t, 5, got[4].ID)
	})

	t.Run("stops on error", func(t *testing.T) {
		calls := 0
		_, err := Batch(context.Background(), []int{1, 2, 3}, 1, func(context.Context, []int) ([]int, error) {
			calls++
			return nil, ErrNotFound
		})
		require.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Batch(ctx, []int{1}, 1, func(context.Context, []int) ([]int, error) {
			t.Fatal("unexpected call")
			return nil, nil
		})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func BenchmarkOrderByKeys(b *testing.B) {
	keys := make([]int, 100)
	values := make([]*printer, 100)
	for i := range keys {
		keys[i] = i
		values[i] = &printer{ID: 99 - i}
	}
	keyFn := func(p *printer) int { return p.ID }
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		OrderByKeys(keys, values, keyFn)
	}
}

func BenchmarkGroupByKey(b *testing.B) {
	parts := make([]*part, 100)
	for i := range parts {
		parts[i] = &part{ID: i, RequestID: i % 10}
	}
	keyFn := func(p *part) int { return p.RequestID }
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GroupByKey(parts, keyFn)
	}
}
