package sql

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairtrack/repairdb/dialect"
)

func TestFoldFunc(t *testing.T) {
	db, err := sql.Open(dialect.SQLite, "file:fold?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()

	var folded string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT "+FoldExpr(dialect.SQLite, "?"), "ÉCRAN Cassé").Scan(&folded))
	assert.Equal(t, "écran cassé", folded)

	var null sql.NullString
	require.NoError(t, db.QueryRowContext(ctx, "SELECT "+FoldExpr(dialect.SQLite, "NULL")).Scan(&null))
	assert.False(t, null.Valid)

	_, err = db.ExecContext(ctx, `CREATE TABLE notes (body TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO notes (body) VALUES ('ÉCRAN cassé'), ('toner')`)
	require.NoError(t, err)

	tests := []struct {
		name string
		pred Predicate
		want int
	}{
		{"contains", ContainsFold("body", "écran"), 1},
		{"equals", EqualFold("body", "écran CASSÉ"), 1},
		{"prefix", HasPrefixFold("body", "Écr"), 1},
		{"suffix", HasSuffixFold("body", "SSÉ"), 1},
		{"ascii", ContainsFold("body", "TON"), 1},
		{"miss", ContainsFold("body", "ecran"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(dialect.SQLite)
			b.WriteString(`SELECT COUNT(*) FROM "notes" WHERE `)
			tt.pred(b)
			query, args := b.Query()
			var n int
			require.NoError(t, db.QueryRowContext(ctx, query, args...).Scan(&n))
			assert.Equal(t, tt.want, n, query)
		})
	}
	assert.Equal(t, "LOWER(x)", FoldExpr(dialect.Postgres, "x"))
}
