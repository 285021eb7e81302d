package sqlgraph

import (
	"context"
	"fmt"
	"time"

	"github.com/repairtrack/repairdb/dialect"
	"github.com/repairtrack/repairdb/dialect/sql"
	"github.com/repairtrack/repairdb/query"
)

// raw runs an executeRaw or queryRaw request. Raw statements bypass the
// schema, so any write invalidates the whole cache.
func (e *Engine) raw(ctx context.Context, req query.Request) (*query.Response, error) {
	var r sql.Raw
	switch a := req.Args.(type) {
	case sql.Raw:
		r = a
	case *sql.Raw:
		r = *a
	default:
		return nil, fmt.Errorf("sqlgraph: unexpected raw arguments %T", req.Args)
	}
	q, args, err := r.Query(e.dialect)
	if err != nil {
		return nil, err
	}
	if e.dialect == dialect.SQLite {
		args = append([]any(nil), args...)
		for i, a := range args {
			if t, ok := a.(time.Time); ok {
				args[i] = t.UTC().Format(sqliteTime)
			}
		}
	}
	if req.Action == query.ExecuteRaw {
		var res sql.Result
		if err := e.driver.Exec(ctx, q, args, &res); err != nil {
			return nil, err
		}
		e.invalidateAll(ctx)
		n, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		return &query.Response{Count: n}, nil
	}
	rows := &sql.Rows{}
	if err := e.driver.Query(ctx, q, args, rows); err != nil {
		return nil, err
	}
	maps, err := sql.ScanMaps(rows)
	if err != nil {
		return nil, err
	}
	recs := make([]query.Record, len(maps))
	for i, row := range maps {
		rec := make(query.Record, len(row))
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			rec[k] = v
		}
		recs[i] = rec
	}
	return &query.Response{Records: recs}, nil
}
