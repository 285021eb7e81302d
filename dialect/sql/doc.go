// Package sql provides the SQL statement builders and database/sql backed
// drivers used by the repairdb engine.
//
// # Builder Types
//
//   - Builder: low-level string builder with identifier quoting and placeholders
//   - Selector: SELECT with subqueries, grouping and pagination
//   - InsertBuilder: INSERT with RETURNING and conflict skipping
//   - UpdateBuilder: UPDATE with atomic arithmetic assignments
//   - DeleteBuilder: DELETE with predicates
//
// # Dialect Support
//
// Statements adapt to the dialect they are built for:
//
//	import "github.com/repairtrack/repairdb/dialect"
//
//	// $1 placeholders, double quoted identifiers
//	sql.Dialect(dialect.Postgres).Select("id", "email").From("users").Where(sql.EQ("email", "a@b.c"))
//
//	// ? placeholders, backtick quoted identifiers
//	sql.Dialect(dialect.MySQL).Select("id").From("users")
//
// # Predicates
//
//	sql.EQ("name", "john")          // "name" = ?
//	sql.GT("quantity", 2)           // "quantity" > ?
//	sql.Contains("model", "Laser")  // case-sensitive on every dialect
//	sql.ContainsFold("model", "la") // repairdb_fold("model") LIKE ? on SQLite
//	sql.In("id", 1, 2, 3)           // "id" IN (?, ?, ?)
//	sql.IsNull("accessories")       // "accessories" IS NULL
//
// # Drivers
//
// Driver wraps a *sql.DB. StatsDriver wraps any dialect.Driver, counts
// statements and reports every statement, including transaction
// boundaries, to the registered query hooks.
//
//	drv, err := sql.Open("sqlite", "file:repair.db?_pragma=foreign_keys(1)")
//	sd := sql.NewStatsDriver(drv, sql.WithQueryHook(func(ctx context.Context, e sql.QueryEvent) {
//		slog.Debug("query", "sql", e.Query, "duration", e.Duration)
//	}))
package sql
