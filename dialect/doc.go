// Package dialect names the SQL databases repairdb runs on and defines the
// small driver contract the request engine executes statements through.
//
// A dialect is a plain string: Postgres, MySQL or SQLite. The pgx driver
// registers as "pgx" but reports the Postgres dialect, so statement
// building only ever branches on these three names.
//
// Statements reach the database through an ExecQuerier. Exec scans a
// sql.Result into its last argument and Query scans *sql.Rows, which keeps
// the engine independent of database/sql. A Driver adds Tx, Close and
// Dialect; a Tx adds Commit and Rollback. NopTx lets a driver that is
// already bound to a transaction hand out nested transactions that commit
// nothing, which is how requests join an interactive transaction.
//
// Adapters in the client package open the concrete drivers:
//
//	db, err := client.Open(ctx, client.WithDatasourceURL("postgres://localhost/repairs"))
//
// The SQL builders and the database/sql backed Driver live in dialect/sql,
// migrations in dialect/sql/schema and request execution in
// dialect/sql/sqlgraph.
package dialect
