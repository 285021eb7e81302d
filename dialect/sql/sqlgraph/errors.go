package sqlgraph

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/schema"
)

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	return IsUniqueConstraintError(err) || IsForeignKeyConstraintError(err)
}

// sqlStateError is an interface for errors that provide SQLSTATE codes.
// Implemented by pgconn.PgError.
type sqlStateError interface {
	SQLState() string
}

// PostgreSQL SQLSTATE codes for constraint violations (Class 23) and
// serialization failures.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry   = 1062
	mysqlForeignKeyParent = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild  = 1452 // Cannot add or update a child row
	mysqlDeadlock         = 1213
)

// IsUniqueConstraintError reports if the error resulted from a DB uniqueness constraint violation.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if sqlState(err) == pgUniqueViolation {
		return true
	}
	if e, ok := asError[*mysql.MySQLError](err); ok && e.Number == mysqlDuplicateEntry {
		return true
	}
	return containsAny(err.Error(),
		"Error 1062",                 // MySQL (string fallback)
		"violates unique constraint", // Postgres (string fallback)
		"UNIQUE constraint failed",   // SQLite
	)
}

// IsForeignKeyConstraintError reports if the error resulted from a database foreign-key constraint violation.
func IsForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if sqlState(err) == pgForeignKeyViolation {
		return true
	}
	if e, ok := asError[*mysql.MySQLError](err); ok && (e.Number == mysqlForeignKeyParent || e.Number == mysqlForeignKeyChild) {
		return true
	}
	return containsAny(err.Error(),
		"Error 1451",                      // MySQL (Cannot delete or update a parent row)
		"Error 1452",                      // MySQL (Cannot add or update a child row)
		"violates foreign key constraint", // Postgres
		"FOREIGN KEY constraint failed",   // SQLite
	)
}

// IsWriteConflictError reports if the transaction failed on a
// serialization conflict or a deadlock.
func IsWriteConflictError(err error) bool {
	if err == nil {
		return false
	}
	if s := sqlState(err); s == pgSerializationFail || s == pgDeadlockDetected {
		return true
	}
	if e, ok := asError[*mysql.MySQLError](err); ok && e.Number == mysqlDeadlock {
		return true
	}
	return containsAny(err.Error(), "database is locked", "SQLITE_BUSY")
}

// sqlState returns the SQLSTATE code of a Postgres error, or "".
func sqlState(err error) string {
	if e, ok := asError[*pq.Error](err); ok {
		return string(e.Code)
	}
	if e, ok := asError[sqlStateError](err); ok {
		return e.SQLState()
	}
	return ""
}

// asError attempts to extract an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	if errors.As(err, &target) {
		return target, true
	}
	return target, false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// classifier translates driver errors into the repairdb error taxonomy.
type classifier struct {
	// constraints maps unique index and foreign key names to fields.
	constraints map[string]*schema.Scalar
	// columns maps "table.column" to fields.
	columns map[string]*schema.Scalar
}

func newClassifier(g *schema.Graph) *classifier {
	c := &classifier{
		constraints: make(map[string]*schema.Scalar),
		columns:     make(map[string]*schema.Scalar),
	}
	for _, m := range g.Models {
		for _, f := range m.Fields {
			c.columns[m.Table+"."+f.Column] = f
			if f.Unique && f != m.ID {
				c.constraints[f.UniqueKeyName()] = f
			}
			if f.IsForeignKey() {
				c.constraints[f.ForeignKeyName()] = f
			}
		}
	}
	return c
}

var (
	sqliteUnique = regexp.MustCompile(`UNIQUE constraint failed: ([^(]+)`)
	mysqlKey     = regexp.MustCompile(`for key '([^']+)'`)
	mysqlFK      = regexp.MustCompile("CONSTRAINT `([^`]+)`")
)

// classify wraps err in a KnownRequestError when the failure has a
// stable code, and in an UnknownRequestError otherwise. Errors already
// part of the taxonomy are returned unchanged.
func (c *classifier) classify(model, action string, err error) error {
	if err == nil {
		return nil
	}
	var (
		known *repairdb.KnownRequestError
		valid *repairdb.ValidationError
		unk   *repairdb.UnknownRequestError
		agg   *repairdb.AggregateError
		priv  *repairdb.PrivacyError
	)
	switch {
	case errors.As(err, &valid):
		if valid.Model == "" {
			valid.Model, valid.Action = model, action
		}
		return err
	case errors.As(err, &known), errors.As(err, &unk),
		errors.As(err, &agg), errors.As(err, &priv):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return err
	case IsUniqueConstraintError(err):
		return repairdb.NewUniqueConstraintError(model, action, c.uniqueTarget(err), err)
	case IsForeignKeyConstraintError(err):
		return repairdb.NewForeignKeyConstraintError(model, action, c.foreignKeyField(err), err)
	case IsWriteConflictError(err):
		return &repairdb.KnownRequestError{
			Code:    repairdb.CodeWriteConflict,
			Message: "transaction failed due to a write conflict or a deadlock",
			Model:   model,
			Action:  action,
			Err:     err,
		}
	}
	return &repairdb.UnknownRequestError{Model: model, Action: action, Err: err}
}

// uniqueTarget returns the names of the fields of a violated unique constraint.
func (c *classifier) uniqueTarget(err error) []string {
	var pgName string
	if e, ok := asError[*pq.Error](err); ok {
		pgName = e.Constraint
	}
	if e, ok := asError[*pgconn.PgError](err); ok {
		pgName = e.ConstraintName
	}
	if f, ok := c.constraints[pgName]; ok {
		return []string{f.Name}
	}
	msg := err.Error()
	if m := mysqlKey.FindStringSubmatch(msg); m != nil {
		name := m[1]
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		if f, ok := c.constraints[name]; ok {
			return []string{f.Name}
		}
		return []string{name}
	}
	if m := sqliteUnique.FindStringSubmatch(msg); m != nil {
		var target []string
		for _, col := range strings.Split(m[1], ",") {
			col = strings.TrimSpace(col)
			if f, ok := c.columns[col]; ok {
				target = append(target, f.Name)
			} else if col != "" {
				target = append(target, col)
			}
		}
		return target
	}
	if pgName != "" {
		return []string{pgName}
	}
	return nil
}

// foreignKeyField returns the "Model.field" name of a violated foreign
// key, or an empty string if the driver does not report it.
func (c *classifier) foreignKeyField(err error) string {
	var name string
	if e, ok := asError[*pq.Error](err); ok {
		name = e.Constraint
	}
	if e, ok := asError[*pgconn.PgError](err); ok {
		name = e.ConstraintName
	}
	if m := mysqlFK.FindStringSubmatch(err.Error()); m != nil {
		name = m[1]
	}
	if f, ok := c.constraints[name]; ok {
		return f.Model.Name + "." + f.Name
	}
	return name
}
