package sql

import (
	"database/sql/driver"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"modernc.org/sqlite"

	"github.com/repairtrack/repairdb/dialect"
)

// FoldFunc is the SQLite function lower-casing text with full Unicode
// rules. The built-in LOWER of SQLite only folds ASCII.
const FoldFunc = "repairdb_fold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(FoldFunc, 1, foldValue)
}

func foldValue(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return Fold(v), nil
	case []byte:
		return Fold(string(v)), nil
	default:
		return nil, fmt.Errorf("%s: unsupported argument %T", FoldFunc, v)
	}
}

// Fold lower-cases s the way case-insensitive predicates compare values.
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

func foldFunc(d string) string {
	if d == dialect.SQLite {
		return FoldFunc
	}
	return "LOWER"
}

// FoldExpr wraps expr in the case folding function of dialect d.
func FoldExpr(d, expr string) string {
	return foldFunc(d) + "(" + expr + ")"
}
