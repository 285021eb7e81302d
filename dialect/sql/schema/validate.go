package schema

import (
	"fmt"
	"strings"

	"ariga.io/atlas/sql/schema"
)

// ValidationError describes a problem of a table definition or a
// migration change.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates if this is a breaking change.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if there are any breaking changes.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			if w.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// ValidateOption relaxes the validation of migration changes.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowDropColumn    bool
	allowDropTable     bool
	allowDropIndex     bool
	allowNullToNotNull bool
}

// AllowDropColumn allows dropping columns without error.
func AllowDropColumn() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropColumn = true
	}
}

// AllowDropTable allows dropping tables without error.
func AllowDropTable() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropTable = true
	}
}

// AllowDropIndex allows dropping indexes without error.
func AllowDropIndex() ValidateOption {
	return func(c *validateConfig) {
		c.allowDropIndex = true
	}
}

// AllowNullToNotNull allows changing nullable columns to not null.
func AllowNullToNotNull() ValidateOption {
	return func(c *validateConfig) {
		c.allowNullToNotNull = true
	}
}

// ValidateChanges checks the changes of a migration. Changes that may
// lose data are errors unless allowed by opts, and changes that may fail
// on existing rows are warnings.
//
//	res := schema.ValidateChanges(changes, schema.AllowDropColumn())
//	if res.HasErrors() {
//	    return &BreakingChangeError{Result: res}
//	}
func ValidateChanges(changes []schema.Change, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	result := &ValidationResult{}
	for _, c := range changes {
		switch c := c.(type) {
		case *schema.DropTable:
			result.add(&ValidationError{
				Table:    c.T.Name,
				Message:  "table will be dropped",
				Breaking: true,
			}, cfg.allowDropTable)
		case *schema.ModifyTable:
			validateTableChanges(c.T, c.Changes, cfg, result)
		}
	}
	return result
}

// add records err as a warning when allowed, as an error otherwise.
func (r *ValidationResult) add(err *ValidationError, allowed bool) {
	if allowed {
		r.Warnings = append(r.Warnings, err)
	} else {
		r.Errors = append(r.Errors, err)
	}
}

func validateTableChanges(t *schema.Table, changes []schema.Change, cfg *validateConfig, result *ValidationResult) {
	for _, c := range changes {
		switch c := c.(type) {
		case *schema.DropColumn:
			result.add(&ValidationError{
				Table:    t.Name,
				Column:   c.C.Name,
				Message:  "column will be dropped",
				Breaking: true,
			}, cfg.allowDropColumn)
		case *schema.AddColumn:
			if !c.C.Type.Null && c.C.Default == nil {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   t.Name,
					Column:  c.C.Name,
					Message: "new NOT NULL column without default value may fail if table has data",
				})
			}
		case *schema.ModifyColumn:
			if c.Change.Is(schema.ChangeType) {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   t.Name,
					Column:  c.To.Name,
					Message: fmt.Sprintf("column type changing from %s to %s", typeName(c.From), typeName(c.To)),
				})
			}
			if c.Change.Is(schema.ChangeNull) && c.From.Type.Null && !c.To.Type.Null {
				result.add(&ValidationError{
					Table:    t.Name,
					Column:   c.To.Name,
					Message:  "column changing from NULL to NOT NULL may fail if column has NULL values",
					Breaking: true,
				}, cfg.allowNullToNotNull)
			}
			if from, to := stringSize(c.From), stringSize(c.To); from > 0 && to > 0 && to < from {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   t.Name,
					Column:  c.To.Name,
					Message: fmt.Sprintf("column size reducing from %d to %d may truncate data", from, to),
				})
			}
		case *schema.AddIndex:
			if c.I.Unique {
				result.Warnings = append(result.Warnings, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("adding unique index %q may fail if duplicate values exist", c.I.Name),
				})
			}
		case *schema.DropIndex:
			result.add(&ValidationError{
				Table:   t.Name,
				Message: fmt.Sprintf("index %q will be dropped", c.I.Name),
			}, cfg.allowDropIndex)
		}
	}
}

func typeName(c *schema.Column) string {
	if c.Type == nil {
		return "unknown"
	}
	if c.Type.Raw != "" {
		return c.Type.Raw
	}
	switch t := c.Type.Type.(type) {
	case *schema.IntegerType:
		return t.T
	case *schema.StringType:
		return t.T
	case *schema.FloatType:
		return t.T
	case *schema.TimeType:
		return t.T
	case *schema.BoolType:
		return t.T
	}
	return fmt.Sprintf("%T", c.Type.Type)
}

func stringSize(c *schema.Column) int {
	if c.Type == nil {
		return 0
	}
	if t, ok := c.Type.Type.(*schema.StringType); ok {
		return t.Size
	}
	return 0
}

// ValidateTable validates a single table definition.
func ValidateTable(t *schema.Table) *ValidationResult {
	result := &ValidationResult{}
	if t.PrimaryKey == nil || len(t.PrimaryKey.Parts) == 0 {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name,
			Message: "table has no primary key",
		})
	}
	colNames := make(map[string]bool)
	for _, c := range t.Columns {
		if colNames[c.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Column:  c.Name,
				Message: "duplicate column name",
			})
		}
		colNames[c.Name] = true
	}
	idxNames := make(map[string]bool)
	for _, idx := range t.Indexes {
		if idxNames[idx.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: fmt.Sprintf("duplicate index name: %s", idx.Name),
			})
		}
		idxNames[idx.Name] = true
		for _, part := range idx.Parts {
			if part.C != nil && !colNames[part.C.Name] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("index %q references non-existent column %q", idx.Name, part.C.Name),
				})
			}
		}
	}
	for _, fk := range t.ForeignKeys {
		for _, col := range fk.Columns {
			if !colNames[col.Name] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("foreign key references non-existent column %q", col.Name),
				})
			}
		}
	}
	return result
}

// ValidateTables validates the desired tables of a migration.
func ValidateTables(tables []*schema.Table) *ValidationResult {
	result := &ValidationResult{}
	tableNames := make(map[string]bool)
	for _, t := range tables {
		if tableNames[t.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: "duplicate table name",
			})
		}
		tableNames[t.Name] = true
		tableResult := ValidateTable(t)
		result.Errors = append(result.Errors, tableResult.Errors...)
		result.Warnings = append(result.Warnings, tableResult.Warnings...)
	}
	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == nil || !tableNames[fk.RefTable.Name] {
				ref := "<nil>"
				if fk.RefTable != nil {
					ref = fk.RefTable.Name
				}
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("foreign key references non-existent table %q", ref),
				})
			}
		}
	}
	return result
}
