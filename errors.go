package repairdb

import (
	"errors"
	"fmt"
	"strings"
)

// Stable machine-readable codes carried by KnownRequestError.
const (
	CodeUniqueConstraint     = "P2002"
	CodeForeignKeyConstraint = "P2003"
	CodeRecordNotFound       = "P2025"
	CodeTransactionAPI       = "P2028"
	CodeWriteConflict        = "P2034"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is matched by KnownRequestError values with code P2025.
	ErrNotFound = errors.New("repairdb: record not found")

	// ErrUniqueConstraint is matched by KnownRequestError values with code P2002.
	ErrUniqueConstraint = errors.New("repairdb: unique constraint failed")

	// ErrForeignKeyConstraint is matched by KnownRequestError values with code P2003.
	ErrForeignKeyConstraint = errors.New("repairdb: foreign key constraint failed")

	// ErrTimeoutExceeded is matched by transaction errors caused by
	// exceeding the maxWait or timeout budget.
	ErrTimeoutExceeded = errors.New("repairdb: transaction timeout exceeded")

	// ErrTxStarted is returned when attempting to start a new transaction
	// within an existing transaction.
	ErrTxStarted = errors.New("repairdb: cannot start a transaction within a transaction")
)

// KnownRequestError is returned when the database rejected a well-formed
// request for a classifiable reason.
type KnownRequestError struct {
	Code    string
	Message string
	Model   string
	Action  string
	// Meta holds code specific details, e.g. "target" for P2002.
	Meta map[string]any
	Err  error
}

// Error returns the error string.
func (e *KnownRequestError) Error() string {
	var sb strings.Builder
	sb.WriteString("repairdb: ")
	if e.Model != "" {
		fmt.Fprintf(&sb, "%s.%s: ", e.Model, e.Action)
	}
	sb.WriteString(e.Message)
	fmt.Fprintf(&sb, " (code %s)", e.Code)
	return sb.String()
}

// Unwrap returns the underlying driver error, if any.
func (e *KnownRequestError) Unwrap() error {
	return e.Err
}

// Is maps the error code to the package sentinels.
func (e *KnownRequestError) Is(err error) bool {
	switch err {
	case ErrNotFound:
		return e.Code == CodeRecordNotFound
	case ErrUniqueConstraint:
		return e.Code == CodeUniqueConstraint
	case ErrForeignKeyConstraint:
		return e.Code == CodeForeignKeyConstraint
	case ErrTimeoutExceeded:
		return e.Code == CodeTransactionAPI
	}
	return false
}

// NewNotFoundError returns a P2025 error for the given model and action.
func NewNotFoundError(model, action string) *KnownRequestError {
	return &KnownRequestError{
		Code:    CodeRecordNotFound,
		Message: "no record was found for the given criteria",
		Model:   model,
		Action:  action,
	}
}

// NewUniqueConstraintError returns a P2002 error for the violated target.
func NewUniqueConstraintError(model, action string, target []string, err error) *KnownRequestError {
	msg := "unique constraint failed"
	if len(target) > 0 {
		msg = fmt.Sprintf("unique constraint failed on the fields: (%s)", strings.Join(target, ", "))
	}
	return &KnownRequestError{
		Code:    CodeUniqueConstraint,
		Message: msg,
		Model:   model,
		Action:  action,
		Meta:    map[string]any{"target": target},
		Err:     err,
	}
}

// NewForeignKeyConstraintError returns a P2003 error.
func NewForeignKeyConstraintError(model, action, field string, err error) *KnownRequestError {
	msg := "foreign key constraint failed"
	meta := map[string]any{}
	if field != "" {
		msg = fmt.Sprintf("foreign key constraint failed on the field: %s", field)
		meta["field_name"] = field
	}
	return &KnownRequestError{
		Code:    CodeForeignKeyConstraint,
		Message: msg,
		Model:   model,
		Action:  action,
		Meta:    meta,
		Err:     err,
	}
}

// NewTimeoutError returns a P2028 error describing an exceeded transaction budget.
func NewTimeoutError(msg string, err error) *KnownRequestError {
	return &KnownRequestError{
		Code:    CodeTransactionAPI,
		Message: msg,
		Err:     err,
	}
}

// IsNotFound returns true if the error reports a missing record.
func IsNotFound(err error) bool {
	return err != nil && errors.Is(err, ErrNotFound)
}

// IsUniqueConstraintError returns true if the error reports a P2002 violation.
func IsUniqueConstraintError(err error) bool {
	return err != nil && errors.Is(err, ErrUniqueConstraint)
}

// IsForeignKeyConstraintError returns true if the error reports a P2003 violation.
func IsForeignKeyConstraintError(err error) bool {
	return err != nil && errors.Is(err, ErrForeignKeyConstraint)
}

// IsTimeoutExceeded returns true if a transaction ran out of time.
func IsTimeoutExceeded(err error) bool {
	return err != nil && errors.Is(err, ErrTimeoutExceeded)
}

// IsKnownRequestError returns true if the error is a KnownRequestError.
func IsKnownRequestError(err error) bool {
	var e *KnownRequestError
	return errors.As(err, &e)
}

// UnknownRequestError wraps a database failure that has no classifiable code.
type UnknownRequestError struct {
	Model  string
	Action string
	Err    error
}

// Error returns the error string.
func (e *UnknownRequestError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("repairdb: %s.%s: %v", e.Model, e.Action, e.Err)
	}
	return fmt.Sprintf("repairdb: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *UnknownRequestError) Unwrap() error {
	return e.Err
}

// IsUnknownRequestError returns true if the error is an UnknownRequestError.
func IsUnknownRequestError(err error) bool {
	var e *UnknownRequestError
	return errors.As(err, &e)
}

// ValidationError reports an invalid request shape. It is always raised
// before anything is sent to the database.
type ValidationError struct {
	Model  string
	Action string
	Path   string // Argument path, e.g. "where.email" or "by"
	Err    error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("repairdb: invalid ")
	if e.Model != "" {
		fmt.Fprintf(&sb, "%s.%s ", e.Model, e.Action)
	}
	sb.WriteString("invocation")
	if e.Path != "" {
		fmt.Fprintf(&sb, " at %q", e.Path)
	}
	fmt.Fprintf(&sb, ": %s", e.Err)
	return sb.String()
}

// Unwrap returns the underlying validation error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a new ValidationError for the given argument path.
func NewValidationError(path string, err error) *ValidationError {
	return &ValidationError{Path: path, Err: err}
}

// Validationf returns a ValidationError with a formatted message.
func Validationf(path, format string, a ...any) *ValidationError {
	return &ValidationError{Path: path, Err: fmt.Errorf(format, a...)}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// InitializationError is returned when the client cannot establish its
// connection or adapter at startup.
type InitializationError struct {
	Adapter string
	Err     error
}

// Error returns the error string.
func (e *InitializationError) Error() string {
	return fmt.Sprintf("repairdb: initialize %s adapter: %v", e.Adapter, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitializationError) Unwrap() error {
	return e.Err
}

// IsInitializationError returns true if the error is an InitializationError.
func IsInitializationError(err error) bool {
	var e *InitializationError
	return errors.As(err, &e)
}

// PanicError is returned when the engine panicked while executing a request.
// The client that produced it should be considered unusable.
type PanicError struct {
	Value any
	Stack []byte
}

// Error returns the error string.
func (e *PanicError) Error() string {
	return fmt.Sprintf("repairdb: engine panic: %v", e.Value)
}

// IsPanicError returns true if the error is a PanicError.
func IsPanicError(err error) bool {
	var e *PanicError
	return errors.As(err, &e)
}

// NotLoadedError represents an error when attempting to access a relation
// that was not eagerly loaded.
type NotLoadedError struct {
	edge string
}

// Error returns the error string.
func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("repairdb: relation %q was not loaded", e.edge)
}

// NewNotLoadedError returns a new NotLoadedError for the given relation name.
func NewNotLoadedError(edge string) *NotLoadedError {
	return &NotLoadedError{edge: edge}
}

// IsNotLoaded returns true if the error is a NotLoadedError.
func IsNotLoaded(err error) bool {
	if err == nil {
		return false
	}
	var e *NotLoadedError
	return errors.As(err, &e)
}

// RollbackError wraps an error that occurred during a transaction rollback.
type RollbackError struct {
	Err error // Original error that triggered rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("repairdb: rollback failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RollbackError) Unwrap() error {
	return e.Err
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "repairdb: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("repairdb: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}

// PrivacyError represents a privacy policy violation.
type PrivacyError struct {
	Model  string // Model name
	Action string // Action that was denied
	Err    error  // Decision returned by the policy
}

// Error returns the error string.
func (e *PrivacyError) Error() string {
	return fmt.Sprintf("repairdb: privacy denied %s on %s: %v", e.Action, e.Model, e.Err)
}

// Unwrap returns the policy decision.
func (e *PrivacyError) Unwrap() error {
	return e.Err
}

// IsPrivacyError returns true if the error is a PrivacyError.
func IsPrivacyError(err error) bool {
	if err == nil {
		return false
	}
	var e *PrivacyError
	return errors.As(err, &e)
}
