package client

import (
	"errors"
	"strings"

	"github.com/repairtrack/repairdb"
	"github.com/repairtrack/repairdb/config"
)

// ErrorFormat selects how request errors are rendered.
type ErrorFormat string

// Error formats.
const (
	ErrorFormatPretty    ErrorFormat = config.FormatPretty
	ErrorFormatColorless ErrorFormat = config.FormatColorless
	ErrorFormatMinimal   ErrorFormat = config.FormatMinimal
)

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// FormattedError decorates a request error with the invocation that
// produced it. errors.Is and errors.As see through it.
type FormattedError struct {
	// Invocation is the client call, e.g. "client.user.findUniqueOrThrow()".
	Invocation string
	Err        error
	color      bool
}

// Error returns the error string.
func (e *FormattedError) Error() string {
	var sb strings.Builder
	if e.color {
		sb.WriteString(ansiRed + "Invalid " + ansiBold + "`" + e.Invocation + "`" + ansiReset + ansiRed + " invocation:" + ansiReset)
	} else {
		sb.WriteString("Invalid `" + e.Invocation + "` invocation:")
	}
	sb.WriteString("\n\n")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

// Unwrap returns the request error.
func (e *FormattedError) Unwrap() error { return e.Err }

// format wraps err per the configured error format. Minimal returns err
// unchanged.
func (f ErrorFormat) format(invocation string, err error) error {
	if err == nil || f == ErrorFormatMinimal {
		return err
	}
	var fe *FormattedError
	if errors.As(err, &fe) {
		return err
	}
	return &FormattedError{Invocation: invocation, Err: err, color: f == ErrorFormatPretty}
}

// Code returns the stable code of a known request error, or "".
func Code(err error) string {
	var ke *repairdb.KnownRequestError
	if errors.As(err, &ke) {
		return ke.Code
	}
	return ""
}
