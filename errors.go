package dbquery

import (
	"errors"
	"fmt"

	"github.com/biyonik/go-dbquery/backend"
)

// Sentinel errors for go-dbquery.
// These errors can be checked using errors.Is().
var (
	// ErrNoTable is returned when a statement is rendered before Table was called.
	ErrNoTable = errors.New("dbquery: table name is required")

	// ErrInvalidLimit is returned when LIMIT is negative.
	ErrInvalidLimit = errors.New("dbquery: LIMIT value must be a non-negative integer")

	// ErrInvalidOffset is returned when OFFSET is negative.
	ErrInvalidOffset = errors.New("dbquery: OFFSET value must be a non-negative integer")

	// ErrInvalidOperator is returned when an unsupported comparison operator is used.
	ErrInvalidOperator = errors.New("dbquery: invalid SQL operator")

	// ErrInvalidIdentifier is returned when a table name contains invalid characters.
	ErrInvalidIdentifier = errors.New("dbquery: invalid SQL identifier")

	// ErrInvalidDirection is returned when ORDER BY receives something other than asc/desc.
	ErrInvalidDirection = errors.New("dbquery: invalid order direction")

	// ErrInvalidArguments is returned when Where/Having receive the wrong number of arguments.
	ErrInvalidArguments = errors.New("dbquery: invalid arguments")

	// ErrUnsupportedDriver is returned for a driver tag outside sqlite, mysql and postgresql.
	ErrUnsupportedDriver = errors.New("dbquery: unsupported database driver")

	// ErrNoBackend is returned when a builder without a backend is asked to execute.
	ErrNoBackend = errors.New("dbquery: builder has no backend")

	// ErrNoRows is returned by FirstInto when the query matches no row.
	ErrNoRows = errors.New("dbquery: no rows in result set")

	// ErrNilDestination is returned when a nil pointer is passed as scan destination.
	ErrNilDestination = errors.New("dbquery: nil destination pointer")

	// ErrInvalidDestination is returned when the destination is not a pointer to struct, map or slice.
	ErrInvalidDestination = errors.New("dbquery: destination must be a pointer to struct, map or slice")

	// ErrNotConnected is returned by the backend before Connect or after Disconnect.
	ErrNotConnected = backend.ErrNotConnected
)

// QueryError wraps a native database failure together with the statement that caused it.
type QueryError = backend.QueryError

// ConfigError, sorgu henüz çalıştırılmadan yakalanan bir yapılandırma hatasını
// temsil eder: eksik tablo, geçersiz LIMIT, bilinmeyen driver vb.
//
// errors.Is hem ilgili sentinel hatayla (ErrInvalidLimit gibi) hem de varsa
// alttaki doğrulama hatasıyla eşleşir.
type ConfigError struct {
	Field string
	Value any
	Err   error // sentinel
	Cause error // optional underlying validation error
}

func (e *ConfigError) Error() string {
	msg := e.Err.Error()
	if e.Field != "" {
		msg += fmt.Sprintf(" (%s=%v)", e.Field, e.Value)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func newConfigError(sentinel error, field string, value any, cause error) *ConfigError {
	return &ConfigError{
		Field: field,
		Value: value,
		Err:   sentinel,
		Cause: cause,
	}
}
