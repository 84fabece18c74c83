package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when an operation needs a connection that
	// Connect has not opened yet or Disconnect has already closed.
	ErrNotConnected = errors.New("dbquery: backend not connected")

	// ErrUnsupportedDialect is returned by OpenDB for a dialect it has no adapter for.
	ErrUnsupportedDialect = errors.New("dbquery: unsupported dialect")
)

// QueryError, bir fiziksel veritabanı hatasını çalıştırılan ifade ile birlikte taşır.
// Unwrap sürücünün kendi hatasını döndürdüğü için errors.Is/As ile
// *mysql.MySQLError veya *pq.Error gibi tiplere erişim korunur.
type QueryError struct {
	Op    string
	Query string
	Args  []any
	Err   error
}

func (e *QueryError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("dbquery: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("dbquery: %s %q: %v", e.Op, e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
