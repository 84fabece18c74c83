package dbquery

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/biyonik/go-dbquery/backend"
	"github.com/biyonik/go-dbquery/dialect"
)

// call is one recorded backend invocation.
type call struct {
	method   string
	query    string
	args     []any
	argsList [][]any
}

// fakeBackend records every call and simulates the collapsing nesting counter
// of the SQLite and MySQL adapters.
type fakeBackend struct {
	dialect dialect.Dialect

	calls    []call
	physical []string // BEGIN, COMMIT, ROLLBACK as they would reach the database
	levels   []int    // nesting level after each transaction primitive
	level    int

	rows   []Row
	row    Row
	lastID int64

	beginErr    error
	commitErr   error
	rollbackErr error
	execErr     error
	fetchErr    error
	execResults []bool // consumed one per Execute/ExecuteMany; true once empty
}

var _ backend.Backend = (*fakeBackend)(nil)

func newFake(p dialect.Placeholder) *fakeBackend {
	return &fakeBackend{
		dialect: dialect.Dialect{
			Name:        "fake",
			DriverName:  "fake",
			Placeholder: p,
			OpenQuote:   '"',
			CloseQuote:  '"',
		},
	}
}

func (f *fakeBackend) record(c call) {
	f.calls = append(f.calls, c)
}

func (f *fakeBackend) methods() []string {
	m := make([]string, len(f.calls))
	for i, c := range f.calls {
		m[i] = c.method
	}
	return m
}

func (f *fakeBackend) Connect(context.Context) error {
	f.record(call{method: "Connect"})
	return nil
}

func (f *fakeBackend) Disconnect(context.Context) error {
	f.record(call{method: "Disconnect"})
	return nil
}

func (f *fakeBackend) BeginTransaction(context.Context) error {
	f.record(call{method: "BeginTransaction"})
	if f.beginErr != nil {
		return f.beginErr
	}
	f.level++
	if f.level == 1 {
		f.physical = append(f.physical, "BEGIN")
	}
	f.levels = append(f.levels, f.level)
	return nil
}

func (f *fakeBackend) Commit(context.Context) error {
	f.record(call{method: "Commit"})
	if f.level > 0 {
		f.level--
	}
	if f.level == 0 {
		if f.commitErr != nil {
			f.levels = append(f.levels, f.level)
			return f.commitErr
		}
		f.physical = append(f.physical, "COMMIT")
	}
	f.levels = append(f.levels, f.level)
	return nil
}

func (f *fakeBackend) Rollback(context.Context) error {
	f.record(call{method: "Rollback"})
	if f.level > 0 {
		f.physical = append(f.physical, "ROLLBACK")
	}
	f.level = 0
	f.levels = append(f.levels, f.level)
	return f.rollbackErr
}

func (f *fakeBackend) Execute(_ context.Context, query string, args []any) (bool, error) {
	f.record(call{method: "Execute", query: query, args: args})
	if f.execErr != nil {
		return false, f.execErr
	}
	return f.nextResult(), nil
}

func (f *fakeBackend) ExecuteMany(_ context.Context, query string, argsList [][]any) (bool, error) {
	f.record(call{method: "ExecuteMany", query: query, argsList: argsList})
	if f.execErr != nil {
		return false, f.execErr
	}
	return f.nextResult(), nil
}

func (f *fakeBackend) nextResult() bool {
	if len(f.execResults) == 0 {
		return true
	}
	ok := f.execResults[0]
	f.execResults = f.execResults[1:]
	return ok
}

func (f *fakeBackend) FetchAll(_ context.Context, query string, args []any) ([]Row, error) {
	f.record(call{method: "FetchAll", query: query, args: args})
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.rows == nil {
		return []Row{}, nil
	}
	return f.rows, nil
}

func (f *fakeBackend) FetchOne(_ context.Context, query string, args []any) (Row, error) {
	f.record(call{method: "FetchOne", query: query, args: args})
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.row, nil
}

func (f *fakeBackend) LastInsertID(context.Context) (int64, error) {
	f.record(call{method: "LastInsertID"})
	return f.lastID, nil
}

func (f *fakeBackend) QuoteIdentifier(name string) string {
	return f.dialect.Quote(name)
}

func (f *fakeBackend) Placeholder() dialect.Placeholder {
	return f.dialect.Placeholder
}

func (f *fakeBackend) Dialect() dialect.Dialect {
	return f.dialect
}

func (f *fakeBackend) TransactionLevel() int {
	return f.level
}

// bufferLogger returns a text logger writing into the returned buffer.
func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
