package backend

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/go-dbquery/dialect"
)

// newMock connects a backend of dialect d over sqlmock and returns the log
// buffer its errors are written to.
func newMock(t *testing.T, d dialect.Dialect) (Backend, sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	b, err := OpenDB(d, db, WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, b.Connect(context.Background()))
	return b, mock, &buf
}

func TestOpenDB_UnsupportedDialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = OpenDB(dialect.Dialect{Name: "oracle"}, db)
	assert.ErrorIs(t, err, ErrUnsupportedDialect)
}

func TestBackend_NotConnected(t *testing.T) {
	ctx := context.Background()
	b := NewSQLite(SQLiteConfig{})

	_, err := b.Execute(ctx, "SELECT 1", nil)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, b.BeginTransaction(ctx), ErrNotConnected)
	assert.Equal(t, 0, b.TransactionLevel())
	assert.NoError(t, b.Disconnect(ctx))
}

func TestBackend_NestedCommit_OnePhysicalTransaction(t *testing.T) {
	for _, d := range []dialect.Dialect{dialect.SQLite, dialect.MySQL, dialect.PostgreSQL} {
		t.Run(d.Name, func(t *testing.T) {
			ctx := context.Background()
			b, mock, _ := newMock(t, d)

			mock.ExpectBegin()
			mock.ExpectExec("INSERT INTO t (a) VALUES (1)").WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectCommit()

			require.NoError(t, b.BeginTransaction(ctx))
			assert.Equal(t, 1, b.TransactionLevel())
			require.NoError(t, b.BeginTransaction(ctx))
			assert.Equal(t, 2, b.TransactionLevel())

			ok, err := b.Execute(ctx, "INSERT INTO t (a) VALUES (1)", nil)
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, b.Commit(ctx))
			assert.Equal(t, 1, b.TransactionLevel())
			require.NoError(t, b.Commit(ctx))
			assert.Equal(t, 0, b.TransactionLevel())

			// commit below zero is clamped
			require.NoError(t, b.Commit(ctx))
			assert.Equal(t, 0, b.TransactionLevel())

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBackend_Rollback_CollapsesNesting(t *testing.T) {
	for _, d := range []dialect.Dialect{dialect.SQLite, dialect.MySQL, dialect.PostgreSQL} {
		t.Run(d.Name, func(t *testing.T) {
			ctx := context.Background()
			b, mock, _ := newMock(t, d)

			mock.ExpectBegin()
			mock.ExpectRollback()

			for i := 0; i < 3; i++ {
				require.NoError(t, b.BeginTransaction(ctx))
			}
			assert.Equal(t, 3, b.TransactionLevel())

			require.NoError(t, b.Rollback(ctx))
			assert.Equal(t, 0, b.TransactionLevel())

			// the outer scopes' commits no longer reach the database
			require.NoError(t, b.Commit(ctx))
			require.NoError(t, b.Commit(ctx))

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBackend_Rollback_WithoutTransaction(t *testing.T) {
	for _, d := range []dialect.Dialect{dialect.SQLite, dialect.MySQL, dialect.PostgreSQL} {
		t.Run(d.Name, func(t *testing.T) {
			b, mock, _ := newMock(t, d)

			require.NoError(t, b.Rollback(context.Background()))
			assert.Equal(t, 0, b.TransactionLevel())
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgres_RollbackFailure_RestoresAutocommit(t *testing.T) {
	ctx := context.Background()
	b, mock, _ := newMock(t, dialect.PostgreSQL)

	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("connection reset"))
	mock.ExpectExec("DELETE FROM t").WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, b.BeginTransaction(ctx))
	require.NoError(t, b.BeginTransaction(ctx))

	err := b.Rollback(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, b.TransactionLevel())

	// next statement runs outside any transaction
	ok, err := b.Execute(ctx, "DELETE FROM t", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_BeginFailure_ResetsLevel(t *testing.T) {
	ctx := context.Background()
	b, mock, _ := newMock(t, dialect.MySQL)

	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	err := b.BeginTransaction(ctx)
	require.Error(t, err)

	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "begin", qerr.Op)
	assert.Equal(t, 0, b.TransactionLevel())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_ExecuteMany(t *testing.T) {
	ctx := context.Background()
	b, mock, _ := newMock(t, dialect.SQLite)

	query := "INSERT INTO users (email, name) VALUES (?, ?)"
	prep := mock.ExpectPrepare(query).WillBeClosed()
	prep.ExpectExec().WithArgs("a@x.io", "A").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs("b@x.io", "B").WillReturnResult(sqlmock.NewResult(2, 1))

	ok, err := b.ExecuteMany(ctx, query, [][]any{{"a@x.io", "A"}, {"b@x.io", "B"}})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_ExecuteMany_Empty(t *testing.T) {
	b, mock, _ := newMock(t, dialect.MySQL)

	ok, err := b.ExecuteMany(context.Background(), "INSERT INTO t (a) VALUES (?)", nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_ExecuteMany_ClosesStatementOnError(t *testing.T) {
	ctx := context.Background()
	b, mock, buf := newMock(t, dialect.MySQL)

	query := "INSERT INTO t (a) VALUES (?)"
	prep := mock.ExpectPrepare(query).WillBeClosed()
	prep.ExpectExec().WithArgs(1).WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(1).WillReturnError(errors.New("duplicate entry"))

	ok, err := b.ExecuteMany(ctx, query, [][]any{{1}, {1}, {2}})
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "database error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_FetchAll(t *testing.T) {
	ctx := context.Background()
	b, mock, _ := newMock(t, dialect.PostgreSQL)

	query := "SELECT id, name FROM users WHERE active = $1"
	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(int64(1), []byte("alice")).
		AddRow(int64(2), nil)
	mock.ExpectQuery(query).WithArgs(1).WillReturnRows(rows).RowsWillBeClosed()

	got, err := b.FetchAll(ctx, query, []any{1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Row{"id": int64(1), "name": "alice"}, got[0])
	assert.Equal(t, Row{"id": int64(2), "name": nil}, got[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_FetchAll_NoRows(t *testing.T) {
	b, mock, _ := newMock(t, dialect.SQLite)

	mock.ExpectQuery("SELECT * FROM users").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := b.FetchAll(context.Background(), "SELECT * FROM users", nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBackend_FetchOne(t *testing.T) {
	ctx := context.Background()
	b, mock, _ := newMock(t, dialect.SQLite)

	mock.ExpectQuery("SELECT * FROM users LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)).AddRow(int64(8))).
		RowsWillBeClosed()
	mock.ExpectQuery("SELECT * FROM users WHERE id = ?").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	row, err := b.FetchOne(ctx, "SELECT * FROM users LIMIT 1", nil)
	require.NoError(t, err)
	assert.Equal(t, Row{"id": int64(7)}, row)

	row, err = b.FetchOne(ctx, "SELECT * FROM users WHERE id = ?", []any{99})
	require.NoError(t, err)
	assert.Nil(t, row)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_FetchError_ClosesRows(t *testing.T) {
	b, mock, _ := newMock(t, dialect.MySQL)

	rows := sqlmock.NewRows([]string{"id"}).
		AddRow(1).
		RowError(0, errors.New("lost connection"))
	mock.ExpectQuery("SELECT id FROM t").WillReturnRows(rows).RowsWillBeClosed()

	_, err := b.FetchAll(context.Background(), "SELECT id FROM t", nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_ExecuteError_KeepsNativeError(t *testing.T) {
	ctx := context.Background()
	b, mock, buf := newMock(t, dialect.PostgreSQL)

	query := "INSERT INTO users (email) VALUES ($1)"
	native := &pq.Error{Code: "23505", Severity: "ERROR", Message: "duplicate key value violates unique constraint"}
	mock.ExpectExec(query).WithArgs("a@x.io").WillReturnError(native)

	ok, err := b.Execute(ctx, query, []any{"a@x.io"})
	require.Error(t, err)
	assert.False(t, ok)

	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "execute", qerr.Op)
	assert.Equal(t, query, qerr.Query)
	assert.Equal(t, []any{"a@x.io"}, qerr.Args)

	var pqErr *pq.Error
	require.ErrorAs(t, err, &pqErr)
	assert.Equal(t, pq.ErrorCode("23505"), pqErr.Code)

	assert.Contains(t, buf.String(), "code=23505")
	assert.Contains(t, buf.String(), "unique_violation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_LastInsertID(t *testing.T) {
	tests := []struct {
		dialect dialect.Dialect
		query   string
	}{
		{dialect.SQLite, "SELECT last_insert_rowid()"},
		{dialect.MySQL, "SELECT LAST_INSERT_ID()"},
		{dialect.PostgreSQL, "SELECT lastval()"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name, func(t *testing.T) {
			b, mock, _ := newMock(t, tt.dialect)
			mock.ExpectQuery(tt.query).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

			id, err := b.LastInsertID(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int64(42), id)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBackend_Disconnect_RollsBackOpenTransaction(t *testing.T) {
	ctx := context.Background()
	b, mock, _ := newMock(t, dialect.SQLite)

	mock.ExpectBegin()
	mock.ExpectRollback()

	require.NoError(t, b.BeginTransaction(ctx))
	require.NoError(t, b.Disconnect(ctx))
	assert.Equal(t, 0, b.TransactionLevel())

	_, err := b.Execute(ctx, "SELECT 1", nil)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_DescriptorAccessors(t *testing.T) {
	assert.Equal(t, dialect.Question, NewSQLite(SQLiteConfig{}).Placeholder())
	assert.Equal(t, dialect.Question, NewMySQL(MySQLConfig{}).Placeholder())
	assert.Equal(t, dialect.Dollar, NewPostgres(PostgresConfig{}).Placeholder())

	assert.Equal(t, "`users`", NewMySQL(MySQLConfig{}).QuoteIdentifier("users"))
	assert.Equal(t, `"users"`, NewPostgres(PostgresConfig{}).QuoteIdentifier("users"))
	assert.Equal(t, dialect.NameSQLite, NewSQLite(SQLiteConfig{}).Dialect().Name)
}

func TestBackend_Stats(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	b := newSQLite("", db, nil)
	require.NoError(t, b.Connect(ctx))

	mock.ExpectExec("DELETE FROM t").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1").WillReturnError(errors.New("boom"))

	_, _ = b.Execute(ctx, "DELETE FROM t", nil)
	_, _ = b.FetchAll(ctx, "SELECT 1", nil)

	snap := b.Stats().Snapshot()
	assert.Equal(t, int64(1), snap.TotalExecs)
	assert.Equal(t, int64(1), snap.TotalQueries)
	assert.Equal(t, int64(1), snap.Errors)
	assert.Contains(t, snap.String(), "errors=1")

	b.Stats().Reset()
	assert.Equal(t, StatsSnapshot{}, b.Stats().Snapshot())
}
