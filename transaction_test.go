package dbquery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/go-dbquery/dialect"
)

func TestTransaction_NestedScopesShareOnePhysicalTransaction(t *testing.T) {
	f := newFake(dialect.Question)
	db := New(f)
	ctx := context.Background()

	var inner int
	err := db.Transaction(ctx, func(ctx context.Context) error {
		return db.Transaction(ctx, func(ctx context.Context) error {
			inner = db.Transactions().Level()
			_, err := db.Table("users").InsertContext(ctx, Row{"name": "Ayşe"})
			return err
		})
	})
	require.NoError(t, err)

	assert.Equal(t, 2, inner)
	assert.Equal(t, []int{1, 2, 1, 0}, f.levels)
	assert.Equal(t, []string{"BEGIN", "COMMIT"}, f.physical)
	assert.Equal(t, []string{"BeginTransaction", "BeginTransaction", "Execute", "Commit", "Commit"}, f.methods())
}

func TestTransaction_ErrorRollsBackOnce(t *testing.T) {
	f := newFake(dialect.Question)
	db := New(f)
	boom := errors.New("boom")

	err := db.Transaction(context.Background(), func(ctx context.Context) error {
		return boom
	})

	if err != boom {
		t.Errorf("Transaction() error = %v, want the original error", err)
	}
	assert.Equal(t, []string{"BeginTransaction", "Rollback"}, f.methods())
	assert.Equal(t, []string{"BEGIN", "ROLLBACK"}, f.physical)
	assert.Equal(t, 0, f.level)
}

func TestTransaction_InnerErrorCollapsesNesting(t *testing.T) {
	f := newFake(dialect.Question)
	db := New(f)
	boom := errors.New("inner failed")

	err := db.Transaction(context.Background(), func(ctx context.Context) error {
		return db.Transaction(ctx, func(ctx context.Context) error {
			return boom
		})
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"BEGIN", "ROLLBACK"}, f.physical)
	assert.NotContains(t, f.methods(), "Commit")
	assert.Equal(t, 0, f.level)
}

func TestTransaction_PanicRollsBackAndRepanics(t *testing.T) {
	f := newFake(dialect.Question)
	db := New(f)

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = db.Transaction(context.Background(), func(ctx context.Context) error {
			panic("kaboom")
		})
	})
	assert.Equal(t, []string{"BeginTransaction", "Rollback"}, f.methods())
	assert.Equal(t, 0, f.level)
}

func TestTransaction_RollbackFailureIsLoggedNotReturned(t *testing.T) {
	logger, buf := bufferLogger()
	f := newFake(dialect.Question)
	f.rollbackErr = errors.New("connection lost")
	db := New(f, WithLogger(logger))
	boom := errors.New("boom")

	err := db.Transaction(context.Background(), func(ctx context.Context) error {
		return boom
	})

	assert.Equal(t, boom, err)
	assert.Contains(t, buf.String(), "transaction rollback failed")
	assert.Contains(t, buf.String(), "connection lost")
}

func TestTransaction_CommitFailure(t *testing.T) {
	f := newFake(dialect.Question)
	f.commitErr = errors.New("serialization failure")
	db := New(f)

	err := db.Transaction(context.Background(), func(ctx context.Context) error {
		return nil
	})

	assert.EqualError(t, err, "serialization failure")
	assert.Equal(t, []string{"BeginTransaction", "Commit", "Rollback"}, f.methods())
	assert.Equal(t, 0, f.level)
}

func TestTransaction_BeginFailureSkipsFn(t *testing.T) {
	f := newFake(dialect.Question)
	f.beginErr = errors.New("too many connections")
	db := New(f)

	called := false
	err := db.Transaction(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})

	assert.EqualError(t, err, "too many connections")
	assert.False(t, called)
	assert.Equal(t, []string{"BeginTransaction"}, f.methods())
}

func TestTransaction_ManualPrimitives(t *testing.T) {
	f := newFake(dialect.Question)
	db := New(f)
	ctx := context.Background()

	require.NoError(t, db.BeginTransaction(ctx))
	require.NoError(t, db.BeginTransaction(ctx))
	assert.Equal(t, 2, db.Transactions().Level())
	require.NoError(t, db.Commit(ctx))
	require.NoError(t, db.Rollback(ctx))

	assert.Equal(t, 0, db.Transactions().Level())
	assert.Equal(t, []string{"BEGIN", "ROLLBACK"}, f.physical)
}
