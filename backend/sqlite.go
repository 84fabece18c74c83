package backend

import (
	"database/sql"
	"errors"

	"modernc.org/sqlite"

	"github.com/biyonik/go-dbquery/dialect"
)

// SQLiteConfig, SQLite bağlantısı için gereken tek bilgiyi taşır.
type SQLiteConfig struct {
	// Database dosya yolu veya ":memory:".
	Database string
}

// DSN, modernc.org/sqlite sürücüsüne verilecek veri kaynağıdır.
func (c SQLiteConfig) DSN() string {
	if c.Database == "" {
		return ":memory:"
	}
	return c.Database
}

// SQLite, cgo gerektirmeyen modernc.org/sqlite sürücüsü üzerinde çalışan adaptördür.
type SQLite struct {
	*core
}

var _ Backend = (*SQLite)(nil)

// NewSQLite yeni bir SQLite adaptörü oluşturur. Bağlantı Connect ile açılır.
func NewSQLite(cfg SQLiteConfig, opts ...Option) *SQLite {
	return newSQLite(cfg.DSN(), nil, opts)
}

func newSQLite(dsn string, db *sql.DB, opts []Option) *SQLite {
	return &SQLite{core: newCore(family{
		dialect:     dialect.SQLite,
		dsn:         dsn,
		lastIDQuery: "SELECT last_insert_rowid()",
		rollback:    rollbackCollapse,
		errorAttrs:  sqliteErrorAttrs,
	}, db, opts)}
}

func sqliteErrorAttrs(err error) []any {
	var e *sqlite.Error
	if errors.As(err, &e) {
		return []any{"code", e.Code()}
	}
	return nil
}
