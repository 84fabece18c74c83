package backend

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/biyonik/go-dbquery/dialect"
)

// PostgresConfig, PostgreSQL bağlantı bilgilerini taşır.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// DSN, lib/pq'nun anladığı "anahtar=değer" formatında bağlantı dizesini üretir.
func (c PostgresConfig) DSN() string {
	parts := []string{
		"host=" + pqValue(c.Host),
		"port=" + strconv.Itoa(c.Port),
		"user=" + pqValue(c.User),
	}
	if c.Password != "" {
		parts = append(parts, "password="+pqValue(c.Password))
	}
	if c.Database != "" {
		parts = append(parts, "dbname="+pqValue(c.Database))
	}
	parts = append(parts, "sslmode=disable")
	return strings.Join(parts, " ")
}

// pqValue quotes v when it is empty or holds spaces, quotes or backslashes.
func pqValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// Postgres, lib/pq üzerinde çalışan adaptördür. Rollback yalnızca açık bir
// transaction varken gönderilir; ardından bağlantı autocommit'e döner.
type Postgres struct {
	*core
}

var _ Backend = (*Postgres)(nil)

// NewPostgres yeni bir PostgreSQL adaptörü oluşturur. Bağlantı Connect ile açılır.
func NewPostgres(cfg PostgresConfig, opts ...Option) *Postgres {
	return newPostgres(cfg.DSN(), nil, opts)
}

func newPostgres(dsn string, db *sql.DB, opts []Option) *Postgres {
	return &Postgres{core: newCore(family{
		dialect:     dialect.PostgreSQL,
		dsn:         dsn,
		lastIDQuery: "SELECT lastval()",
		rollback:    rollbackIfActive,
		errorAttrs:  postgresErrorAttrs,
	}, db, opts)}
}

func postgresErrorAttrs(err error) []any {
	var e *pq.Error
	if errors.As(err, &e) {
		return []any{"code", string(e.Code), "condition", e.Code.Name(), "severity", e.Severity}
	}
	return nil
}
