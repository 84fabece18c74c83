package backend

import (
	"database/sql"
	"errors"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"

	"github.com/biyonik/go-dbquery/dialect"
)

// MySQLConfig, MySQL/MariaDB bağlantı bilgilerini taşır.
type MySQLConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// DSN, go-sql-driver/mysql formatında bağlantı dizesini üretir.
// Tarih/saat kolonlarının time.Time olarak okunması için parseTime açıktır.
func (c MySQLConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	cfg.DBName = c.Database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// MySQL, go-sql-driver/mysql üzerinde çalışan adaptördür.
type MySQL struct {
	*core
}

var _ Backend = (*MySQL)(nil)

// NewMySQL yeni bir MySQL adaptörü oluşturur. Bağlantı Connect ile açılır.
func NewMySQL(cfg MySQLConfig, opts ...Option) *MySQL {
	return newMySQL(cfg.DSN(), nil, opts)
}

func newMySQL(dsn string, db *sql.DB, opts []Option) *MySQL {
	return &MySQL{core: newCore(family{
		dialect:     dialect.MySQL,
		dsn:         dsn,
		lastIDQuery: "SELECT LAST_INSERT_ID()",
		rollback:    rollbackCollapse,
		errorAttrs:  mysqlErrorAttrs,
	}, db, opts)}
}

func mysqlErrorAttrs(err error) []any {
	var e *mysql.MySQLError
	if errors.As(err, &e) {
		return []any{"code", e.Number, "sqlstate", string(e.SQLState[:])}
	}
	return nil
}
