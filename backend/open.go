package backend

import (
	"database/sql"
	"fmt"

	"github.com/biyonik/go-dbquery/dialect"
)

// OpenDB, var olan bir *sql.DB havuzu üzerinde d ailesinin adaptörünü kurar.
// Havuz çağırana aittir; Disconnect onu kapatmaz. Connect havuzu tek
// bağlantıyla sınırlar.
//
//	db, mock, _ := sqlmock.New()
//	b, _ := backend.OpenDB(dialect.PostgreSQL, db)
func OpenDB(d dialect.Dialect, db *sql.DB, opts ...Option) (Backend, error) {
	switch d.Name {
	case dialect.NameSQLite:
		return newSQLite("", db, opts), nil
	case dialect.NameMySQL:
		return newMySQL("", db, opts), nil
	case dialect.NamePostgreSQL:
		return newPostgres("", db, opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDialect, d.Name)
	}
}
