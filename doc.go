// Package dbquery provides a fluent, database-agnostic SQL query builder for Go.
//
// Queries are written once with the universal "?" marker and run unchanged on
// SQLite, MySQL and PostgreSQL; the active backend decides how markers are
// rendered ("?" or "$1, $2, ...").
//
// # Quick Start
//
//	db, err := dbquery.Open(ctx, dbquery.Config{Driver: "sqlite", Database: "app.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
// # Select Queries
//
//	rows, err := db.Table("users").
//	    Select("id", "name", "email").
//	    Where("status", "active").
//	    Where("age", ">", 18).
//	    OrderBy("created_at", "desc").
//	    Limit(10).
//	    GetContext(ctx)
//
//	var users []User
//	err = db.Table("users").Where("status", "active").GetIntoContext(ctx, &users)
//
// # Where Clauses
//
//	qb.Where("age", ">", 18)
//	qb.WhereIn("status", []any{"active", "pending"})
//	qb.WhereBetween("created_at", start, end)
//	qb.WhereNull("deleted_at")
//
// Predicates are joined with AND. An empty WhereIn list adds nothing.
//
// # Aggregates
//
//	n, err := db.Table("users").Where("active", 1).CountContext(ctx)
//	avg, err := db.Table("orders").AvgContext(ctx, "total")
//
// # Insert, Update, Delete
//
//	ok, err := db.Table("users").InsertContext(ctx,
//	    dbquery.Row{"name": "Ayşe"},
//	    dbquery.Row{"name": "Bora"},
//	)
//
//	ok, err = db.Table("users").Where("id", 1).UpdateContext(ctx, dbquery.Row{"votes": 20})
//
//	ok, err = db.Table("users").Where("votes", "<", 5).DeleteContext(ctx)
//
// # Transactions
//
//	err := db.Transaction(ctx, func(ctx context.Context) error {
//	    // nested db.Transaction calls join the same physical transaction
//	    return nil
//	})
//
// A rollback at any depth rolls back the whole physical transaction.
//
// # Raw SQL
//
//	rows, err := db.Raw(ctx, "SELECT * FROM users WHERE name = ? AND bio LIKE '%?%'", "Ayşe")
//
// Markers inside quoted strings and backtick identifiers are left untouched.
//
// # Security
//
// dbquery protects against SQL injection through:
//   - Bound parameters for all values
//   - Table name validation
//   - Operator whitelisting
//
// Column expressions are written verbatim and must not carry user input.
//
// # Thread Safety
//
// DB and Builder instances are NOT thread-safe. Each DB owns exactly one
// physical connection; open one per goroutine.
package dbquery
