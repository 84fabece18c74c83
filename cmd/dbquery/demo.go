package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	dbquery "github.com/biyonik/go-dbquery"
	"github.com/biyonik/go-dbquery/dialect"
)

// schemas holds the demo DDL per family.
var schemas = map[string][]string{
	dialect.NameSQLite: {
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT,
			email TEXT,
			votes INTEGER DEFAULT 0,
			active INTEGER DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER,
			phone TEXT,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
	},
	dialect.NameMySQL: {
		`CREATE TABLE IF NOT EXISTS users (
			id INT PRIMARY KEY AUTO_INCREMENT,
			name VARCHAR(255),
			email VARCHAR(255),
			votes INT DEFAULT 0,
			active INT DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id INT PRIMARY KEY AUTO_INCREMENT,
			user_id INT,
			phone VARCHAR(255),
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
	},
	dialect.NamePostgreSQL: {
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255),
			email VARCHAR(255),
			votes INT DEFAULT 0,
			active INT DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id SERIAL PRIMARY KEY,
			user_id INT REFERENCES users(id),
			phone VARCHAR(255)
		)`,
	},
}

var errDemoAbort = errors.New("demo: abort on purpose")

func newDemoCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Create sample tables and walk through the builder API",
		Long: `Create users and contacts tables on the selected database, insert sample
rows inside a transaction and run selects, joins, aggregates, an update, a
delete, a raw query and a rolled back transaction.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := opts.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer db.Disconnect(ctx)

			return runDemo(ctx, cmd.OutOrStdout(), db)
		},
	}
}

func runDemo(ctx context.Context, w io.Writer, db *dbquery.DB) error {
	for _, ddl := range schemas[db.Backend().Dialect().Name] {
		if _, err := db.RawExecute(ctx, ddl); err != nil {
			return err
		}
	}

	heading(w, "Seed")
	err := db.Transaction(ctx, func(ctx context.Context) error {
		if _, err := db.Table("users").InsertContext(ctx,
			dbquery.Row{"name": "John", "email": "john@example.com", "votes": 5},
			dbquery.Row{"name": "Jane", "email": "jane@example.com", "votes": 10},
			dbquery.Row{"name": "Bob", "email": "bob@example.com", "votes": 15, "active": 0},
		); err != nil {
			return err
		}
		_, err := db.Table("contacts").InsertContext(ctx,
			dbquery.Row{"user_id": 1, "phone": "123-456-7890"},
			dbquery.Row{"user_id": 2, "phone": "234-567-8901"},
		)
		return err
	})
	if err != nil {
		return err
	}
	success(w, "users and contacts inserted")

	heading(w, "All users")
	rows, err := db.Table("users").OrderBy("id").GetContext(ctx)
	if err != nil {
		return err
	}
	if err := printRows(w, rows); err != nil {
		return err
	}

	heading(w, "Join")
	rows, err = db.Table("users").
		Join("contacts", "users.id", "=", "contacts.user_id").
		Select("users.name", "contacts.phone").
		GetContext(ctx)
	if err != nil {
		return err
	}
	if err := printRows(w, rows); err != nil {
		return err
	}

	heading(w, "Aggregates")
	avg, err := db.Table("users").AvgContext(ctx, "votes")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "average votes: %.2f\n", avg)

	active, err := db.Table("users").Where("active", 1).CountContext(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "active users: %d\n", active)

	heading(w, "First")
	user, err := db.Table("users").Where("email", "john@example.com").FirstContext(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, user)

	heading(w, "SQL")
	query, bindings, err := db.Table("users").Where("votes", ">", 5).ToSQL()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "SQL: %s\nBindings: %v\n", query, bindings)

	heading(w, "Update")
	if _, err := db.Table("users").Where("id", 1).UpdateContext(ctx, dbquery.Row{"votes": 20}); err != nil {
		return err
	}
	user, err = db.Table("users").Where("id", 1).FirstContext(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, user)

	heading(w, "Delete")
	if _, err := db.Table("users").Where("active", 0).DeleteContext(ctx); err != nil {
		return err
	}
	total, err := db.Table("users").CountContext(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "users left: %d\n", total)

	heading(w, "Raw")
	rows, err = db.Raw(ctx, "SELECT * FROM users WHERE name = ?", "Jane")
	if err != nil {
		return err
	}
	if err := printRows(w, rows); err != nil {
		return err
	}

	heading(w, "Rollback")
	err = db.Transaction(ctx, func(ctx context.Context) error {
		if _, err := db.Table("users").InsertContext(ctx, dbquery.Row{"name": "Ghost"}); err != nil {
			return err
		}
		return errDemoAbort
	})
	if err != nil && !errors.Is(err, errDemoAbort) {
		return err
	}
	ghost, err := db.Table("users").Where("name", "Ghost").ExistsContext(ctx)
	if err != nil {
		return err
	}
	if ghost {
		warning(w, "rolled back row is still visible")
	} else {
		success(w, "transaction rolled back, no ghost user")
	}
	return nil
}
