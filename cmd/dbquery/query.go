package main

import (
	"strings"

	"github.com/spf13/cobra"
)

// rowKeywords start statements that return a result set.
var rowKeywords = []string{"SELECT", "WITH", "PRAGMA", "SHOW", "EXPLAIN", "VALUES", "DESCRIBE"}

func newQueryCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql> [args...]",
		Short: "Run a raw statement with ? markers and print the result",
		Example: `  dbquery query --driver sqlite --database app.db "SELECT * FROM users WHERE active = ?" 1
  dbquery query "UPDATE users SET votes = votes + 1 WHERE id = ?" 7`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := opts.open(ctx, cmd)
			if err != nil {
				return err
			}
			defer db.Disconnect(ctx)

			query := args[0]
			bindings := make([]any, len(args)-1)
			for i, a := range args[1:] {
				bindings[i] = a
			}

			out := cmd.OutOrStdout()
			if returnsRows(query) {
				rows, err := db.Raw(ctx, query, bindings...)
				if err != nil {
					return err
				}
				return printRows(out, rows)
			}

			ok, err := db.RawExecute(ctx, query, bindings...)
			if err != nil {
				return err
			}
			if ok {
				success(out, "statement executed")
			} else {
				warning(out, "statement reported no success")
			}
			return nil
		},
	}
}

func returnsRows(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	first := strings.ToUpper(strings.TrimLeft(fields[0], "("))
	for _, kw := range rowKeywords {
		if first == kw {
			return true
		}
	}
	return false
}
