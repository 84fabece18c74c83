package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cast"

	dbquery "github.com/biyonik/go-dbquery"
)

func heading(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w)
	headingColor.Fprintf(w, "== "+format+" ==\n", args...)
}

func success(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, "✓ "+format+"\n", args...)
}

func warning(w io.Writer, format string, args ...any) {
	warningColor.Fprintf(w, "⚠ "+format+"\n", args...)
}

// printRows renders rows as a table. Columns are sorted by name.
func printRows(w io.Writer, rows []dbquery.Row) error {
	if len(rows) == 0 {
		mutedColor.Fprintln(w, "(no rows)")
		return nil
	}

	seen := map[string]bool{}
	var columns []string
	for _, row := range rows {
		for col := range row {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}
	sort.Strings(columns)

	data := pterm.TableData{columns}
	for _, row := range rows {
		line := make([]string, len(columns))
		for i, col := range columns {
			v, ok := row[col]
			switch {
			case !ok:
			case v == nil:
				line[i] = "NULL"
			default:
				line[i] = cast.ToString(v)
			}
		}
		data = append(data, line)
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	mutedColor.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}
