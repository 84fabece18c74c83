package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/biyonik/go-dbquery/dialect"
)

func newTranslateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <sql>",
		Short: "Rewrite universal ? markers into the driver's native markers",
		Long: `Rewrite every universal ? marker of the given statement into the native
marker of the selected driver. Markers inside quoted strings and backtick
identifiers are left untouched. No connection is opened.`,
		Example: `  dbquery translate --driver postgresql "SELECT * FROM users WHERE id = ? AND bio LIKE '%?%'"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			d, err := cfg.Dialect()
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			fmt.Fprintln(cmd.OutOrStdout(), d.Translate(query))
			mutedColor.Fprintf(cmd.ErrOrStderr(), "%s: %d parameter(s), native marker %s\n",
				d.Name, dialect.CountMarkers(query), d.Placeholder)
			return nil
		},
	}
}
