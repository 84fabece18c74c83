package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	dbquery "github.com/biyonik/go-dbquery"
	"github.com/biyonik/go-dbquery/internal/config"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	mutedColor   = color.New(color.FgHiBlack)
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	envFile string
	debug   bool
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "dbquery",
		Short:         "Fluent SQL query builder demo and tooling",
		Version:       dbquery.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("driver", "", "database driver: sqlite, mysql or postgresql (env DB_CONNECTION)")
	flags.String("database", "", "database name or SQLite path (env DB_DATABASE)")
	flags.String("host", "", "database host (env DB_HOST)")
	flags.Int("port", 0, "database port (env DB_PORT)")
	flags.String("user", "", "database user (env DB_USERNAME)")
	flags.String("password", "", "database password (env DB_PASSWORD)")
	flags.StringVar(&opts.envFile, "env-file", "", "read settings from this .env file (default .env if present)")
	flags.BoolVar(&opts.debug, "debug", false, "log every statement")

	root.AddCommand(
		newDemoCommand(opts),
		newTranslateCommand(opts),
		newQueryCommand(opts),
	)
	return root
}

// loadConfig resolves the connection settings for cmd.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (dbquery.Config, error) {
	cfg, err := config.Load(config.Options{
		EnvFile: o.envFile,
		Flags:   cmd.Flags(),
	})
	if err != nil {
		return dbquery.Config{}, err
	}
	return cfg.WithDefaults()
}

// open connects using the resolved settings. Diagnostics go to stderr.
func (o *globalOptions) open(ctx context.Context, cmd *cobra.Command) (*dbquery.DB, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	mutedColor.Fprintf(cmd.ErrOrStderr(), "connecting: %s\n", cfg)
	return dbquery.Open(ctx, cfg,
		dbquery.WithLogger(o.logger(cmd.ErrOrStderr())),
		dbquery.WithDebug(o.debug),
	)
}

func (o *globalOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.debug {
		level = slog.LevelDebug
	}
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
