package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlwhere/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	LogFormat  string // "json" | "text"
	ConfigPath string

	// DB is the database path resolved from the config file or
	// SQLWHERE_DB. Commands with their own --db flag prefer the flag.
	DB string

	// TraceIDs generates response trace IDs. Nil means UUIDv7.
	TraceIDs TraceIDGenerator
}

func (o *RootOptions) traceIDs() TraceIDGenerator {
	if o.TraceIDs == nil {
		return UUIDv7Generator{}
	}
	return o.TraceIDs
}

// ValidFormats defines the allowed output formats.
var ValidFormats = config.ValidFormats

// NewRootCommand creates the root command for the sqlwhere CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sqlwhere",
		Short: "sqlwhere - filter expressions to SQL WHERE clauses",
		Long: `Lower filter expression trees declared in CUE into parameterized SQL
WHERE clauses, run them against SQLite, and check them with YAML scenarios.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Flags set on the command line win over config file and env
			cfg, err := config.Load(opts.ConfigPath, cmd.Flags())
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			opts.apply(cfg)
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "text", "log format on stderr (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (yaml, json or toml)")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// apply copies resolved configuration into the options.
func (o *RootOptions) apply(cfg config.Config) {
	o.Verbose = cfg.Verbose
	o.Format = cfg.Format
	o.LogFormat = cfg.LogFormat
	o.DB = cfg.DB
}

// newLogger builds the process logger. Debug output is enabled by verbose.
func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}
