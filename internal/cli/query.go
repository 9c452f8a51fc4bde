package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlwhere/internal/store"
	"github.com/roach88/sqlwhere/internal/where"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	DBPath string
}

// QueryResult is the outcome of running one filter.
type QueryResult struct {
	Filter string      `json:"filter"`
	Table  string      `json:"table"`
	Text   string      `json:"text"`
	Params []any       `json:"params"`
	Count  int         `json:"count"`
	Rows   []store.Row `json:"rows"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <specs-dir> <filter>",
		Short: "Run a filter against a SQLite database",
		Long: `Lower a filter and select the matching rows of its table.

Constants are always bound as parameters of a prepared statement, never
spliced into the SQL text. The database comes from --db, the config
file or SQLWHERE_DB.

Examples:
  sqlwhere query ./filters adults --db people.db
  sqlwhere query ./filters adults --db people.db --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database path")

	return cmd
}

func runQuery(ctx context.Context, opts *QueryOptions, specsDir, filterName string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = opts.DB
	}
	if dbPath == "" {
		return outputCommandError(formatter, ErrCodeDBRequired, "no database configured: use --db or set SQLWHERE_DB", nil)
	}

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeFailFast)
	if loadResult == nil && len(loadErrors) > 0 {
		return outputLoadFailure(formatter, loadErrors[0])
	}
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	spec, ok := loadResult.Filter(filterName)
	if !ok {
		return outputCommandError(formatter, ErrCodeFilterNotFound,
			fmt.Sprintf("filter %q not found (available: %v)", filterName, loadResult.Names()), nil)
	}

	clause, err := where.Lower(spec.Where)
	if err != nil {
		return outputCommandError(formatter, ErrCodeUnsupported, (&FilterError{Filter: spec.Name, Err: err}).Error(), nil)
	}
	formatter.VerboseLog("sql: %s", store.SelectSQL(spec.Table, clause))
	formatter.VerboseLog("inline: %s", clause.Interpolate())

	db, err := store.Open(dbPath)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDBOpen, err.Error(), nil)
	}
	defer db.Close()

	rows, err := db.Select(ctx, spec.Table, clause)
	if err != nil {
		return outputCommandError(formatter, ErrCodeQueryFailed, (&FilterError{Filter: spec.Name, Err: err}).Error(), nil)
	}

	args, err := clause.Args()
	if err != nil {
		return outputCommandError(formatter, ErrCodeQueryFailed, err.Error(), nil)
	}

	result := QueryResult{
		Filter: spec.Name,
		Table:  spec.Table,
		Text:   clause.Text,
		Params: args,
		Count:  len(rows),
		Rows:   rows,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return writeRowsText(formatter.Writer, result)
}

// writeRowsText prints rows as an aligned table with sorted column headers.
func writeRowsText(w io.Writer, result QueryResult) error {
	fmt.Fprintf(w, "%s: %s\n", result.Filter, result.Text)
	fmt.Fprintf(w, "params: %s\n\n", formatArgs(result.Params))

	if len(result.Rows) > 0 {
		cols := make([]string, 0, len(result.Rows[0]))
		for col := range result.Rows[0] {
			cols = append(cols, col)
		}
		sort.Strings(cols)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for i, col := range cols {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, col)
		}
		fmt.Fprintln(tw)
		for _, row := range result.Rows {
			for i, col := range cols {
				if i > 0 {
					fmt.Fprint(tw, "\t")
				}
				fmt.Fprint(tw, formatCell(row[col]))
			}
			fmt.Fprintln(tw)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "(%d row(s))\n", result.Count)
	return nil
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}
