package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlwhere/internal/compiler"
	"github.com/roach88/sqlwhere/internal/expr"
	"github.com/roach88/sqlwhere/internal/store"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	DBPath string // check properties against this database's schema
}

// ValidationIssue is a single finding for a filter.
type ValidationIssue struct {
	Filter  string `json:"filter,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// FilterValidation is the pre-flight result for one filter.
type FilterValidation struct {
	Name      string   `json:"name"`
	Table     string   `json:"table"`
	Lowerable bool     `json:"lowerable"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool               `json:"valid"`
	Filters []FilterValidation `json:"filters,omitempty"`
	Errors  []ValidationIssue  `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Check filter specs without lowering them",
		Long: `Validate CUE filter specs without lowering them.

Reports filters whose where tree has no SQL lowering and warns about
operators that are passed through verbatim. With --db, property names
are also checked against the columns of each filter's table.

Warnings never fail the command; unlowerable filters do.

Examples:
  sqlwhere validate ./filters
  sqlwhere validate ./filters --db people.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite database to check columns against")

	return cmd
}

func runValidate(ctx context.Context, opts *ValidateOptions, specsDir string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Use shared loader with fail-fast mode for validation
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeFailFast)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		return outputLoadFailure(formatter, loadErrors[0])
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	if len(loadErrors) > 0 {
		issues := make([]ValidationIssue, len(loadErrors))
		for i, err := range loadErrors {
			issues[i] = issueFromError(err)
		}
		return outputValidationErrors(formatter, ValidationResult{Errors: issues})
	}

	var db *store.Store
	if path := opts.dbPath(); path != "" {
		var err error
		db, err = store.Open(path)
		if err != nil {
			return outputCommandError(formatter, ErrCodeDBOpen, err.Error(), nil)
		}
		defer db.Close()
	}

	result := validateFilters(ctx, loadResult.Filters, db, formatter)
	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// dbPath prefers --db over the configured database.
func (o *ValidateOptions) dbPath() string {
	if o.DBPath != "" {
		return o.DBPath
	}
	return o.DB
}

// validateFilters runs expr.Validate over every filter. When db is not
// nil, properties are checked against the columns of each filter's table.
func validateFilters(ctx context.Context, filters []compiler.FilterSpec, db *store.Store, formatter *OutputFormatter) ValidationResult {
	result := ValidationResult{
		Valid:   true,
		Filters: make([]FilterValidation, 0, len(filters)),
	}

	for _, spec := range filters {
		formatter.VerboseLog("Validating filter: %s", spec.Name)

		var validateOpts []expr.ValidateOption
		if db != nil {
			cols, err := db.Columns(ctx, spec.Table)
			if err != nil {
				result.Valid = false
				result.Errors = append(result.Errors, ValidationIssue{
					Filter:  spec.Name,
					Code:    ErrCodeFilterTable,
					Message: err.Error(),
				})
				continue
			}
			validateOpts = append(validateOpts, expr.WithColumns(cols))
		}

		v := expr.Validate(spec.Where, validateOpts...)
		result.Filters = append(result.Filters, FilterValidation{
			Name:      spec.Name,
			Table:     spec.Table,
			Lowerable: v.Lowerable,
			Warnings:  v.Warnings,
		})

		if !v.Lowerable {
			result.Valid = false
			result.Errors = append(result.Errors, ValidationIssue{
				Filter:  spec.Name,
				Code:    ErrCodeUnsupported,
				Message: fmt.Sprintf("where has no SQL lowering: %s", expr.Format(spec.Where)),
			})
		}
	}

	return result
}

// issueFromError converts a load or compile error into a validation issue.
func issueFromError(err error) ValidationIssue {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		issue := ValidationIssue{Code: loadErr.Code, Message: loadErr.Message}
		if loadErr.Pos.IsValid() {
			issue.Line = loadErr.Pos.Line()
		}
		return issue
	}
	code, message := parseCompileError(err)
	return ValidationIssue{Code: code, Message: message}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ All %d filter(s) valid\n", len(result.Filters))
	writeWarnings(formatter.Writer, result.Filters)
	return nil
}

// writeWarnings lists non-fatal findings per filter.
func writeWarnings(w io.Writer, filters []FilterValidation) {
	for _, f := range filters {
		for _, warning := range f.Warnings {
			fmt.Fprintf(w, "  warning: %s: %s\n", f.Name, warning)
		}
	}
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	result.Valid = false
	errs := result.Errors

	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		if err.Filter != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Filter, err.Message)
			continue
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}
	writeWarnings(formatter.Writer, result.Filters)

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
