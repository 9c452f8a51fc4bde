package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlwhere/internal/compiler"
	"github.com/roach88/sqlwhere/internal/ir"
	"github.com/roach88/sqlwhere/internal/where"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Filter string // compile only this filter
	Output string // output file path
}

// CompiledFilter is a filter lowered to a WHERE clause.
type CompiledFilter struct {
	Name         string `json:"name"`
	Table        string `json:"table"`
	Description  string `json:"description,omitempty"`
	Text         string `json:"text"`
	Params       []any  `json:"params"`
	Interpolated string `json:"interpolated"`
	Fingerprint  string `json:"fingerprint"`
}

// CompilationResult holds the compiled filters.
type CompilationResult struct {
	Filters []CompiledFilter `json:"filters"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Lower CUE filter specs to SQL WHERE clauses",
		Long: `Compile the CUE filter specs in a directory and lower each filter's
where tree to a parameterized SQL WHERE clause.

Every constant becomes a "?" placeholder with its value in params, in
placeholder order. Filters using nodes with no SQL lowering (function
calls, indexing, negation) fail the command.

Examples:
  sqlwhere compile ./filters
  sqlwhere compile ./filters --filter adults
  sqlwhere compile ./filters --format json -o clauses.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "compile only the named filter")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	// Use shared loader with collect-all mode
	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		return outputLoadFailure(formatter, loadErrors[0])
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)

	// Handle compilation errors
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	filters := loadResult.Filters
	if opts.Filter != "" {
		spec, ok := loadResult.Filter(opts.Filter)
		if !ok {
			return outputCommandError(formatter, ErrCodeFilterNotFound,
				fmt.Sprintf("filter %q not found (available: %v)", opts.Filter, loadResult.Names()), nil)
		}
		filters = []compiler.FilterSpec{spec}
	}

	result := &CompilationResult{Filters: make([]CompiledFilter, 0, len(filters))}
	var lowerErrors []error
	for _, spec := range filters {
		formatter.VerboseLog("Lowering filter: %s", spec.Name)

		compiled, err := lowerFilter(spec)
		if err != nil {
			lowerErrors = append(lowerErrors, err)
			continue
		}
		slog.Debug("filter lowered",
			"filter", spec.Name,
			"table", spec.Table,
			"params", len(compiled.Params),
		)
		result.Filters = append(result.Filters, compiled)
	}

	if len(lowerErrors) > 0 {
		return outputCompileErrors(formatter, lowerErrors)
	}

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// lowerFilter lowers one filter, wrapping failures with the filter name.
func lowerFilter(spec compiler.FilterSpec) (CompiledFilter, error) {
	clause, err := where.Lower(spec.Where)
	if err != nil {
		return CompiledFilter{}, &FilterError{Filter: spec.Name, Err: err}
	}

	args, err := clause.Args()
	if err != nil {
		return CompiledFilter{}, &FilterError{Filter: spec.Name, Err: err}
	}
	fingerprint, err := clause.Fingerprint()
	if err != nil {
		return CompiledFilter{}, &FilterError{Filter: spec.Name, Err: err}
	}

	return CompiledFilter{
		Name:         spec.Name,
		Table:        spec.Table,
		Description:  spec.Description,
		Text:         clause.Text,
		Params:       args,
		Interpolated: clause.Interpolate(),
		Fingerprint:  fingerprint,
	}, nil
}

// FilterError reports a filter that could not be lowered or executed.
type FilterError struct {
	Filter string
	Err    error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("filter %s: %v", e.Filter, e.Err)
}

func (e *FilterError) Unwrap() error {
	return e.Err
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d filter(s)\n\n", len(result.Filters))

	for _, f := range result.Filters {
		fmt.Fprintf(formatter.Writer, "%s (%s)\n", f.Name, f.Table)
		if f.Description != "" {
			fmt.Fprintf(formatter.Writer, "  %s\n", f.Description)
		}
		fmt.Fprintf(formatter.Writer, "  where:  %s\n", f.Text)
		fmt.Fprintf(formatter.Writer, "  params: %s\n", formatArgs(f.Params))
		if formatter.Verbose {
			fmt.Fprintf(formatter.Writer, "  inline: %s\n", f.Interpolated)
		}
		fmt.Fprintln(formatter.Writer)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote compiled filters to %s\n", outputFile)
	}

	return nil
}

// formatArgs renders driver values the way they would appear inline.
func formatArgs(args []any) string {
	out := "["
	for i, arg := range args {
		if i > 0 {
			out += ", "
		}
		lit, err := ir.FromGo(arg)
		if err != nil {
			out += fmt.Sprint(arg)
			continue
		}
		out += ir.SQLLiteral(lit)
	}
	return out + "]"
}

// outputLoadFailure outputs an error that prevented loading the specs at all.
func outputLoadFailure(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return outputCommandError(formatter, loadErr.Code, loadErr.Message, nil)
	}
	return outputCommandError(formatter, ErrCodeGeneric, err.Error(), nil)
}

// outputCommandError outputs a single error.
func outputCommandError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Spec and lowering errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		// JSON format - use CLIResponse with first error
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{
				Code:    code,
				Message: message,
			}
		}

		if err := formatter.encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}); err != nil {
			return err
		}

		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	if errors.Is(err, where.ErrUnsupportedExpression) {
		return ErrCodeUnsupported, err.Error()
	}
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeResultToFile writes the compilation result to a file as indented JSON.
func writeResultToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
