package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/sqlwhere/internal/compiler"
	"github.com/roach88/sqlwhere/internal/store"
	"github.com/roach88/sqlwhere/internal/where"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Passed indicates overall success: every expectation held.
	Passed bool

	// Clause is the lowered clause. Zero if lowering failed.
	Clause where.Clause

	// LowerErr is the lowering error, if any.
	LowerErr error

	// Rows are the selected rows. Nil unless the scenario executed the
	// clause.
	Rows []store.Row

	// Errors contains expectation failure messages.
	// Empty if Passed is true.
	Errors []string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Passed: true,
		Errors: []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Passed = false
}

// Harness runs scenarios. The zero value is not usable; use New.
type Harness struct {
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger. Defaults to a logger that discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// New creates a Harness.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default Harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run executes a scenario and returns the result.
//
// Each scenario that executes SQL runs in a fresh in-memory database for
// isolation.
//
// Execution flow:
// 1. Compile the where tree
// 2. Lower it, checking expect.error
// 3. Check expect.text and expect.params
// 4. Seed the database and select, checking expect.count and expect.rows
//
// The returned error reports a broken scenario (a where tree that does not
// compile, failing setup SQL); failed expectations are reported in Result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	log := h.logger.With("scenario", scenario.Name)

	tree, err := compiler.CompileGo(scenario.Where)
	if err != nil {
		return nil, fmt.Errorf("compile where: %w", err)
	}

	result := NewResult()

	clause, err := where.Lower(tree)
	if err != nil {
		result.LowerErr = err
		log.Debug("lowering failed", "error", err)
		checkLowerError(result, scenario.Expect, err)
		return result, nil
	}
	result.Clause = clause
	log.Debug("lowered", "text", clause.Text, "params", len(clause.Params))

	if scenario.Expect.Error != "" {
		result.AddError("expected lowering error containing %q, got clause %q", scenario.Expect.Error, clause.Text)
		return result, nil
	}

	checkClause(result, scenario.Expect, clause)

	if scenario.Table == "" {
		return result, nil
	}

	rows, err := h.execute(ctx, scenario, clause)
	if err != nil {
		return nil, err
	}
	result.Rows = rows
	log.Debug("executed", "table", scenario.Table, "rows", len(rows))

	checkRows(result, scenario.Expect, rows)

	return result, nil
}

// execute seeds a fresh in-memory database and selects with clause.
func (h *Harness) execute(ctx context.Context, scenario *Scenario, clause where.Clause) ([]store.Row, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.ExecAll(ctx, scenario.Setup); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	rows, err := st.Select(ctx, scenario.Table, clause)
	if err != nil {
		return nil, fmt.Errorf("failed to execute clause: %w", err)
	}
	return rows, nil
}
