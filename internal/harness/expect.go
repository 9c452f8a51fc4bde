package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/sqlwhere/internal/ir"
	"github.com/roach88/sqlwhere/internal/store"
	"github.com/roach88/sqlwhere/internal/where"
)

// checkLowerError evaluates a lowering failure against expect.error.
func checkLowerError(result *Result, expect Expect, err error) {
	if expect.Error == "" {
		result.AddError("lowering failed: %v", err)
		return
	}
	if !errors.Is(err, where.ErrUnsupportedExpression) {
		result.AddError("expected unsupported expression error, got %v", err)
		return
	}
	if !strings.Contains(err.Error(), expect.Error) {
		result.AddError("expected error containing %q, got %q", expect.Error, err.Error())
	}
}

// checkClause compares clause text and parameters.
func checkClause(result *Result, expect Expect, clause where.Clause) {
	if expect.Text != nil && *expect.Text != clause.Text {
		result.AddError("text: expected %q, got %q", *expect.Text, clause.Text)
	}

	if expect.Params == nil {
		return
	}
	if len(expect.Params) != len(clause.Params) {
		result.AddError("params: expected %d, got %d (%s)", len(expect.Params), len(clause.Params), formatParams(clause.Params))
		return
	}
	for i, want := range expect.Params {
		if !valuesEqual(want, clause.Params[i]) {
			result.AddError("params[%d]: expected %v (type %T), got %s", i, want, want, ir.SQLLiteral(clause.Params[i]))
		}
	}
}

// checkRows compares selected rows against expect.count and expect.rows.
func checkRows(result *Result, expect Expect, rows []store.Row) {
	if expect.Count != nil && *expect.Count != len(rows) {
		result.AddError("count: expected %d, got %d", *expect.Count, len(rows))
	}

	if expect.Rows == nil {
		return
	}
	if len(expect.Rows) != len(rows) {
		result.AddError("rows: expected %d, got %d", len(expect.Rows), len(rows))
		return
	}
	for i, want := range expect.Rows {
		// Subset semantics - only check columns listed in the expectation
		for col, wantVal := range want {
			got, ok := rows[i][col]
			if !ok {
				result.AddError("rows[%d]: column %q not present in result", i, col)
				continue
			}
			if !valuesEqual(wantVal, got) {
				result.AddError("rows[%d].%s: expected %v (type %T), got %v (type %T)", i, col, wantVal, wantVal, got, got)
			}
		}
	}
}

// valuesEqual compares an expected YAML value with an actual parameter or
// column value. Both sides are converted to literals, so YAML int matches
// SQLite int64 and a Literal matches its Go form.
func valuesEqual(expected, actual any) bool {
	want, err := toLiteral(expected)
	if err != nil {
		return false
	}
	got, err := toLiteral(actual)
	if err != nil {
		return false
	}
	return want == got
}

func toLiteral(v any) (ir.Literal, error) {
	if l, ok := v.(ir.Literal); ok {
		return l, nil
	}
	return ir.FromGo(v)
}

func formatParams(params []ir.Literal) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = ir.SQLLiteral(p)
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}
