package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sqlwhere/internal/ir"
)

// Snapshot renders a result as canonical JSON for golden comparison.
//
// Keys: scenario, passed, text, params, interpolated, rows (only when the
// clause was executed) and error (only when lowering failed).
func Snapshot(name string, result *Result) ([]byte, error) {
	snap := map[string]any{
		"scenario": name,
		"passed":   result.Passed,
	}

	if result.LowerErr != nil {
		snap["error"] = result.LowerErr.Error()
	} else {
		snap["text"] = result.Clause.Text
		snap["params"] = result.Clause.Params
		snap["interpolated"] = result.Clause.Interpolate()
	}

	if result.Rows != nil {
		rows := make([]any, len(result.Rows))
		for i, row := range result.Rows {
			rows[i] = map[string]any(row)
		}
		snap["rows"] = rows
	}

	return ir.MarshalCanonical(snap)
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's snapshot against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)

	return nil
}
