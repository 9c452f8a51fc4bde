package harness

import (
	"bytes"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Scenario defines a lowering test case: an expression tree, the clause it
// must lower to, and optionally the rows that clause must select from a
// seeded table.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Table is the table the clause is run against. Required when Expect
	// checks rows or a count.
	Table string `yaml:"table,omitempty"`

	// Setup contains SQL statements run, in order, on a fresh in-memory
	// database before the clause is executed.
	Setup []string `yaml:"setup,omitempty"`

	// Where is the expression tree, in the same node shapes as CUE filter
	// specs ({binary: {left: ..., op: ..., right: ...}} and so on).
	Where map[string]any `yaml:"where"`

	// Expect specifies the expected lowering and execution outcome.
	Expect Expect `yaml:"expect"`
}

// Expect specifies expected results. Unset fields are not checked.
type Expect struct {
	// Text is the exact expected clause text.
	Text *string `yaml:"text,omitempty"`

	// Params are the expected parameters, in placeholder order.
	// Use "params: []" to expect none.
	Params []any `yaml:"params,omitempty"`

	// Count is the expected number of selected rows.
	Count *int `yaml:"count,omitempty"`

	// Rows are the expected selected rows, in order. Each row is a subset
	// match: only listed columns are compared.
	Rows []map[string]any `yaml:"rows,omitempty"`

	// Error is a substring the lowering error must contain. When set,
	// lowering is expected to fail.
	Error string `yaml:"error,omitempty"`
}

// executes reports whether the scenario needs a database.
func (e Expect) executes() bool {
	return e.Count != nil || e.Rows != nil
}

// validIdentifier matches valid SQL identifiers (table names).
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "expected:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Where) == 0 {
		return fmt.Errorf("where is required")
	}

	if s.Expect.executes() && s.Table == "" {
		return fmt.Errorf("table is required when expect checks rows or count")
	}

	if s.Table != "" && !validIdentifier.MatchString(s.Table) {
		return fmt.Errorf("invalid table name %q: must match pattern %s", s.Table, validIdentifier.String())
	}

	if s.Expect.Count != nil && *s.Expect.Count < 0 {
		return fmt.Errorf("expect.count must be non-negative, got %d", *s.Expect.Count)
	}

	if s.Expect.Error != "" && (s.Expect.Text != nil || s.Expect.Params != nil || s.Expect.executes()) {
		return fmt.Errorf("expect.error cannot be combined with text, params, count or rows")
	}

	return nil
}
