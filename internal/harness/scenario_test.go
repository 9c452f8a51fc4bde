package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
table: person
setup:
  - CREATE TABLE person (name text)
where:
  binary:
    left: {property: name}
    op: "=="
    right: {constant: bob}
expect:
  text: "name = ?"
  params: [bob]
  count: 0
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, "person", scenario.Table)
	assert.Len(t, scenario.Setup, 1)
	require.NotNil(t, scenario.Expect.Text)
	assert.Equal(t, "name = ?", *scenario.Expect.Text)
	assert.Equal(t, []any{"bob"}, scenario.Expect.Params)
	require.NotNil(t, scenario.Expect.Count)
	assert.Equal(t, 0, *scenario.Expect.Count)

	binary, ok := scenario.Where["binary"].(map[string]any)
	require.True(t, ok, "nested nodes decode as maps")
	assert.Equal(t, "==", binary["op"])
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_Testdata(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			_, err := LoadScenario(file)
			assert.NoError(t, err)
		})
	}
}

func TestParseScenario_EmptyParamsDistinctFromUnset(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: s
description: d
where: {property: a}
expect:
  params: []
`))
	require.NoError(t, err)
	assert.NotNil(t, scenario.Expect.Params)
	assert.Empty(t, scenario.Expect.Params)

	scenario, err = ParseScenario([]byte(`
name: s
description: d
where: {property: a}
`))
	require.NoError(t, err)
	assert.Nil(t, scenario.Expect.Params)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "malformed yaml",
			yaml:    "name: [unclosed",
			wantErr: "failed to parse YAML",
		},
		{
			name: "unknown field",
			yaml: `
name: s
description: d
where: {property: a}
expected: {text: a}
`,
			wantErr: "field expected not found",
		},
		{
			name: "missing name",
			yaml: `
description: d
where: {property: a}
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			yaml: `
name: s
where: {property: a}
`,
			wantErr: "description is required",
		},
		{
			name: "missing where",
			yaml: `
name: s
description: d
`,
			wantErr: "where is required",
		},
		{
			name: "count without table",
			yaml: `
name: s
description: d
where: {property: a}
expect: {count: 1}
`,
			wantErr: "table is required",
		},
		{
			name: "bad table name",
			yaml: `
name: s
description: d
table: "person; drop table person"
where: {property: a}
`,
			wantErr: "invalid table name",
		},
		{
			name: "negative count",
			yaml: `
name: s
description: d
table: t
where: {property: a}
expect: {count: -1}
`,
			wantErr: "must be non-negative",
		},
		{
			name: "error with text",
			yaml: `
name: s
description: d
where: {property: a}
expect: {error: unsupported, text: a}
`,
			wantErr: "cannot be combined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
