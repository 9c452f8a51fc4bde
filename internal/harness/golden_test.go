package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenariosGolden(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name, "file name must match scenario name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Passed, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/equality.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := Snapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := Snapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestSnapshot_LowerOnly(t *testing.T) {
	result, err := Run(mustParse(t, `
name: snap
description: no rows key without a table
where: {binary: {left: {property: a}, op: "==", right: {constant: null}}}
`))
	require.NoError(t, err)

	data, err := Snapshot("snap", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"interpolated":"a = null","params":[null],"passed":true,"scenario":"snap","text":"a = ?"}`,
		string(data))
}
