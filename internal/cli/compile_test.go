package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileValidSpecs(t *testing.T) {
	specsDir := writeSpecs(t, map[string]string{"people.cue": peopleSpecs})

	out, err := execute(NewCompileCommand(testOptions("text")), specsDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Compiled 2 filter(s)")
	assert.Contains(t, out, "adults (person)")
	assert.Contains(t, out, "  Everyone aged 30")
	assert.Contains(t, out, "  where:  age = ?")
	assert.Contains(t, out, "  params: [30]")
	assert.Contains(t, out, "  where:  name = ? or name = ?")
	assert.Contains(t, out, "  params: ['Fred', 'Mark']")
	assert.NotContains(t, out, "inline:")
}

func TestCompileVerboseShowsInterpolated(t *testing.T) {
	specsDir := writeSpecs(t, map[string]string{"people.cue": peopleSpecs})
	opts := testOptions("text")
	opts.Verbose = true

	out, err := execute(NewCompileCommand(opts), specsDir)
	require.NoError(t, err)
	assert.Contains(t, out, "  inline: name = 'Fred' or name = 'Mark'")
}

func TestCompileValidSpecsJSON(t *testing.T) {
	specsDir := writeSpecs(t, map[string]string{"people.cue": peopleSpecs})

	out, err := execute(NewCompileCommand(testOptions("json")), specsDir)
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, testTraceID, resp.TraceID)

	var result CompilationResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	require.Len(t, result.Filters, 2)

	adults := result.Filters[0]
	assert.Equal(t, "adults", adults.Name)
	assert.Equal(t, "person", adults.Table)
	assert.Equal(t, "age = ?", adults.Text)
	assert.Equal(t, []any{float64(30)}, adults.Params)
	assert.Equal(t, "age = 30", adults.Interpolated)
	assert.Len(t, adults.Fingerprint, 64)

	assert.Equal(t, "fredOrMark", result.Filters[1].Name)
	assert.Equal(t, []any{"Fred", "Mark"}, result.Filters[1].Params)
}

func TestCompileSingleFilter(t *testing.T) {
	specsDir := writeSpecs(t, map[string]string{"people.cue": peopleSpecs})

	out, err := execute(NewCompileCommand(testOptions("text")), specsDir, "--filter", "adults")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Compiled 1 filter(s)")
	assert.NotContains(t, out, "fredOrMark")
}

func TestCompileUnknownFilter(t *testing.T) {
	specsDir := writeSpecs(t, map[string]string{"people.cue": peopleSpecs})

	out, err := execute(NewCompileCommand(testOptions("json")), specsDir, "--filter", "nobody")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeFilterNotFound, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "[adults fredOrMark]")
}

func TestCompileOutputToFile(t *testing.T) {
	specsDir := writeSpecs(t, map[string]string{"people.cue": peopleSpecs})
	outputFile := filepath.Join(t.TempDir(), "compiled.json")

	out, err := execute(NewCompileCommand(testOptions("text")), specsDir, "--output", outputFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote compiled filters to "+outputFile)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result.Filters, 2)
}

func TestCompileUnsupportedFilter(t *testing.T) {
	specsDir := writeSpecs(t, map[string]string{
		"people.cue":  peopleSpecs,
		"lowered.cue": unsupportedSpecs,
	})

	out, err := execute(NewCompileCommand(testOptions("json")), specsDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnsupported, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "filter lowered:")
	assert.Contains(t, resp.Error.Message, "unsupported expression")
}

func TestCompileInvalidSpecs(t *testing.T) {
	specsDir := writeSpecs(t, map[string]string{"bad.cue": `package filters

filter: noTable: {
	where: return: property: "name"
}

filter: badConstant: {
	table: "person"
	where: return: constant: [1, 2]
}
`})

	out, err := execute(NewCompileCommand(testOptions("text")), specsDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	assert.Contains(t, out, "✗ Compilation failed")
	assert.Contains(t, out, "E101: filter.noTable: table: table is required")
	assert.Contains(t, out, "E111: filter.badConstant: where.return.constant:")
	assert.Contains(t, out, "bad.cue:")
}

func TestCompileNonexistentDir(t *testing.T) {
	out, err := execute(NewCompileCommand(testOptions("text")), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestCompileEmptyDir(t *testing.T) {
	out, err := execute(NewCompileCommand(testOptions("json")), t.TempDir())
	require.Error(t, err)

	resp := decodeResponse(t, out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNoFiles, resp.Error.Code)
}

func TestParseCompileError(t *testing.T) {
	code, msg := parseCompileError(&LoadError{Code: ErrCodeFilterTable, Message: "missing"})
	assert.Equal(t, ErrCodeFilterTable, code)
	assert.Equal(t, "missing", msg)

	code, _ = parseCompileError(os.ErrNotExist)
	assert.Equal(t, ErrCodeGeneric, code)
}

func TestFormatArgs(t *testing.T) {
	assert.Equal(t, "[]", formatArgs(nil))
	assert.Equal(t, "[1, 'it''s', null, true]", formatArgs([]any{int64(1), "it's", nil, true}))
}
