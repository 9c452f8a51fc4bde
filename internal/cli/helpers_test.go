package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlwhere/internal/testutil"
)

const testTraceID = "0190163d-8694-739b-aea5-966c26f8ad91"

const peopleSpecs = `package filters

filter: adults: {
	table:       "person"
	description: "Everyone aged 30"
	where: return: boolean: binary: {
		left: property: "age"
		op: "=="
		right: constant: 30
	}
}

filter: fredOrMark: {
	table: "person"
	where: return: boolean: binary: {
		left: binary: {
			left: property: "name"
			op: "=="
			right: constant: "Fred"
		}
		op: "||"
		right: binary: {
			left: property: "name"
			op: "=="
			right: constant: "Mark"
		}
	}
}
`

const unsupportedSpecs = `package filters

filter: lowered: {
	table: "person"
	where: return: call: {
		name: "lower"
		args: [{property: "name"}]
	}
}
`

var personSetup = []string{
	"CREATE TABLE person (name text, age integer, email text);",
	"INSERT INTO person VALUES ('Fred', 30, 'fred@email.com');",
	"INSERT INTO person VALUES ('Mark', 20, 'mark@email.com');",
	"INSERT INTO person VALUES ('Mary', 30, NULL);",
}

// testResponse mirrors CLIResponse with the payload left undecoded.
type testResponse struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Error   *CLIError       `json:"error"`
	TraceID string          `json:"trace_id"`
}

// writeSpecs writes CUE files into a fresh directory and returns it.
func writeSpecs(t *testing.T, files map[string]string) string {
	t.Helper()
	return testutil.WriteFiles(t, files)
}

// writePeopleDB creates a SQLite file holding the person table.
func writePeopleDB(t *testing.T) string {
	t.Helper()
	return testutil.SeedDB(t, personSetup)
}

func testOptions(format string) *RootOptions {
	return &RootOptions{
		Format:   format,
		TraceIDs: testutil.NewFixedTraceIDGenerator(testTraceID),
	}
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodeResponse(t *testing.T, out string) testResponse {
	t.Helper()
	var resp testResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}
