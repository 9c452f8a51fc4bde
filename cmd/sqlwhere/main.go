// Command sqlwhere lowers CUE filter specs to parameterized SQL WHERE
// clauses and runs them against SQLite.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/sqlwhere/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report their own errors through the formatter. Wrapped
		// errors (bad config) and cobra's own errors (flags, args) do not.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
