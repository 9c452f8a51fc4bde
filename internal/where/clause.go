package where

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlwhere/internal/ir"
)

// Clause is a lowered WHERE clause: SQL text with one "?" placeholder per
// constant, plus the constants in placeholder order.
//
// Invariant: strings.Count(Text, "?") == len(Params), and the i-th "?" in
// Text binds Params[i]. Lower always produces clauses that satisfy it; Check
// verifies it for clauses built any other way.
type Clause struct {
	Text   string
	Params []ir.Literal
}

// String returns the clause text.
func (c Clause) String() string { return c.Text }

// Placeholders returns the number of "?" placeholders in the text.
func (c Clause) Placeholders() int {
	return strings.Count(c.Text, "?")
}

// Check verifies the placeholder invariant and that every parameter can be
// bound by a database/sql driver.
func (c Clause) Check() error {
	if n := c.Placeholders(); n != len(c.Params) {
		return fmt.Errorf("clause %q has %d placeholder(s) but %d parameter(s)", c.Text, n, len(c.Params))
	}
	if _, err := c.Args(); err != nil {
		return err
	}
	return nil
}

// Args converts Params to driver values, in order, for use with
// database/sql:
//
//	args, err := clause.Args()
//	rows, err := db.QueryContext(ctx, "SELECT * FROM person WHERE "+clause.Text, args...)
func (c Clause) Args() ([]any, error) {
	args := make([]any, len(c.Params))
	for i, p := range c.Params {
		v, err := ir.Param(p)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		args[i] = v
	}
	return args, nil
}

// Interpolate returns the clause with every placeholder replaced by the
// inline SQL form of its parameter:
//
//	Clause{Text: "name = ?", Params: []ir.Literal{ir.String("bob")}}.Interpolate()
//	// name = 'bob'
//
// The result is meant for logs and verbose output only. Never execute it.
// Placeholders without a parameter are left as "?".
func (c Clause) Interpolate() string {
	var b strings.Builder
	b.Grow(len(c.Text))

	next := 0
	for _, r := range c.Text {
		if r == '?' && next < len(c.Params) {
			b.WriteString(ir.SQLLiteral(c.Params[next]))
			next++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Fingerprint returns the content-addressed ID of the clause (see
// ir.ClauseID). Equal clauses always share a fingerprint.
func (c Clause) Fingerprint() (string, error) {
	return ir.ClauseID(c.Text, c.Params)
}
