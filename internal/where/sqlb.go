package where

import (
	"strconv"
	"strings"

	"github.com/mitranim/sqlb"
)

var _ = sqlb.Expr(Clause{})

/*
AppendExpr implements `sqlb.Expr`, so a Clause can be embedded in a larger
sqlb expression:

	text, args := sqlb.Reify(
		sqlb.Str(`select * from person where`),
		clause,
	)

Positional "?" placeholders are rewritten to ordinal "$N" parameters numbered
after the args already present, so the result stays consistent with the rest
of the expression. Panics if the clause violates its invariant; use Check
first for clauses not produced by Lower.
*/
func (c Clause) AppendExpr(text []byte, args []interface{}) ([]byte, []interface{}) {
	if err := c.Check(); err != nil {
		panic(err)
	}
	params, _ := c.Args()

	bui := sqlb.Bui{Text: text, Args: args}
	bui.Str(c.ordinalText(len(bui.Args)))
	bui.Args = append(bui.Args, params...)
	return bui.Get()
}

// ordinalText returns Text with the i-th "?" replaced by "$(offset+i)"
// (1-based).
func (c Clause) ordinalText(offset int) string {
	var b strings.Builder
	b.Grow(len(c.Text) + len(c.Params))

	n := offset
	for _, r := range c.Text {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
