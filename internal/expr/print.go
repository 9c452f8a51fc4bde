package expr

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlwhere/internal/ir"
)

// Format returns a compact, single-line representation of an expression
// tree for debugging and test failure messages, for example:
//
//	(return (boolean (== name 'bob')))
//
// Format never fails; nodes of unknown type print as <%T>.
func Format(e Expr) string {
	var b strings.Builder
	format(&b, e)
	return b.String()
}

func format(b *strings.Builder, e Expr) {
	switch n := e.(type) {
	case nil:
		b.WriteString("<nil>")
	case Return:
		wrap(b, "return", n.Inner)
	case *Return:
		wrap(b, "return", n.Inner)
	case Boolean:
		wrap(b, "boolean", n.Inner)
	case *Boolean:
		wrap(b, "boolean", n.Inner)
	case Binary:
		formatBinary(b, n)
	case *Binary:
		formatBinary(b, *n)
	case Property:
		b.WriteString(n.Name)
	case *Property:
		b.WriteString(n.Name)
	case Constant:
		b.WriteString(ir.SQLLiteral(n.Literal()))
	case *Constant:
		b.WriteString(ir.SQLLiteral(n.Literal()))
	case Call:
		formatCall(b, n)
	case *Call:
		formatCall(b, *n)
	case Index:
		formatIndex(b, n)
	case *Index:
		formatIndex(b, *n)
	case Not:
		wrap(b, "not", n.Inner)
	case *Not:
		wrap(b, "not", n.Inner)
	default:
		fmt.Fprintf(b, "<%T>", e)
	}
}

func wrap(b *strings.Builder, name string, inner Expr) {
	b.WriteString("(")
	b.WriteString(name)
	b.WriteString(" ")
	format(b, inner)
	b.WriteString(")")
}

func formatBinary(b *strings.Builder, n Binary) {
	b.WriteString("(")
	b.WriteString(n.Op.Text)
	b.WriteString(" ")
	format(b, n.Left)
	b.WriteString(" ")
	format(b, n.Right)
	b.WriteString(")")
}

func formatCall(b *strings.Builder, n Call) {
	b.WriteString("(call ")
	b.WriteString(n.Name)
	for _, arg := range n.Args {
		b.WriteString(" ")
		format(b, arg)
	}
	b.WriteString(")")
}

func formatIndex(b *strings.Builder, n Index) {
	b.WriteString("(index ")
	format(b, n.Target)
	b.WriteString(" ")
	format(b, n.Index)
	b.WriteString(")")
}
