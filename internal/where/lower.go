package where

import (
	"strings"

	"github.com/roach88/sqlwhere/internal/expr"
	"github.com/roach88/sqlwhere/internal/ir"
)

// Lower converts a filter expression tree to a parameterized WHERE clause.
//
// The tree is walked once, depth-first and left to right:
//   - Return and Boolean contribute no text of their own
//   - Binary renders as "<left> <op> <right>", never parenthesized
//   - Property renders its name verbatim
//   - Constant renders as "?" and appends its value to Params
//
// Any other node fails the whole call with an *UnsupportedExpressionError;
// no partial clause is returned.
//
// CRITICAL: Values are NEVER interpolated - always "?" placeholders.
func Lower(e expr.Expr) (Clause, error) {
	var l lowerer
	if err := l.lower(e); err != nil {
		return Clause{}, err
	}
	return Clause{Text: l.text.String(), Params: l.params}, nil
}

// MustLower is the same as Lower except that it panics on error.
func MustLower(e expr.Expr) Clause {
	c, err := Lower(e)
	if err != nil {
		panic(err)
	}
	return c
}

// lowerer owns the accumulators of a single Lower call.
// It is never shared between calls.
type lowerer struct {
	text   strings.Builder
	params []ir.Literal
}

func (l *lowerer) lower(e expr.Expr) error {
	switch n := e.(type) {
	case expr.Return:
		return l.lower(n.Inner)
	case *expr.Return:
		return l.lower(n.Inner)
	case expr.Boolean:
		return l.lower(n.Inner)
	case *expr.Boolean:
		return l.lower(n.Inner)
	case expr.Binary:
		return l.lowerBinary(n)
	case *expr.Binary:
		return l.lowerBinary(*n)
	case expr.Property:
		l.text.WriteString(n.Name)
		return nil
	case *expr.Property:
		l.text.WriteString(n.Name)
		return nil
	case expr.Constant:
		l.lowerConstant(n)
		return nil
	case *expr.Constant:
		l.lowerConstant(*n)
		return nil
	default:
		// Includes nil and every node kind without a WHERE-clause lowering.
		return &UnsupportedExpressionError{Node: e}
	}
}

func (l *lowerer) lowerBinary(b expr.Binary) error {
	if err := l.lower(b.Left); err != nil {
		return err
	}
	l.text.WriteByte(' ')
	l.text.WriteString(OperatorSQL(b.Op))
	l.text.WriteByte(' ')
	return l.lower(b.Right)
}

// lowerConstant emits the placeholder and its parameter together so that
// placeholder and parameter counts can never diverge.
func (l *lowerer) lowerConstant(c expr.Constant) {
	l.text.WriteByte('?')
	l.params = append(l.params, c.Literal())
}
