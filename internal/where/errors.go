package where

import (
	"errors"
	"fmt"

	"github.com/roach88/sqlwhere/internal/expr"
)

// ErrUnsupportedExpression is matched by every *UnsupportedExpressionError
// through errors.Is.
var ErrUnsupportedExpression = errors.New("unsupported expression")

// UnsupportedExpressionError reports a node that has no WHERE-clause
// lowering: a function call, an index, a negation, a nil child or a type
// from outside the expr package.
//
// The error is deterministic: lowering the same tree again fails the same
// way, so callers should treat it as a front-end bug rather than retry.
type UnsupportedExpressionError struct {
	// Node is the offending node (may be nil).
	Node expr.Expr
}

// Error implements the error interface.
func (e *UnsupportedExpressionError) Error() string {
	if e.Node == nil {
		return "unsupported expression: nil node"
	}
	return fmt.Sprintf("unsupported expression %T: %s", e.Node, expr.Format(e.Node))
}

// Is reports whether target is ErrUnsupportedExpression.
func (e *UnsupportedExpressionError) Is(target error) bool {
	return target == ErrUnsupportedExpression
}
