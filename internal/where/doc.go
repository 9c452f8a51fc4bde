// Package where lowers filter expression trees into parameterized SQL WHERE
// clauses.
//
//	[front end] → [expr.Expr] → Lower → [Clause{Text, Params}] → [executor]
//
// A filter such as
//
//	Binary(Binary(Property(a) == Constant(1)) && Binary(Property(b) == Constant(2)))
//
// lowers to
//
//	Text:   "a = ? and b = ?"
//	Params: [1, 2]
//
// CRITICAL PATTERNS:
//
// Placeholder invariant: every Constant emits exactly one "?" together with
// exactly one parameter, so the number of placeholders always equals the
// number of parameters and the i-th placeholder binds the i-th parameter.
// This is what makes a Clause safe to bind to a prepared statement.
//
// No partial output: an unsupported node fails the whole call with
// ErrUnsupportedExpression.
//
// Trusted identifiers: property names and passthrough operator spellings
// are emitted verbatim, without quoting or escaping. They must come from the
// schema, never from user input. Only constants are parameterized.
//
// Lowering is a pure function of the tree. Concurrent calls on different
// (or the same) trees need no coordination.
package where
