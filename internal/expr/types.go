package expr

import "github.com/roach88/sqlwhere/internal/ir"

// Expr represents a node of a filter expression tree.
//
// This is a sealed interface - only types in this package implement it.
// The marker method prevents external implementations and lets backends
// switch exhaustively over node kinds.
//
// Node kinds:
//   - Return: top-level expression returned by a filter body
//   - Boolean: marker wrapper around a condition
//   - Binary: comparison or logical combination
//   - Property: column reference by schema name
//   - Constant: literal value
//   - Call, Index, Not: shapes a front end may produce that have no
//     WHERE-clause lowering
type Expr interface {
	exprNode() // Marker method - seals interface to this package
}

// Return wraps the expression returned by a filter function body.
type Return struct {
	Inner Expr
}

func (Return) exprNode() {}

// Boolean marks its inner expression as a condition.
type Boolean struct {
	Inner Expr
}

func (Boolean) exprNode() {}

// Binary is a comparison (name == x) or a logical combination (a && b).
//
// No grouping is implied: a Binary whose operand is itself a Binary is
// rendered without parentheses, so precedence is carried entirely by the
// shape of the tree.
type Binary struct {
	Left  Expr
	Op    Op
	Right Expr
}

func (Binary) exprNode() {}

// Property references a column by its schema name.
// Names are trusted schema identifiers and are never quoted.
type Property struct {
	Name string
}

func (Property) exprNode() {}

// Constant is a literal value. The zero Constant is the null literal.
type Constant struct {
	Value ir.Literal
}

func (Constant) exprNode() {}

// Literal returns the constant's value, mapping an unset value to ir.Null.
func (c Constant) Literal() ir.Literal {
	if c.Value == nil {
		return ir.Null{}
	}
	return c.Value
}

// Call is a function call such as lower(name).
type Call struct {
	Name string
	Args []Expr
}

func (Call) exprNode() {}

// Index is an array or map access such as tags[0].
type Index struct {
	Target Expr
	Index  Expr
}

func (Index) exprNode() {}

// Not is a unary negation such as !active.
type Not struct {
	Inner Expr
}

func (Not) exprNode() {}

// Ret wraps e in a Return node.
func Ret(e Expr) Return { return Return{Inner: e} }

// Cond wraps e in a Boolean node.
func Cond(e Expr) Boolean { return Boolean{Inner: e} }

// Prop creates a Property node.
func Prop(name string) Property { return Property{Name: name} }

// Const creates a Constant node from a Go value (see ir.FromGo).
// Panics if v has no literal representation; use ConstLiteral for values
// that are already literals.
func Const(v any) Constant {
	lit, err := ir.FromGo(v)
	if err != nil {
		panic(err)
	}
	return Constant{Value: lit}
}

// ConstLiteral creates a Constant node from a literal.
func ConstLiteral(l ir.Literal) Constant { return Constant{Value: l} }

// Bin creates a Binary node, classifying the operator spelling with LookupOp.
func Bin(left Expr, op string, right Expr) Binary {
	return Binary{Left: left, Op: LookupOp(op), Right: right}
}

// Eq creates an equality comparison.
func Eq(left, right Expr) Binary { return Bin(left, "==", right) }

// And creates a logical conjunction.
func And(left, right Expr) Binary { return Bin(left, "&&", right) }

// Or creates a logical disjunction.
func Or(left, right Expr) Binary { return Bin(left, "||", right) }
