// Package expr defines the filter expression tree lowered into SQL WHERE
// clauses.
//
// The tree is what a front end (see internal/compiler) produces from a
// filter such as `name == "bob" && age == 30`:
//
//	Return
//	  Boolean
//	    Binary(&&)
//	      Binary(==) Property(name) Constant("bob")
//	      Binary(==) Property(age)  Constant(30)
//
// SEALED INTERFACE:
//
// Expr is sealed with a marker method so that only types in this package
// implement it. Consumers switch over the node kinds exhaustively and treat
// anything else as unsupported:
//
//	switch n := e.(type) {
//	case expr.Binary:
//	    // ...
//	default:
//	    // unsupported
//	}
//
// Both value and pointer forms of each node are accepted by consumers in
// this module. Trees are immutable once built and must be acyclic.
//
// OPERATORS:
//
// An Op carries a kind and the spelling it had in the source. Only the
// kind matters for operators that have a dedicated SQL spelling; every
// other operator is rendered with its source spelling verbatim.
package expr
