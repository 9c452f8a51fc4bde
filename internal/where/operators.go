package where

import "github.com/roach88/sqlwhere/internal/expr"

// sqlOperators is the fixed operator translation table.
//
// Only operators whose source spelling differs from SQL are listed. Every
// other operator falls back to its source spelling (see OperatorSQL).
var sqlOperators = map[expr.OpKind]string{
	expr.OpEqual: "=",
	expr.OpAnd:   "and",
	expr.OpOr:    "or",
}

// OperatorSQL returns the SQL spelling of an operator token.
//
// Operators in the translation table map to their SQL form: equality to
// "=", conjunction to "and", disjunction to "or". Any other operator is
// returned with its original source spelling verbatim, so ">", "<=" or
// "like" pass through unchanged. The passthrough text is not validated;
// expr.Validate reports spellings that are not known SQL.
func OperatorSQL(op expr.Op) string {
	if sql, ok := sqlOperators[op.Kind]; ok {
		return sql
	}
	return op.Text
}
