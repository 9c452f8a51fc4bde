package expr

import (
	"fmt"
	"sort"
)

// ValidationResult contains the pre-flight analysis of an expression tree.
type ValidationResult struct {
	// Lowerable is false when the tree contains a node that has no
	// WHERE-clause lowering (nil, Call, Index, Not, foreign types).
	Lowerable bool

	// Warnings lists everything worth telling the author about, including
	// issues that do not prevent lowering (passthrough operators, unknown
	// columns). Empty when the tree is clean.
	Warnings []string
}

// ValidateOption configures Validate.
type ValidateOption func(*validator)

// WithColumns enables column checking: every Property name must be a key
// of cols, typically the columns of the table the clause will run against.
func WithColumns(cols map[string]bool) ValidateOption {
	return func(v *validator) {
		v.columns = cols
	}
}

// sqlPassthrough lists operator spellings that are valid SQL as-is.
// Operators outside this set still lower verbatim; Validate only warns.
var sqlPassthrough = map[string]bool{
	"=": true, "<>": true, "!=": true,
	"<": true, "<=": true, ">": true, ">=": true,
	"and": true, "or": true,
	"like": true, "not like": true, "glob": true,
	"is": true, "is not": true,
}

// dedicatedKinds lists the kinds whose SQL spelling does not come from Op.Text.
var dedicatedKinds = map[OpKind]bool{
	OpEqual: true,
	OpAnd:   true,
	OpOr:    true,
}

// Validate walks an expression tree and reports whether it can be lowered
// to a WHERE clause, collecting warnings along the way.
//
// Validate is a pure function with no side effects. It does not replace
// the checks done during lowering: lowering an unlowerable tree still fails.
func Validate(e Expr, opts ...ValidateOption) ValidationResult {
	v := &validator{
		lowerable: true,
		warnings:  []string{},
	}
	for _, opt := range opts {
		opt(v)
	}
	v.validate(e)

	return ValidationResult{
		Lowerable: v.lowerable,
		Warnings:  v.warnings,
	}
}

// validator accumulates findings during traversal.
type validator struct {
	lowerable bool
	warnings  []string
	columns   map[string]bool
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) unsupported(format string, args ...any) {
	v.lowerable = false
	v.addWarning(format, args...)
}

func (v *validator) validate(e Expr) {
	switch n := e.(type) {
	case nil:
		v.unsupported("nil expression")
	case Return:
		v.validate(n.Inner)
	case *Return:
		v.validate(n.Inner)
	case Boolean:
		v.validate(n.Inner)
	case *Boolean:
		v.validate(n.Inner)
	case Binary:
		v.validateBinary(n)
	case *Binary:
		v.validateBinary(*n)
	case Property:
		v.validateProperty(n)
	case *Property:
		v.validateProperty(*n)
	case Constant, *Constant:
		// Always lowerable.
	case Call:
		v.unsupported("function call %s() has no SQL lowering", n.Name)
	case *Call:
		v.unsupported("function call %s() has no SQL lowering", n.Name)
	case Index, *Index:
		v.unsupported("index expression has no SQL lowering")
	case Not, *Not:
		v.unsupported("negation has no SQL lowering")
	default:
		v.unsupported("unsupported expression type %T", e)
	}
}

func (v *validator) validateBinary(b Binary) {
	v.validate(b.Left)
	if !dedicatedKinds[b.Op.Kind] && !sqlPassthrough[b.Op.Text] {
		v.addWarning("operator %q (%s) is passed through verbatim and may not be valid SQL", b.Op.Text, b.Op.Kind)
	}
	v.validate(b.Right)
}

func (v *validator) validateProperty(p Property) {
	if p.Name == "" {
		v.addWarning("empty property name")
		return
	}
	if v.columns != nil && !v.columns[p.Name] {
		v.addWarning("unknown column %q (known: %v)", p.Name, sortedColumns(v.columns))
	}
}

func sortedColumns(cols map[string]bool) []string {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
