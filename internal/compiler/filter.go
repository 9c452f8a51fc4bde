package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/sqlwhere/internal/expr"
	"github.com/roach88/sqlwhere/internal/ir"
)

// FilterSpec is a named filter compiled from CUE.
type FilterSpec struct {
	Name        string
	Description string
	Table       string
	Where       expr.Expr
}

// Node keys. Every expression node is a struct with exactly one of them.
const (
	keyReturn   = "return"
	keyBoolean  = "boolean"
	keyBinary   = "binary"
	keyProperty = "property"
	keyConstant = "constant"
	keyCall     = "call"
	keyIndex    = "index"
	keyNot      = "not"
)

var nodeKeys = []string{keyReturn, keyBoolean, keyBinary, keyProperty, keyConstant, keyCall, keyIndex, keyNot}

// CompileFilter parses a CUE value into a FilterSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the filter struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`filter: byName: { table: "person", where: {...} }`)
//	spec, err := CompileFilter(v.LookupPath(cue.ParsePath("filter.byName")))
func CompileFilter(v cue.Value) (*FilterSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("filter", err)
	}

	spec := &FilterSpec{}

	// Filter name is the struct label (the last path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	tableVal := v.LookupPath(cue.ParsePath("table"))
	if !tableVal.Exists() {
		return nil, &CompileError{
			Field:   "table",
			Message: "table is required",
			Pos:     v.Pos(),
		}
	}
	table, err := tableVal.String()
	if err != nil {
		return nil, formatCUEError("table", err)
	}
	if table == "" {
		return nil, &CompileError{
			Field:   "table",
			Message: "table must not be empty",
			Pos:     tableVal.Pos(),
		}
	}
	spec.Table = table

	// Description is optional
	if descVal := v.LookupPath(cue.ParsePath("description")); descVal.Exists() {
		desc, err := descVal.String()
		if err != nil {
			return nil, formatCUEError("description", err)
		}
		spec.Description = desc
	}

	whereVal := v.LookupPath(cue.ParsePath("where"))
	if !whereVal.Exists() {
		return nil, &CompileError{
			Field:   "where",
			Message: "where is required",
			Pos:     v.Pos(),
		}
	}
	spec.Where, err = compileNode(whereVal, "where")
	if err != nil {
		return nil, err
	}

	return spec, nil
}

// CompileExpr parses a single CUE expression node into an expr.Expr.
func CompileExpr(v cue.Value) (expr.Expr, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError("expr", err)
	}
	return compileNode(v, "expr")
}

// CompileGo compiles an expression node decoded from YAML or JSON
// (map[string]any trees) by encoding it as a CUE value first, so every
// input format goes through the same front end.
func CompileGo(node any) (expr.Expr, error) {
	v := cuecontext.New().Encode(node)
	if err := v.Err(); err != nil {
		return nil, formatCUEError("expr", err)
	}
	return compileNode(v, "expr")
}

// compileNode dispatches on the single key of an expression node.
func compileNode(v cue.Value, field string) (expr.Expr, error) {
	if v.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expression node must be a struct, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(field, err)
	}

	var labels []string
	var body cue.Value
	for iter.Next() {
		labels = append(labels, iter.Label())
		body = iter.Value()
	}
	if len(labels) != 1 {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("expression node must have exactly one of %s, got %v", strings.Join(nodeKeys, ", "), labels),
			Pos:     v.Pos(),
		}
	}

	kind := labels[0]
	field = field + "." + kind

	switch kind {
	case keyReturn:
		inner, err := compileNode(body, field)
		if err != nil {
			return nil, err
		}
		return expr.Return{Inner: inner}, nil

	case keyBoolean:
		inner, err := compileNode(body, field)
		if err != nil {
			return nil, err
		}
		return expr.Boolean{Inner: inner}, nil

	case keyBinary:
		return compileBinary(body, field)

	case keyProperty:
		name, err := body.String()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		if name == "" {
			return nil, &CompileError{Field: field, Message: "property name must not be empty", Pos: body.Pos()}
		}
		return expr.Property{Name: name}, nil

	case keyConstant:
		lit, err := compileLiteral(body, field)
		if err != nil {
			return nil, err
		}
		return expr.Constant{Value: lit}, nil

	case keyCall:
		return compileCall(body, field)

	case keyIndex:
		target, err := compileNode(body.LookupPath(cue.ParsePath("target")), field+".target")
		if err != nil {
			return nil, err
		}
		index, err := compileNode(body.LookupPath(cue.ParsePath("index")), field+".index")
		if err != nil {
			return nil, err
		}
		return expr.Index{Target: target, Index: index}, nil

	case keyNot:
		inner, err := compileNode(body, field)
		if err != nil {
			return nil, err
		}
		return expr.Not{Inner: inner}, nil

	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("unknown expression node %q, must be one of %s", kind, strings.Join(nodeKeys, ", ")),
			Pos:     v.Pos(),
		}
	}
}

// compileBinary parses {left: <node>, op: "==", right: <node>}.
func compileBinary(v cue.Value, field string) (expr.Expr, error) {
	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return nil, &CompileError{Field: field + ".op", Message: "op is required", Pos: v.Pos()}
	}
	op, err := opVal.String()
	if err != nil {
		return nil, formatCUEError(field+".op", err)
	}
	if op == "" {
		return nil, &CompileError{Field: field + ".op", Message: "op must not be empty", Pos: opVal.Pos()}
	}

	left, err := compileOperand(v, field, "left")
	if err != nil {
		return nil, err
	}
	right, err := compileOperand(v, field, "right")
	if err != nil {
		return nil, err
	}

	return expr.Binary{Left: left, Op: expr.LookupOp(op), Right: right}, nil
}

func compileOperand(v cue.Value, field, side string) (expr.Expr, error) {
	operand := v.LookupPath(cue.ParsePath(side))
	if !operand.Exists() {
		return nil, &CompileError{Field: field + "." + side, Message: side + " is required", Pos: v.Pos()}
	}
	return compileNode(operand, field+"."+side)
}

// compileCall parses {name: "lower", args: [<node>...]}. Args are optional.
func compileCall(v cue.Value, field string) (expr.Expr, error) {
	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return nil, formatCUEError(field+".name", err)
	}

	call := expr.Call{Name: name}

	argsVal := v.LookupPath(cue.ParsePath("args"))
	if !argsVal.Exists() {
		return call, nil
	}
	iter, err := argsVal.List()
	if err != nil {
		return nil, formatCUEError(field+".args", err)
	}
	for i := 0; iter.Next(); i++ {
		arg, err := compileNode(iter.Value(), fmt.Sprintf("%s.args[%d]", field, i))
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}
	return call, nil
}

// compileLiteral converts a concrete CUE scalar to a Literal.
func compileLiteral(v cue.Value, field string) (ir.Literal, error) {
	if !v.IsConcrete() {
		return nil, &CompileError{Field: field, Message: "constant must be a concrete value", Pos: v.Pos()}
	}

	switch v.Kind() {
	case cue.NullKind:
		return ir.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		return ir.Bool(b), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		return ir.Int(n), nil
	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		return ir.Float(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		return ir.String(s), nil
	default:
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("constant must be null, bool, int, float or string, got %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}
