package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlwhere/internal/expr"
	"github.com/roach88/sqlwhere/internal/ir"
)

func compileFilterString(t *testing.T, src, path string) (*FilterSpec, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileFilter(v.LookupPath(cue.ParsePath(path)))
}

func compileExprString(t *testing.T, src string) (expr.Expr, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileExpr(v)
}

func TestCompileFilterBasic(t *testing.T) {
	spec, err := compileFilterString(t, `
		filter: byName: {
			table:       "person"
			description: "people called bob"
			where: return: boolean: binary: {
				left:  property: "name"
				op:    "=="
				right: constant: "bob"
			}
		}
	`, "filter.byName")
	require.NoError(t, err)

	assert.Equal(t, "byName", spec.Name)
	assert.Equal(t, "person", spec.Table)
	assert.Equal(t, "people called bob", spec.Description)
	assert.Equal(t, expr.Ret(expr.Cond(expr.Eq(expr.Prop("name"), expr.Const("bob")))), spec.Where)
}

func TestCompileFilterNested(t *testing.T) {
	spec, err := compileFilterString(t, `
		filter: both: {
			table: "person"
			where: binary: {
				left: binary: {
					left:  property: "a"
					op:    "=="
					right: constant: 1
				}
				op: "&&"
				right: binary: {
					left:  property: "b"
					op:    "=="
					right: constant: 2
				}
			}
		}
	`, "filter.both")
	require.NoError(t, err)

	want := expr.And(
		expr.Eq(expr.Prop("a"), expr.Const(1)),
		expr.Eq(expr.Prop("b"), expr.Const(2)),
	)
	assert.Equal(t, want, spec.Where)
	assert.Empty(t, spec.Description)
}

func TestCompileFilterMissingTable(t *testing.T) {
	_, err := compileFilterString(t, `
		filter: bad: {
			where: property: "x"
		}
	`, "filter.bad")

	require.Error(t, err)
	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "table", compileErr.Field)
	assert.Contains(t, err.Error(), "required")
}

func TestCompileFilterEmptyTable(t *testing.T) {
	_, err := compileFilterString(t, `
		filter: bad: {
			table: ""
			where: property: "x"
		}
	`, "filter.bad")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
}

func TestCompileFilterTableWrongType(t *testing.T) {
	_, err := compileFilterString(t, `
		filter: bad: {
			table: 123
			where: property: "x"
		}
	`, "filter.bad")

	require.Error(t, err)
	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "table", compileErr.Field)
}

func TestCompileFilterMissingWhere(t *testing.T) {
	_, err := compileFilterString(t, `
		filter: bad: {
			table: "person"
		}
	`, "filter.bad")

	require.Error(t, err)
	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "where", compileErr.Field)
}

func TestCompileExprConstantKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want ir.Literal
	}{
		{"string", `constant: "bob"`, ir.String("bob")},
		{"int", `constant: 30`, ir.Int(30)},
		{"negative int", `constant: -7`, ir.Int(-7)},
		{"float", `constant: 1.5`, ir.Float(1.5)},
		{"true", `constant: true`, ir.Bool(true)},
		{"false", `constant: false`, ir.Bool(false)},
		{"null", `constant: null`, ir.Null{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compileExprString(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, expr.Constant{Value: tt.want}, got)
		})
	}
}

func TestCompileExprConstantRejectsComposite(t *testing.T) {
	for _, src := range []string{
		`constant: [1, 2]`,
		`constant: {a: 1}`,
	} {
		_, err := compileExprString(t, src)
		require.Error(t, err, src)
		assert.Contains(t, err.Error(), "constant must be null, bool, int, float or string")
	}
}

func TestCompileExprConstantRejectsIncomplete(t *testing.T) {
	_, err := compileExprString(t, `constant: int`)

	require.Error(t, err)
	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "expr.constant", compileErr.Field)
	assert.Contains(t, compileErr.Message, "concrete")
}

func TestCompileExprUnsupportedShapes(t *testing.T) {
	// The front end accepts shapes that lowering later rejects.
	tests := []struct {
		name string
		src  string
		want expr.Expr
	}{
		{
			"call",
			`call: { name: "lower", args: [{property: "name"}] }`,
			expr.Call{Name: "lower", Args: []expr.Expr{expr.Prop("name")}},
		},
		{
			"call without args",
			`call: name: "now"`,
			expr.Call{Name: "now"},
		},
		{
			"index",
			`index: { target: property: "tags", index: constant: 0 }`,
			expr.Index{Target: expr.Prop("tags"), Index: expr.Const(0)},
		},
		{
			"not",
			`not: property: "active"`,
			expr.Not{Inner: expr.Prop("active")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compileExprString(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileExprOperatorSpelling(t *testing.T) {
	got, err := compileExprString(t, `binary: {
		left:  property: "age"
		op:    ">="
		right: constant: 18
	}`)
	require.NoError(t, err)

	bin, ok := got.(expr.Binary)
	require.True(t, ok)
	assert.Equal(t, expr.OpGreaterEqual, bin.Op.Kind)
	assert.Equal(t, ">=", bin.Op.Text)
}

func TestCompileExprUnknownOperatorPreserved(t *testing.T) {
	got, err := compileExprString(t, `binary: {
		left:  property: "name"
		op:    "like"
		right: constant: "b%"
	}`)
	require.NoError(t, err)

	bin := got.(expr.Binary)
	assert.Equal(t, expr.OpOther, bin.Op.Kind)
	assert.Equal(t, "like", bin.Op.Text)
}

func TestCompileExprErrors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantField string
		wantMsg   string
	}{
		{"empty node", `{}`, "expr", "exactly one"},
		{"two keys", `property: "a", constant: 1`, "expr", "exactly one"},
		{"unknown key", `lambda: "x"`, "expr.lambda", "unknown expression node"},
		{"empty property", `property: ""`, "expr.property", "must not be empty"},
		{"binary missing op", `binary: { left: property: "a", right: constant: 1 }`, "expr.binary.op", "op is required"},
		{"binary empty op", `binary: { left: property: "a", op: "", right: constant: 1 }`, "expr.binary.op", "must not be empty"},
		{"binary missing left", `binary: { op: "==", right: constant: 1 }`, "expr.binary.left", "left is required"},
		{"binary missing right", `binary: { left: property: "a", op: "==" }`, "expr.binary.right", "right is required"},
		{"scalar child", `return: "name"`, "expr.return", "must be a struct"},
		{"nested error path", `return: boolean: binary: { left: property: "a", op: "==", right: bogus: 1 }`,
			"expr.return.boolean.binary.right.bogus", "unknown expression node"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileExprString(t, tt.src)
			require.Error(t, err)

			var compileErr *CompileError
			require.True(t, errors.As(err, &compileErr), "error should be *CompileError")
			assert.Equal(t, tt.wantField, compileErr.Field)
			assert.Contains(t, compileErr.Message, tt.wantMsg)
		})
	}
}

func TestCompileExprErrorPosition(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`where: property: ""`, cue.Filename("filters.cue"))
	require.NoError(t, v.Err())

	_, err := CompileExpr(v.LookupPath(cue.ParsePath("where")))
	require.Error(t, err)

	var compileErr *CompileError
	require.True(t, errors.As(err, &compileErr))
	// Position may or may not be valid depending on CUE version
	if compileErr.Pos.IsValid() {
		assert.Contains(t, err.Error(), "filters.cue:")
	}
}

func TestCompileGo(t *testing.T) {
	node := map[string]any{
		"return": map[string]any{
			"boolean": map[string]any{
				"binary": map[string]any{
					"left":  map[string]any{"property": "age"},
					"op":    ">=",
					"right": map[string]any{"constant": 18},
				},
			},
		},
	}

	got, err := CompileGo(node)
	require.NoError(t, err)
	assert.Equal(t, expr.Ret(expr.Cond(expr.Bin(expr.Prop("age"), ">=", expr.Const(18)))), got)
}

func TestCompileGoNullConstant(t *testing.T) {
	got, err := CompileGo(map[string]any{"constant": nil})
	require.NoError(t, err)
	assert.Equal(t, expr.Constant{Value: ir.Null{}}, got)
}

func TestCompileGoRejectsScalar(t *testing.T) {
	_, err := CompileGo("name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a struct")
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{
		Field:   "where.binary.op",
		Message: "op is required",
	}

	assert.Equal(t, "where.binary.op: op is required", err.Error())
}
