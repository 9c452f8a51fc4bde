package expr

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/sqlwhere/internal/ir"
)

func TestConstructorsBuildExpectedTree(t *testing.T) {
	got := Ret(Cond(And(
		Eq(Prop("name"), Const("bob")),
		Eq(Prop("age"), Const(30)),
	)))

	want := Return{Inner: Boolean{Inner: Binary{
		Left: Binary{
			Left:  Property{Name: "name"},
			Op:    Op{Kind: OpEqual, Text: "=="},
			Right: Constant{Value: ir.String("bob")},
		},
		Op: Op{Kind: OpAnd, Text: "&&"},
		Right: Binary{
			Left:  Property{Name: "age"},
			Op:    Op{Kind: OpEqual, Text: "=="},
			Right: Constant{Value: ir.Int(30)},
		},
	}}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestConstPanicsOnUnsupportedValue(t *testing.T) {
	assert.Panics(t, func() { Const([]int{1}) })
}

func TestConstantLiteralDefaultsToNull(t *testing.T) {
	assert.Equal(t, ir.Null{}, Constant{}.Literal())
	assert.Equal(t, ir.Int(3), ConstLiteral(ir.Int(3)).Literal())
}

func TestNodesImplementExpr(t *testing.T) {
	// Sealed interface - every node kind, value and pointer, is an Expr.
	nodes := []Expr{
		Return{}, &Return{},
		Boolean{}, &Boolean{},
		Binary{}, &Binary{},
		Property{}, &Property{},
		Constant{}, &Constant{},
		Call{}, &Call{},
		Index{}, &Index{},
		Not{}, &Not{},
	}
	assert.Len(t, nodes, 16)
}

func TestLookupOp(t *testing.T) {
	tests := []struct {
		text string
		kind OpKind
	}{
		{"==", OpEqual},
		{"&&", OpAnd},
		{"||", OpOr},
		{"!=", OpNotEqual},
		{"<", OpLess},
		{"<=", OpLessEqual},
		{">", OpGreater},
		{">=", OpGreaterEqual},
		{"=~", OpMatch},
		{"like", OpOther},
		{"", OpOther},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			op := LookupOp(tt.text)
			assert.Equal(t, tt.kind, op.Kind)
			assert.Equal(t, tt.text, op.Text, "spelling must be preserved")
		})
	}
}

func TestOpKindString(t *testing.T) {
	assert.Equal(t, "equal", OpEqual.String())
	assert.Equal(t, "other", OpOther.String())
	assert.Equal(t, "unknown", OpKind(99).String())
	assert.Equal(t, ">=", LookupOp(">=").String())
}
