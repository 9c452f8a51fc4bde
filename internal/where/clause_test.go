package where

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlwhere/internal/expr"
	"github.com/roach88/sqlwhere/internal/ir"
)

func TestClause_Args(t *testing.T) {
	clause := Clause{
		Text:   "name = ? and age = ? and deleted_at = ? and score > ? and active = ?",
		Params: []ir.Literal{ir.String("bob"), ir.Int(30), ir.Null{}, ir.Float(1.5), ir.Bool(true)},
	}

	args, err := clause.Args()
	require.NoError(t, err)
	assert.Equal(t, []any{"bob", int64(30), nil, 1.5, true}, args)
}

func TestClause_Check(t *testing.T) {
	assert.NoError(t, Clause{Text: "a = ?", Params: []ir.Literal{ir.Int(1)}}.Check())
	assert.NoError(t, Clause{Text: "x like y"}.Check())

	err := Clause{Text: "a = ? and b = ?", Params: []ir.Literal{ir.Int(1)}}.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 placeholder(s) but 1 parameter(s)")

	err = Clause{Text: "a = ?", Params: []ir.Literal{nil}}.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "param 0")
}

func TestClause_CheckCatchesPlaceholderInIdentifier(t *testing.T) {
	// Identifiers are trusted and emitted verbatim; a stray "?" breaks binding.
	clause := MustLower(expr.Eq(expr.Prop("weird?"), expr.Const(1)))
	assert.Equal(t, 2, clause.Placeholders())
	assert.Error(t, clause.Check())
}

func TestClause_Interpolate(t *testing.T) {
	clause := MustLower(expr.Ret(expr.And(
		expr.Eq(expr.Prop("name"), expr.Const("O'Brien")),
		expr.Eq(expr.Prop("age"), expr.Const(30)),
	)))

	assert.Equal(t, "name = 'O''Brien' and age = 30", clause.Interpolate())
	// Interpolation never changes the clause itself.
	assert.Equal(t, "name = ? and age = ?", clause.String())
}

func TestClause_InterpolateLeavesExtraPlaceholders(t *testing.T) {
	clause := Clause{Text: "a = ? and b = ?", Params: []ir.Literal{ir.Int(1)}}
	assert.Equal(t, "a = 1 and b = ?", clause.Interpolate())
}

func TestClause_Fingerprint(t *testing.T) {
	tree := expr.Eq(expr.Prop("a"), expr.Const(1))

	fp1, err := MustLower(tree).Fingerprint()
	require.NoError(t, err)
	fp2, err := MustLower(tree).Fingerprint()
	require.NoError(t, err)
	other, err := MustLower(expr.Eq(expr.Prop("a"), expr.Const(2))).Fingerprint()
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
	assert.NotEqual(t, fp1, other)
}

func TestClause_FingerprintKeepsParamType(t *testing.T) {
	fingerprint := func(value any) string {
		fp, err := MustLower(expr.Eq(expr.Prop("a"), expr.Const(value))).Fingerprint()
		require.NoError(t, err)
		return fp
	}

	assert.NotEqual(t, fingerprint(1), fingerprint(1.0))
	assert.NotEqual(t, fingerprint(1), fingerprint("1"))
	assert.NotEqual(t, fingerprint(true), fingerprint("true"))
	assert.NotEqual(t, fingerprint("caf\u00e9"), fingerprint("cafe\u0301"))
}
