package eval

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-lang/strata/internal/ierrors"
	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/runtimeenv"
	"github.com/strata-lang/strata/internal/value"
)

func litInt32(n int64) ir.Expr {
	return ir.LitInt{Base: ir.Base{Typ: ir.TInt32}, Value: n}
}

func intBin(op ir.BinaryOp, e1, e2 ir.Expr) ir.Expr {
	return ir.Binary{Base: ir.Base{Typ: ir.TInt32}, Op: op, E1: e1, E2: e2}
}

func TestEvaluateLiterals(t *testing.T) {
	ev := New(ir.NewRoot("t"), nil)
	v, err := ev.Evaluate(ir.LitBool{Base: ir.Base{Typ: ir.TBool}, Value: true}, runtimeenv.NewEnv())
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)

	v, err = ev.Evaluate(litInt32(42), runtimeenv.NewEnv())
	require.NoError(t, err)
	assert.Equal(t, value.Int32(42), v)
}

func TestEvaluateArithmetic(t *testing.T) {
	ev := New(ir.NewRoot("t"), nil)
	expr := intBin(ir.OpTimes, intBin(ir.OpPlusB, litInt32(2), litInt32(3)), litInt32(4))
	v, err := ev.Evaluate(expr, runtimeenv.NewEnv())
	require.NoError(t, err)
	assert.Equal(t, value.Int32(20), v)
}

func TestEvaluateDivisionByZeroIsArithmeticError(t *testing.T) {
	ev := New(ir.NewRoot("t"), nil)
	expr := intBin(ir.OpDivide, litInt32(10), litInt32(0))
	_, err := ev.Evaluate(expr, runtimeenv.NewEnv())
	require.Error(t, err)
	assert.True(t, ierrors.Is(err, ierrors.KindArithmeticError))
}

func TestEvaluateFloatDivisionByZeroFollowsIEEE754(t *testing.T) {
	ev := New(ir.NewRoot("t"), nil)
	expr := ir.Binary{
		Base: ir.Base{Typ: ir.TFloat64},
		Op:   ir.OpDivide,
		E1:   ir.LitFloat64{Base: ir.Base{Typ: ir.TFloat64}, Value: 1},
		E2:   ir.LitFloat64{Base: ir.Base{Typ: ir.TFloat64}, Value: 0},
	}
	v, err := ev.Evaluate(expr, runtimeenv.NewEnv())
	require.NoError(t, err)
	f, ok := v.(value.Float64)
	require.True(t, ok)
	assert.True(t, float64(f) > 1e300 || f != f) // +Inf in practice
}

func TestEvaluateBigIntArithmetic(t *testing.T) {
	ev := New(ir.NewRoot("t"), nil)
	big1 := ir.LitBigInt{Base: ir.Base{Typ: ir.TBigInt}, Value: big.NewInt(1_000_000_000_000)}
	big2 := ir.LitBigInt{Base: ir.Base{Typ: ir.TBigInt}, Value: big.NewInt(3)}
	expr := ir.Binary{Base: ir.Base{Typ: ir.TBigInt}, Op: ir.OpTimes, E1: big1, E2: big2}
	v, err := ev.Evaluate(expr, runtimeenv.NewEnv())
	require.NoError(t, err)
	bi, ok := v.(value.BigInt)
	require.True(t, ok)
	assert.Equal(t, "3000000000000", bi.V.String())
}

func TestEvaluateLogicalAndShortCircuits(t *testing.T) {
	ev := New(ir.NewRoot("t"), nil)
	expr := ir.Binary{
		Base: ir.Base{Typ: ir.TBool},
		Op:   ir.OpLogicalAnd,
		E1:   ir.LitBool{Base: ir.Base{Typ: ir.TBool}, Value: false},
		E2:   ir.UserError{Message: "should never evaluate"},
	}
	v, err := ev.Evaluate(expr, runtimeenv.NewEnv())
	require.NoError(t, err)
	assert.Equal(t, value.Bool(false), v)
}

func TestEvaluateLetBindsAndScopes(t *testing.T) {
	ev := New(ir.NewRoot("t"), nil)
	sym := ir.NewSymbol(ir.SymVariable, "x", 0)
	expr := ir.Let{
		Sym: sym,
		E1:  litInt32(10),
		E2:  intBin(ir.OpPlusB, ir.Var{Base: ir.Base{Typ: ir.TInt32}, Sym: sym}, litInt32(5)),
	}
	v, err := ev.Evaluate(expr, runtimeenv.NewEnv())
	require.NoError(t, err)
	assert.Equal(t, value.Int32(15), v)
}

func TestEvaluateVarUnboundIsUnboundVariableError(t *testing.T) {
	ev := New(ir.NewRoot("t"), nil)
	sym := ir.NewSymbol(ir.SymVariable, "y", 3)
	_, err := ev.Evaluate(ir.Var{Sym: sym}, runtimeenv.NewEnv())
	require.Error(t, err)
	assert.True(t, ierrors.Is(err, ierrors.KindUnboundVariable))
}

func TestEvaluateTagIsAndUntag(t *testing.T) {
	ev := New(ir.NewRoot("t"), nil)
	some := ir.TagExpr{Tag: "Some", E: litInt32(7)}
	isSome := ir.Is{Tag: "Some", E: some}
	v, err := ev.Evaluate(isSome, runtimeenv.NewEnv())
	require.NoError(t, err)
	assert.Equal(t, value.Bool(true), v)

	untag := ir.Untag{Tag: "Some", E: some}
	v, err = ev.Evaluate(untag, runtimeenv.NewEnv())
	require.NoError(t, err)
	assert.Equal(t, value.Int32(7), v)

	mismatched := ir.Untag{Tag: "None", E: some}
	_, err = ev.Evaluate(mismatched, runtimeenv.NewEnv())
	require.Error(t, err)
	assert.True(t, ierrors.Is(err, ierrors.KindNonExhaustiveMatch))
}

func TestEvaluateTupleAndIndex(t *testing.T) {
	ev := New(ir.NewRoot("t"), nil)
	tup := ir.TupleExpr{Elems: []ir.Expr{litInt32(1), litInt32(2), litInt32(3)}}
	idx := ir.Index{BaseExpr: tup, Offset: 1}
	v, err := ev.Evaluate(idx, runtimeenv.NewEnv())
	require.NoError(t, err)
	assert.Equal(t, value.Int32(2), v)
}

func TestEvaluateRefDerefAssign(t *testing.T) {
	ev := New(ir.NewRoot("t"), nil)
	sym := ir.NewSymbol(ir.SymVariable, "r", 0)
	refExpr := ir.Ref{E: litInt32(1)}
	body := ir.Let{
		Sym: sym,
		E1:  refExpr,
		E2: ir.Let{
			Sym: ir.NewSymbol(ir.SymVariable, "_", 1),
			E1:  ir.Assign{E1: ir.Var{Sym: sym}, E2: litInt32(99)},
			E2:  ir.Deref{E: ir.Var{Sym: sym}},
		},
	}
	v, err := ev.Evaluate(body, runtimeenv.NewEnv())
	require.NoError(t, err)
	assert.Equal(t, value.Int32(99), v)
}

func TestEvaluateLetRecFactorial(t *testing.T) {
	root := ir.NewRoot("t")
	factSym := ir.NewSymbol(ir.SymDefinition, "fact", 0)
	selfSym := ir.NewSymbol(ir.SymVariable, "self", 0)
	nSym := ir.NewSymbol(ir.SymVariable, "n", 1)

	// fact(self, n) = if n <= 1 then 1 else n * ApplyClosure(self, [n-1])
	body := ir.IfThenElse{
		Base: ir.Base{Typ: ir.TInt32},
		Cond: ir.Binary{Base: ir.Base{Typ: ir.TBool}, Op: ir.OpLessEqual, E1: ir.Var{Base: ir.Base{Typ: ir.TInt32}, Sym: nSym}, E2: litInt32(1)},
		Then: litInt32(1),
		Else: intBin(ir.OpTimes,
			ir.Var{Base: ir.Base{Typ: ir.TInt32}, Sym: nSym},
			ir.ApplyClosure{
				Exp: ir.Var{Sym: selfSym},
				Args: []ir.Expr{
					intBin(ir.OpMinusB, ir.Var{Base: ir.Base{Typ: ir.TInt32}, Sym: nSym}, litInt32(1)),
				},
			},
		),
	}
	root.AddDefinition(&ir.Definition{
		Sym:     factSym,
		Name:    "fact",
		Formals: []ir.Symbol{selfSym, nSym},
		Body:    body,
		RetType: ir.TInt32,
	})

	letRecSym := ir.NewSymbol(ir.SymVariable, "fact", 0)
	letRec := ir.LetRec{
		Sym: letRecSym,
		E1:  ir.MkClosureDef{DefSym: factSym, FreeVars: []ir.Symbol{letRecSym}},
		E2: ir.ApplyClosure{
			Exp:  ir.Var{Sym: letRecSym},
			Args: []ir.Expr{litInt32(5)},
		},
	}

	ev := New(root, nil)
	v, err := ev.Evaluate(letRec, runtimeenv.NewEnv())
	require.NoError(t, err)
	assert.Equal(t, value.Int32(120), v)
}

func TestEvaluateApplyHookResolvesThroughLinker(t *testing.T) {
	root := ir.NewRoot("t")
	linker := runtimeenv.NewLinker()
	linker.BindHook("double", func(args []value.Value) (value.Value, error) {
		n := args[0].(value.Int32)
		return n * 2, nil
	})
	ev := New(root, linker)
	expr := ir.ApplyHook{Hook: "double", Args: []ir.Expr{litInt32(21)}}
	v, err := ev.Evaluate(expr, runtimeenv.NewEnv())
	require.NoError(t, err)
	assert.Equal(t, value.Int32(42), v)
}

func TestEvaluateApplyHookUnresolvedIsHostError(t *testing.T) {
	ev := New(ir.NewRoot("t"), nil)
	expr := ir.ApplyHook{Hook: "missing"}
	_, err := ev.Evaluate(expr, runtimeenv.NewEnv())
	require.Error(t, err)
	assert.True(t, ierrors.Is(err, ierrors.KindHostError))
}

func TestEvaluateUserErrorPropagates(t *testing.T) {
	ev := New(ir.NewRoot("t"), nil)
	_, err := ev.Evaluate(ir.UserError{Message: "boom"}, runtimeenv.NewEnv())
	require.Error(t, err)
	assert.True(t, ierrors.Is(err, ierrors.KindUserError))
	assert.Contains(t, err.Error(), "boom")
}
