package eval

import (
	"math"
	"math/big"

	"github.com/strata-lang/strata/internal/ierrors"
	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/runtimeenv"
	"github.com/strata-lang/strata/internal/value"
)

// evalBinary evaluates E1 and E2 left-to-right, then dispatches on Op.
// Logical And/Or short-circuit and therefore evaluate E2 themselves instead
// of going through the generic eager path (§4.1 "Logical And/Or
// short-circuit").
func (ev *Evaluator) evalBinary(e ir.Binary, env *runtimeenv.Env) (value.Value, error) {
	if e.Op == ir.OpLogicalAnd || e.Op == ir.OpLogicalOr {
		return ev.evalShortCircuit(e, env)
	}

	v1, err := ev.Evaluate(e.E1, env)
	if err != nil {
		return nil, err
	}
	v2, err := ev.Evaluate(e.E2, env)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ir.OpPlusB, ir.OpMinusB, ir.OpTimes, ir.OpDivide, ir.OpModulo, ir.OpExponentiate:
		return evalArith(e.At, e.Op, e.E1.Tpe(), v1, v2)
	case ir.OpLess, ir.OpLessEqual, ir.OpGreater, ir.OpGreaterEqual:
		return evalOrder(e.At, e.Op, v1, v2)
	case ir.OpEqual:
		return value.Bool(v1.Equal(v2)), nil
	case ir.OpNotEqual:
		return value.Bool(!v1.Equal(v2)), nil
	case ir.OpBitwiseAnd, ir.OpBitwiseOr, ir.OpBitwiseXor, ir.OpLeftShift, ir.OpRightShift:
		return evalBitwise(e.At, e.Op, v1, v2)
	default:
		return nil, ierrors.TypeMismatch(e.At, "internal invariant violation: unhandled binary operator %v", e.Op)
	}
}

func (ev *Evaluator) evalShortCircuit(e ir.Binary, env *runtimeenv.Env) (value.Value, error) {
	v1, err := ev.Evaluate(e.E1, env)
	if err != nil {
		return nil, err
	}
	b1, ok := v1.(value.Bool)
	if !ok {
		return nil, ierrors.TypeMismatch(e.At, "%v requires Bool operands, got %s", e.Op, v1.Kind())
	}
	if e.Op == ir.OpLogicalAnd && !bool(b1) {
		return value.Bool(false), nil
	}
	if e.Op == ir.OpLogicalOr && bool(b1) {
		return value.Bool(true), nil
	}
	v2, err := ev.Evaluate(e.E2, env)
	if err != nil {
		return nil, err
	}
	b2, ok := v2.(value.Bool)
	if !ok {
		return nil, ierrors.TypeMismatch(e.At, "%v requires Bool operands, got %s", e.Op, v2.Kind())
	}
	return b2, nil
}

// evalArith dispatches the arithmetic operators on the static type of the
// left operand (§4.1 "Arithmetic ... dispatch on e1.tpe"), except
// Divide/Modulo by a zero integer which raise ArithmeticError while
// floating-point division instead follows IEEE-754 (never ArithmeticError).
// A left operand tagged TUnknown (internal/irtext tags variables that way)
// takes its numeric type from the runtime kind of v1.
func evalArith(pos ir.Pos, op ir.BinaryOp, tpe ir.Type, v1, v2 value.Value) (value.Value, error) {
	if tpe == ir.TUnknown {
		for t := ir.TFloat32; t <= ir.TBigInt; t++ {
			if t.String() == v1.Kind() {
				tpe = t
			}
		}
	}
	switch tpe {
	case ir.TFloat32:
		a, aok := v1.(value.Float32)
		b, bok := v2.(value.Float32)
		if !aok || !bok {
			return nil, typeMismatchArith(pos, v1, v2)
		}
		return arithFloat32(pos, op, a, b)
	case ir.TFloat64:
		a, aok := v1.(value.Float64)
		b, bok := v2.(value.Float64)
		if !aok || !bok {
			return nil, typeMismatchArith(pos, v1, v2)
		}
		return arithFloat64(pos, op, a, b)
	case ir.TInt8:
		a, aok := v1.(value.Int8)
		b, bok := v2.(value.Int8)
		if !aok || !bok {
			return nil, typeMismatchArith(pos, v1, v2)
		}
		return arithInt8(pos, op, a, b)
	case ir.TInt16:
		a, aok := v1.(value.Int16)
		b, bok := v2.(value.Int16)
		if !aok || !bok {
			return nil, typeMismatchArith(pos, v1, v2)
		}
		return arithInt16(pos, op, a, b)
	case ir.TInt32:
		a, aok := v1.(value.Int32)
		b, bok := v2.(value.Int32)
		if !aok || !bok {
			return nil, typeMismatchArith(pos, v1, v2)
		}
		return arithInt32(pos, op, a, b)
	case ir.TInt64:
		a, aok := v1.(value.Int64)
		b, bok := v2.(value.Int64)
		if !aok || !bok {
			return nil, typeMismatchArith(pos, v1, v2)
		}
		return arithInt64(pos, op, a, b)
	case ir.TBigInt:
		a, aok := v1.(value.BigInt)
		b, bok := v2.(value.BigInt)
		if !aok || !bok {
			return nil, typeMismatchArith(pos, v1, v2)
		}
		return arithBigInt(pos, op, a, b)
	default:
		return nil, ierrors.TypeMismatch(pos, "arithmetic operator requires a numeric operand type, got %s", tpe)
	}
}

func typeMismatchArith(pos ir.Pos, v1, v2 value.Value) error {
	return ierrors.TypeMismatch(pos, "arithmetic operand type mismatch: %s vs %s", v1.Kind(), v2.Kind())
}

func arithFloat32(pos ir.Pos, op ir.BinaryOp, a, b value.Float32) (value.Value, error) {
	switch op {
	case ir.OpPlusB:
		return a + b, nil
	case ir.OpMinusB:
		return a - b, nil
	case ir.OpTimes:
		return a * b, nil
	case ir.OpDivide:
		return a / b, nil // IEEE-754: division by zero yields Inf/NaN, never ArithmeticError
	case ir.OpModulo:
		return value.Float32(math.Mod(float64(a), float64(b))), nil
	case ir.OpExponentiate:
		return value.Float32(math.Pow(float64(a), float64(b))), nil
	default:
		return nil, ierrors.TypeMismatch(pos, "unhandled float32 arithmetic operator %v", op)
	}
}

func arithFloat64(pos ir.Pos, op ir.BinaryOp, a, b value.Float64) (value.Value, error) {
	switch op {
	case ir.OpPlusB:
		return a + b, nil
	case ir.OpMinusB:
		return a - b, nil
	case ir.OpTimes:
		return a * b, nil
	case ir.OpDivide:
		return a / b, nil
	case ir.OpModulo:
		return value.Float64(math.Mod(float64(a), float64(b))), nil
	case ir.OpExponentiate:
		return value.Float64(math.Pow(float64(a), float64(b))), nil
	default:
		return nil, ierrors.TypeMismatch(pos, "unhandled float64 arithmetic operator %v", op)
	}
}

func arithInt8(pos ir.Pos, op ir.BinaryOp, a, b value.Int8) (value.Value, error) {
	switch op {
	case ir.OpPlusB:
		return a + b, nil
	case ir.OpMinusB:
		return a - b, nil
	case ir.OpTimes:
		return a * b, nil
	case ir.OpDivide:
		if b == 0 {
			return nil, ierrors.Arithmetic(pos, "integer division by zero")
		}
		return a / b, nil
	case ir.OpModulo:
		if b == 0 {
			return nil, ierrors.Arithmetic(pos, "integer modulo by zero")
		}
		return a % b, nil
	case ir.OpExponentiate:
		return value.Int8(intPow(int64(a), int64(b))), nil
	default:
		return nil, ierrors.TypeMismatch(pos, "unhandled int8 arithmetic operator %v", op)
	}
}

func arithInt16(pos ir.Pos, op ir.BinaryOp, a, b value.Int16) (value.Value, error) {
	switch op {
	case ir.OpPlusB:
		return a + b, nil
	case ir.OpMinusB:
		return a - b, nil
	case ir.OpTimes:
		return a * b, nil
	case ir.OpDivide:
		if b == 0 {
			return nil, ierrors.Arithmetic(pos, "integer division by zero")
		}
		return a / b, nil
	case ir.OpModulo:
		if b == 0 {
			return nil, ierrors.Arithmetic(pos, "integer modulo by zero")
		}
		return a % b, nil
	case ir.OpExponentiate:
		return value.Int16(intPow(int64(a), int64(b))), nil
	default:
		return nil, ierrors.TypeMismatch(pos, "unhandled int16 arithmetic operator %v", op)
	}
}

func arithInt32(pos ir.Pos, op ir.BinaryOp, a, b value.Int32) (value.Value, error) {
	switch op {
	case ir.OpPlusB:
		return a + b, nil
	case ir.OpMinusB:
		return a - b, nil
	case ir.OpTimes:
		return a * b, nil
	case ir.OpDivide:
		if b == 0 {
			return nil, ierrors.Arithmetic(pos, "integer division by zero")
		}
		return a / b, nil
	case ir.OpModulo:
		if b == 0 {
			return nil, ierrors.Arithmetic(pos, "integer modulo by zero")
		}
		return a % b, nil
	case ir.OpExponentiate:
		return value.Int32(intPow(int64(a), int64(b))), nil
	default:
		return nil, ierrors.TypeMismatch(pos, "unhandled int32 arithmetic operator %v", op)
	}
}

func arithInt64(pos ir.Pos, op ir.BinaryOp, a, b value.Int64) (value.Value, error) {
	switch op {
	case ir.OpPlusB:
		return a + b, nil
	case ir.OpMinusB:
		return a - b, nil
	case ir.OpTimes:
		return a * b, nil
	case ir.OpDivide:
		if b == 0 {
			return nil, ierrors.Arithmetic(pos, "integer division by zero")
		}
		return a / b, nil
	case ir.OpModulo:
		if b == 0 {
			return nil, ierrors.Arithmetic(pos, "integer modulo by zero")
		}
		return a % b, nil
	case ir.OpExponentiate:
		return value.Int64(intPow(int64(a), int64(b))), nil
	default:
		return nil, ierrors.TypeMismatch(pos, "unhandled int64 arithmetic operator %v", op)
	}
}

func arithBigInt(pos ir.Pos, op ir.BinaryOp, a, b value.BigInt) (value.Value, error) {
	switch op {
	case ir.OpPlusB:
		return value.NewBigInt(new(big.Int).Add(a.V, b.V)), nil
	case ir.OpMinusB:
		return value.NewBigInt(new(big.Int).Sub(a.V, b.V)), nil
	case ir.OpTimes:
		return value.NewBigInt(new(big.Int).Mul(a.V, b.V)), nil
	case ir.OpDivide:
		if b.V.Sign() == 0 {
			return nil, ierrors.Arithmetic(pos, "integer division by zero")
		}
		return value.NewBigInt(new(big.Int).Quo(a.V, b.V)), nil
	case ir.OpModulo:
		if b.V.Sign() == 0 {
			return nil, ierrors.Arithmetic(pos, "integer modulo by zero")
		}
		return value.NewBigInt(new(big.Int).Rem(a.V, b.V)), nil
	case ir.OpExponentiate:
		if b.V.Sign() < 0 {
			return nil, ierrors.Arithmetic(pos, "negative exponent on BigInt")
		}
		return value.NewBigInt(new(big.Int).Exp(a.V, b.V, nil)), nil
	default:
		return nil, ierrors.TypeMismatch(pos, "unhandled BigInt arithmetic operator %v", op)
	}
}

// intPow raises base to a non-negative exponent by repeated squaring,
// wrapping on overflow the same way the surrounding fixed-width add/sub/mul
// already do (§4.1 "rounds back to the integer width when applicable").
func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	var result int64 = 1
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

// evalOrder handles Less/LessEqual/Greater/GreaterEqual over any Numeric
// pair or a Char pair (§4.1 "numeric/char ordering per type").
func evalOrder(pos ir.Pos, op ir.BinaryOp, v1, v2 value.Value) (value.Value, error) {
	var cmp int
	switch a := v1.(type) {
	case value.Char:
		b, ok := v2.(value.Char)
		if !ok {
			return nil, typeMismatchArith(pos, v1, v2)
		}
		cmp = compareInt(int64(a), int64(b))
	case value.BigInt:
		b, ok := v2.(value.BigInt)
		if !ok {
			return nil, typeMismatchArith(pos, v1, v2)
		}
		cmp = a.V.Cmp(b.V)
	default:
		n1, ok1 := v1.(value.Numeric)
		n2, ok2 := v2.(value.Numeric)
		if !ok1 || !ok2 {
			return nil, ierrors.TypeMismatch(pos, "ordering operator requires numeric or Char operands, got %s and %s", v1.Kind(), v2.Kind())
		}
		f1, _ := n1.AsFloat64()
		f2, _ := n2.AsFloat64()
		cmp = compareFloat(f1, f2)
	}
	switch op {
	case ir.OpLess:
		return value.Bool(cmp < 0), nil
	case ir.OpLessEqual:
		return value.Bool(cmp <= 0), nil
	case ir.OpGreater:
		return value.Bool(cmp > 0), nil
	case ir.OpGreaterEqual:
		return value.Bool(cmp >= 0), nil
	default:
		return nil, ierrors.TypeMismatch(pos, "unhandled ordering operator %v", op)
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// evalBitwise handles And/Or/Xor/LeftShift/RightShift over fixed-width
// integers or BigInt, dispatched by the runtime kind of the left operand
// since bitwise ops share no type-tag ambiguity with arithmetic.
func evalBitwise(pos ir.Pos, op ir.BinaryOp, v1, v2 value.Value) (value.Value, error) {
	switch a := v1.(type) {
	case value.Int8:
		b, ok := v2.(value.Int8)
		if !ok {
			return nil, typeMismatchArith(pos, v1, v2)
		}
		return bitwiseInt(pos, op, int64(a), int64(b), func(r int64) value.Value { return value.Int8(r) })
	case value.Int16:
		b, ok := v2.(value.Int16)
		if !ok {
			return nil, typeMismatchArith(pos, v1, v2)
		}
		return bitwiseInt(pos, op, int64(a), int64(b), func(r int64) value.Value { return value.Int16(r) })
	case value.Int32:
		b, ok := v2.(value.Int32)
		if !ok {
			return nil, typeMismatchArith(pos, v1, v2)
		}
		return bitwiseInt(pos, op, int64(a), int64(b), func(r int64) value.Value { return value.Int32(r) })
	case value.Int64:
		b, ok := v2.(value.Int64)
		if !ok {
			return nil, typeMismatchArith(pos, v1, v2)
		}
		return bitwiseInt(pos, op, int64(a), int64(b), func(r int64) value.Value { return value.Int64(r) })
	case value.BigInt:
		b, ok := v2.(value.BigInt)
		if !ok {
			return nil, typeMismatchArith(pos, v1, v2)
		}
		return bitwiseBigInt(pos, op, a, b)
	default:
		return nil, ierrors.TypeMismatch(pos, "bitwise operator requires an integer operand, got %s", v1.Kind())
	}
}

func bitwiseInt(pos ir.Pos, op ir.BinaryOp, a, b int64, wrap func(int64) value.Value) (value.Value, error) {
	switch op {
	case ir.OpBitwiseAnd:
		return wrap(a & b), nil
	case ir.OpBitwiseOr:
		return wrap(a | b), nil
	case ir.OpBitwiseXor:
		return wrap(a ^ b), nil
	case ir.OpLeftShift:
		return wrap(a << uint64(b)), nil
	case ir.OpRightShift:
		return wrap(a >> uint64(b)), nil
	default:
		return nil, ierrors.TypeMismatch(pos, "unhandled bitwise operator %v", op)
	}
}

func bitwiseBigInt(pos ir.Pos, op ir.BinaryOp, a, b value.BigInt) (value.Value, error) {
	switch op {
	case ir.OpBitwiseAnd:
		return value.NewBigInt(new(big.Int).And(a.V, b.V)), nil
	case ir.OpBitwiseOr:
		return value.NewBigInt(new(big.Int).Or(a.V, b.V)), nil
	case ir.OpBitwiseXor:
		return value.NewBigInt(new(big.Int).Xor(a.V, b.V)), nil
	case ir.OpLeftShift:
		n, _ := b.V.Uint64()
		return value.NewBigInt(new(big.Int).Lsh(a.V, uint(n))), nil
	case ir.OpRightShift:
		n, _ := b.V.Uint64()
		return value.NewBigInt(new(big.Int).Rsh(a.V, uint(n))), nil
	default:
		return nil, ierrors.TypeMismatch(pos, "unhandled bitwise operator %v", op)
	}
}
