package eval

import (
	"math/big"

	"github.com/strata-lang/strata/internal/ierrors"
	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/runtimeenv"
	"github.com/strata-lang/strata/internal/value"
)

// evalUnary dispatches on the runtime variant of the evaluated operand,
// selecting the numeric width from the Value itself; the operand
// expression's static type tag is not consulted.
func (ev *Evaluator) evalUnary(e ir.Unary, env *runtimeenv.Env) (value.Value, error) {
	v, err := ev.Evaluate(e.E, env)
	if err != nil {
		return nil, err
	}

	if e.Op == ir.OpLogicalNot {
		b, ok := v.(value.Bool)
		if !ok {
			return nil, ierrors.TypeMismatch(e.At, "LogicalNot requires Bool, got %s", v.Kind())
		}
		return value.Bool(!b), nil
	}

	switch e.Op {
	case ir.OpPlus:
		if _, ok := v.(value.Numeric); !ok {
			return nil, ierrors.TypeMismatch(e.At, "unary Plus requires a numeric operand, got %s", v.Kind())
		}
		return v, nil
	case ir.OpMinus:
		return unaryMinus(e.At, v)
	case ir.OpBitwiseNegate:
		return unaryBitwiseNegate(e.At, v)
	default:
		return nil, ierrors.TypeMismatch(e.At, "internal invariant violation: unhandled unary operator %v", e.Op)
	}
}

func unaryMinus(pos ir.Pos, v value.Value) (value.Value, error) {
	switch n := v.(type) {
	case value.Int8:
		return -n, nil
	case value.Int16:
		return -n, nil
	case value.Int32:
		return -n, nil
	case value.Int64:
		return -n, nil
	case value.Float32:
		return -n, nil
	case value.Float64:
		return -n, nil
	case value.BigInt:
		return value.NewBigInt(new(big.Int).Neg(n.V)), nil
	default:
		return nil, ierrors.TypeMismatch(pos, "unary Minus requires a numeric operand, got %s", v.Kind())
	}
}

func unaryBitwiseNegate(pos ir.Pos, v value.Value) (value.Value, error) {
	switch n := v.(type) {
	case value.Int8:
		return ^n, nil
	case value.Int16:
		return ^n, nil
	case value.Int32:
		return ^n, nil
	case value.Int64:
		return ^n, nil
	case value.BigInt:
		return value.NewBigInt(new(big.Int).Not(n.V)), nil
	default:
		return nil, ierrors.TypeMismatch(pos, "BitwiseNegate requires an integer operand, got %s", v.Kind())
	}
}
