package ir

// Type is the static type tag every Expr node carries, used by the
// evaluator to pick the correct numeric/comparison implementation without
// re-deriving it from the runtime value. It is not a full type system —
// type inference itself is out of scope (spec.md §1) — merely the tag the
// upstream type checker already computed and attached to the simplified
// tree.
type Type int

const (
	TUnit Type = iota
	TBool
	TChar
	TFloat32
	TFloat64
	TInt8
	TInt16
	TInt32
	TInt64
	TBigInt
	TStr
	TTag
	TTuple
	TClosure
	TBox
	// TUnknown marks a node whose type tag is irrelevant to evaluation
	// (e.g. control-flow nodes dispatch purely on the runtime value).
	TUnknown
)

func (t Type) String() string {
	switch t {
	case TUnit:
		return "Unit"
	case TBool:
		return "Bool"
	case TChar:
		return "Char"
	case TFloat32:
		return "Float32"
	case TFloat64:
		return "Float64"
	case TInt8:
		return "Int8"
	case TInt16:
		return "Int16"
	case TInt32:
		return "Int32"
	case TInt64:
		return "Int64"
	case TBigInt:
		return "BigInt"
	case TStr:
		return "Str"
	case TTag:
		return "Tag"
	case TTuple:
		return "Tuple"
	case TClosure:
		return "Closure"
	case TBox:
		return "Box"
	default:
		return "Unknown"
	}
}

// IsIntegral reports whether t is one of the fixed-width signed integer
// types or BigInt — the set of types BitwiseAnd/Or/Xor and the shifts are
// defined over.
func (t Type) IsIntegral() bool {
	switch t {
	case TInt8, TInt16, TInt32, TInt64, TBigInt:
		return true
	default:
		return false
	}
}

// IsFloat reports whether t is one of the IEEE-754 float types.
func (t Type) IsFloat() bool {
	return t == TFloat32 || t == TFloat64
}
