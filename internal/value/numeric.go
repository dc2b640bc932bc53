package value

import (
	"fmt"
	"math/big"
)

// Float32 and Float64 carry IEEE-754 semantics for Binary arithmetic
// (division by zero follows IEEE-754, never ArithmeticError).
type Float32 float32
type Float64 float64

func (f Float32) Kind() string           { return "Float32" }
func (f Float32) String() string         { return fmt.Sprintf("%g", float32(f)) }
func (f Float32) Equal(o Value) bool     { of, ok := o.(Float32); return ok && f == of }
func (f Float32) AsInt64() (int64, bool) { return int64(f), true }
func (f Float32) AsFloat64() (float64, bool) { return float64(f), true }
func (f Float32) AsBigInt() (*big.Int, bool) {
	return big.NewInt(int64(f)), true
}

func (f Float64) Kind() string               { return "Float64" }
func (f Float64) String() string             { return fmt.Sprintf("%g", float64(f)) }
func (f Float64) Equal(o Value) bool         { of, ok := o.(Float64); return ok && f == of }
func (f Float64) AsInt64() (int64, bool)     { return int64(f), true }
func (f Float64) AsFloat64() (float64, bool) { return float64(f), true }
func (f Float64) AsBigInt() (*big.Int, bool) {
	return big.NewInt(int64(f)), true
}

// fixed-width signed integers. Each is a distinct Go type so the evaluator's
// static type tag (carried on the IR expression, not on the Value) selects
// the right width at the call site; Value itself never needs to guess.
type (
	Int8  int8
	Int16 int16
	Int32 int32
	Int64 int64
)

func (i Int8) Kind() string               { return "Int8" }
func (i Int8) String() string             { return fmt.Sprintf("%d", int8(i)) }
func (i Int8) Equal(o Value) bool         { oi, ok := o.(Int8); return ok && i == oi }
func (i Int8) AsInt64() (int64, bool)     { return int64(i), true }
func (i Int8) AsFloat64() (float64, bool) { return float64(i), true }
func (i Int8) AsBigInt() (*big.Int, bool) { return big.NewInt(int64(i)), true }

func (i Int16) Kind() string               { return "Int16" }
func (i Int16) String() string             { return fmt.Sprintf("%d", int16(i)) }
func (i Int16) Equal(o Value) bool         { oi, ok := o.(Int16); return ok && i == oi }
func (i Int16) AsInt64() (int64, bool)     { return int64(i), true }
func (i Int16) AsFloat64() (float64, bool) { return float64(i), true }
func (i Int16) AsBigInt() (*big.Int, bool) { return big.NewInt(int64(i)), true }

func (i Int32) Kind() string               { return "Int32" }
func (i Int32) String() string             { return fmt.Sprintf("%d", int32(i)) }
func (i Int32) Equal(o Value) bool         { oi, ok := o.(Int32); return ok && i == oi }
func (i Int32) AsInt64() (int64, bool)     { return int64(i), true }
func (i Int32) AsFloat64() (float64, bool) { return float64(i), true }
func (i Int32) AsBigInt() (*big.Int, bool) { return big.NewInt(int64(i)), true }

func (i Int64) Kind() string               { return "Int64" }
func (i Int64) String() string             { return fmt.Sprintf("%d", int64(i)) }
func (i Int64) Equal(o Value) bool         { oi, ok := o.(Int64); return ok && i == oi }
func (i Int64) AsInt64() (int64, bool)     { return int64(i), true }
func (i Int64) AsFloat64() (float64, bool) { return float64(i), true }
func (i Int64) AsBigInt() (*big.Int, bool) { return big.NewInt(int64(i)), true }

// BigInt is arbitrary-precision signed; wraps math/big.Int by value so a
// BigInt Value is safe to copy (the evaluator never mutates a *big.Int it
// didn't just allocate).
type BigInt struct {
	V *big.Int
}

// NewBigInt wraps i; i is not retained by the caller afterward.
func NewBigInt(i *big.Int) BigInt { return BigInt{V: i} }

func (b BigInt) Kind() string   { return "BigInt" }
func (b BigInt) String() string { return b.V.String() }
func (b BigInt) Equal(o Value) bool {
	ob, ok := o.(BigInt)
	return ok && b.V.Cmp(ob.V) == 0
}
func (b BigInt) AsInt64() (int64, bool) {
	if !b.V.IsInt64() {
		return 0, false
	}
	return b.V.Int64(), true
}
func (b BigInt) AsFloat64() (float64, bool) {
	f := new(big.Float).SetInt(b.V)
	out, _ := f.Float64()
	return out, true
}
func (b BigInt) AsBigInt() (*big.Int, bool) { return b.V, true }
