// Package value implements the tagged runtime value representation that the
// expression evaluator and the constraint stores operate on (see Value in
// the data model: primitives, strings, big integers, tuples, tags, closures,
// and boxes).
package value

import (
	"fmt"
	"math/big"
)

// Value is the runtime representation every evaluated expression produces.
// All variants implement Kind, String and Equal; numeric variants also
// implement Numeric so arithmetic dispatch can work across widths.
type Value interface {
	// Kind returns the tag discriminating this variant, e.g. "Int32" or "Tag".
	Kind() string
	String() string
	// Equal is structural deep equality per the data model: tuples
	// element-wise, tags by name+payload, closures by definition-symbol
	// identity and captures, boxes by cell identity.
	Equal(other Value) bool
}

// Numeric is implemented by every integer and float variant so that Unary
// and Binary arithmetic can dispatch without a type switch per width.
type Numeric interface {
	Value
	AsInt64() (int64, bool)
	AsFloat64() (float64, bool)
	AsBigInt() (*big.Int, bool)
}

// Unit is the single-valued type, the result of statements with no useful
// value (Assign, and bodies that only produce side effects).
type Unit struct{}

func (Unit) Kind() string        { return "Unit" }
func (Unit) String() string      { return "()" }
func (Unit) Equal(o Value) bool  { _, ok := o.(Unit); return ok }

// Bool is the two-valued boolean.
type Bool bool

func (b Bool) Kind() string   { return "Bool" }
func (b Bool) String() string { return fmt.Sprintf("%t", bool(b)) }
func (b Bool) Equal(o Value) bool {
	ob, ok := o.(Bool)
	return ok && b == ob
}

// Char is a single Unicode scalar value.
type Char rune

func (c Char) Kind() string   { return "Char" }
func (c Char) String() string { return fmt.Sprintf("%q", rune(c)) }
func (c Char) Equal(o Value) bool {
	oc, ok := o.(Char)
	return ok && c == oc
}

// Str is an immutable string.
type Str string

func (s Str) Kind() string   { return "Str" }
func (s Str) String() string { return string(s) }
func (s Str) Equal(o Value) bool {
	os_, ok := o.(Str)
	return ok && s == os_
}
