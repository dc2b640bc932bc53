package value

import (
	"strings"
)

// Tuple is an ordered, fixed-length sequence of values. Equality is
// element-wise; two tuples of different length are never equal.
type Tuple struct {
	Elems []Value
}

func NewTuple(elems ...Value) Tuple { return Tuple{Elems: elems} }

func (t Tuple) Kind() string { return "Tuple" }

func (t Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, e := range t.Elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func (t Tuple) Equal(o Value) bool {
	ot, ok := o.(Tuple)
	if !ok || len(t.Elems) != len(ot.Elems) {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].Equal(ot.Elems[i]) {
			return false
		}
	}
	return true
}

// Tag is an algebraic-data-type value: a named discriminant carrying exactly
// one payload value (the payload is itself a Tuple when a case has more than
// one field).
type Tag struct {
	Name    string
	Payload Value
}

func NewTag(name string, payload Value) Tag { return Tag{Name: name, Payload: payload} }

func (t Tag) Kind() string   { return "Tag" }
func (t Tag) String() string { return t.Name + "(" + t.Payload.String() + ")" }

func (t Tag) Equal(o Value) bool {
	ot, ok := o.(Tag)
	return ok && t.Name == ot.Name && t.Payload.Equal(ot.Payload)
}

// Closure pairs a definition symbol with its captured free-variable
// bindings, in declaration order. Per the documented (and preserved)
// behavior, equality is by definition-symbol identity and element-wise
// equality of captures: two closures with identical runtime behavior but
// distinct originating definitions compare unequal.
type Closure struct {
	// DefSymbol identifies the underlying definition; comparisons use this
	// field's identity, not a deep comparison of the definition's body.
	DefSymbol any
	Captures  []Value
}

func NewClosure(defSymbol any, captures []Value) Closure {
	return Closure{DefSymbol: defSymbol, Captures: captures}
}

func (c Closure) Kind() string   { return "Closure" }
func (c Closure) String() string { return "<closure>" }

func (c Closure) Equal(o Value) bool {
	oc, ok := o.(Closure)
	if !ok || c.DefSymbol != oc.DefSymbol || len(c.Captures) != len(oc.Captures) {
		return false
	}
	for i := range c.Captures {
		if !c.Captures[i].Equal(oc.Captures[i]) {
			return false
		}
	}
	return true
}

// Box is a one-cell mutable container implementing reference semantics
// over otherwise-immutable values (Ref/Deref/Assign). Per the data model,
// Box equality is by cell identity, never by content, to avoid cycles
// through self-referential structures.
type Box struct {
	cell *Value
}

// NewBox allocates a fresh cell holding v.
func NewBox(v Value) *Box {
	return &Box{cell: &v}
}

func (b *Box) Kind() string   { return "Box" }
func (b *Box) String() string { return "<ref>" }

func (b *Box) Equal(o Value) bool {
	ob, ok := o.(*Box)
	return ok && b == ob
}

// Get reads the current cell content.
func (b *Box) Get() Value { return *b.cell }

// Set overwrites the cell content.
func (b *Box) Set(v Value) { *b.cell = v }
