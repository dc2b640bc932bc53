package value

import (
	"math/big"
	"testing"
)

// ============================================================================
// Equality: reflexive, symmetric, transitive (Testable Properties, spec §8)
// ============================================================================

func TestEqualReflexive(t *testing.T) {
	vals := []Value{
		Unit{}, Bool(true), Char('x'), Str("hi"),
		Int32(7), Float64(3.5), NewBigInt(big.NewInt(12345)),
		NewTuple(Int32(1), Str("a")),
		NewTag("Some", Int32(7)),
	}
	for _, v := range vals {
		if !v.Equal(v) {
			t.Errorf("%v.Equal(itself) = false, want true", v)
		}
	}
}

func TestEqualSymmetricAndTransitive(t *testing.T) {
	a := NewTuple(Int32(1), NewTag("Some", Str("x")))
	b := NewTuple(Int32(1), NewTag("Some", Str("x")))
	c := NewTuple(Int32(1), NewTag("Some", Str("x")))

	if !a.Equal(b) || !b.Equal(a) {
		t.Fatal("equality not symmetric")
	}
	if !b.Equal(c) || !a.Equal(c) {
		t.Fatal("equality not transitive")
	}
}

func TestEqualAcrossContainerDepth(t *testing.T) {
	a := NewTuple(NewTag("Pair", NewTuple(Int32(1), Int32(2))))
	b := NewTuple(NewTag("Pair", NewTuple(Int32(1), Int32(2))))
	if !a.Equal(b) {
		t.Fatal("nested tuple/tag equality failed at depth 2")
	}

	c := NewTuple(NewTag("Pair", NewTuple(Int32(1), Int32(3))))
	if a.Equal(c) {
		t.Fatal("expected inequality for differing nested element")
	}
}

func TestTagEqualByNameAndPayload(t *testing.T) {
	some7 := NewTag("Some", Int32(7))
	other7 := NewTag("Other", Int32(7))
	if some7.Equal(other7) {
		t.Error("tags with different names should not be equal")
	}
	some8 := NewTag("Some", Int32(8))
	if some7.Equal(some8) {
		t.Error("tags with different payloads should not be equal")
	}
}

func TestClosureEqualByDefSymbolIdentityAndCaptures(t *testing.T) {
	symA := new(int)
	symB := new(int)

	c1 := NewClosure(symA, []Value{Int32(1)})
	c2 := NewClosure(symA, []Value{Int32(1)})
	c3 := NewClosure(symB, []Value{Int32(1)})
	c4 := NewClosure(symA, []Value{Int32(2)})

	if !c1.Equal(c2) {
		t.Error("closures with same def symbol and equal captures should be equal")
	}
	if c1.Equal(c3) {
		t.Error("closures from distinct definitions must compare unequal even if behavior matches")
	}
	if c1.Equal(c4) {
		t.Error("closures with differing captures should not be equal")
	}
}

func TestBoxEqualByCellIdentity(t *testing.T) {
	b1 := NewBox(Int32(1))
	b2 := NewBox(Int32(1))
	if b1.Equal(b2) {
		t.Error("boxes with equal content but distinct cells must not be equal")
	}
	if !b1.Equal(b1) {
		t.Error("a box must equal itself")
	}
}

func TestBoxGetSet(t *testing.T) {
	b := NewBox(Int32(1))
	if got := b.Get(); !got.Equal(Int32(1)) {
		t.Fatalf("Get() = %v, want Int32(1)", got)
	}
	b.Set(Int32(2))
	if got := b.Get(); !got.Equal(Int32(2)) {
		t.Fatalf("after Set, Get() = %v, want Int32(2)", got)
	}
}

// ============================================================================
// Numeric conversions
// ============================================================================

func TestBigIntConversions(t *testing.T) {
	b := NewBigInt(big.NewInt(42))
	if i, ok := b.AsInt64(); !ok || i != 42 {
		t.Fatalf("AsInt64() = %d, %v; want 42, true", i, ok)
	}
	if f, ok := b.AsFloat64(); !ok || f != 42.0 {
		t.Fatalf("AsFloat64() = %g, %v; want 42, true", f, ok)
	}

	huge := new(big.Int).Lsh(big.NewInt(1), 100)
	hb := NewBigInt(huge)
	if _, ok := hb.AsInt64(); ok {
		t.Fatal("AsInt64() should fail to represent a 100-bit value")
	}
}

func TestIntegerEqualsAcrossDistinctWidths(t *testing.T) {
	// Per the data model, Value equality is structural per-variant; distinct
	// integer widths are distinct Go types and therefore distinct variants,
	// so Int32(5) and Int64(5) are not the same Value even though both
	// represent the mathematical value 5.
	if Int32(5).Equal(Int64(5)) {
		t.Error("values of distinct integer widths must not compare equal")
	}
}
