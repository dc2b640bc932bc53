package latfact

import (
	"testing"

	"github.com/strata-lang/strata/internal/value"
)

// belnapLub implements the four-valued Belnap lattice join used in the
// saturation scenario: Bottom < {True, False} < Top, True and False are
// incomparable and join to Top.
func belnapLub(a, b value.Value) (value.Value, error) {
	as, bs := a.(value.Str), b.(value.Str)
	if as == bs {
		return as, nil
	}
	if as == "bottom" {
		return bs, nil
	}
	if bs == "bottom" {
		return as, nil
	}
	return value.Str("top"), nil
}

func key(n int32) value.Tuple { return value.NewTuple(value.Int32(n)) }

func TestUpsertInsertsNewKey(t *testing.T) {
	s := NewStore(1, value.Str("bottom"))
	changed, err := s.Upsert(key(1), value.Str("true"), belnapLub)
	if err != nil || !changed {
		t.Fatalf("changed=%v err=%v", changed, err)
	}
	v, ok := s.Get(key(1))
	if !ok || v != value.Str("true") {
		t.Fatalf("got %v, ok=%v", v, ok)
	}
}

func TestUpsertBotIsAbsorbingNoOp(t *testing.T) {
	s := NewStore(1, value.Str("bottom"))
	changed, err := s.Upsert(key(1), value.Str("bottom"), belnapLub)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Fatal("upserting bot should never change the store")
	}
	if _, ok := s.Get(key(1)); ok {
		t.Fatal("bot upsert should not create an entry")
	}
}

func TestUpsertJoinsToTopOnConflict(t *testing.T) {
	s := NewStore(1, value.Str("bottom"))
	s.Upsert(key(1), value.Str("true"), belnapLub)
	changed, err := s.Upsert(key(1), value.Str("false"), belnapLub)
	if err != nil || !changed {
		t.Fatalf("changed=%v err=%v", changed, err)
	}
	v, _ := s.Get(key(1))
	if v != value.Str("top") {
		t.Fatalf("want top, got %v", v)
	}
}

func TestUpsertRepeatedSameValueIsPruned(t *testing.T) {
	s := NewStore(1, value.Str("bottom"))
	s.Upsert(key(1), value.Str("true"), belnapLub)
	changed, err := s.Upsert(key(1), value.Str("true"), belnapLub)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Fatal("re-upserting an already-≤ value should report no change")
	}
}
