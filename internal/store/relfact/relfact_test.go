package relfact

import (
	"testing"

	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/value"
)

func tup(a, b int32) value.Tuple {
	return value.NewTuple(value.Int32(a), value.Int32(b))
}

func TestInsertDedupsBySetSemantics(t *testing.T) {
	s := NewStore(2, nil)
	inserted, err := s.Insert(tup(1, 2))
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}
	inserted, err = s.Insert(tup(1, 2))
	if err != nil {
		t.Fatal(err)
	}
	if inserted {
		t.Fatal("duplicate insert reported as new")
	}
	if s.Len() != 1 {
		t.Fatalf("want len 1, got %d", s.Len())
	}
}

func TestInsertRejectsWrongArity(t *testing.T) {
	s := NewStore(2, nil)
	_, err := s.Insert(value.NewTuple(value.Int32(1)))
	if err == nil {
		t.Fatal("expected arity error")
	}
}

func TestLookupByIndex(t *testing.T) {
	s := NewStore(2, []ir.Index{{Columns: []int{0}}})
	if _, err := s.Insert(tup(1, 10)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Insert(tup(1, 20)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Insert(tup(2, 30)); err != nil {
		t.Fatal(err)
	}
	got, ok := s.LookupByIndex(0, []value.Value{value.Int32(1)})
	if !ok {
		t.Fatal("expected index lookup to succeed")
	}
	if len(got) != 2 {
		t.Fatalf("want 2 matches, got %d", len(got))
	}
}

func TestScanReturnsAllTuples(t *testing.T) {
	s := NewStore(2, nil)
	s.Insert(tup(1, 2))
	s.Insert(tup(3, 4))
	scanned := s.Scan()
	if len(scanned) != 2 {
		t.Fatalf("want 2, got %d", len(scanned))
	}
}
