// Package relfact implements the Relation store (§4.2): a set of fixed-arity
// tuples with optional secondary indexes, generalizing the dedup-by-derived-
// key idiom of a Datalog fact set to arbitrary-arity tuples of runtime
// Values.
package relfact

import (
	"fmt"
	"strings"
	"sync"

	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/value"
)

// Store holds the current extension of one Relation table. Insert has set
// semantics: inserting a tuple already present is a no-op and reports no
// change, which is exactly the signal the saturation driver needs to detect
// a stratum has reached its fixed point.
type Store struct {
	mu    sync.RWMutex
	arity int

	indexes   []ir.Index
	facts     map[string]value.Tuple
	indexData []map[string][]string // indexData[i][indexKey] -> fact keys
}

// NewStore returns an empty store for a Relation table of the given arity,
// with one lookup structure per declared index.
func NewStore(arity int, indexes []ir.Index) *Store {
	s := &Store{
		arity:     arity,
		indexes:   indexes,
		facts:     make(map[string]value.Tuple),
		indexData: make([]map[string][]string, len(indexes)),
	}
	for i := range indexes {
		s.indexData[i] = make(map[string][]string)
	}
	return s
}

// Insert adds t to the relation. It reports whether the tuple was new; a
// duplicate insert changes nothing and returns false.
func (s *Store) Insert(t value.Tuple) (bool, error) {
	if len(t.Elems) != s.arity {
		return false, errArity(s.arity, len(t.Elems))
	}
	k := tupleKey(t)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.facts[k]; ok {
		return false, nil
	}
	s.facts[k] = t
	for i, idx := range s.indexes {
		ik := indexKey(t, idx.Columns)
		s.indexData[i][ik] = append(s.indexData[i][ik], k)
	}
	return true, nil
}

// Scan returns a snapshot slice of every tuple currently in the relation.
// Callers must not rely on iteration order.
func (s *Store) Scan() []value.Tuple {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]value.Tuple, 0, len(s.facts))
	for _, t := range s.facts {
		out = append(out, t)
	}
	return out
}

// LookupByIndex returns every tuple whose columns at idx.Columns equal
// keyVals, using the idxPos'th declared index. ok is false if idxPos is out
// of range.
func (s *Store) LookupByIndex(idxPos int, keyVals []value.Value) (tuples []value.Tuple, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if idxPos < 0 || idxPos >= len(s.indexData) {
		return nil, false
	}
	ik := indexKey(value.NewTuple(keyVals...), allColumns(len(keyVals)))
	for _, fk := range s.indexData[idxPos][ik] {
		tuples = append(tuples, s.facts[fk])
	}
	return tuples, true
}

// Len reports how many tuples the relation currently holds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts)
}

func allColumns(n int) []int {
	cols := make([]int, n)
	for i := range cols {
		cols[i] = i
	}
	return cols
}

func indexKey(t value.Tuple, columns []int) string {
	var sb strings.Builder
	for _, c := range columns {
		sb.WriteString(t.Elems[c].Kind())
		sb.WriteByte(':')
		sb.WriteString(t.Elems[c].String())
		sb.WriteByte('\x1f')
	}
	return sb.String()
}

func tupleKey(t value.Tuple) string {
	return indexKey(t, allColumns(len(t.Elems)))
}

type arityError struct {
	want, got int
}

func (e arityError) Error() string {
	return fmt.Sprintf("relfact: tuple arity mismatch: want %d, got %d", e.want, e.got)
}

func errArity(want, got int) error { return arityError{want, got} }
