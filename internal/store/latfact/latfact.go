// Package latfact implements the Lattice store (§4.3): a key→value map over
// a user-declared bounded join-semilattice, upserted by taking the least
// upper bound of the incoming and existing value. A lattice bundle's Lub is
// a 2-ary IR definition (see ir.LatticeBundle), so this package stays
// ignorant of the evaluator and accepts the merge operator as a plain
// function — the solver is the only caller that knows how to invoke it.
package latfact

import (
	"strings"
	"sync"

	"github.com/strata-lang/strata/internal/value"
)

// LubFunc computes the least upper bound of a and b under a program's
// lattice bundle.
type LubFunc func(a, b value.Value) (value.Value, error)

// Entry pairs a key tuple with its current lattice value, as returned by
// Scan.
type Entry struct {
	Key   value.Tuple
	Value value.Value
}

// Store holds the current key→value map of one Lattice table.
type Store struct {
	mu      sync.RWMutex
	keyKind int // number of key columns, informational only
	bot     value.Value
	keys    map[string]value.Tuple
	values  map[string]value.Value
}

// NewStore returns an empty store. bot, if non-nil, is the lattice's bottom
// element: upserting a value equal to bot is always a no-op (§4.3
// "bot-absorbing").
func NewStore(keyArity int, bot value.Value) *Store {
	return &Store{
		keyKind: keyArity,
		bot:     bot,
		keys:    make(map[string]value.Tuple),
		values:  make(map[string]value.Value),
	}
}

// Upsert merges v into the value currently stored at key via lub, inserting
// it outright if key is new. It reports whether the stored value actually
// changed — bot contributions and values already ≤ the current one are
// pruned and report no change, which is how the saturation driver detects a
// stratum's fixed point.
func (s *Store) Upsert(key value.Tuple, v value.Value, lub LubFunc) (bool, error) {
	if s.bot != nil && v.Equal(s.bot) {
		return false, nil
	}
	k := keyKey(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.values[k]
	if !ok {
		s.keys[k] = key
		s.values[k] = v
		return true, nil
	}
	merged, err := lub(cur, v)
	if err != nil {
		return false, err
	}
	if merged.Equal(cur) {
		return false, nil
	}
	s.values[k] = merged
	return true, nil
}

// SetBot installs the lattice's bottom element after construction, once the
// solver has evaluated the program's Bot expression under the evaluator.
func (s *Store) SetBot(bot value.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bot = bot
}

// Get reads the current value stored at key, if any.
func (s *Store) Get(key value.Tuple) (value.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[keyKey(key)]
	return v, ok
}

// Scan returns a snapshot of every key/value pair currently stored.
func (s *Store) Scan() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.values))
	for k, v := range s.values {
		out = append(out, Entry{Key: s.keys[k], Value: v})
	}
	return out
}

// Len reports how many distinct keys the store currently holds.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func keyKey(t value.Tuple) string {
	var sb strings.Builder
	for _, e := range t.Elems {
		sb.WriteString(e.Kind())
		sb.WriteByte(':')
		sb.WriteString(e.String())
		sb.WriteByte('\x1f')
	}
	return sb.String()
}
