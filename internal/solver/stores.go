// Package solver implements the rule evaluator and the stratified
// fixed-point saturation driver (§4.4, §4.5): joining constraint bodies
// against the current store snapshot, emitting head facts, and iterating
// each stratum until no store changes, in declaration order, with negation
// only ever reaching backward across a stratum boundary.
package solver

import (
	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/store/latfact"
	"github.com/strata-lang/strata/internal/store/relfact"
	"github.com/strata-lang/strata/internal/value"
)

// Stores is the full set of table extensions for one program run: one
// relfact.Store per Relation table, one latfact.Store per Lattice table,
// keyed by the table's Symbol id.
type Stores struct {
	relations map[uint64]*relfact.Store
	lattices  map[uint64]*latfact.Store
	tables    map[uint64]*ir.Table
}

// NewStores allocates an empty store for every table root declares.
func NewStores(root *ir.Root) *Stores {
	s := &Stores{
		relations: make(map[uint64]*relfact.Store),
		lattices:  make(map[uint64]*latfact.Store),
		tables:    make(map[uint64]*ir.Table),
	}
	for _, t := range root.Tables() {
		s.tables[t.Sym.ID()] = t
		switch t.Kind {
		case ir.TableRelation:
			s.relations[t.Sym.ID()] = relfact.NewStore(t.Arity, t.Indexes)
		case ir.TableLattice:
			// Bot is an Expr, not a Value; the driver evaluates each
			// lattice's Bot under the program's evaluator and installs it
			// via Store.SetBot before the first stratum runs.
			s.lattices[t.Sym.ID()] = latfact.NewStore(t.Keys, nil)
		}
	}
	return s
}

// Relation returns the relfact.Store backing a Relation table symbol.
func (s *Stores) Relation(sym ir.Symbol) (*relfact.Store, bool) {
	st, ok := s.relations[sym.ID()]
	return st, ok
}

// Lattice returns the latfact.Store backing a Lattice table symbol.
func (s *Stores) Lattice(sym ir.Symbol) (*latfact.Store, bool) {
	st, ok := s.lattices[sym.ID()]
	return st, ok
}

// Table returns the schema for a table symbol, for arity/kind checks.
func (s *Stores) Table(sym ir.Symbol) (*ir.Table, bool) {
	t, ok := s.tables[sym.ID()]
	return t, ok
}

// SeedRelation inserts every tuple in facts into the named Relation table's
// initial extension, ahead of any stratum running.
func (s *Stores) SeedRelation(sym ir.Symbol, facts []value.Tuple) error {
	st, ok := s.relations[sym.ID()]
	if !ok {
		return errNoSuchRelation(sym.Name)
	}
	for _, f := range facts {
		if _, err := st.Insert(f); err != nil {
			return err
		}
	}
	return nil
}

// ScanAsTuples returns every row of a table, uniform over its kind: a
// Relation's tuples as-is, a Lattice's key/value entries flattened to
// key-columns-then-value (the encoding §3 gives BodyPositive/HeadPositive
// over a lattice table).
func (s *Stores) ScanAsTuples(sym ir.Symbol) ([]value.Tuple, error) {
	if st, ok := s.relations[sym.ID()]; ok {
		return st.Scan(), nil
	}
	if st, ok := s.lattices[sym.ID()]; ok {
		entries := st.Scan()
		out := make([]value.Tuple, len(entries))
		for i, e := range entries {
			elems := append(append([]value.Value{}, e.Key.Elems...), e.Value)
			out[i] = value.NewTuple(elems...)
		}
		return out, nil
	}
	return nil, errNoSuchRelation(sym.Name)
}

type noSuchTableError string

func (e noSuchTableError) Error() string { return "solver: no such table: " + string(e) }

func errNoSuchRelation(name string) error { return noSuchTableError(name) }
