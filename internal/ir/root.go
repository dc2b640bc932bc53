package ir

// Definition is a named, possibly-recursive function: a list of formal
// parameter symbols (their Offset gives their slot in the callee's
// environment) and a body expression.
type Definition struct {
	Sym     Symbol
	Name    string
	Formals []Symbol
	Body    Expr
	RetType Type
}

// Enum is a user-defined algebraic data type: a named set of cases, each of
// which becomes a Tag name at runtime.
type Enum struct {
	Sym   Symbol
	Name  string
	Cases []string
}

// TableKind discriminates a Table's storage discipline.
type TableKind int

const (
	TableRelation TableKind = iota
	TableLattice
)

// Index declares a secondary lookup structure on a Relation table, keyed by
// the given ordered subset of column positions.
type Index struct {
	Columns []int
}

// Table is a schema for a relation or lattice-table symbol (§3). Arity is
// meaningful only for TableRelation; Keys and ValueType only for
// TableLattice.
type Table struct {
	Sym       Symbol
	Name      string
	Kind      TableKind
	Arity     int
	Keys      int
	ValueType Type
	Indexes   []Index
}

// LatticeBundle is the operator set attached to a lattice-typed value,
// supplied by the user program (§3, §4.3, §9). Bot and Top are nullary
// expressions evaluated once (under an empty environment) to obtain the
// bottom/top Value; Leq, Lub and Glb are references to 2-ary Definitions —
// the natural handle for "a function the store calls with two runtime
// operands" that the rest of the IR already uses for ordinary calls
// (ApplyDef). Of the three, only Lub is ever invoked (by internal/solver,
// through the evaluator's definition-invocation entry point); Leq and Glb
// are carried but never called. A lattice store detects a change by
// comparing the lub result with its stored value using Value.Equal, not Leq.
type LatticeBundle struct {
	Bot Expr
	Top Expr
	Leq Symbol
	Lub Symbol
	Glb Symbol
}

// Property is a user-stated law over the program (§3 "properties (laws)");
// the property-law verification harness that checks these is an external
// collaborator (spec.md §1) — the core only carries them through so a Root
// built from real source is structurally complete.
type Property struct {
	Name string
	Body Expr
}

// Root is the immutable bundle the core consumes: every definition, enum,
// lattice bundle, table schema and stratum of a compiled program, plus the
// reachable-set pruning hint. A Root is created once per program and never
// mutated afterward; everything here is read concurrently during
// saturation.
type Root struct {
	Name string

	defs     map[uint64]*Definition
	enums    map[uint64]*Enum
	tables   map[uint64]*Table
	lattices map[Type]LatticeBundle

	Strata     []Stratum
	Properties []Property

	// Reachable, when non-nil, restricts attention to a pruned subset of
	// symbols; a nil map means "everything is reachable" (no pruning).
	Reachable map[uint64]bool
}

// Stratum is an ordered group of constraints evaluated together until no
// store in the stratum changes (§4.5). Negation may only reference symbols
// defined in a strictly earlier stratum.
type Stratum struct {
	Constraints []Constraint
}

// NewRoot returns an empty, mutable-during-construction Root. Callers (the
// upstream pipeline, or internal/irtext) add definitions/enums/tables via
// the Add* methods while assembling the program, then treat the Root as
// immutable once construction finishes.
func NewRoot(name string) *Root {
	return &Root{
		Name:     name,
		defs:     make(map[uint64]*Definition),
		enums:    make(map[uint64]*Enum),
		tables:   make(map[uint64]*Table),
		lattices: make(map[Type]LatticeBundle),
	}
}

func (r *Root) AddDefinition(d *Definition) { r.defs[d.Sym.ID()] = d }
func (r *Root) AddEnum(e *Enum)             { r.enums[e.Sym.ID()] = e }
func (r *Root) AddTable(t *Table)           { r.tables[t.Sym.ID()] = t }
func (r *Root) SetLattice(t Type, b LatticeBundle) { r.lattices[t] = b }

func (r *Root) Definition(sym Symbol) (*Definition, bool) {
	d, ok := r.defs[sym.ID()]
	return d, ok
}

func (r *Root) Enum(sym Symbol) (*Enum, bool) {
	e, ok := r.enums[sym.ID()]
	return e, ok
}

func (r *Root) Table(sym Symbol) (*Table, bool) {
	t, ok := r.tables[sym.ID()]
	return t, ok
}

func (r *Root) Lattice(t Type) (LatticeBundle, bool) {
	b, ok := r.lattices[t]
	return b, ok
}

// Definitions returns every definition in the root; order is unspecified.
func (r *Root) Definitions() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// Tables returns every table schema in the root; order is unspecified.
func (r *Root) Tables() []*Table {
	out := make([]*Table, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, t)
	}
	return out
}
