package irtext

import (
	"fmt"
	"os"

	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/value"
)

// scope resolves bare names to ir.Symbol values while assembling one
// definition body or one constraint: a trivial single-pass binder, not a
// name-resolution pass (the upstream pipeline already did that; this
// package only needs symbols stable enough to key an Env slot or a
// binding map).
type scope struct {
	parent *scope
	vars   map[string]ir.Symbol
	offset *int // shared per definition body; nil for constraint scopes
}

func newDefScope() *scope {
	off := 0
	return &scope{vars: map[string]ir.Symbol{}, offset: &off}
}

func newConstraintScope() *scope {
	return &scope{vars: map[string]ir.Symbol{}}
}

func (s *scope) child() *scope {
	return &scope{parent: s, vars: map[string]ir.Symbol{}, offset: s.offset}
}

// bind introduces a fresh variable symbol for name in this scope. For a
// definition-body scope it takes the next stack offset; for a constraint
// scope (logic variables, keyed by Symbol ID not offset) offset is 0.
func (s *scope) bind(name string) ir.Symbol {
	offset := 0
	if s.offset != nil {
		offset = *s.offset
		*s.offset++
	}
	sym := ir.NewSymbol(ir.SymVariable, name, offset)
	s.vars[name] = sym
	return sym
}

// lookupOrBind resolves name in s or an ancestor, binding it fresh in s
// if absent — the behavior a Datalog body wants: a variable's first
// occurrence declares it.
func (s *scope) lookupOrBind(name string) ir.Symbol {
	if sym, ok := s.lookup(name); ok {
		return sym
	}
	return s.bind(name)
}

func (s *scope) lookup(name string) (ir.Symbol, bool) {
	for c := s; c != nil; c = c.parent {
		if sym, ok := c.vars[name]; ok {
			return sym, true
		}
	}
	return ir.Symbol{}, false
}

// Assembler accumulates top-level forms into a Root across one or more
// source files (e.g. a program file followed by a separate facts file),
// resolving table/def/enum names to the same symbols across both.
type Assembler struct {
	root *ir.Root

	defSyms   map[string]ir.Symbol
	enumSyms  map[string]ir.Symbol
	tableSyms map[string]ir.Symbol

	pendingDefs []*pendingDef // def bodies, assembled after every table/enum name is known
	facts       map[ir.Symbol][]value.Tuple
}

type pendingDef struct {
	sym     ir.Symbol
	formals []*Sexpr
	body    *Sexpr
	at      ir.Pos
}

// NewAssembler returns an empty assembler ready to load one or more
// source files into the same Root.
func NewAssembler(rootName string) *Assembler {
	return &Assembler{
		root:      ir.NewRoot(rootName),
		defSyms:   map[string]ir.Symbol{},
		enumSyms:  map[string]ir.Symbol{},
		tableSyms: map[string]ir.Symbol{},
		facts:     map[ir.Symbol][]value.Tuple{},
	}
}

// LoadFile reads and assembles path's top-level forms into a's Root.
func (a *Assembler) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return a.LoadString(path, string(src))
}

// LoadString assembles src's top-level forms, attributing positions to
// filename.
func (a *Assembler) LoadString(filename, src string) error {
	prog, err := parseProgram(filename, src)
	if err != nil {
		return err
	}
	for _, form := range prog.Forms {
		if err := a.assembleTopLevel(filename, form); err != nil {
			return err
		}
	}
	return nil
}

// Finish resolves every deferred definition body (deferred so forward
// references among definitions, tables and enums all resolve regardless
// of declaration order within a file) and returns the completed Root
// plus any facts collected from (facts ...) forms.
func (a *Assembler) Finish() (*ir.Root, map[ir.Symbol][]value.Tuple, error) {
	for _, pd := range a.pendingDefs {
		def, ok := a.root.Definition(pd.sym)
		if !ok {
			return nil, nil, fmt.Errorf("irtext: internal error: missing definition for %s", pd.sym.Name)
		}
		sc := newDefScope()
		formals := make([]ir.Symbol, len(pd.formals))
		for i, f := range pd.formals {
			name, ok := f.sym()
			if !ok {
				return nil, nil, fmt.Errorf("irtext: %s: formal %d is not a bare name", pd.at, i)
			}
			formals[i] = sc.bind(name)
		}
		def.Formals = formals
		body, err := a.assembleExpr(filenameOf(pd.at), pd.body, sc)
		if err != nil {
			return nil, nil, err
		}
		def.Body = body
	}
	return a.root, a.facts, nil
}

func filenameOf(p ir.Pos) string { return p.File }

func (a *Assembler) assembleTopLevel(filename string, s *Sexpr) error {
	items, ok := s.isList()
	if !ok || len(items) == 0 {
		return fmt.Errorf("irtext: %s: top-level form must be a non-empty list", s.pos(filename))
	}
	head, ok := items[0].sym()
	if !ok {
		return fmt.Errorf("irtext: %s: top-level form must start with a keyword", s.pos(filename))
	}
	switch head {
	case "enum":
		return a.assembleEnum(filename, items)
	case "def":
		return a.assembleDef(filename, items)
	case "table":
		return a.assembleTable(filename, items)
	case "index":
		return a.assembleIndex(filename, items)
	case "stratum":
		return a.assembleStratum(filename, items)
	case "facts":
		return a.assembleFacts(filename, items)
	default:
		return fmt.Errorf("irtext: %s: unknown top-level form %q", s.pos(filename), head)
	}
}

// (enum Name (Case1 Case2 ...))
func (a *Assembler) assembleEnum(filename string, items []*Sexpr) error {
	if len(items) != 3 {
		return fmt.Errorf("irtext: %s: (enum Name (cases...)) takes exactly 2 arguments", items[0].pos(filename))
	}
	name, ok := items[1].sym()
	if !ok {
		return fmt.Errorf("irtext: %s: enum name must be a bare symbol", items[1].pos(filename))
	}
	caseList, ok := items[2].isList()
	if !ok {
		return fmt.Errorf("irtext: %s: enum cases must be a list", items[2].pos(filename))
	}
	cases := make([]string, len(caseList))
	for i, c := range caseList {
		cname, ok := c.sym()
		if !ok {
			return fmt.Errorf("irtext: %s: enum case %d must be a bare symbol", c.pos(filename), i)
		}
		cases[i] = cname
	}
	sym := ir.NewSymbol(ir.SymEnum, name, 0)
	a.enumSyms[name] = sym
	a.root.AddEnum(&ir.Enum{Sym: sym, Name: name, Cases: cases})
	return nil
}

// (def name (formal1 formal2 ...) <expr>)
func (a *Assembler) assembleDef(filename string, items []*Sexpr) error {
	if len(items) != 4 {
		return fmt.Errorf("irtext: %s: (def name (formals...) body) takes exactly 3 arguments", items[0].pos(filename))
	}
	name, ok := items[1].sym()
	if !ok {
		return fmt.Errorf("irtext: %s: def name must be a bare symbol", items[1].pos(filename))
	}
	formalList, ok := items[2].isList()
	if !ok {
		return fmt.Errorf("irtext: %s: def formals must be a list", items[2].pos(filename))
	}
	sym, ok := a.defSyms[name]
	if !ok {
		sym = ir.NewSymbol(ir.SymDefinition, name, 0)
		a.defSyms[name] = sym
	}
	at := items[0].pos(filename)
	a.root.AddDefinition(&ir.Definition{Sym: sym, Name: name})
	a.pendingDefs = append(a.pendingDefs, &pendingDef{sym: sym, formals: formalList, body: items[3], at: at})
	return nil
}

// (table name relation <arity>)
// (table name lattice <keys> bot=<def> top=<def> leq=<def> lub=<def> glb=<def>)
func (a *Assembler) assembleTable(filename string, items []*Sexpr) error {
	if len(items) < 4 {
		return fmt.Errorf("irtext: %s: (table name kind ...) takes at least 3 arguments", items[0].pos(filename))
	}
	name, ok := items[1].sym()
	if !ok {
		return fmt.Errorf("irtext: %s: table name must be a bare symbol", items[1].pos(filename))
	}
	kind, ok := items[2].sym()
	if !ok {
		return fmt.Errorf("irtext: %s: table kind must be relation or lattice", items[2].pos(filename))
	}
	sym := ir.NewSymbol(ir.SymTable, name, 0)
	a.tableSyms[name] = sym

	switch kind {
	case "relation":
		arity, err := atomInt(filename, items[3])
		if err != nil {
			return err
		}
		a.root.AddTable(&ir.Table{Sym: sym, Name: name, Kind: ir.TableRelation, Arity: arity})
		return nil
	case "lattice":
		keys, err := atomInt(filename, items[3])
		if err != nil {
			return err
		}
		bundle, valueType, err := a.parseLatticeOptions(filename, items[4:])
		if err != nil {
			return err
		}
		a.root.AddTable(&ir.Table{Sym: sym, Name: name, Kind: ir.TableLattice, Keys: keys, ValueType: valueType})
		a.root.SetLattice(valueType, bundle)
		return nil
	default:
		return fmt.Errorf("irtext: %s: unknown table kind %q", items[2].pos(filename), kind)
	}
}

// parseLatticeOptions reads key=value option atoms (bot=defName,
// top=defName, leq=defName, lub=defName, glb=defName, type=TypeName).
func (a *Assembler) parseLatticeOptions(filename string, opts []*Sexpr) (ir.LatticeBundle, ir.Type, error) {
	var bundle ir.LatticeBundle
	valueType := ir.TUnknown
	for _, o := range opts {
		raw, ok := o.sym()
		if !ok {
			return bundle, valueType, fmt.Errorf("irtext: %s: lattice option must be key=value", o.pos(filename))
		}
		key, val, err := splitOption(filename, o, raw)
		if err != nil {
			return bundle, valueType, err
		}
		switch key {
		case "type":
			valueType = typeByName(val)
		case "bot":
			bundle.Bot = ir.Def{Base: ir.Base{At: o.pos(filename), Typ: valueType}, Sym: a.lookupOrForwardDef(val)}
		case "top":
			bundle.Top = ir.Def{Base: ir.Base{At: o.pos(filename), Typ: valueType}, Sym: a.lookupOrForwardDef(val)}
		case "leq":
			bundle.Leq = a.lookupOrForwardDef(val)
		case "lub":
			bundle.Lub = a.lookupOrForwardDef(val)
		case "glb":
			bundle.Glb = a.lookupOrForwardDef(val)
		default:
			return bundle, valueType, fmt.Errorf("irtext: %s: unknown lattice option %q", o.pos(filename), key)
		}
	}
	return bundle, valueType, nil
}

func splitOption(filename string, o *Sexpr, raw string) (string, string, error) {
	for i := 0; i < len(raw); i++ {
		if raw[i] == '=' {
			return raw[:i], raw[i+1:], nil
		}
	}
	return "", "", fmt.Errorf("irtext: %s: expected key=value, got %q", o.pos(filename), raw)
}

// lookupOrForwardDef resolves a definition name that may be declared
// later in the same file (lattice bundles are commonly declared before
// the operator defs they reference); it mints the definition's Symbol if
// the name hasn't been seen yet, and assembleDef adopts that same Symbol
// when the def form arrives, so its body is filled in once Finish
// processes every pending def, including ones added after this table form.
func (a *Assembler) lookupOrForwardDef(name string) ir.Symbol {
	if sym, ok := a.defSyms[name]; ok {
		return sym
	}
	sym := ir.NewSymbol(ir.SymDefinition, name, 0)
	a.defSyms[name] = sym
	return sym
}

// (index tableName col1 col2 ...)
func (a *Assembler) assembleIndex(filename string, items []*Sexpr) error {
	if len(items) < 2 {
		return fmt.Errorf("irtext: %s: (index tableName cols...) takes at least 1 argument", items[0].pos(filename))
	}
	tableName, ok := items[1].sym()
	if !ok {
		return fmt.Errorf("irtext: %s: index table name must be a bare symbol", items[1].pos(filename))
	}
	sym, ok := a.tableSyms[tableName]
	if !ok {
		return fmt.Errorf("irtext: %s: index references unknown table %q", items[1].pos(filename), tableName)
	}
	table, ok := a.root.Table(sym)
	if !ok {
		return fmt.Errorf("irtext: %s: internal error: table %q missing from root", items[1].pos(filename), tableName)
	}
	cols := make([]int, len(items)-2)
	for i, c := range items[2:] {
		n, err := atomInt(filename, c)
		if err != nil {
			return err
		}
		cols[i] = n
	}
	table.Indexes = append(table.Indexes, ir.Index{Columns: cols})
	return nil
}

func atomInt(filename string, s *Sexpr) (int, error) {
	raw, ok := s.sym()
	if !ok {
		return 0, fmt.Errorf("irtext: %s: expected an integer", s.pos(filename))
	}
	n := 0
	neg := false
	i := 0
	if len(raw) > 0 && raw[0] == '-' {
		neg = true
		i = 1
	}
	if i == len(raw) {
		return 0, fmt.Errorf("irtext: %s: expected an integer, got %q", s.pos(filename), raw)
	}
	for ; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, fmt.Errorf("irtext: %s: expected an integer, got %q", s.pos(filename), raw)
		}
		n = n*10 + int(raw[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}

func typeByName(name string) ir.Type {
	switch name {
	case "Unit":
		return ir.TUnit
	case "Bool":
		return ir.TBool
	case "Char":
		return ir.TChar
	case "Float32":
		return ir.TFloat32
	case "Float64":
		return ir.TFloat64
	case "Int8":
		return ir.TInt8
	case "Int16":
		return ir.TInt16
	case "Int32":
		return ir.TInt32
	case "Int64":
		return ir.TInt64
	case "BigInt":
		return ir.TBigInt
	case "Str":
		return ir.TStr
	case "Tag":
		return ir.TTag
	case "Tuple":
		return ir.TTuple
	case "Closure":
		return ir.TClosure
	case "Box":
		return ir.TBox
	default:
		return ir.TUnknown
	}
}
