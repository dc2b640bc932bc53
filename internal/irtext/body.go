package irtext

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/value"
)

// (stratum (constraint <head> <- <body...>) ...)
func (a *Assembler) assembleStratum(filename string, items []*Sexpr) error {
	stratum := ir.Stratum{}
	for _, form := range items[1:] {
		cItems, ok := form.isList()
		if !ok || len(cItems) == 0 {
			return fmt.Errorf("irtext: %s: stratum member must be a (constraint ...) form", form.pos(filename))
		}
		kw, ok := cItems[0].sym()
		if !ok || kw != "constraint" {
			return fmt.Errorf("irtext: %s: stratum member must start with \"constraint\"", cItems[0].pos(filename))
		}
		c, err := a.assembleConstraint(filename, cItems)
		if err != nil {
			return err
		}
		stratum.Constraints = append(stratum.Constraints, c)
	}
	a.root.Strata = append(a.root.Strata, stratum)
	return nil
}

// (constraint <head> <- <body atom>...)
func (a *Assembler) assembleConstraint(filename string, items []*Sexpr) (ir.Constraint, error) {
	if len(items) < 3 {
		return ir.Constraint{}, fmt.Errorf("irtext: %s: (constraint head <- body...) requires at least a head and the <- marker", items[0].pos(filename))
	}
	at := items[0].pos(filename)
	arrow, ok := items[2].sym()
	if !ok || arrow != "<-" {
		return ir.Constraint{}, fmt.Errorf("irtext: %s: constraint head must be followed by <-", items[2].pos(filename))
	}
	sc := newConstraintScope()

	body := make([]ir.PredBody, 0, len(items)-3)
	for _, bf := range items[3:] {
		b, err := a.assembleBodyAtom(filename, bf, sc)
		if err != nil {
			return ir.Constraint{}, err
		}
		body = append(body, b)
	}
	head, err := a.assembleHead(filename, items[1], sc)
	if err != nil {
		return ir.Constraint{}, err
	}
	params := make([]ir.Symbol, 0, len(sc.vars))
	for _, sym := range sc.vars {
		params = append(params, sym)
	}
	return ir.Constraint{Head: head, Body: body, Params: params, At: at}, nil
}

// head forms: true | false | (Table t1 t2 ...) | (not Table t1 t2 ...)
func (a *Assembler) assembleHead(filename string, s *Sexpr, sc *scope) (ir.PredHead, error) {
	if name, ok := s.sym(); ok {
		switch name {
		case "true":
			return ir.HeadTrue{}, nil
		case "false":
			return ir.HeadFalse{}, nil
		}
		return nil, fmt.Errorf("irtext: %s: head must be true, false, or a table application", s.pos(filename))
	}
	items, ok := s.isList()
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("irtext: %s: head must be a non-empty list or true/false", s.pos(filename))
	}
	first, ok := items[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: head table application must start with a table name or \"not\"", s.pos(filename))
	}
	negative := first == "not"
	tableItems := items
	tableNameIdx := 0
	if negative {
		tableItems = items[1:]
		tableNameIdx = 0
		if len(tableItems) == 0 {
			return nil, fmt.Errorf("irtext: %s: (not ...) requires a table name", s.pos(filename))
		}
	}
	tableName, ok := tableItems[tableNameIdx].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: head table name must be a bare symbol", tableItems[tableNameIdx].pos(filename))
	}
	tableSym, ok := a.tableSyms[tableName]
	if !ok {
		return nil, fmt.Errorf("irtext: %s: head references unknown table %q", tableItems[tableNameIdx].pos(filename), tableName)
	}
	terms := make([]ir.HeadTerm, len(tableItems)-1)
	for i, t := range tableItems[1:] {
		ht, err := a.assembleHeadTerm(filename, t, sc)
		if err != nil {
			return nil, err
		}
		terms[i] = ht
	}
	if negative {
		return ir.HeadNegative{Table: tableSym, Terms: terms}, nil
	}
	return ir.HeadPositive{Table: tableSym, Terms: terms}, nil
}

// head terms: bare var name -> HTVar; (lit <expr>) -> HTLit;
// (call defName var1 var2 ...) -> HTApp
func (a *Assembler) assembleHeadTerm(filename string, s *Sexpr, sc *scope) (ir.HeadTerm, error) {
	if name, ok := s.sym(); ok {
		return ir.HTVar{Sym: sc.lookupOrBind(name)}, nil
	}
	items, ok := s.isList()
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("irtext: %s: head term must be a bare variable or a (lit ...)/(call ...) form", s.pos(filename))
	}
	kw, ok := items[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: head term form must start with a keyword", s.pos(filename))
	}
	switch kw {
	case "lit":
		if len(items) != 2 {
			return nil, fmt.Errorf("irtext: %s: (lit expr) takes exactly 1 argument", s.pos(filename))
		}
		e, err := a.assembleExpr(filename, items[1], newDefScope())
		if err != nil {
			return nil, err
		}
		return ir.HTLit{E: e}, nil
	case "call":
		if len(items) < 2 {
			return nil, fmt.Errorf("irtext: %s: (call defName vars...) requires a definition name", s.pos(filename))
		}
		defName, ok := items[1].sym()
		if !ok {
			return nil, fmt.Errorf("irtext: %s: head call target must be a bare def name", s.pos(filename))
		}
		defSym, ok := a.defSyms[defName]
		if !ok {
			defSym = a.lookupOrForwardDef(defName)
		}
		varArgs := make([]ir.Symbol, len(items)-2)
		for i, v := range items[2:] {
			vn, ok := v.sym()
			if !ok {
				return nil, fmt.Errorf("irtext: %s: head call argument %d must be a bare variable", v.pos(filename), i)
			}
			varArgs[i] = sc.lookupOrBind(vn)
		}
		return ir.HTApp{DefSym: defSym, VarArgs: varArgs}, nil
	default:
		return nil, fmt.Errorf("irtext: %s: unknown head term form %q", s.pos(filename), kw)
	}
}

// body atom forms:
//
//	(Table t1 t2 ...)             -> BodyPositive
//	(not Table t1 t2 ...)         -> BodyNegative
//	(filter defName t1 t2 ...)    -> BodyFilter
//	(loop var <headterm>)         -> BodyLoop
func (a *Assembler) assembleBodyAtom(filename string, s *Sexpr, sc *scope) (ir.PredBody, error) {
	items, ok := s.isList()
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("irtext: %s: body atom must be a non-empty list", s.pos(filename))
	}
	head, ok := items[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: body atom must start with a table name or keyword", s.pos(filename))
	}
	switch head {
	case "not":
		return a.assembleBodyTable(filename, items[1:], sc, true)
	case "filter":
		return a.assembleBodyFilter(filename, items[1:], sc)
	case "loop":
		return a.assembleBodyLoop(filename, items[1:], sc)
	default:
		return a.assembleBodyTable(filename, items, sc, false)
	}
}

func (a *Assembler) assembleBodyTable(filename string, items []*Sexpr, sc *scope, negative bool) (ir.PredBody, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("irtext: body table reference requires a table name")
	}
	tableName, ok := items[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: body table name must be a bare symbol", items[0].pos(filename))
	}
	tableSym, ok := a.tableSyms[tableName]
	if !ok {
		return nil, fmt.Errorf("irtext: %s: body references unknown table %q", items[0].pos(filename), tableName)
	}
	terms := make([]ir.BodyTerm, len(items)-1)
	for i, t := range items[1:] {
		bt, err := a.assembleBodyTerm(filename, t, sc)
		if err != nil {
			return nil, err
		}
		terms[i] = bt
	}
	if negative {
		return ir.BodyNegative{Table: tableSym, Terms: terms}, nil
	}
	return ir.BodyPositive{Table: tableSym, Terms: terms}, nil
}

// (filter defName t1 t2 ...)
func (a *Assembler) assembleBodyFilter(filename string, items []*Sexpr, sc *scope) (ir.PredBody, error) {
	if len(items) < 1 {
		return nil, fmt.Errorf("irtext: filter requires a definition name")
	}
	defName, ok := items[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: filter target must be a bare def name", items[0].pos(filename))
	}
	defSym, ok := a.defSyms[defName]
	if !ok {
		defSym = a.lookupOrForwardDef(defName)
	}
	terms := make([]ir.BodyTerm, len(items)-1)
	for i, t := range items[1:] {
		bt, err := a.assembleBodyTerm(filename, t, sc)
		if err != nil {
			return nil, err
		}
		terms[i] = bt
	}
	return ir.BodyFilter{DefSym: defSym, Terms: terms}, nil
}

// (loop var <headterm>)
func (a *Assembler) assembleBodyLoop(filename string, items []*Sexpr, sc *scope) (ir.PredBody, error) {
	if len(items) != 2 {
		return nil, fmt.Errorf("irtext: loop takes exactly 2 arguments (var and a head term)")
	}
	varName, ok := items[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: loop variable must be a bare symbol", items[0].pos(filename))
	}
	ht, err := a.assembleHeadTerm(filename, items[1], sc)
	if err != nil {
		return nil, err
	}
	return ir.BodyLoop{Var: sc.lookupOrBind(varName), HeadTerm: ht}, nil
}

// body terms: _ -> BTWild; bare var -> BTVar; (lit expr) -> BTLit;
// (pat <pattern>) -> BTPat
func (a *Assembler) assembleBodyTerm(filename string, s *Sexpr, sc *scope) (ir.BodyTerm, error) {
	if name, ok := s.sym(); ok {
		if name == "_" {
			return ir.BTWild{}, nil
		}
		return ir.BTVar{Sym: sc.lookupOrBind(name)}, nil
	}
	items, ok := s.isList()
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("irtext: %s: body term must be _, a bare variable, or a (lit ...)/(pat ...) form", s.pos(filename))
	}
	kw, ok := items[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: body term form must start with a keyword", s.pos(filename))
	}
	switch kw {
	case "lit":
		if len(items) != 2 {
			return nil, fmt.Errorf("irtext: %s: (lit expr) takes exactly 1 argument", s.pos(filename))
		}
		e, err := a.assembleExpr(filename, items[1], newDefScope())
		if err != nil {
			return nil, err
		}
		return ir.BTLit{E: e}, nil
	case "pat":
		if len(items) != 2 {
			return nil, fmt.Errorf("irtext: %s: (pat p) takes exactly 1 argument", s.pos(filename))
		}
		p, err := a.assemblePattern(filename, items[1], sc)
		if err != nil {
			return nil, err
		}
		return ir.BTPat{Pattern: p}, nil
	default:
		return nil, fmt.Errorf("irtext: %s: unknown body term form %q", s.pos(filename), kw)
	}
}

// patterns: _ -> PatWild; bare var -> PatVar; (lit expr) -> PatLit;
// (tag Name inner) -> PatTag; (tuple p1 p2 ...) -> PatTuple
func (a *Assembler) assemblePattern(filename string, s *Sexpr, sc *scope) (ir.Pattern, error) {
	if name, ok := s.sym(); ok {
		if name == "_" {
			return ir.PatWild{}, nil
		}
		return ir.PatVar{Sym: sc.lookupOrBind(name)}, nil
	}
	items, ok := s.isList()
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("irtext: %s: pattern must be _, a bare variable, or a (lit/tag/tuple ...) form", s.pos(filename))
	}
	kw, ok := items[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: pattern form must start with a keyword", s.pos(filename))
	}
	switch kw {
	case "lit":
		if len(items) != 2 {
			return nil, fmt.Errorf("irtext: %s: (lit expr) takes exactly 1 argument", s.pos(filename))
		}
		e, err := a.assembleExpr(filename, items[1], newDefScope())
		if err != nil {
			return nil, err
		}
		return ir.PatLit{E: e}, nil
	case "tag":
		if len(items) != 3 {
			return nil, fmt.Errorf("irtext: %s: (tag Name inner) takes exactly 2 arguments", s.pos(filename))
		}
		tagName, ok := items[1].sym()
		if !ok {
			return nil, fmt.Errorf("irtext: %s: tag pattern name must be a bare symbol", s.pos(filename))
		}
		inner, err := a.assemblePattern(filename, items[2], sc)
		if err != nil {
			return nil, err
		}
		return ir.PatTag{TagName: tagName, Inner: inner}, nil
	case "tuple":
		elems := make([]ir.Pattern, len(items)-1)
		for i, e := range items[1:] {
			p, err := a.assemblePattern(filename, e, sc)
			if err != nil {
				return nil, err
			}
			elems[i] = p
		}
		return ir.PatTuple{Elems: elems}, nil
	default:
		return nil, fmt.Errorf("irtext: %s: unknown pattern form %q", s.pos(filename), kw)
	}
}

// (facts (tableName v1 v2 ...) ...)
func (a *Assembler) assembleFacts(filename string, items []*Sexpr) error {
	for _, row := range items[1:] {
		rowItems, ok := row.isList()
		if !ok || len(rowItems) == 0 {
			return fmt.Errorf("irtext: %s: facts row must be a non-empty list", row.pos(filename))
		}
		tableName, ok := rowItems[0].sym()
		if !ok {
			return fmt.Errorf("irtext: %s: facts row table name must be a bare symbol", rowItems[0].pos(filename))
		}
		tableSym, ok := a.tableSyms[tableName]
		if !ok {
			return fmt.Errorf("irtext: %s: facts row references unknown table %q", rowItems[0].pos(filename), tableName)
		}
		elems := make([]value.Value, len(rowItems)-1)
		for i, v := range rowItems[1:] {
			val, err := parseLiteralValue(filename, v)
			if err != nil {
				return err
			}
			elems[i] = val
		}
		a.facts[tableSym] = append(a.facts[tableSym], value.NewTuple(elems...))
	}
	return nil
}

// parseLiteralValue reads a fact-row atom directly into a runtime Value,
// bypassing ir.Expr entirely — facts are concrete data, not code to
// evaluate.
func parseLiteralValue(filename string, s *Sexpr) (value.Value, error) {
	if str, ok := s.str(); ok {
		return value.Str(str), nil
	}
	items, ok := s.isList()
	if ok {
		if len(items) == 2 {
			if kw, kok := items[0].sym(); kok {
				raw, rok := items[1].sym()
				if rok {
					switch kw {
					case "i8":
						n, err := strconv.ParseInt(raw, 10, 8)
						return value.Int8(n), wrapParseErr(filename, items[1], err)
					case "i16":
						n, err := strconv.ParseInt(raw, 10, 16)
						return value.Int16(n), wrapParseErr(filename, items[1], err)
					case "i32":
						n, err := strconv.ParseInt(raw, 10, 32)
						return value.Int32(n), wrapParseErr(filename, items[1], err)
					case "i64":
						n, err := strconv.ParseInt(raw, 10, 64)
						return value.Int64(n), wrapParseErr(filename, items[1], err)
					case "bigint":
						n, ok := new(big.Int).SetString(raw, 10)
						if !ok {
							return nil, fmt.Errorf("irtext: %s: invalid bigint literal %q", items[1].pos(filename), raw)
						}
						return value.NewBigInt(n), nil
					case "f32":
						f, err := strconv.ParseFloat(raw, 32)
						return value.Float32(f), wrapParseErr(filename, items[1], err)
					case "f64":
						f, err := strconv.ParseFloat(raw, 64)
						return value.Float64(f), wrapParseErr(filename, items[1], err)
					}
				}
			}
		}
		return nil, fmt.Errorf("irtext: %s: unrecognized fact value form", s.pos(filename))
	}
	name, _ := s.sym()
	switch name {
	case "true":
		return value.Bool(true), nil
	case "false":
		return value.Bool(false), nil
	case "unit":
		return value.Unit{}, nil
	}
	if n, err := strconv.ParseInt(name, 10, 64); err == nil {
		return value.Int32(n), nil
	}
	if f, err := strconv.ParseFloat(name, 64); err == nil {
		return value.Float64(f), nil
	}
	return nil, fmt.Errorf("irtext: %s: unrecognized fact value %q", s.pos(filename), name)
}

func wrapParseErr(filename string, s *Sexpr, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("irtext: %s: %w", s.pos(filename), err)
}
