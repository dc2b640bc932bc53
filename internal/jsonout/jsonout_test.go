package jsonout

import (
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/store/latfact"
	"github.com/strata-lang/strata/internal/store/relfact"
	"github.com/strata-lang/strata/internal/value"
)

type fakeDump struct {
	relations map[uint64]*relfact.Store
	lattices  map[uint64]*latfact.Store
}

func (f fakeDump) Relation(sym ir.Symbol) (*relfact.Store, bool) {
	st, ok := f.relations[sym.ID()]
	return st, ok
}

func (f fakeDump) Lattice(sym ir.Symbol) (*latfact.Store, bool) {
	st, ok := f.lattices[sym.ID()]
	return st, ok
}

func TestRenderTablesIncludesRelationRows(t *testing.T) {
	root := ir.NewRoot("t")
	edgeSym := ir.NewSymbol(ir.SymTable, "Edge", 0)
	root.AddTable(&ir.Table{Sym: edgeSym, Name: "Edge", Kind: ir.TableRelation, Arity: 2})

	relStore := relfact.NewStore(2, nil)
	relStore.Insert(value.NewTuple(value.Int32(1), value.Int32(2)))

	dump := fakeDump{relations: map[uint64]*relfact.Store{edgeSym.ID(): relStore}}
	out, err := RenderTables(root, dump)
	if err != nil {
		t.Fatal(err)
	}
	if !gjson.Valid(out) {
		t.Fatalf("invalid JSON: %s", out)
	}
	if !strings.Contains(gjson.Get(out, "Edge").Raw, "1") {
		t.Fatalf("expected Edge rows in output: %s", out)
	}
}

func TestRenderTablesIncludesLatticeEntries(t *testing.T) {
	root := ir.NewRoot("t")
	resultSym := ir.NewSymbol(ir.SymTable, "Result", 0)
	root.AddTable(&ir.Table{Sym: resultSym, Name: "Result", Kind: ir.TableLattice, Keys: 1, ValueType: ir.TStr})

	latStore := latfact.NewStore(1, value.Str("bottom"))
	latStore.Upsert(value.NewTuple(value.Int32(1)), value.Str("top"), func(a, b value.Value) (value.Value, error) { return b, nil })

	dump := fakeDump{lattices: map[uint64]*latfact.Store{resultSym.ID(): latStore}}
	out, err := RenderTables(root, dump)
	if err != nil {
		t.Fatal(err)
	}
	if !gjson.Valid(out) {
		t.Fatalf("invalid JSON: %s", out)
	}
	if !strings.Contains(out, "top") {
		t.Fatalf("expected lattice value in output: %s", out)
	}
}
