package solver

import (
	"context"
	"testing"

	"github.com/strata-lang/strata/internal/eval"
	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/runtimeenv"
	"github.com/strata-lang/strata/internal/value"
)

func edgeTuple(a, b int32) value.Tuple {
	return value.NewTuple(value.Int32(a), value.Int32(b))
}

func TestSaturateTransitiveClosureOverPath(t *testing.T) {
	edgeSym := ir.NewSymbol(ir.SymTable, "Edge", 0)
	pathSym := ir.NewSymbol(ir.SymTable, "Path", 0)
	x := ir.NewSymbol(ir.SymVariable, "x", 0)
	y := ir.NewSymbol(ir.SymVariable, "y", 0)
	z := ir.NewSymbol(ir.SymVariable, "z", 0)

	root := ir.NewRoot("transitive-closure")
	root.AddTable(&ir.Table{Sym: edgeSym, Name: "Edge", Kind: ir.TableRelation, Arity: 2})
	root.AddTable(&ir.Table{Sym: pathSym, Name: "Path", Kind: ir.TableRelation, Arity: 2})

	base := ir.Constraint{
		Head: ir.HeadPositive{Table: pathSym, Terms: []ir.HeadTerm{ir.HTVar{Sym: x}, ir.HTVar{Sym: y}}},
		Body: []ir.PredBody{
			ir.BodyPositive{Table: edgeSym, Terms: []ir.BodyTerm{ir.BTVar{Sym: x}, ir.BTVar{Sym: y}}},
		},
		Params: []ir.Symbol{x, y},
	}
	transitive := ir.Constraint{
		Head: ir.HeadPositive{Table: pathSym, Terms: []ir.HeadTerm{ir.HTVar{Sym: x}, ir.HTVar{Sym: z}}},
		Body: []ir.PredBody{
			ir.BodyPositive{Table: edgeSym, Terms: []ir.BodyTerm{ir.BTVar{Sym: x}, ir.BTVar{Sym: y}}},
			ir.BodyPositive{Table: pathSym, Terms: []ir.BodyTerm{ir.BTVar{Sym: y}, ir.BTVar{Sym: z}}},
		},
		Params: []ir.Symbol{x, y, z},
	}
	root.Strata = []ir.Stratum{{Constraints: []ir.Constraint{base, transitive}}}

	ev := eval.New(root, nil)
	engine, err := New(root, ev, 100)
	if err != nil {
		t.Fatal(err)
	}

	initial := map[ir.Symbol][]value.Tuple{
		edgeSym: {edgeTuple(1, 2), edgeTuple(2, 3), edgeTuple(3, 4)},
	}
	if err := engine.Saturate(context.Background(), initial); err != nil {
		t.Fatal(err)
	}

	pathStore, _ := engine.Stores.Relation(pathSym)
	got := pathStore.Scan()
	if len(got) != 6 {
		t.Fatalf("want 6 derived paths, got %d: %v", len(got), got)
	}

	want := map[string]bool{
		"1,2": true, "2,3": true, "3,4": true,
		"1,3": true, "2,4": true, "1,4": true,
	}
	for _, tup := range got {
		key := tup.Elems[0].String() + "," + tup.Elems[1].String()
		if !want[key] {
			t.Fatalf("unexpected derived path %s", key)
		}
		delete(want, key)
	}
	if len(want) != 0 {
		t.Fatalf("missing derived paths: %v", want)
	}
}

func TestSaturateBelnapLatticeJoinsConflictingObservations(t *testing.T) {
	obsSym := ir.NewSymbol(ir.SymTable, "Obs", 0)
	resultSym := ir.NewSymbol(ir.SymTable, "Result", 0)
	k := ir.NewSymbol(ir.SymVariable, "k", 0)
	v := ir.NewSymbol(ir.SymVariable, "v", 1)
	aSym := ir.NewSymbol(ir.SymVariable, "a", 0)
	bSym := ir.NewSymbol(ir.SymVariable, "b", 1)

	root := ir.NewRoot("belnap")
	root.AddTable(&ir.Table{Sym: obsSym, Name: "Obs", Kind: ir.TableRelation, Arity: 2})
	root.AddTable(&ir.Table{Sym: resultSym, Name: "Result", Kind: ir.TableLattice, Keys: 1, ValueType: ir.TStr})

	lubSym := ir.NewSymbol(ir.SymDefinition, "belnapLub", 0)
	root.AddDefinition(&ir.Definition{
		Sym:     lubSym,
		Name:    "belnapLub",
		Formals: []ir.Symbol{aSym, bSym},
		Body: ir.ApplyHook{
			Hook: "belnapLub",
			Args: []ir.Expr{
				ir.Var{Base: ir.Base{Typ: ir.TStr}, Sym: aSym},
				ir.Var{Base: ir.Base{Typ: ir.TStr}, Sym: bSym},
			},
		},
		RetType: ir.TStr,
	})
	root.SetLattice(ir.TStr, ir.LatticeBundle{
		Bot: ir.LitStr{Base: ir.Base{Typ: ir.TStr}, Value: "bottom"},
		Top: ir.LitStr{Base: ir.Base{Typ: ir.TStr}, Value: "top"},
		Lub: lubSym,
	})

	c := ir.Constraint{
		Head: ir.HeadPositive{Table: resultSym, Terms: []ir.HeadTerm{ir.HTVar{Sym: k}, ir.HTVar{Sym: v}}},
		Body: []ir.PredBody{
			ir.BodyPositive{Table: obsSym, Terms: []ir.BodyTerm{ir.BTVar{Sym: k}, ir.BTVar{Sym: v}}},
		},
		Params: []ir.Symbol{k, v},
	}
	root.Strata = []ir.Stratum{{Constraints: []ir.Constraint{c}}}

	linker := runtimeenv.NewLinker()
	linker.BindHook("belnapLub", func(args []value.Value) (value.Value, error) {
		a, b := args[0].(value.Str), args[1].(value.Str)
		if a == b {
			return a, nil
		}
		if a == "bottom" {
			return b, nil
		}
		if b == "bottom" {
			return a, nil
		}
		return value.Str("top"), nil
	})
	ev := eval.New(root, linker)
	engine, err := New(root, ev, 100)
	if err != nil {
		t.Fatal(err)
	}

	initial := map[ir.Symbol][]value.Tuple{
		obsSym: {
			value.NewTuple(value.Int32(1), value.Str("true")),
			value.NewTuple(value.Int32(1), value.Str("false")),
		},
	}
	if err := engine.Saturate(context.Background(), initial); err != nil {
		t.Fatal(err)
	}

	resultStore, _ := engine.Stores.Lattice(resultSym)
	got, ok := resultStore.Get(value.NewTuple(value.Int32(1)))
	if !ok {
		t.Fatal("expected an entry for key 1")
	}
	if got != value.Str("top") {
		t.Fatalf("want top, got %v", got)
	}
}
