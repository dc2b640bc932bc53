package irtext

import (
	"context"
	"testing"

	"github.com/strata-lang/strata/internal/eval"
	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/runtimeenv"
	"github.com/strata-lang/strata/internal/solver"
	"github.com/strata-lang/strata/internal/value"
)

func TestReadStringSimpleCallAndArithmetic(t *testing.T) {
	src := `
(def double (x) (* x 2))
(def main (x) (call double x))
`
	root, facts, err := ReadString("arith", "arith.strata", src)
	if err != nil {
		t.Fatal(err)
	}
	if len(facts) != 0 {
		t.Fatalf("expected no facts, got %v", facts)
	}
	mainDef, ok := root.Definition(findDefSym(t, root, "main"))
	if !ok {
		t.Fatal("main definition missing")
	}

	ev := eval.New(root, nil)
	env := runtimeenv.NewEnv().Extend(mainDef.Formals[0].Offset, value.Int32(5))
	got, err := ev.Evaluate(mainDef.Body, env)
	if err != nil {
		t.Fatal(err)
	}
	if got != value.Int32(10) {
		t.Fatalf("want 10, got %v", got)
	}
}

func TestReadStringEnumTagUntagIs(t *testing.T) {
	src := `
(enum Color (Red Green Blue))
(def isRed (c) (is Red c))
(def unwrap (c) (untag Red c))
`
	root, _, err := ReadString("colors", "colors.strata", src)
	if err != nil {
		t.Fatal(err)
	}
	isRedDef, ok := root.Definition(findDefSym(t, root, "isRed"))
	if !ok {
		t.Fatal("isRed definition missing")
	}
	unwrapDef, ok := root.Definition(findDefSym(t, root, "unwrap"))
	if !ok {
		t.Fatal("unwrap definition missing")
	}

	ev := eval.New(root, nil)
	red := value.NewTag("Red", value.Unit{})

	env := runtimeenv.NewEnv().Extend(isRedDef.Formals[0].Offset, red)
	got, err := ev.Evaluate(isRedDef.Body, env)
	if err != nil {
		t.Fatal(err)
	}
	if got != value.Bool(true) {
		t.Fatalf("want true, got %v", got)
	}

	env2 := runtimeenv.NewEnv().Extend(unwrapDef.Formals[0].Offset, red)
	got2, err := ev.Evaluate(unwrapDef.Body, env2)
	if err != nil {
		t.Fatal(err)
	}
	if got2 != (value.Unit{}) {
		t.Fatalf("want unit payload, got %v", got2)
	}
}

func TestReadStringTransitiveClosureOverPath(t *testing.T) {
	src := `
(table Edge relation 2)
(table Path relation 2)

(stratum
  (constraint (Path x y) <- (Edge x y))
  (constraint (Path x z) <- (Edge x y) (Path y z)))

(facts
  (Edge 1 2)
  (Edge 2 3)
  (Edge 3 4))
`
	root, facts, err := ReadString("transitive-closure", "path.strata", src)
	if err != nil {
		t.Fatal(err)
	}

	ev := eval.New(root, nil)
	engine, err := solver.New(root, ev, 100)
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.Saturate(context.Background(), facts); err != nil {
		t.Fatal(err)
	}

	pathSym := findTableSym(t, root, "Path")
	pathStore, ok := engine.Stores.Relation(pathSym)
	if !ok {
		t.Fatal("Path store missing")
	}
	got := pathStore.Scan()
	if len(got) != 6 {
		t.Fatalf("want 6 derived paths, got %d: %v", len(got), got)
	}
}

func TestReadStringBelnapLatticeJoin(t *testing.T) {
	src := `
(table Obs relation 2)
(table Result lattice 1 type=Str bot=litBottom top=litTop lub=belnapLub)

(def litBottom () "bottom")
(def litTop () "top")
(def belnapLub (a b)
  (if (== a b) a
    (if (== a "bottom") b
      (if (== b "bottom") a "top"))))

(stratum
  (constraint (Result k v) <- (Obs k v)))

(facts
  (Obs 1 "true")
  (Obs 1 "false"))
`
	root, facts, err := ReadString("belnap", "belnap.strata", src)
	if err != nil {
		t.Fatal(err)
	}

	ev := eval.New(root, nil)
	engine, err := solver.New(root, ev, 100)
	if err != nil {
		t.Fatal(err)
	}
	if err := engine.Saturate(context.Background(), facts); err != nil {
		t.Fatal(err)
	}

	resultSym := findTableSym(t, root, "Result")
	resultStore, ok := engine.Stores.Lattice(resultSym)
	if !ok {
		t.Fatal("Result store missing")
	}
	got, ok := resultStore.Get(value.NewTuple(value.Int32(1)))
	if !ok {
		t.Fatal("expected an entry for key 1")
	}
	if got != value.Str("top") {
		t.Fatalf("want top, got %v", got)
	}
}

func findDefSym(t *testing.T, root *ir.Root, name string) ir.Symbol {
	t.Helper()
	for _, d := range root.Definitions() {
		if d.Name == name {
			return d.Sym
		}
	}
	t.Fatalf("no definition named %q", name)
	return ir.Symbol{}
}

func findTableSym(t *testing.T, root *ir.Root, name string) ir.Symbol {
	t.Helper()
	for _, tbl := range root.Tables() {
		if tbl.Name == name {
			return tbl.Sym
		}
	}
	t.Fatalf("no table named %q", name)
	return ir.Symbol{}
}
