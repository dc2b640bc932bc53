package solver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"go.uber.org/zap"

	"github.com/strata-lang/strata/internal/eval"
	"github.com/strata-lang/strata/internal/ierrors"
	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/obslog"
	"github.com/strata-lang/strata/internal/runtimeenv"
	"github.com/strata-lang/strata/internal/value"
)

// Engine drives stratified saturation over a Root: each Stratum's
// constraints are iterated, concurrently within one round, until a full
// round leaves every store in the stratum unchanged (§4.5).
type Engine struct {
	Root   *ir.Root
	Eval   *eval.Evaluator
	Stores *Stores

	// MaxStratumIterations caps how many rounds a single stratum may take
	// before Saturate reports IntegrityViolation instead of looping
	// forever over a non-monotone rule set. Zero means unlimited.
	MaxStratumIterations int

	// Logger traces one entry per stratum round plus a terminal
	// saturation-complete/failed entry. Defaults to obslog.Nop() so New's
	// callers don't have to opt in explicitly; set Logger after New to get
	// --verbose tracing.
	Logger *zap.Logger
}

// New builds an Engine over root, allocating fresh stores and resolving
// every lattice's Bot expression up front.
func New(root *ir.Root, ev *eval.Evaluator, maxStratumIterations int) (*Engine, error) {
	stores := NewStores(root)
	e := &Engine{Root: root, Eval: ev, Stores: stores, MaxStratumIterations: maxStratumIterations, Logger: obslog.Nop()}
	for _, t := range root.Tables() {
		if t.Kind != ir.TableLattice {
			continue
		}
		bundle, ok := root.Lattice(t.ValueType)
		if !ok {
			return nil, ierrors.IntegrityViolation(ir.NoPos, "lattice table %s has no registered LatticeBundle for type %s", t.Name, t.ValueType)
		}
		bot, err := ev.Evaluate(bundle.Bot, runtimeenv.NewEnv())
		if err != nil {
			return nil, err
		}
		st, _ := stores.Lattice(t.Sym)
		st.SetBot(bot)
	}
	return e, nil
}

// Saturate seeds the initial relation facts, then runs every stratum in
// order to its fixed point.
func (e *Engine) Saturate(ctx context.Context, initialFacts map[ir.Symbol][]value.Tuple) error {
	for sym, facts := range initialFacts {
		if err := e.Stores.SeedRelation(sym, facts); err != nil {
			return err
		}
	}
	for i, stratum := range e.Root.Strata {
		if err := e.saturateStratum(ctx, i, stratum); err != nil {
			obslog.SaturationDone(e.Logger, len(e.Root.Strata), err)
			return err
		}
	}
	obslog.SaturationDone(e.Logger, len(e.Root.Strata), nil)
	return nil
}

// derivedFact is a pending store write produced by one constraint's head,
// buffered until the whole round's concurrent evaluation finishes so every
// constraint in a round reads the same store snapshot (§5).
type derivedFact struct {
	table  ir.Symbol
	kind   ir.TableKind
	tuple  value.Tuple // Relation
	key    value.Tuple // Lattice
	val    value.Value // Lattice
	at     ir.Pos
	denial bool // HeadFalse fired: this round must fail
}

func (e *Engine) saturateStratum(ctx context.Context, strataIndex int, stratum ir.Stratum) error {
	for iter := 0; ; iter++ {
		if e.MaxStratumIterations > 0 && iter >= e.MaxStratumIterations {
			return ierrors.IntegrityViolation(ir.NoPos, "stratum did not converge within %d iterations", e.MaxStratumIterations)
		}

		results := make([][]derivedFact, len(stratum.Constraints))
		g, gctx := errgroup.WithContext(ctx)
		for i, c := range stratum.Constraints {
			i, c := i, c
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				derived, err := e.evalConstraint(c)
				if err != nil {
					return err
				}
				results[i] = derived
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		changedAny := false
		for _, derivedList := range results {
			for _, df := range derivedList {
				changed, err := e.applyDerivedFact(df)
				if err != nil {
					return err
				}
				if changed {
					changedAny = true
				}
			}
		}
		obslog.StratumRound(e.Logger, strataIndex, iter, changedAny)
		if !changedAny {
			return nil
		}
	}
}

// evalConstraint joins c.Body left-to-right starting from a single empty
// binding, then evaluates the head once per surviving binding.
func (e *Engine) evalConstraint(c ir.Constraint) ([]derivedFact, error) {
	bindings := []binding{make(binding)}
	for _, atom := range c.Body {
		next, err := e.evalBodyAtom(atom, bindings, c.At)
		if err != nil {
			return nil, err
		}
		bindings = next
		if len(bindings) == 0 {
			return nil, nil
		}
	}
	var out []derivedFact
	for _, b := range bindings {
		df, emit, err := e.evalHead(c.Head, b, c.At)
		if err != nil {
			return nil, err
		}
		if emit {
			out = append(out, df)
		}
	}
	return out, nil
}

func (e *Engine) evalHead(head ir.PredHead, b binding, at ir.Pos) (derivedFact, bool, error) {
	switch h := head.(type) {
	case ir.HeadTrue:
		return derivedFact{}, false, nil
	case ir.HeadFalse:
		return derivedFact{at: at, denial: true}, true, nil
	case ir.HeadNegative:
		return derivedFact{}, false, nil
	case ir.HeadPositive:
		return e.evalHeadPositive(h, b, at)
	default:
		return derivedFact{}, false, ierrors.IntegrityViolation(at, "internal invariant violation: unhandled predicate head %T", head)
	}
}

func (e *Engine) evalHeadPositive(h ir.HeadPositive, b binding, at ir.Pos) (derivedFact, bool, error) {
	table, ok := e.Stores.Table(h.Table)
	if !ok {
		return derivedFact{}, false, ierrors.IntegrityViolation(at, "head references unknown table %s", h.Table.Name)
	}
	switch table.Kind {
	case ir.TableRelation:
		if len(h.Terms) != table.Arity {
			return derivedFact{}, false, ierrors.IntegrityViolation(at, "head for relation %s expects %d terms, got %d", table.Name, table.Arity, len(h.Terms))
		}
		elems := make([]value.Value, len(h.Terms))
		for i, t := range h.Terms {
			v, err := resolveHeadTerm(e.Eval, t, b, at)
			if err != nil {
				return derivedFact{}, false, err
			}
			elems[i] = v
		}
		return derivedFact{table: h.Table, kind: ir.TableRelation, tuple: value.NewTuple(elems...), at: at}, true, nil
	case ir.TableLattice:
		if len(h.Terms) != table.Keys+1 {
			return derivedFact{}, false, ierrors.IntegrityViolation(at, "head for lattice %s expects %d key terms + 1 value term, got %d", table.Name, table.Keys, len(h.Terms))
		}
		keyElems := make([]value.Value, table.Keys)
		for i := 0; i < table.Keys; i++ {
			v, err := resolveHeadTerm(e.Eval, h.Terms[i], b, at)
			if err != nil {
				return derivedFact{}, false, err
			}
			keyElems[i] = v
		}
		val, err := resolveHeadTerm(e.Eval, h.Terms[table.Keys], b, at)
		if err != nil {
			return derivedFact{}, false, err
		}
		return derivedFact{table: h.Table, kind: ir.TableLattice, key: value.NewTuple(keyElems...), val: val, at: at}, true, nil
	default:
		return derivedFact{}, false, ierrors.IntegrityViolation(at, "internal invariant violation: unhandled table kind for %s", table.Name)
	}
}

func (e *Engine) applyDerivedFact(df derivedFact) (bool, error) {
	if df.denial {
		return false, ierrors.IntegrityViolation(df.at, "denial constraint fired: head is False but its body was satisfied")
	}
	switch df.kind {
	case ir.TableRelation:
		st, ok := e.Stores.Relation(df.table)
		if !ok {
			return false, ierrors.IntegrityViolation(df.at, "no relation store for %s", df.table.Name)
		}
		return st.Insert(df.tuple)
	case ir.TableLattice:
		st, ok := e.Stores.Lattice(df.table)
		if !ok {
			return false, ierrors.IntegrityViolation(df.at, "no lattice store for %s", df.table.Name)
		}
		table, ok := e.Stores.Table(df.table)
		if !ok {
			return false, ierrors.IntegrityViolation(df.at, "no table schema for %s", df.table.Name)
		}
		bundle, ok := e.Root.Lattice(table.ValueType)
		if !ok {
			return false, ierrors.IntegrityViolation(df.at, "no LatticeBundle registered for type %s", table.ValueType)
		}
		lub := func(a, b value.Value) (value.Value, error) {
			return e.Eval.InvokeDefinition(bundle.Lub, []value.Value{a, b}, df.at)
		}
		return st.Upsert(df.key, df.val, lub)
	default:
		return false, nil
	}
}
