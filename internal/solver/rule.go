package solver

import (
	"github.com/strata-lang/strata/internal/eval"
	"github.com/strata-lang/strata/internal/ierrors"
	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/runtimeenv"
	"github.com/strata-lang/strata/internal/value"
)

// binding maps a variable symbol's id to the Value it is currently bound
// to within one candidate row of a constraint's evaluation.
type binding map[uint64]value.Value

func (b binding) clone() binding {
	n := make(binding, len(b)+1)
	for k, v := range b {
		n[k] = v
	}
	return n
}

// evalBodyAtom evaluates one body predicate against every binding produced
// so far, returning the (possibly larger, possibly smaller) set of
// surviving bindings.
func (e *Engine) evalBodyAtom(atom ir.PredBody, bindings []binding, at ir.Pos) ([]binding, error) {
	switch a := atom.(type) {
	case ir.BodyPositive:
		return e.evalBodyPositive(a, bindings)
	case ir.BodyNegative:
		return e.evalBodyNegative(a, bindings, at)
	case ir.BodyFilter:
		return e.evalBodyFilter(a, bindings, at)
	case ir.BodyLoop:
		return e.evalBodyLoop(a, bindings, at)
	default:
		return nil, ierrors.IntegrityViolation(at, "internal invariant violation: unhandled body predicate %T", atom)
	}
}

func (e *Engine) evalBodyPositive(a ir.BodyPositive, bindings []binding) ([]binding, error) {
	tuples, err := e.Stores.ScanAsTuples(a.Table)
	if err != nil {
		return nil, err
	}
	var out []binding
	for _, b := range bindings {
		for _, tup := range tuples {
			next, ok, err := tryJoin(e.Eval, b, a.Terms, tup)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, next)
			}
		}
	}
	return out, nil
}

// evalBodyNegative fails-close: the binding survives iff no stored tuple
// matches Terms under it. Every BTVar in Terms must already be bound — this
// is the one place the stratified driver enforces that negation can only
// test already-known values, never invent new ones.
func (e *Engine) evalBodyNegative(a ir.BodyNegative, bindings []binding, at ir.Pos) ([]binding, error) {
	for _, t := range a.Terms {
		if v, ok := t.(ir.BTVar); ok {
			for _, b := range bindings {
				if _, bound := b[v.Sym.ID()]; !bound {
					return nil, ierrors.IntegrityViolation(at, "negated atom over %s references unbound variable %s", a.Table.Name, v.Sym.Name)
				}
			}
		}
	}
	tuples, err := e.Stores.ScanAsTuples(a.Table)
	if err != nil {
		return nil, err
	}
	var out []binding
	for _, b := range bindings {
		matched := false
		for _, tup := range tuples {
			_, ok, err := tryJoin(e.Eval, b, a.Terms, tup)
			if err != nil {
				return nil, err
			}
			if ok {
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, b)
		}
	}
	return out, nil
}

func (e *Engine) evalBodyFilter(a ir.BodyFilter, bindings []binding, at ir.Pos) ([]binding, error) {
	var out []binding
	for _, b := range bindings {
		args := make([]value.Value, len(a.Terms))
		for i, t := range a.Terms {
			v, err := resolveBodyTermValue(e.Eval, t, b, at)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		result, err := e.Eval.InvokeDefinition(a.DefSym, args, at)
		if err != nil {
			return nil, err
		}
		keep, ok := result.(value.Bool)
		if !ok {
			return nil, ierrors.TypeMismatch(at, "filter %s must return Bool, got %s", a.DefSym.Name, result.Kind())
		}
		if bool(keep) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (e *Engine) evalBodyLoop(a ir.BodyLoop, bindings []binding, at ir.Pos) ([]binding, error) {
	var out []binding
	for _, b := range bindings {
		v, err := resolveHeadTerm(e.Eval, a.HeadTerm, b, at)
		if err != nil {
			return nil, err
		}
		tup, ok := v.(value.Tuple)
		if !ok {
			return nil, ierrors.TypeMismatch(at, "Loop requires a Tuple-producing source, got %s", v.Kind())
		}
		for _, elem := range tup.Elems {
			next := b.clone()
			next[a.Var.ID()] = elem
			out = append(out, next)
		}
	}
	return out, nil
}

// tryJoin matches tuple's columns against terms under binding b, returning
// an extended binding when every term is satisfied. It neither mutates b
// nor any binding already emitted elsewhere.
func tryJoin(ev *eval.Evaluator, b binding, terms []ir.BodyTerm, tuple value.Tuple) (binding, bool, error) {
	if len(terms) != len(tuple.Elems) {
		return nil, false, ierrors.IntegrityViolation(ir.NoPos, "body atom arity mismatch: %d terms vs %d columns", len(terms), len(tuple.Elems))
	}
	next := b.clone()
	for i, term := range terms {
		col := tuple.Elems[i]
		switch tm := term.(type) {
		case ir.BTWild:
			continue
		case ir.BTVar:
			if existing, bound := next[tm.Sym.ID()]; bound {
				if !existing.Equal(col) {
					return nil, false, nil
				}
			} else {
				next[tm.Sym.ID()] = col
			}
		case ir.BTLit:
			lv, err := ev.Evaluate(tm.E, runtimeenv.NewEnv())
			if err != nil {
				return nil, false, err
			}
			if !lv.Equal(col) {
				return nil, false, nil
			}
		case ir.BTPat:
			ok, err := matchPattern(ev, tm.Pattern, col, next)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				return nil, false, nil
			}
		default:
			return nil, false, ierrors.IntegrityViolation(ir.NoPos, "internal invariant violation: unhandled body term %T", term)
		}
	}
	return next, true, nil
}

// matchPattern destructures v against pat, binding any sub-variables pat
// introduces directly into b (b is already a fresh clone by the time this
// is called from tryJoin).
func matchPattern(ev *eval.Evaluator, pat ir.Pattern, v value.Value, b binding) (bool, error) {
	switch p := pat.(type) {
	case ir.PatWild:
		return true, nil
	case ir.PatVar:
		if existing, bound := b[p.Sym.ID()]; bound {
			return existing.Equal(v), nil
		}
		b[p.Sym.ID()] = v
		return true, nil
	case ir.PatLit:
		lv, err := ev.Evaluate(p.E, runtimeenv.NewEnv())
		if err != nil {
			return false, err
		}
		return lv.Equal(v), nil
	case ir.PatTag:
		tag, ok := v.(value.Tag)
		if !ok || tag.Name != p.TagName {
			return false, nil
		}
		return matchPattern(ev, p.Inner, tag.Payload, b)
	case ir.PatTuple:
		tup, ok := v.(value.Tuple)
		if !ok || len(tup.Elems) != len(p.Elems) {
			return false, nil
		}
		for i, sub := range p.Elems {
			ok, err := matchPattern(ev, sub, tup.Elems[i], b)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil
	default:
		return false, ierrors.IntegrityViolation(ir.NoPos, "internal invariant violation: unhandled pattern %T", pat)
	}
}

// resolveHeadTerm evaluates a HeadTerm under binding b: HTVar reads b,
// HTLit evaluates its expression under an empty environment (ignoring b
// entirely, per §3), and HTApp resolves its VarArgs from b and invokes
// DefSym through the evaluator's definition-invocation path.
func resolveHeadTerm(ev *eval.Evaluator, ht ir.HeadTerm, b binding, at ir.Pos) (value.Value, error) {
	switch t := ht.(type) {
	case ir.HTVar:
		v, ok := b[t.Sym.ID()]
		if !ok {
			return nil, ierrors.IntegrityViolation(at, "head term references unbound variable %s", t.Sym.Name)
		}
		return v, nil
	case ir.HTLit:
		return ev.Evaluate(t.E, runtimeenv.NewEnv())
	case ir.HTApp:
		args := make([]value.Value, len(t.VarArgs))
		for i, sym := range t.VarArgs {
			v, ok := b[sym.ID()]
			if !ok {
				return nil, ierrors.IntegrityViolation(at, "head application references unbound variable %s", sym.Name)
			}
			args[i] = v
		}
		return ev.InvokeDefinition(t.DefSym, args, at)
	default:
		return nil, ierrors.IntegrityViolation(at, "internal invariant violation: unhandled head term %T", ht)
	}
}

// resolveBodyTermValue extracts a concrete Value for a BodyTerm used as a
// BodyFilter argument: a bound variable's value, a literal's evaluation, or
// an error for the positions that only make sense when matching against an
// existing column (Wild, Pat).
func resolveBodyTermValue(ev *eval.Evaluator, term ir.BodyTerm, b binding, at ir.Pos) (value.Value, error) {
	switch t := term.(type) {
	case ir.BTVar:
		v, ok := b[t.Sym.ID()]
		if !ok {
			return nil, ierrors.IntegrityViolation(at, "filter argument references unbound variable %s", t.Sym.Name)
		}
		return v, nil
	case ir.BTLit:
		return ev.Evaluate(t.E, runtimeenv.NewEnv())
	default:
		return nil, ierrors.IntegrityViolation(at, "filter arguments must be a bound variable or literal, got %T", term)
	}
}
