package eval

import (
	"github.com/strata-lang/strata/internal/ierrors"
	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/runtimeenv"
	"github.com/strata-lang/strata/internal/value"
)

// evalArgs evaluates exprs left-to-right, the order every call form commits
// to (§4.1 "Args left-to-right").
func (ev *Evaluator) evalArgs(exprs []ir.Expr, env *runtimeenv.Env) ([]value.Value, error) {
	args := make([]value.Value, len(exprs))
	for i, a := range exprs {
		v, err := ev.Evaluate(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func offsetersOf(syms []ir.Symbol) []runtimeenv.Offseter {
	out := make([]runtimeenv.Offseter, len(syms))
	for i, s := range syms {
		out[i] = s
	}
	return out
}

// evalApplyDef backs both ApplyDef and ApplyTail: evaluate Args, then
// invoke root.Defs[Sym] through the Linker, falling back to the
// definition's own body when no native implementation is bound.
func (ev *Evaluator) evalApplyDef(sym ir.Symbol, argExprs []ir.Expr, pos ir.Pos, env *runtimeenv.Env) (value.Value, error) {
	args, err := ev.evalArgs(argExprs, env)
	if err != nil {
		return nil, err
	}
	return ev.invokeDefinition(sym, args, pos)
}

// InvokeDefinition invokes root.Defs[sym] with pre-evaluated args, through
// the Linker first and falling back to the definition's own body — the
// entry point internal/solver uses to call a lattice bundle's Lub, a rule's
// BodyFilter definition and an App head term without duplicating call
// semantics.
func (ev *Evaluator) InvokeDefinition(sym ir.Symbol, args []value.Value, pos ir.Pos) (value.Value, error) {
	return ev.invokeDefinition(sym, args, pos)
}

func (ev *Evaluator) invokeDefinition(sym ir.Symbol, args []value.Value, pos ir.Pos) (value.Value, error) {
	if fn, ok := ev.Linker.ResolveNative(sym.ID()); ok {
		v, err := fn(args)
		if err != nil {
			return nil, ierrors.Host(pos, err)
		}
		return v, nil
	}
	def, ok := ev.Root.Definition(sym)
	if !ok {
		return nil, ierrors.TypeMismatch(pos, "unknown definition %s", sym.Name)
	}
	if len(args) != len(def.Formals) {
		return nil, ierrors.IntegrityViolation(pos, "definition %s expects %d args, got %d", sym.Name, len(def.Formals), len(args))
	}
	callEnv := runtimeenv.NewCallEnv(offsetersOf(def.Formals), nil, args)
	return ev.Evaluate(def.Body, callEnv)
}

// evalApplyHook calls out to a host-provided function identified by Hook
// (§4.1 ApplyHook); its return value must already be a valid Value, which
// the evaluator trusts without further checking.
func (ev *Evaluator) evalApplyHook(e ir.ApplyHook, env *runtimeenv.Env) (value.Value, error) {
	args, err := ev.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}
	fn, ok := ev.Linker.ResolveHook(e.Hook)
	if !ok {
		return nil, ierrors.Host(e.At, errUnresolvedNative(e.Hook))
	}
	v, err := fn(args)
	if err != nil {
		return nil, ierrors.Host(e.At, err)
	}
	return v, nil
}

// evalMkClosureDef allocates a Closure over DefSym, copying one capture per
// FreeVars entry from env. A free var not yet bound (the self-reference a
// LetRec is about to back-patch) is left as a nil slot rather than failing.
func (ev *Evaluator) evalMkClosureDef(e ir.MkClosureDef, env *runtimeenv.Env) (value.Value, error) {
	captures := make([]value.Value, len(e.FreeVars))
	for i, fv := range e.FreeVars {
		if v, ok := env.Get(fv.Offset); ok {
			captures[i] = v
		}
	}
	return value.NewClosure(e.DefSym, captures), nil
}

// evalApplyClosure evaluates Exp to a Closure, evaluates Args, and binds the
// callee's formals: the first N to the closure's captures, the remainder to
// Args (§4.1 ApplyClosure).
func (ev *Evaluator) evalApplyClosure(e ir.ApplyClosure, env *runtimeenv.Env) (value.Value, error) {
	cv, err := ev.Evaluate(e.Exp, env)
	if err != nil {
		return nil, err
	}
	closure, ok := cv.(value.Closure)
	if !ok {
		return nil, ierrors.TypeMismatch(e.At, "ApplyClosure requires a Closure, got %s", cv.Kind())
	}
	defSym, ok := closure.DefSymbol.(ir.Symbol)
	if !ok {
		return nil, ierrors.IntegrityViolation(e.At, "internal invariant violation: closure DefSymbol is not an ir.Symbol")
	}
	def, ok := ev.Root.Definition(defSym)
	if !ok {
		return nil, ierrors.TypeMismatch(e.At, "unknown definition %s", defSym.Name)
	}
	args, err := ev.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}
	if len(closure.Captures)+len(args) != len(def.Formals) {
		return nil, ierrors.IntegrityViolation(e.At, "closure %s expects %d formals, got %d captures + %d args",
			defSym.Name, len(def.Formals), len(closure.Captures), len(args))
	}
	callEnv := runtimeenv.NewCallEnv(offsetersOf(def.Formals), closure.Captures, args)
	return ev.Evaluate(def.Body, callEnv)
}

// evalLetRec allocates the MkClosureDef in E1, then back-patches the
// closure's own capture slot at Sym.Offset with the closure itself before
// binding Sym in env for E2 — the "back-patch slot written once, then
// logically immutable" technique (§9).
func (ev *Evaluator) evalLetRec(e ir.LetRec, env *runtimeenv.Env) (value.Value, error) {
	mk, ok := e.E1.(ir.MkClosureDef)
	if !ok {
		return nil, ierrors.IntegrityViolation(e.At, "internal invariant violation: LetRec requires E1 to be MkClosureDef, got %T", e.E1)
	}
	cv, err := ev.evalMkClosureDef(mk, env)
	if err != nil {
		return nil, err
	}
	closure := cv.(value.Closure)
	if e.Sym.Offset < 0 || e.Sym.Offset >= len(closure.Captures) {
		return nil, ierrors.IntegrityViolation(e.At, "LetRec self-reference offset %d out of range for %d captures", e.Sym.Offset, len(closure.Captures))
	}
	closure.Captures[e.Sym.Offset] = closure
	return ev.Evaluate(e.E2, env.Extend(e.Sym.Offset, closure))
}
