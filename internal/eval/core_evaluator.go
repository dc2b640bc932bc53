// Package eval implements the CEK-style tree-walking expression evaluator
// (spec.md §4.1): a recursive Evaluate over the ir.Expr variants, pure with
// respect to everything except Box cells and native/hook invocations.
package eval

import (
	"github.com/strata-lang/strata/internal/ierrors"
	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/runtimeenv"
	"github.com/strata-lang/strata/internal/value"
)

// Evaluator holds the two pieces of context every Evaluate call needs: the
// Root supplying definitions/enums/tables, and the Linker resolving
// definition symbols and hooks to host callbacks.
type Evaluator struct {
	Root   *ir.Root
	Linker *runtimeenv.Linker
}

// New returns an Evaluator over root, resolving native/host calls through
// linker. linker may be nil if the program makes no ApplyHook/native calls.
func New(root *ir.Root, linker *runtimeenv.Linker) *Evaluator {
	if linker == nil {
		linker = runtimeenv.NewLinker()
	}
	return &Evaluator{Root: root, Linker: linker}
}

// Evaluate recurses over expr under env, producing a Value or an
// *ierrors.Error. Every failure propagates immediately; there is no
// recovery inside the evaluator (§4.1 Failure semantics).
func (ev *Evaluator) Evaluate(expr ir.Expr, env *runtimeenv.Env) (value.Value, error) {
	switch e := expr.(type) {

	// ---- Literals ----
	case ir.LitUnit:
		return value.Unit{}, nil
	case ir.LitBool:
		return value.Bool(e.Value), nil
	case ir.LitChar:
		return value.Char(e.Value), nil
	case ir.LitFloat32:
		return value.Float32(e.Value), nil
	case ir.LitFloat64:
		return value.Float64(e.Value), nil
	case ir.LitInt:
		return intLiteral(e)
	case ir.LitBigInt:
		return value.NewBigInt(e.Value), nil
	case ir.LitStr:
		return value.Str(e.Value), nil

	// ---- Variables and definitions ----
	case ir.Var:
		v, ok := env.Get(e.Sym.Offset)
		if !ok {
			return nil, ierrors.UnboundVariable(e.At, e.Sym.Name)
		}
		return v, nil
	case ir.Def:
		def, ok := ev.Root.Definition(e.Sym)
		if !ok {
			return nil, ierrors.TypeMismatch(e.At, "unknown definition %s", e.Sym.Name)
		}
		return ev.Evaluate(def.Body, runtimeenv.NewEnv())

	// ---- Closures and calls ----
	case ir.MkClosureDef:
		return ev.evalMkClosureDef(e, env)
	case ir.ApplyDef:
		return ev.evalApplyDef(e.Sym, e.Args, e.At, env)
	case ir.ApplyTail:
		// ApplyTail is observably identical to ApplyDef (§4.1); only an
		// optimizing evaluator would treat it differently.
		return ev.evalApplyDef(e.Sym, e.Args, e.At, env)
	case ir.ApplyHook:
		return ev.evalApplyHook(e, env)
	case ir.ApplyClosure:
		return ev.evalApplyClosure(e, env)

	// ---- Operators ----
	case ir.Unary:
		return ev.evalUnary(e, env)
	case ir.Binary:
		return ev.evalBinary(e, env)

	// ---- Control flow and binding ----
	case ir.IfThenElse:
		cond, err := ev.Evaluate(e.Cond, env)
		if err != nil {
			return nil, err
		}
		b, ok := cond.(value.Bool)
		if !ok {
			return nil, ierrors.TypeMismatch(e.At, "if condition must be Bool, got %s", cond.Kind())
		}
		if bool(b) {
			return ev.Evaluate(e.Then, env)
		}
		return ev.Evaluate(e.Else, env)
	case ir.Let:
		v1, err := ev.Evaluate(e.E1, env)
		if err != nil {
			return nil, err
		}
		return ev.Evaluate(e.E2, env.Extend(e.Sym.Offset, v1))
	case ir.LetRec:
		return ev.evalLetRec(e, env)

	// ---- ADTs ----
	case ir.Is:
		tv, err := ev.Evaluate(e.E, env)
		if err != nil {
			return nil, err
		}
		tag, ok := tv.(value.Tag)
		if !ok {
			return nil, ierrors.TypeMismatch(e.At, "Is requires a Tag value, got %s", tv.Kind())
		}
		return value.Bool(tag.Name == e.Tag), nil
	case ir.TagExpr:
		payload, err := ev.Evaluate(e.E, env)
		if err != nil {
			return nil, err
		}
		return value.NewTag(e.Tag, payload), nil
	case ir.Untag:
		tv, err := ev.Evaluate(e.E, env)
		if err != nil {
			return nil, err
		}
		tag, ok := tv.(value.Tag)
		if !ok || tag.Name != e.Tag {
			return nil, ierrors.NonExhaustiveMatch(e.At, "expected tag %q, got %s", e.Tag, tv.Kind())
		}
		return tag.Payload, nil

	// ---- Tuples, references ----
	case ir.Index:
		bv, err := ev.Evaluate(e.BaseExpr, env)
		if err != nil {
			return nil, err
		}
		tup, ok := bv.(value.Tuple)
		if !ok || e.Offset < 0 || e.Offset >= len(tup.Elems) {
			return nil, ierrors.TypeMismatch(e.At, "Index out of bounds on %s", bv.Kind())
		}
		return tup.Elems[e.Offset], nil
	case ir.TupleExpr:
		elems := make([]value.Value, len(e.Elems))
		for i, sub := range e.Elems {
			v, err := ev.Evaluate(sub, env)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return value.NewTuple(elems...), nil
	case ir.Ref:
		v, err := ev.Evaluate(e.E, env)
		if err != nil {
			return nil, err
		}
		return value.NewBox(v), nil
	case ir.Deref:
		bv, err := ev.Evaluate(e.E, env)
		if err != nil {
			return nil, err
		}
		box, ok := bv.(*value.Box)
		if !ok {
			return nil, ierrors.TypeMismatch(e.At, "Deref requires a Box, got %s", bv.Kind())
		}
		return box.Get(), nil
	case ir.Assign:
		bv, err := ev.Evaluate(e.E1, env)
		if err != nil {
			return nil, err
		}
		box, ok := bv.(*value.Box)
		if !ok {
			return nil, ierrors.TypeMismatch(e.At, "Assign target must be a Box, got %s", bv.Kind())
		}
		v2, err := ev.Evaluate(e.E2, env)
		if err != nil {
			return nil, err
		}
		box.Set(v2)
		return value.Unit{}, nil

	// ---- Native interop boundary ----
	case ir.NativeConstructor:
		return ev.evalNative(e.At, "construct:"+e.TypeName, nil, e.Args, env)
	case ir.NativeField:
		return ev.evalNative(e.At, "field:"+e.Field, e.Receiver, nil, env)
	case ir.NativeMethod:
		return ev.evalNative(e.At, "method:"+e.Method, e.Receiver, e.Args, env)

	// ---- Unconditional failures ----
	case ir.UserError:
		return nil, ierrors.UserErr(e.At, e.Message)
	case ir.MatchError:
		return nil, ierrors.NonExhaustiveMatch(e.At, "no pattern matched")
	case ir.SwitchError:
		return nil, ierrors.NonExhaustiveSwitch(e.At, "no switch case matched")

	// ---- Illegal at evaluation time ----
	case ir.Existential:
		return nil, ierrors.TypeMismatch(e.At, "internal invariant violation: Existential reached at evaluation time")
	case ir.Universal:
		return nil, ierrors.TypeMismatch(e.At, "internal invariant violation: Universal reached at evaluation time")

	default:
		return nil, ierrors.TypeMismatch(ir.NoPos, "internal invariant violation: unhandled expression kind %T", expr)
	}
}

func intLiteral(e ir.LitInt) (value.Value, error) {
	switch e.Typ {
	case ir.TInt8:
		return value.Int8(e.Value), nil
	case ir.TInt16:
		return value.Int16(e.Value), nil
	case ir.TInt32:
		return value.Int32(e.Value), nil
	case ir.TInt64:
		return value.Int64(e.Value), nil
	default:
		return nil, ierrors.TypeMismatch(e.At, "LitInt has non-integer type tag %s", e.Typ)
	}
}

// evalNative is the reflective host-call boundary: NativeConstructor/
// Field/Method are preserved as a seam (§4.1) and dispatched through a hook
// named by convention ("construct:T", "field:f", "method:m") rather than
// reflecting over Go types directly — the core only needs these to produce
// Values, and the Linker's hook registry is already the mechanism for
// "host-provided unsafe function invoked with an argument array" (§6).
func (ev *Evaluator) evalNative(pos ir.Pos, hookName string, receiver ir.Expr, argExprs []ir.Expr, env *runtimeenv.Env) (value.Value, error) {
	var args []value.Value
	if receiver != nil {
		rv, err := ev.Evaluate(receiver, env)
		if err != nil {
			return nil, err
		}
		args = append(args, rv)
	}
	for _, a := range argExprs {
		v, err := ev.Evaluate(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	fn, ok := ev.Linker.ResolveHook(hookName)
	if !ok {
		return nil, ierrors.Host(pos, errUnresolvedNative(hookName))
	}
	v, err := fn(args)
	if err != nil {
		return nil, ierrors.Host(pos, err)
	}
	return v, nil
}

type unresolvedNativeError string

func (e unresolvedNativeError) Error() string { return "unresolved native call: " + string(e) }

func errUnresolvedNative(name string) error { return unresolvedNativeError(name) }
