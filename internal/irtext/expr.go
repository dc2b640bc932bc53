package irtext

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/strata-lang/strata/internal/ir"
)

var binaryOps = map[string]ir.BinaryOp{
	"+": ir.OpPlusB, "-": ir.OpMinusB, "*": ir.OpTimes, "/": ir.OpDivide,
	"%": ir.OpModulo, "**": ir.OpExponentiate,
	"<": ir.OpLess, "<=": ir.OpLessEqual, ">": ir.OpGreater, ">=": ir.OpGreaterEqual,
	"==": ir.OpEqual, "!=": ir.OpNotEqual,
	"&&": ir.OpLogicalAnd, "||": ir.OpLogicalOr,
	"&": ir.OpBitwiseAnd, "|": ir.OpBitwiseOr, "^": ir.OpBitwiseXor,
	"<<": ir.OpLeftShift, ">>": ir.OpRightShift,
}

// unaryOnlyOps holds the operators that are always unary regardless of
// surrounding argument count (+ and - are overloaded with the binary
// table above and disambiguated by arity in assembleExpr).
var unaryOnlyOps = map[string]ir.UnaryOp{
	"!": ir.OpLogicalNot,
	"~": ir.OpBitwiseNegate,
}

// assembleExpr walks one Sexpr into an ir.Expr under sc, the enclosing
// definition's variable scope.
func (a *Assembler) assembleExpr(filename string, s *Sexpr, sc *scope) (ir.Expr, error) {
	at := s.pos(filename)

	if str, ok := s.str(); ok {
		return ir.LitStr{Base: ir.Base{At: at, Typ: ir.TStr}, Value: str}, nil
	}
	if name, ok := s.sym(); ok {
		return a.assembleAtomExpr(at, name, sc)
	}

	items, _ := s.isList()
	if len(items) == 0 {
		return ir.LitUnit{Base: ir.Base{At: at, Typ: ir.TUnit}}, nil
	}
	head, ok := items[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: expression form must start with an operator or keyword", at)
	}
	args := items[1:]

	if op, ok := unaryOnlyOps[head]; ok {
		if len(args) != 1 {
			return nil, fmt.Errorf("irtext: %s: %s takes exactly 1 argument", at, head)
		}
		e, err := a.assembleExpr(filename, args[0], sc)
		if err != nil {
			return nil, err
		}
		return ir.Unary{Base: ir.Base{At: at, Typ: ir.TUnknown}, Op: op, E: e}, nil
	}
	if (head == "+" || head == "-") && len(args) == 1 {
		op := ir.OpPlus
		if head == "-" {
			op = ir.OpMinus
		}
		e, err := a.assembleExpr(filename, args[0], sc)
		if err != nil {
			return nil, err
		}
		return ir.Unary{Base: ir.Base{At: at, Typ: ir.TUnknown}, Op: op, E: e}, nil
	}
	if op, ok := binaryOps[head]; ok {
		if len(args) != 2 {
			return nil, fmt.Errorf("irtext: %s: %s takes exactly 2 arguments", at, head)
		}
		e1, err := a.assembleExpr(filename, args[0], sc)
		if err != nil {
			return nil, err
		}
		e2, err := a.assembleExpr(filename, args[1], sc)
		if err != nil {
			return nil, err
		}
		return ir.Binary{Base: ir.Base{At: at, Typ: ir.TUnknown}, Op: op, E1: e1, E2: e2}, nil
	}

	switch head {
	case "i8", "i16", "i32", "i64", "bigint", "f32", "f64":
		return a.assembleTypedLiteral(filename, at, head, args)
	case "if":
		return a.assembleIf(filename, at, args, sc)
	case "let":
		return a.assembleLet(filename, at, args, sc)
	case "letrec":
		return a.assembleLetRec(filename, at, args, sc)
	case "closure":
		return a.assembleClosure(filename, at, args, sc)
	case "call":
		return a.assembleApply(filename, at, args, sc, false)
	case "tailcall":
		return a.assembleApply(filename, at, args, sc, true)
	case "hook":
		return a.assembleHook(filename, at, args, sc)
	case "applyclosure":
		return a.assembleApplyClosure(filename, at, args, sc)
	case "tag":
		return a.assembleTagLike(filename, at, args, sc, "tag")
	case "untag":
		return a.assembleTagLike(filename, at, args, sc, "untag")
	case "is":
		return a.assembleTagLike(filename, at, args, sc, "is")
	case "tuple":
		return a.assembleTuple(filename, at, args, sc)
	case "index":
		return a.assembleIndexExpr(filename, at, args, sc)
	case "ref":
		return a.assembleUnaryForm(filename, at, args, sc, func(e ir.Expr) ir.Expr {
			return ir.Ref{Base: ir.Base{At: at, Typ: ir.TBox}, E: e}
		})
	case "deref":
		return a.assembleUnaryForm(filename, at, args, sc, func(e ir.Expr) ir.Expr {
			return ir.Deref{Base: ir.Base{At: at, Typ: ir.TUnknown}, E: e}
		})
	case "set!":
		return a.assembleSet(filename, at, args, sc)
	case "error":
		return a.assembleError(filename, at, args)
	case "match-error":
		return ir.MatchError{Base: ir.Base{At: at, Typ: ir.TUnknown}}, nil
	case "switch-error":
		return ir.SwitchError{Base: ir.Base{At: at, Typ: ir.TUnknown}}, nil
	case "existential":
		return ir.Existential{Base: ir.Base{At: at, Typ: ir.TUnknown}}, nil
	case "universal":
		return ir.Universal{Base: ir.Base{At: at, Typ: ir.TUnknown}}, nil
	case "native-new":
		return a.assembleNativeNew(filename, at, args, sc)
	case "native-field":
		return a.assembleNativeField(filename, at, args, sc)
	case "native-method":
		return a.assembleNativeMethod(filename, at, args, sc)
	default:
		return nil, fmt.Errorf("irtext: %s: unknown expression form %q", at, head)
	}
}

func (a *Assembler) assembleAtomExpr(at ir.Pos, name string, sc *scope) (ir.Expr, error) {
	switch name {
	case "true":
		return ir.LitBool{Base: ir.Base{At: at, Typ: ir.TBool}, Value: true}, nil
	case "false":
		return ir.LitBool{Base: ir.Base{At: at, Typ: ir.TBool}, Value: false}, nil
	case "unit":
		return ir.LitUnit{Base: ir.Base{At: at, Typ: ir.TUnit}}, nil
	}
	if sym, ok := sc.lookup(name); ok {
		return ir.Var{Base: ir.Base{At: at, Typ: ir.TUnknown}, Sym: sym}, nil
	}
	if n, err := strconv.ParseInt(name, 10, 64); err == nil {
		return ir.LitInt{Base: ir.Base{At: at, Typ: ir.TInt32}, Value: n}, nil
	}
	if f, err := strconv.ParseFloat(name, 64); err == nil {
		return ir.LitFloat64{Base: ir.Base{At: at, Typ: ir.TFloat64}, Value: f}, nil
	}
	if sym, ok := a.defSyms[name]; ok {
		return ir.Def{Base: ir.Base{At: at, Typ: ir.TUnknown}, Sym: sym}, nil
	}
	return nil, fmt.Errorf("irtext: %s: unbound name %q", at, name)
}

func (a *Assembler) assembleTypedLiteral(filename string, at ir.Pos, kind string, args []*Sexpr) (ir.Expr, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("irtext: %s: (%s n) takes exactly 1 argument", at, kind)
	}
	raw, ok := args[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: %s literal must be a bare number", at, kind)
	}
	switch kind {
	case "i8", "i16", "i32", "i64":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("irtext: %s: invalid integer literal %q: %w", at, raw, err)
		}
		typ := map[string]ir.Type{"i8": ir.TInt8, "i16": ir.TInt16, "i32": ir.TInt32, "i64": ir.TInt64}[kind]
		return ir.LitInt{Base: ir.Base{At: at, Typ: typ}, Value: n}, nil
	case "bigint":
		n, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("irtext: %s: invalid bigint literal %q", at, raw)
		}
		return ir.LitBigInt{Base: ir.Base{At: at, Typ: ir.TBigInt}, Value: n}, nil
	case "f32":
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return nil, fmt.Errorf("irtext: %s: invalid float32 literal %q: %w", at, raw, err)
		}
		return ir.LitFloat32{Base: ir.Base{At: at, Typ: ir.TFloat32}, Value: float32(f)}, nil
	case "f64":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("irtext: %s: invalid float64 literal %q: %w", at, raw, err)
		}
		return ir.LitFloat64{Base: ir.Base{At: at, Typ: ir.TFloat64}, Value: f}, nil
	default:
		return nil, fmt.Errorf("irtext: %s: internal error: unhandled typed literal kind %q", at, kind)
	}
}

func (a *Assembler) assembleIf(filename string, at ir.Pos, args []*Sexpr, sc *scope) (ir.Expr, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("irtext: %s: (if cond then else) takes exactly 3 arguments", at)
	}
	cond, err := a.assembleExpr(filename, args[0], sc)
	if err != nil {
		return nil, err
	}
	then, err := a.assembleExpr(filename, args[1], sc)
	if err != nil {
		return nil, err
	}
	els, err := a.assembleExpr(filename, args[2], sc)
	if err != nil {
		return nil, err
	}
	return ir.IfThenElse{Base: ir.Base{At: at, Typ: ir.TUnknown}, Cond: cond, Then: then, Else: els}, nil
}

func (a *Assembler) assembleLet(filename string, at ir.Pos, args []*Sexpr, sc *scope) (ir.Expr, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("irtext: %s: (let x e1 e2) takes exactly 3 arguments", at)
	}
	name, ok := args[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: let binding name must be a bare symbol", at)
	}
	e1, err := a.assembleExpr(filename, args[1], sc)
	if err != nil {
		return nil, err
	}
	inner := sc.child()
	sym := inner.bind(name)
	e2, err := a.assembleExpr(filename, args[2], inner)
	if err != nil {
		return nil, err
	}
	return ir.Let{Base: ir.Base{At: at, Typ: ir.TUnknown}, Sym: sym, E1: e1, E2: e2}, nil
}

// (letrec f (closure bodyDefName [free...]) e2)
//
// The evaluator back-patches a LetRec closure's self-reference by writing
// closure.Captures[f.Offset] = closure (§9), which only ever lands in
// bounds when f's FreeVars entry is the closure's only capture and f's
// own stack offset happens to index it — true exactly when the letrec is
// the first binding introduced in its definition body (no preceding let
// has already consumed offset 0). A closure whose free-variable list is
// anything other than f alone is rejected here; a letrec that is not the
// first binding is accepted and left for the evaluator's own
// IntegrityViolation bounds check to catch, rather than irtext silently
// reinterpreting offsets.
func (a *Assembler) assembleLetRec(filename string, at ir.Pos, args []*Sexpr, sc *scope) (ir.Expr, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("irtext: %s: (letrec f (closure ...) e2) takes exactly 3 arguments", at)
	}
	name, ok := args[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: letrec binding name must be a bare symbol", at)
	}
	inner := sc.child()
	sym := inner.bind(name)
	e1, err := a.assembleExpr(filename, args[1], inner)
	if err != nil {
		return nil, err
	}
	mk, ok := e1.(ir.MkClosureDef)
	if !ok {
		return nil, fmt.Errorf("irtext: %s: letrec's first expression must be (closure ...)", at)
	}
	if len(mk.FreeVars) != 1 || !mk.FreeVars[0].Equal(sym) {
		return nil, fmt.Errorf("irtext: %s: letrec's closure must capture exactly its own binding %q as its sole free variable", at, name)
	}
	e2, err := a.assembleExpr(filename, args[2], inner)
	if err != nil {
		return nil, err
	}
	return ir.LetRec{Base: ir.Base{At: at, Typ: ir.TUnknown}, Sym: sym, E1: e1, E2: e2}, nil
}

// (closure defName [free1 free2 ...])
func (a *Assembler) assembleClosure(filename string, at ir.Pos, args []*Sexpr, sc *scope) (ir.Expr, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("irtext: %s: (closure defName (free...)) takes exactly 2 arguments", at)
	}
	defName, ok := args[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: closure target must be a bare def name", at)
	}
	defSym, ok := a.defSyms[defName]
	if !ok {
		defSym = a.lookupOrForwardDef(defName)
	}
	freeList, ok := args[1].isList()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: closure free-variable list must be a list", at)
	}
	free := make([]ir.Symbol, len(freeList))
	for i, f := range freeList {
		name, ok := f.sym()
		if !ok {
			return nil, fmt.Errorf("irtext: %s: free variable %d must be a bare name", at, i)
		}
		sym, ok := sc.lookup(name)
		if !ok {
			return nil, fmt.Errorf("irtext: %s: closure free variable %q is unbound", at, name)
		}
		free[i] = sym
	}
	return ir.MkClosureDef{Base: ir.Base{At: at, Typ: ir.TClosure}, DefSym: defSym, FreeVars: free}, nil
}

func (a *Assembler) assembleApply(filename string, at ir.Pos, args []*Sexpr, sc *scope, tail bool) (ir.Expr, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("irtext: %s: (call defName args...) requires a definition name", at)
	}
	name, ok := args[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: call target must be a bare def name", at)
	}
	sym, ok := a.defSyms[name]
	if !ok {
		sym = a.lookupOrForwardDef(name)
	}
	callArgs, err := a.assembleExprList(filename, args[1:], sc)
	if err != nil {
		return nil, err
	}
	if tail {
		return ir.ApplyTail{Base: ir.Base{At: at, Typ: ir.TUnknown}, Sym: sym, Args: callArgs}, nil
	}
	return ir.ApplyDef{Base: ir.Base{At: at, Typ: ir.TUnknown}, Sym: sym, Args: callArgs}, nil
}

func (a *Assembler) assembleHook(filename string, at ir.Pos, args []*Sexpr, sc *scope) (ir.Expr, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("irtext: %s: (hook \"name\" args...) requires a hook name", at)
	}
	name, ok := args[0].str()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: hook name must be a quoted string", at)
	}
	hookArgs, err := a.assembleExprList(filename, args[1:], sc)
	if err != nil {
		return nil, err
	}
	return ir.ApplyHook{Base: ir.Base{At: at, Typ: ir.TUnknown}, Hook: name, Args: hookArgs}, nil
}

func (a *Assembler) assembleApplyClosure(filename string, at ir.Pos, args []*Sexpr, sc *scope) (ir.Expr, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("irtext: %s: (applyclosure fExpr args...) requires a closure expression", at)
	}
	fExpr, err := a.assembleExpr(filename, args[0], sc)
	if err != nil {
		return nil, err
	}
	callArgs, err := a.assembleExprList(filename, args[1:], sc)
	if err != nil {
		return nil, err
	}
	return ir.ApplyClosure{Base: ir.Base{At: at, Typ: ir.TUnknown}, Exp: fExpr, Args: callArgs}, nil
}

func (a *Assembler) assembleTagLike(filename string, at ir.Pos, args []*Sexpr, sc *scope, form string) (ir.Expr, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("irtext: %s: (%s Name e) takes exactly 2 arguments", at, form)
	}
	tagName, ok := args[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: %s's first argument must be a bare tag name", at, form)
	}
	e, err := a.assembleExpr(filename, args[1], sc)
	if err != nil {
		return nil, err
	}
	var enumSym ir.Symbol // best-effort: set only if the tag's owning enum happens to share the bare name
	switch form {
	case "tag":
		return ir.TagExpr{Base: ir.Base{At: at, Typ: ir.TTag}, Sym: enumSym, Tag: tagName, E: e}, nil
	case "untag":
		return ir.Untag{Base: ir.Base{At: at, Typ: ir.TUnknown}, Sym: enumSym, Tag: tagName, E: e}, nil
	case "is":
		return ir.Is{Base: ir.Base{At: at, Typ: ir.TBool}, Sym: enumSym, Tag: tagName, E: e}, nil
	default:
		return nil, fmt.Errorf("irtext: %s: internal error: unhandled tag-like form %q", at, form)
	}
}

func (a *Assembler) assembleTuple(filename string, at ir.Pos, args []*Sexpr, sc *scope) (ir.Expr, error) {
	elems, err := a.assembleExprList(filename, args, sc)
	if err != nil {
		return nil, err
	}
	return ir.TupleExpr{Base: ir.Base{At: at, Typ: ir.TTuple}, Elems: elems}, nil
}

func (a *Assembler) assembleIndexExpr(filename string, at ir.Pos, args []*Sexpr, sc *scope) (ir.Expr, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("irtext: %s: (index e k) takes exactly 2 arguments", at)
	}
	base, err := a.assembleExpr(filename, args[0], sc)
	if err != nil {
		return nil, err
	}
	k, err := atomInt(filename, args[1])
	if err != nil {
		return nil, err
	}
	return ir.Index{Base: ir.Base{At: at, Typ: ir.TUnknown}, BaseExpr: base, Offset: k}, nil
}

func (a *Assembler) assembleUnaryForm(filename string, at ir.Pos, args []*Sexpr, sc *scope, build func(ir.Expr) ir.Expr) (ir.Expr, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("irtext: %s: expects exactly 1 argument", at)
	}
	e, err := a.assembleExpr(filename, args[0], sc)
	if err != nil {
		return nil, err
	}
	return build(e), nil
}

func (a *Assembler) assembleSet(filename string, at ir.Pos, args []*Sexpr, sc *scope) (ir.Expr, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("irtext: %s: (set! e1 e2) takes exactly 2 arguments", at)
	}
	e1, err := a.assembleExpr(filename, args[0], sc)
	if err != nil {
		return nil, err
	}
	e2, err := a.assembleExpr(filename, args[1], sc)
	if err != nil {
		return nil, err
	}
	return ir.Assign{Base: ir.Base{At: at, Typ: ir.TUnknown}, E1: e1, E2: e2}, nil
}

func (a *Assembler) assembleError(filename string, at ir.Pos, args []*Sexpr) (ir.Expr, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("irtext: %s: (error \"message\") takes exactly 1 argument", at)
	}
	msg, ok := args[0].str()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: error message must be a quoted string", at)
	}
	return ir.UserError{Base: ir.Base{At: at, Typ: ir.TUnknown}, Message: msg}, nil
}

func (a *Assembler) assembleNativeNew(filename string, at ir.Pos, args []*Sexpr, sc *scope) (ir.Expr, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("irtext: %s: (native-new TypeName args...) requires a type name", at)
	}
	typeName, ok := args[0].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: native-new type name must be a bare symbol", at)
	}
	ctorArgs, err := a.assembleExprList(filename, args[1:], sc)
	if err != nil {
		return nil, err
	}
	return ir.NativeConstructor{Base: ir.Base{At: at, Typ: ir.TUnknown}, TypeName: typeName, Args: ctorArgs}, nil
}

func (a *Assembler) assembleNativeField(filename string, at ir.Pos, args []*Sexpr, sc *scope) (ir.Expr, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("irtext: %s: (native-field receiver field) takes exactly 2 arguments", at)
	}
	recv, err := a.assembleExpr(filename, args[0], sc)
	if err != nil {
		return nil, err
	}
	field, ok := args[1].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: native field name must be a bare symbol", at)
	}
	return ir.NativeField{Base: ir.Base{At: at, Typ: ir.TUnknown}, Receiver: recv, Field: field}, nil
}

func (a *Assembler) assembleNativeMethod(filename string, at ir.Pos, args []*Sexpr, sc *scope) (ir.Expr, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("irtext: %s: (native-method receiver method args...) requires a receiver and method name", at)
	}
	recv, err := a.assembleExpr(filename, args[0], sc)
	if err != nil {
		return nil, err
	}
	method, ok := args[1].sym()
	if !ok {
		return nil, fmt.Errorf("irtext: %s: native method name must be a bare symbol", at)
	}
	methodArgs, err := a.assembleExprList(filename, args[2:], sc)
	if err != nil {
		return nil, err
	}
	return ir.NativeMethod{Base: ir.Base{At: at, Typ: ir.TUnknown}, Receiver: recv, Method: method, Args: methodArgs}, nil
}

func (a *Assembler) assembleExprList(filename string, forms []*Sexpr, sc *scope) ([]ir.Expr, error) {
	out := make([]ir.Expr, len(forms))
	for i, f := range forms {
		e, err := a.assembleExpr(filename, f, sc)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}
