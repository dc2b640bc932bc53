package ir

import "math/big"

// Expr is any node of the simplified intermediate representation (data
// model §3, variant list §4.1). Every variant embeds Base, which supplies
// Pos and Tpe; exprNode is an unexported marker preventing other packages
// from inventing new variants.
type Expr interface {
	Pos() Pos
	Tpe() Type
	exprNode()
}

// Base is embedded by every Expr variant.
type Base struct {
	At  Pos
	Typ Type
}

func (b Base) Pos() Pos   { return b.At }
func (b Base) Tpe() Type  { return b.Typ }
func (Base) exprNode()    {}

// ---- Literals ----

type LitUnit struct{ Base }
type LitBool struct {
	Base
	Value bool
}
type LitChar struct {
	Base
	Value rune
}
type LitFloat32 struct {
	Base
	Value float32
}
type LitFloat64 struct {
	Base
	Value float64
}
type LitInt struct {
	Base
	Value int64 // interpreted per Typ: Int8/Int16/Int32/Int64
}
type LitBigInt struct {
	Base
	Value *big.Int
}
type LitStr struct {
	Base
	Value string
}

// ---- Variables, definitions, closures ----

// Var looks up sym in the current environment; an unbound variable is an
// internal invariant violation, never a user-visible error.
type Var struct {
	Base
	Sym Symbol
}

// Def evaluates the body of root.Defs[Sym] directly, used only for
// zero-argument specializations (top-level constants); ordinary calls go
// through ApplyDef.
type Def struct {
	Base
	Sym Symbol
}

// MkClosureDef allocates a closure over DefSym with one capture slot per
// entry in FreeVars, copied from the environment at allocation time (empty
// if absent so LetRec can fill it later).
type MkClosureDef struct {
	Base
	DefSym   Symbol
	FreeVars []Symbol
}

// ApplyDef evaluates Args left-to-right then invokes root.Defs[Sym] through
// the Linker.
type ApplyDef struct {
	Base
	Sym  Symbol
	Args []Expr
}

// ApplyTail is semantically identical to ApplyDef; the distinction exists
// purely as a tail-position hint for an optimizing evaluator and never
// changes observable behavior.
type ApplyTail struct {
	Base
	Sym  Symbol
	Args []Expr
}

// ApplyHook calls out to a host-provided function identified by Hook; its
// return value must be a valid Value.
type ApplyHook struct {
	Base
	Hook string
	Args []Expr
}

// ApplyClosure evaluates Exp (must yield a Closure), evaluates Args, and
// binds the callee's formals: the first N formals to the closure's
// captures, the remainder to Args.
type ApplyClosure struct {
	Base
	Exp  Expr
	Args []Expr
}

// ---- Operators ----

type UnaryOp int

const (
	OpLogicalNot UnaryOp = iota
	OpPlus
	OpMinus
	OpBitwiseNegate
)

func (op UnaryOp) String() string {
	switch op {
	case OpLogicalNot:
		return "LogicalNot"
	case OpPlus:
		return "Plus"
	case OpMinus:
		return "Minus"
	case OpBitwiseNegate:
		return "BitwiseNegate"
	default:
		return "UnknownUnaryOp"
	}
}

type Unary struct {
	Base
	Op UnaryOp
	E  Expr
}

type BinaryOp int

const (
	// Arithmetic
	OpPlusB BinaryOp = iota
	OpMinusB
	OpTimes
	OpDivide
	OpModulo
	OpExponentiate
	// Comparison
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpEqual
	OpNotEqual
	// Logical
	OpLogicalAnd
	OpLogicalOr
	// Bitwise
	OpBitwiseAnd
	OpBitwiseOr
	OpBitwiseXor
	OpLeftShift
	OpRightShift
)

func (op BinaryOp) String() string {
	switch op {
	case OpPlusB:
		return "Plus"
	case OpMinusB:
		return "Minus"
	case OpTimes:
		return "Times"
	case OpDivide:
		return "Divide"
	case OpModulo:
		return "Modulo"
	case OpExponentiate:
		return "Exponentiate"
	case OpLess:
		return "Less"
	case OpLessEqual:
		return "LessEqual"
	case OpGreater:
		return "Greater"
	case OpGreaterEqual:
		return "GreaterEqual"
	case OpEqual:
		return "Equal"
	case OpNotEqual:
		return "NotEqual"
	case OpLogicalAnd:
		return "LogicalAnd"
	case OpLogicalOr:
		return "LogicalOr"
	case OpBitwiseAnd:
		return "BitwiseAnd"
	case OpBitwiseOr:
		return "BitwiseOr"
	case OpBitwiseXor:
		return "BitwiseXor"
	case OpLeftShift:
		return "LeftShift"
	case OpRightShift:
		return "RightShift"
	default:
		return "UnknownBinaryOp"
	}
}

type Binary struct {
	Base
	Op     BinaryOp
	E1, E2 Expr
}

// ---- Control flow, binding ----

type IfThenElse struct {
	Base
	Cond, Then, Else Expr
}

type Let struct {
	Base
	Sym    Symbol
	E1, E2 Expr
}

// LetRec requires E1 to be a MkClosureDef; the evaluator allocates the
// closure then back-patches it into its own capture slot at the index given
// by Sym.Offset, enabling direct recursion without a pre-existing cycle.
type LetRec struct {
	Base
	Sym    Symbol
	E1, E2 Expr
}

// ---- ADTs ----

type Is struct {
	Base
	Sym Symbol
	Tag string
	E   Expr
}

type TagExpr struct {
	Base
	Sym Symbol
	Tag string
	E   Expr
}

type Untag struct {
	Base
	Sym Symbol
	Tag string
	E   Expr
}

// ---- Tuples, references ----

type Index struct {
	Base
	BaseExpr Expr
	Offset   int
}

type TupleExpr struct {
	Base
	Elems []Expr
}

type Ref struct {
	Base
	E Expr
}

type Deref struct {
	Base
	E Expr
}

type Assign struct {
	Base
	E1, E2 Expr
}

// ---- Native interop boundary ----

// NativeConstructor, NativeField and NativeMethod are reflective host-level
// calls preserved as a boundary seam; the evaluator produces their Values
// through hooks registered on the Linker ("construct:T", "field:f",
// "method:m").
type NativeConstructor struct {
	Base
	TypeName string
	Args     []Expr
}

type NativeField struct {
	Base
	Receiver Expr
	Field    string
}

type NativeMethod struct {
	Base
	Receiver Expr
	Method   string
	Args     []Expr
}

// ---- Unconditional failures ----

type UserError struct {
	Base
	Message string
}

type MatchError struct{ Base }
type SwitchError struct{ Base }

// ---- Illegal at evaluation time ----

// Existential and Universal are type-level quantifiers that the type
// checker consumes; reaching one during evaluation is an internal
// invariant violation.
type Existential struct{ Base }
type Universal struct{ Base }
