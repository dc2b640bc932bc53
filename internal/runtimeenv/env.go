// Package runtimeenv implements the evaluator's variable-to-value binding
// (§4.1 Environment) and the Linker/Hook seam through which a definition
// symbol resolves to an invocable function or a host callback (§6).
package runtimeenv

import "github.com/strata-lang/strata/internal/value"

// Env is the evaluator's stack-offset environment: a flat slot array
// indexed by each variable Symbol's Offset, per the design notes' "arena +
// index layout". A closure does not keep the Env it was built in: it holds
// copies of its captured Values in Closure.Captures.
type Env struct {
	slots []value.Value
}

// NewEnv returns an empty environment.
func NewEnv() *Env { return &Env{} }

// Get reads the slot at offset. The second return is false only when the
// offset has never been written — under normal (invariant-respecting)
// execution this never happens; the evaluator treats it as UnboundVariable.
func (e *Env) Get(offset int) (value.Value, bool) {
	if e == nil || offset < 0 || offset >= len(e.slots) {
		return nil, false
	}
	v := e.slots[offset]
	if v == nil {
		return nil, false
	}
	return v, true
}

// Extend returns a new environment identical to e but with offset bound to
// v, growing the slot array if needed. Let and LetRec bindings use this to
// avoid mutating an environment still visible to a sibling branch.
func (e *Env) Extend(offset int, v value.Value) *Env {
	n := &Env{slots: make([]value.Value, maxInt(len(e.slots), offset+1))}
	copy(n.slots, e.slots)
	n.slots[offset] = v
	return n
}

// Set overwrites the slot at offset in place, growing the slot array if
// needed. NewCallEnv uses it to place each formal at its own offset in a
// freshly built environment.
func (e *Env) Set(offset int, v value.Value) {
	for offset >= len(e.slots) {
		e.slots = append(e.slots, nil)
	}
	e.slots[offset] = v
}

// NewCallEnv builds the environment a call body evaluates under: the first
// len(captures) formals are bound to captures in order, the remaining
// formals to args in order, each placed at its own Offset (§4.1
// ApplyClosure, ApplyDef).
func NewCallEnv(formals []Offseter, captures, args []value.Value) *Env {
	e := &Env{}
	i := 0
	for _, v := range captures {
		e.Set(formals[i].StackOffset(), v)
		i++
	}
	for _, v := range args {
		e.Set(formals[i].StackOffset(), v)
		i++
	}
	return e
}

// Offseter is satisfied by ir.Symbol; declared locally so this package does
// not import internal/ir (environments are a runtime concern the evaluator
// and the IR both depend on, not the other way around).
type Offseter interface {
	StackOffset() int
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
