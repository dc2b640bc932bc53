package runtimeenv

import "github.com/strata-lang/strata/internal/value"

// NativeFunc is an invocable a Linker resolves a definition symbol to: a
// fixed-arity function over runtime Values returning a Value or an error
// (§6 "A Linker resolves a definition-symbol to an invocable function of
// fixed arity returning a Value").
type NativeFunc func(args []value.Value) (value.Value, error)

// Hook is a host-supplied function invoked with an argument array (§6). It
// has the same shape as NativeFunc; the two are kept as distinct named
// types because they are looked up through distinct registries (by
// definition symbol vs. by hook name) and ApplyHook's contract — "its
// return value must be a valid Value" — carries no further obligation a
// NativeFunc doesn't already have.
type Hook func(args []value.Value) (value.Value, error)

// Linker resolves a definition symbol id to a NativeFunc when that
// definition is backed by a host implementation rather than an IR body —
// analogous to the teacher's method/function registries
// (internal/interp/types/function_registry.go) mapping a name to a callable
// rather than to source. ApplyDef and ApplyTail consult the Linker first;
// when it reports no match, the evaluator falls back to evaluating the
// matching ir.Definition's body from the Root.
type Linker struct {
	natives map[uint64]NativeFunc
	hooks   map[string]Hook
}

// NewLinker returns an empty Linker.
func NewLinker() *Linker {
	return &Linker{natives: make(map[uint64]NativeFunc), hooks: make(map[string]Hook)}
}

// BindNative registers fn as the native implementation for the definition
// whose Symbol.ID() is symID.
func (l *Linker) BindNative(symID uint64, fn NativeFunc) {
	l.natives[symID] = fn
}

// ResolveNative returns the native implementation bound to symID, if any.
func (l *Linker) ResolveNative(symID uint64) (NativeFunc, bool) {
	fn, ok := l.natives[symID]
	return fn, ok
}

// BindHook registers fn under name for ApplyHook to invoke.
func (l *Linker) BindHook(name string, fn Hook) {
	l.hooks[name] = fn
}

// ResolveHook looks up a hook by name.
func (l *Linker) ResolveHook(name string) (Hook, bool) {
	fn, ok := l.hooks[name]
	return fn, ok
}
