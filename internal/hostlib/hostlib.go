// Package hostlib registers the small set of host-provided Hook functions a
// program can reach through ApplyHook: list operations over Tuple values
// standing in for the core's only sequence type, plus string conversions.
// Grounded on the teacher's internal/builtins — a free function taking an
// argument slice and returning a Value — generalized from builtins' own
// (Context, []Value) signature to the Linker's (args []Value) (Value, error)
// Hook shape, since the core has no builtin-error-sentinel Context to thread
// through.
package hostlib

import (
	"fmt"
	"strconv"

	"github.com/strata-lang/strata/internal/runtimeenv"
	"github.com/strata-lang/strata/internal/value"
)

// Register binds every built-in hook onto linker under its canonical name.
func Register(linker *runtimeenv.Linker) {
	linker.BindHook("list-len", listLen)
	linker.BindHook("list-nth", listNth)
	linker.BindHook("string-concat", stringConcat)
	linker.BindHook("int-to-string", intToString)
}

// listLen returns the element count of a Tuple used as a list.
func listLen(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("list-len expects 1 argument, got %d", len(args))
	}
	tup, ok := args[0].(value.Tuple)
	if !ok {
		return nil, fmt.Errorf("list-len expects a Tuple, got %s", args[0].Kind())
	}
	return value.Int32(len(tup.Elems)), nil
}

// listNth indexes into a Tuple used as a list, bounds-checked and reporting
// an out-of-range index as an ordinary host error.
func listNth(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("list-nth expects 2 arguments, got %d", len(args))
	}
	tup, ok := args[0].(value.Tuple)
	if !ok {
		return nil, fmt.Errorf("list-nth expects a Tuple as its first argument, got %s", args[0].Kind())
	}
	idx, ok := args[1].(value.Int32)
	if !ok {
		return nil, fmt.Errorf("list-nth expects an Int32 index, got %s", args[1].Kind())
	}
	if int(idx) < 0 || int(idx) >= len(tup.Elems) {
		return nil, fmt.Errorf("list-nth index %d out of range for length %d", idx, len(tup.Elems))
	}
	return tup.Elems[idx], nil
}

func stringConcat(args []value.Value) (value.Value, error) {
	var out string
	for _, a := range args {
		s, ok := a.(value.Str)
		if !ok {
			return nil, fmt.Errorf("string-concat expects Str arguments, got %s", a.Kind())
		}
		out += string(s)
	}
	return value.Str(out), nil
}

func intToString(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("int-to-string expects 1 argument, got %d", len(args))
	}
	n, ok := args[0].(value.Numeric)
	if !ok {
		return nil, fmt.Errorf("int-to-string expects a numeric argument, got %s", args[0].Kind())
	}
	i, ok := n.AsInt64()
	if !ok {
		bi, ok := n.AsBigInt()
		if !ok {
			return nil, fmt.Errorf("int-to-string: value has no integer representation")
		}
		return value.Str(bi.String()), nil
	}
	return value.Str(strconv.FormatInt(i, 10)), nil
}
