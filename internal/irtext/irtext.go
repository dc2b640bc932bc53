package irtext

import (
	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/value"
)

// ReadFile assembles a single source file into a fresh Root, named after
// the file, along with any facts its (facts ...) forms declared.
func ReadFile(path string) (*ir.Root, map[ir.Symbol][]value.Tuple, error) {
	a := NewAssembler(path)
	if err := a.LoadFile(path); err != nil {
		return nil, nil, err
	}
	return a.Finish()
}

// ReadString assembles src under rootName, attributing positions to
// filename.
func ReadString(rootName, filename, src string) (*ir.Root, map[ir.Symbol][]value.Tuple, error) {
	a := NewAssembler(rootName)
	if err := a.LoadString(filename, src); err != nil {
		return nil, nil, err
	}
	return a.Finish()
}

// ReadFiles assembles one or more source files into a single Root sharing
// one symbol table, so a program file and a separate facts file can refer
// to the same tables and definitions.
func ReadFiles(rootName string, paths []string) (*ir.Root, map[ir.Symbol][]value.Tuple, error) {
	a := NewAssembler(rootName)
	for _, p := range paths {
		if err := a.LoadFile(p); err != nil {
			return nil, nil, err
		}
	}
	return a.Finish()
}
