// Package irtext is a minimal textual assembler for ir.Root: a small
// S-expression notation, read with alecthomas/participle/v2 the way the
// teacher's own grammar/lexer.go + grammar/parser.go pairs a stateful
// lexer with a generated recursive-descent parser, except the grammar
// here is a single generic Sexpr shape (atom or parenthesized list) —
// the semantic structure (def/table/stratum/expr forms) is resolved by
// a second pass (assemble.go, expr.go, body.go) rather than baked into
// the participle grammar itself, since the form of each list depends on
// its leading keyword rather than its lexical shape.
package irtext

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/strata-lang/strata/internal/ir"
)

var sexprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Symbol", Pattern: `[^\s()]+`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

// Sexpr is either a leaf Atom (a bare symbol or a quoted string) or a
// parenthesized List of further Sexprs. When the list branch matches,
// Atom is nil — including for the empty list "()", where List is also
// nil; callers must not use len(List) to test which branch matched.
type Sexpr struct {
	Pos lexer.Position

	Atom *string  `  ( @String | @Symbol )`
	List []*Sexpr `| "(" @@* ")"`
}

// Program is a top-level sequence of forms.
type Program struct {
	Forms []*Sexpr `@@*`
}

var sexprParser = participle.MustBuild[Program](
	participle.Lexer(sexprLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

func parseProgram(filename, src string) (*Program, error) {
	prog, err := sexprParser.ParseString(filename, src)
	if err != nil {
		return nil, fmt.Errorf("irtext: %w", err)
	}
	return prog, nil
}

func (s *Sexpr) pos(file string) ir.Pos {
	return ir.Pos{File: file, Line: s.Pos.Line, Column: s.Pos.Column}
}

// isList reports whether s is a parenthesized form (even an empty "()"),
// ok being its elements.
func (s *Sexpr) isList() ([]*Sexpr, bool) {
	if s.Atom != nil {
		return nil, false
	}
	return s.List, true
}

// sym returns s's bare-symbol text (not a quoted string), used for
// keywords/identifiers appearing in head position.
func (s *Sexpr) sym() (string, bool) {
	if s.Atom == nil {
		return "", false
	}
	if len(*s.Atom) > 0 && (*s.Atom)[0] == '"' {
		return "", false
	}
	return *s.Atom, true
}

// str returns s's unquoted string text.
func (s *Sexpr) str() (string, bool) {
	if s.Atom == nil {
		return "", false
	}
	if len(*s.Atom) < 2 || (*s.Atom)[0] != '"' {
		return "", false
	}
	raw := (*s.Atom)[1 : len(*s.Atom)-1]
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
		}
		out = append(out, raw[i])
	}
	return string(out), true
}
