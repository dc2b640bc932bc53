// Package jsonout renders a saturated program's stores as JSON for the
// CLI's --json flag, built incrementally with tidwall/sjson and read back
// with tidwall/gjson the way a caller programmatically inspecting the
// output would, rather than via encoding/json struct tags — the
// dependency the rest of the corpus (transitively, through go-snaps)
// already carries for exactly this kind of ad hoc JSON assembly.
package jsonout

import (
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/strata-lang/strata/internal/ir"
	"github.com/strata-lang/strata/internal/store/latfact"
	"github.com/strata-lang/strata/internal/store/relfact"
	"github.com/strata-lang/strata/internal/value"
)

// Dump is the minimal read interface jsonout needs from a solver.Stores,
// kept local so this package never imports internal/solver.
type Dump interface {
	Relation(sym ir.Symbol) (*relfact.Store, bool)
	Lattice(sym ir.Symbol) (*latfact.Store, bool)
}

// RenderTables serializes every table in root into a JSON object keyed by
// table name: relations as an array of tuple-arrays, lattices as an array
// of {"key": [...], "value": ...} objects. Tables appear in name order and
// rows in the order of their printed form, so the output is deterministic.
func RenderTables(root *ir.Root, dump Dump) (string, error) {
	doc := "{}"
	var err error
	tables := root.Tables()
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	for _, t := range tables {
		switch t.Kind {
		case ir.TableRelation:
			st, ok := dump.Relation(t.Sym)
			if !ok {
				continue
			}
			tuples := st.Scan()
			sort.Slice(tuples, func(i, j int) bool { return tuples[i].String() < tuples[j].String() })
			doc, err = setRelation(doc, t.Name, tuples)
		case ir.TableLattice:
			st, ok := dump.Lattice(t.Sym)
			if !ok {
				continue
			}
			entries := st.Scan()
			sort.Slice(entries, func(i, j int) bool { return entries[i].Key.String() < entries[j].Key.String() })
			doc, err = setLattice(doc, t.Name, entries)
		}
		if err != nil {
			return "", err
		}
	}
	return gjson.Parse(doc).String(), nil
}

func setRelation(doc, name string, tuples []value.Tuple) (string, error) {
	rows := make([]string, len(tuples))
	for i, t := range tuples {
		rows[i] = tupleToArray(t)
	}
	return sjson.SetRaw(doc, jsonPath(name), "["+joinComma(rows)+"]")
}

func setLattice(doc, name string, entries []latfact.Entry) (string, error) {
	rows := make([]string, len(entries))
	for i, e := range entries {
		rows[i] = fmt.Sprintf(`{"key":%s,"value":%s}`, tupleToArray(e.Key), valueToJSON(e.Value))
	}
	return sjson.SetRaw(doc, jsonPath(name), "["+joinComma(rows)+"]")
}

// jsonPath escapes a table name for use as an sjson path segment: sjson
// treats '.' as a path separator, so a literal dot in a table name must be
// escaped to stay a single key.
func jsonPath(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			out = append(out, '\\')
		}
		out = append(out, name[i])
	}
	return string(out)
}

func tupleToArray(t value.Tuple) string {
	elems := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		elems[i] = valueToJSON(e)
	}
	return "[" + joinComma(elems) + "]"
}

func valueToJSON(v value.Value) string {
	switch v.Kind() {
	case "Bool", "Int8", "Int16", "Int32", "Int64", "Float32", "Float64":
		return v.String()
	default:
		return fmt.Sprintf("%q", v.String())
	}
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
