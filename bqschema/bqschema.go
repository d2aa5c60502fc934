// Package bqschema deduces BigQuery-style table schemas from cleaned
// records.
//
// The wash pipeline feeds every cleaned record through a Generator,
// merges the per-file schema maps, and flattens the merged map into
// the sorted JSON schema that sits next to the cleaned output.
package bqschema

import (
	"fmt"
	"math"
	"sort"
)

// Field is one entry of a flattened schema.  The JSON key order
// (name, type, mode, description, fields) is the conventional one.
type Field struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Mode        string   `json:"mode"`
	Description string   `json:"description,omitempty"`
	Fields      []*Field `json:"fields,omitempty"`
}

// Entry is the working, mergeable form of a schema node.
type Entry struct {
	Name string

	// Type is one of BOOLEAN, INTEGER, FLOAT, STRING, RECORD, or
	// empty until a non-null value has been seen.
	Type string

	// Mode is NULLABLE or REPEATED.
	Mode string

	// Filled reports whether any non-null value has been seen.
	Filled bool

	// Fields holds the sub-entries of a RECORD.
	Fields map[string]*Entry
}

// Generator deduces schema maps from records and merges them.
//
// Deduction never fails a record: shape conflicts are recorded as
// soft errors and the schema keeps its earlier decision.
type Generator struct {
	// KeepNulls keeps fields that were never populated (they
	// flatten as NULLABLE STRING).
	KeepNulls bool

	// Errors collects soft deduction problems.
	Errors []string
}

// NewGenerator makes a Generator.
func NewGenerator(keepNulls bool) *Generator {
	return &Generator{
		KeepNulls: keepNulls,
	}
}

func (g *Generator) errf(format string, args ...interface{}) {
	g.Errors = append(g.Errors, fmt.Sprintf(format, args...))
}

// Deduce merges one record into the given schema map.
func (g *Generator) Deduce(record map[string]interface{}, schema map[string]*Entry) {
	for name, x := range record {
		e, have := schema[name]
		if !have {
			e = &Entry{Name: name, Mode: "NULLABLE"}
			schema[name] = e
		}
		g.deduceValue(name, x, e)
	}
}

func (g *Generator) deduceValue(name string, x interface{}, e *Entry) {
	if x == nil {
		// Presence without a value: the entry exists but stays
		// unfilled until something non-null shows up.
		return
	}

	if list, is := x.([]interface{}); is {
		if e.Filled && e.Mode != "REPEATED" {
			g.errf("field %s: mixes repeated and scalar values", name)
			return
		}
		e.Mode = "REPEATED"
		for _, elem := range list {
			if elem == nil {
				continue
			}
			g.deduceScalar(name, elem, e)
		}
		return
	}

	if e.Filled && e.Mode == "REPEATED" {
		g.errf("field %s: mixes repeated and scalar values", name)
		return
	}
	g.deduceScalar(name, x, e)
}

func (g *Generator) deduceScalar(name string, x interface{}, e *Entry) {
	t := typeOf(x)
	merged, ok := mergeType(e.Type, t)
	if !ok {
		g.errf("field %s: cannot merge %s into %s", name, t, e.Type)
		return
	}
	e.Type = merged
	e.Filled = true

	if t == "RECORD" {
		if e.Fields == nil {
			e.Fields = make(map[string]*Entry, 8)
		}
		g.Deduce(x.(map[string]interface{}), e.Fields)
	}
}

func typeOf(x interface{}) string {
	switch vv := x.(type) {
	case bool:
		return "BOOLEAN"
	case float64:
		if vv == math.Trunc(vv) && math.Abs(vv) < 1<<53 {
			return "INTEGER"
		}
		return "FLOAT"
	case int, int64:
		return "INTEGER"
	case string:
		return "STRING"
	case map[string]interface{}:
		return "RECORD"
	default:
		return "STRING"
	}
}

// mergeType widens: INTEGER absorbs into FLOAT, and any scalar
// absorbs into STRING.  RECORD merges only with RECORD.
func mergeType(old, new string) (string, bool) {
	switch {
	case old == "" || old == new:
		return new, true
	case old == "RECORD" || new == "RECORD":
		return "", false
	case old == "INTEGER" && new == "FLOAT", old == "FLOAT" && new == "INTEGER":
		return "FLOAT", true
	default:
		return "STRING", true
	}
}

// Merge folds the schema map to-add into old.  Each data file can
// have more fields than the others, so per-file maps merge into one
// large nested map before flattening.
func (g *Generator) Merge(old, add map[string]*Entry) {
	for name, ae := range add {
		oe, have := old[name]
		if !have {
			old[name] = ae
			continue
		}
		g.mergeEntry(oe, ae)
	}
}

func (g *Generator) mergeEntry(old, add *Entry) {
	if add.Filled && old.Filled && old.Mode != add.Mode {
		g.errf("field %s: cannot merge mode %s into %s", old.Name, add.Mode, old.Mode)
		return
	}
	if add.Filled {
		old.Mode = add.Mode
	}

	if add.Type != "" {
		merged, ok := mergeType(old.Type, add.Type)
		if !ok {
			g.errf("field %s: cannot merge %s into %s", old.Name, add.Type, old.Type)
			return
		}
		old.Type = merged
	}
	old.Filled = old.Filled || add.Filled

	if add.Fields != nil {
		if old.Fields == nil {
			old.Fields = add.Fields
		} else {
			g.Merge(old.Fields, add.Fields)
		}
	}
}

// Flatten renders a schema map as a sorted field list.
//
// Entries are sorted by name, recursively.  Unfilled entries are
// dropped unless keepNulls, in which case they flatten as NULLABLE
// STRING.  A RECORD that ends up with no fields is dropped, since an
// empty RECORD isn't a legal schema.
func Flatten(schema map[string]*Entry, keepNulls bool) []*Field {
	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	acc := make([]*Field, 0, len(names))
	for _, name := range names {
		e := schema[name]
		if !e.Filled && !keepNulls {
			continue
		}

		f := &Field{
			Name: name,
			Type: e.Type,
			Mode: e.Mode,
		}
		if f.Type == "" {
			f.Type = "STRING"
		}
		if f.Mode == "" {
			f.Mode = "NULLABLE"
		}

		if e.Type == "RECORD" {
			f.Fields = Flatten(e.Fields, keepNulls)
			if 0 == len(f.Fields) {
				continue
			}
		}

		acc = append(acc, f)
	}

	return acc
}
