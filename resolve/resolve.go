// Package resolve implements the core path resolver.
//
// A path addresses locations in a loosely structured record: an
// arbitrary tree of maps, lists, scalars, and nils.  Resolution is
// tolerant by design, since metadata records routinely omit optional
// fields.
package resolve

import (
	"errors"
	"strings"
)

// A Path is an ordered, non-empty sequence of key segments.
//
// A path is data, not code: it carries only addressing semantics.
type Path []string

// Copy makes a copy of the Path.
func (path Path) Copy() Path {
	acc := make(Path, len(path))
	copy(acc, path)
	return acc
}

// String renders the path with '.' separators, which is how paths
// appear in logs and error messages.
func (path Path) String() string {
	return strings.Join([]string(path), ".")
}

// Location is a writable position in a record: the map that holds a
// value together with the key that addresses it.
type Location struct {
	Container map[string]interface{}
	Key       string
}

// Get reads the current value at the location.
func (loc Location) Get() interface{} {
	return loc.Container[loc.Key]
}

// Set writes a value back at the location.
func (loc Location) Set(x interface{}) {
	loc.Container[loc.Key] = x
}

// EmptyPath occurs when Resolve is given a zero-length path.
//
// An empty path is an engineering mistake in a specification, not a
// property of any record, so specification loading should have
// rejected it already.
var EmptyPath = errors.New("empty path")

// Resolve finds every location in doc addressed by the given path.
//
// Traversal goes left to right.  At a map, the current segment is a
// key lookup; a missing key just means no locations for that branch.
// At a list, the remaining path (current segment included) is
// reapplied to every element independently: that fan-out models
// shapes like DataCite's 'descriptions', a list of objects each
// holding a 'description'.  A scalar or nil with segments remaining
// terminates its branch silently.
//
// The final segment yields a location whenever its key is present in
// the containing map, even when the stored value is nil.  Locations
// come back in document order, which is stable for a given record.
//
// Resolve never errs on structural mismatches.  The only error is
// EmptyPath.
func Resolve(doc interface{}, path Path) ([]Location, error) {
	if len(path) == 0 {
		return nil, EmptyPath
	}
	return walk(doc, path, make([]Location, 0, 4)), nil
}

func walk(node interface{}, path Path, acc []Location) []Location {
	switch vv := node.(type) {
	case map[string]interface{}:
		if len(path) == 1 {
			if _, have := vv[path[0]]; have {
				acc = append(acc, Location{vv, path[0]})
			}
			return acc
		}
		next, have := vv[path[0]]
		if !have {
			return acc
		}
		return walk(next, path[1:], acc)
	case []interface{}:
		for _, elem := range vv {
			acc = walk(elem, path, acc)
		}
		return acc
	default:
		// A scalar or nil can't be traversed further.  Not an
		// error: rules tolerate absent structure.
		return acc
	}
}

// Values returns just the values at the resolved locations, in
// document order.  Mostly useful for tools and tests.
func Values(doc interface{}, path Path) ([]interface{}, error) {
	locs, err := Resolve(doc, path)
	if err != nil {
		return nil, err
	}
	acc := make([]interface{}, len(locs))
	for i, loc := range locs {
		acc[i] = loc.Get()
	}
	return acc, nil
}
