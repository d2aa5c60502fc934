// Package filter implements record-level predicates: a record is kept
// or dropped, before any cleaning, based on the value at a path.
package filter

import (
	"reflect"

	"github.com/schemawash/schemawash/core"
	"github.com/schemawash/schemawash/resolve"
)

// fudge casts numbers to float64 so that an int in a hand-written
// filter value compares equal to the float64 a JSON decoder produces.
func fudge(x interface{}) interface{} {
	switch vv := x.(type) {
	case float64:
		return vv
	case float32:
		return float64(vv)
	case int64:
		return float64(vv)
	case int32:
		return float64(vv)
	case int:
		return float64(vv)
	default:
		return x
	}
}

func eq(x, y interface{}) bool {
	x = fudge(x)
	y = fudge(y)
	return reflect.DeepEqual(x, y)
}

// Single reports whether the element at path equals value, unless
// desired is false, in which case the test is inverted.
//
// When value is a list, the test passes if the element equals any of
// its members.  A path that resolves to nothing compares as nil.
func Single(record map[string]interface{}, path resolve.Path, value interface{}, desired bool) bool {
	var result interface{}
	if locs, err := resolve.Resolve(record, path); err == nil && 0 < len(locs) {
		result = locs[0].Get()
	}

	test := false
	if candidates, is := value.([]interface{}); is {
		for _, candidate := range candidates {
			if eq(result, candidate) {
				test = true
				break
			}
		}
	} else {
		test = eq(result, value)
	}

	return test == desired
}

// Remove pops the element at path from the record, returning the
// first removed value (or nil if the path resolved to nothing).
func Remove(record map[string]interface{}, path resolve.Path) interface{} {
	locs, err := resolve.Resolve(record, path)
	if err != nil || 0 == len(locs) {
		return nil
	}
	removed := locs[0].Get()
	for _, loc := range locs {
		delete(loc.Container, loc.Key)
	}
	return removed
}

// Keep applies a spec's filters in order.  A record passes only when
// every filter passes.  A spec with no filters keeps everything.
func Keep(record map[string]interface{}, filters []*core.Filter) bool {
	for _, f := range filters {
		if !Single(record, f.Path, f.Value, f.Desired) {
			return false
		}
	}
	return true
}
