package cleaners

import (
	"errors"

	"github.com/schemawash/schemawash/core"
)

// RemoveNullsFromList drops nil elements from a list, preserving the
// order of the rest.  nil and non-list values pass through unchanged.
func RemoveNullsFromList(x interface{}) (interface{}, error) {
	list, is := x.([]interface{})
	if !is {
		return x, nil
	}
	acc := make([]interface{}, 0, len(list))
	for _, elem := range list {
		if elem == nil {
			continue
		}
		acc = append(acc, elem)
	}
	return acc, nil
}

// FilterNonEmptyDicts drops empty objects from a list.  nil elements
// are dropped too, since an empty object and a null carry the same
// amount of information.
func FilterNonEmptyDicts(x interface{}) (interface{}, error) {
	list, is := x.([]interface{})
	if !is {
		return x, nil
	}
	acc := make([]interface{}, 0, len(list))
	for _, elem := range list {
		if elem == nil {
			continue
		}
		if m, is := elem.(map[string]interface{}); is && 0 == len(m) {
			continue
		}
		acc = append(acc, elem)
	}
	return acc, nil
}

// SingleItemToList wraps a bare value in a one-element list so that a
// sometimes-repeated field is always repeated.  Lists and nil pass
// through unchanged.
func SingleItemToList(x interface{}) (interface{}, error) {
	switch x.(type) {
	case nil:
		return x, nil
	case []interface{}:
		return x, nil
	default:
		return []interface{}{x}, nil
	}
}

// NestedArrayToDict is a Maker for the parameterized cleaner that
// turns a list of positional lists into a list of objects, zipping
// the configured keys against each inner list.
//
// Params: 'keys', a list of strings.  Inner elements that are already
// objects pass through unchanged, which keeps the cleaner idempotent.
func NestedArrayToDict(params map[string]interface{}) (core.Cleaner, error) {
	raw, have := params["keys"]
	if !have {
		return nil, errors.New(`nested_array_to_dict needs a "keys" param`)
	}
	list, is := raw.([]interface{})
	if !is || 0 == len(list) {
		return nil, errors.New(`nested_array_to_dict "keys" must be a non-empty list of strings`)
	}
	keys := make([]string, len(list))
	for i, k := range list {
		s, is := k.(string)
		if !is {
			return nil, errors.New(`nested_array_to_dict "keys" must be a non-empty list of strings`)
		}
		keys[i] = s
	}

	return func(x interface{}) (interface{}, error) {
		list, is := x.([]interface{})
		if !is {
			return x, nil
		}
		acc := make([]interface{}, 0, len(list))
		for _, elem := range list {
			inner, is := elem.([]interface{})
			if !is {
				acc = append(acc, elem)
				continue
			}
			m := make(map[string]interface{}, len(keys))
			for i, k := range keys {
				if i < len(inner) {
					m[k] = inner[i]
				}
			}
			acc = append(acc, m)
		}
		return acc, nil
	}, nil
}
