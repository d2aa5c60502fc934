package cleaners

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Stringify renders a value in a stable textual form.
//
// Integral floats render without a decimal part (records decoded from
// JSON carry all numbers as float64, so a volume of 12 must become
// "12" and not "12.000000").  Maps and lists render as JSON.
func Stringify(x interface{}) (string, error) {
	switch vv := x.(type) {
	case string:
		return vv, nil
	case bool:
		return strconv.FormatBool(vv), nil
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(vv), nil
	case int64:
		return strconv.FormatInt(vv, 10), nil
	default:
		js, err := json.Marshal(&x)
		if err != nil {
			return "", err
		}
		return string(js), nil
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// NormalizeToStringOrNone coerces a mixed-type field to a string.
//
// nil and blank strings become nil; a non-blank string passes through
// unchanged; anything else is Stringify()ed.
func NormalizeToStringOrNone(x interface{}) (interface{}, error) {
	switch vv := x.(type) {
	case nil:
		return nil, nil
	case string:
		if blank(vv) {
			return nil, nil
		}
		return vv, nil
	default:
		s, err := Stringify(x)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// EmptyStringToNone maps blank strings to nil and leaves everything
// else alone.
func EmptyStringToNone(x interface{}) (interface{}, error) {
	if s, is := x.(string); is && blank(s) {
		return nil, nil
	}
	return x, nil
}

// NormalizeRelatedItem normalizes a related-work citation sub-field.
//
// nil, lists, and blank strings become nil; everything else is
// string-coerced.
func NormalizeRelatedItem(x interface{}) (interface{}, error) {
	switch vv := x.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		return nil, nil
	case string:
		if blank(vv) {
			return nil, nil
		}
		return vv, nil
	default:
		s, err := Stringify(x)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
