package core

import (
	"encoding/json"
	"errors"
	"time"

	"gopkg.in/yaml.v2"
)

// StringMaps recursively converts map[interface{}]interface{} and
// yaml.MapSlice to map[string]interface{}.
//
// Recursively processes values.
//
// Had to go to this trouble because the YAML deserializer likes to
// make map[interface{}] (or MapSlice inside a MapSlice) instead of
// map[string].
func StringMaps(x interface{}) (interface{}, error) {
	switch vv := x.(type) {
	case yaml.MapSlice:
		m := make(map[string]interface{}, len(vv))
		for _, item := range vv {
			s, is := item.Key.(string)
			if !is {
				return nil, errors.New("StringMaps encountered a non-string key")
			}
			val, err := StringMaps(item.Value)
			if err != nil {
				return nil, err
			}
			m[s] = val
		}
		return m, nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for thing, val := range vv {
			s, is := thing.(string)
			if !is {
				return nil, errors.New("StringMaps encountered a non-string key")
			}
			val, err := StringMaps(val)
			if err != nil {
				return nil, err
			}
			m[s] = val
		}
		return m, nil
	case map[string]interface{}:
		for s, val := range vv {
			val, err := StringMaps(val)
			if err != nil {
				return nil, err
			}
			vv[s] = val
		}
		return vv, nil
	case []interface{}:
		for i, x := range vv {
			y, err := StringMaps(x)
			if err != nil {
				return nil, err
			}
			vv[i] = y
		}
		return vv, nil
	default:
		return x, nil
	}
}

// Canonicalize round-trips the given value through JSON so that it
// has only JSON-compatible shapes (maps with string keys, lists,
// float64 numbers, strings, bools, nil).
//
// Cleaner outputs pass through here when they come from an
// interpreter, so the engine never writes foreign types back into a
// record.
func Canonicalize(x interface{}) (interface{}, error) {
	js, err := json.Marshal(&x)
	if err != nil {
		return nil, err
	}
	var y interface{}
	if err = json.Unmarshal(js, &y); err != nil {
		return nil, err
	}
	return y, nil
}

// Timestamp returns a string representing the current time in
// RFC3339Nano.
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
