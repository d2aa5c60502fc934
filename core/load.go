package core

import (
	"bytes"
	"io"
	"io/ioutil"
	"log"
	"strconv"

	"github.com/schemawash/schemawash/resolve"

	"gopkg.in/yaml.v2"
)

// specYAML is the wire shape of a cleaning specification.
//
// The cleaners sequence is label-keyed: each entry is a one-entry
// mapping from the rule's human-readable label to its body, and the
// sequence order is the rule order.  yaml.MapSlice preserves that
// order without leaning on map-ordering guarantees.
type specYAML struct {
	Datasource  string          `yaml:"datasource"`
	Table       string          `yaml:"table"`
	LastUpdated interface{}     `yaml:"lastupdated"`
	UpdatedBy   string          `yaml:"updatedby"`
	Doc         string          `yaml:"doc"`
	Filters     []filterYAML    `yaml:"filter_records"`
	Cleaners    []yaml.MapSlice `yaml:"cleaners"`
}

type filterYAML struct {
	Path    interface{} `yaml:"path"`
	Value   interface{} `yaml:"value"`
	Desired *bool       `yaml:"desired_test_result"`
}

func (raw *specYAML) empty() bool {
	return raw.Datasource == "" && raw.Table == "" && raw.Cleaners == nil
}

// ParseSpec parses one YAML cleaning specification.
//
// The returned Spec still needs Compile()ing.
func ParseSpec(bs []byte) (*Spec, error) {
	var raw specYAML
	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return nil, err
	}
	return raw.spec()
}

func (raw *specYAML) spec() (*Spec, error) {
	spec := &Spec{
		Datasource: raw.Datasource,
		Table:      raw.Table,
		UpdatedBy:  raw.UpdatedBy,
		Doc:        raw.Doc,
	}

	switch {
	case raw.Datasource == "":
		return nil, &ConfigError{spec, "missing datasource"}
	case raw.Table == "":
		return nil, &ConfigError{spec, "missing table"}
	case raw.LastUpdated == nil:
		return nil, &ConfigError{spec, "missing lastupdated"}
	case raw.UpdatedBy == "":
		return nil, &ConfigError{spec, "missing updatedby"}
	case raw.Cleaners == nil:
		return nil, &ConfigError{spec, "missing cleaners"}
	}

	stamp, ok := dateString(raw.LastUpdated)
	if !ok {
		return nil, &ConfigError{spec, "lastupdated is not a YYYYMMDD date"}
	}
	spec.LastUpdated = stamp

	for i, entry := range raw.Cleaners {
		if len(entry) != 1 {
			return nil, &ConfigError{spec, "cleaner entry " + strconv.Itoa(i) + " must have exactly one label"}
		}
		label, is := entry[0].Key.(string)
		if !is {
			return nil, &ConfigError{spec, "cleaner entry " + strconv.Itoa(i) + " has a non-string label"}
		}

		x, err := StringMaps(entry[0].Value)
		if err != nil {
			return nil, &ConfigError{spec, `rule "` + label + `": ` + err.Error()}
		}
		body, is := x.(map[string]interface{})
		if !is {
			return nil, &ConfigError{spec, `rule "` + label + `" has no body`}
		}

		r := &Rule{Name: label}
		r.Function, _ = body["function"].(string)
		r.Source, _ = body["source"].(string)
		r.Interpreter, _ = body["interpreter"].(string)
		if r.Path, err = pathOf(body["path"]); err != nil {
			return nil, &ConfigError{spec, `rule "` + label + `": ` + err.Error()}
		}
		if params, have := body["params"]; have {
			m, is := params.(map[string]interface{})
			if !is {
				return nil, &ConfigError{spec, `rule "` + label + `" has non-map params`}
			}
			r.Params = m
		}

		spec.Cleaners = append(spec.Cleaners, r)
	}

	for i, f := range raw.Filters {
		path, err := pathOf(f.Path)
		if err != nil {
			return nil, &ConfigError{spec, "filter " + strconv.Itoa(i) + ": " + err.Error()}
		}
		value, err := StringMaps(f.Value)
		if err != nil {
			return nil, &ConfigError{spec, "filter " + strconv.Itoa(i) + ": " + err.Error()}
		}
		desired := true
		if f.Desired != nil {
			desired = *f.Desired
		}
		spec.Filters = append(spec.Filters, &Filter{
			Path:    path,
			Value:   value,
			Desired: desired,
		})
	}

	return spec, nil
}

// ParseSpecs parses a multi-document YAML stream of specifications.
//
// When the stream carries two specs for the same datasource/table and
// one's rule set is a subset of the other's, only the superset is
// kept and a warning is logged.  Guessing a precedence order would be
// worse than flagging the duplication.
func ParseSpecs(bs []byte) ([]*Spec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(bs))

	acc := make([]*Spec, 0, 2)
	for {
		var raw specYAML
		err := dec.Decode(&raw)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if raw.empty() {
			continue
		}
		spec, err := raw.spec()
		if err != nil {
			return nil, err
		}
		acc = append(acc, spec)
	}

	return dedup(acc), nil
}

// LoadSpec reads and parses a single-spec YAML file.
func LoadSpec(filename string) (*Spec, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseSpec(bs)
}

// LoadSpecs reads and parses a (possibly multi-document) YAML file.
func LoadSpecs(filename string) ([]*Spec, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseSpecs(bs)
}

func dedup(specs []*Spec) []*Spec {
	acc := make([]*Spec, 0, len(specs))

SPECS:
	for _, spec := range specs {
		for i, kept := range acc {
			if kept.Datasource != spec.Datasource || kept.Table != spec.Table {
				continue
			}
			if SubsetOf(spec, kept) {
				log.Printf(`warning: dropping duplicate spec "%s": its rules are a subset of an earlier spec's`, spec.Id())
				continue SPECS
			}
			if SubsetOf(kept, spec) {
				log.Printf(`warning: replacing duplicate spec "%s": its rules are a subset of a later spec's`, kept.Id())
				acc[i] = spec
				continue SPECS
			}
			// Same identity, diverging rules: keep both and
			// let the caller sort it out.
		}
		acc = append(acc, spec)
	}

	return acc
}

// SubsetOf reports whether every rule of a (keyed by function and
// path) also appears in b.
func SubsetOf(a, b *Spec) bool {
	if len(b.Cleaners) < len(a.Cleaners) {
		return false
	}
	keys := make(map[string]bool, len(b.Cleaners))
	for _, r := range b.Cleaners {
		keys[ruleKey(r)] = true
	}
	for _, r := range a.Cleaners {
		if !keys[ruleKey(r)] {
			return false
		}
	}
	return true
}

func ruleKey(r *Rule) string {
	if r.Source != "" {
		return "source:" + r.Source + "@" + r.Path.String()
	}
	return r.Function + "@" + r.Path.String()
}

// pathOf accepts a bare string (a one-segment path) or a list of
// strings.
func pathOf(x interface{}) (resolve.Path, error) {
	switch vv := x.(type) {
	case string:
		if vv == "" {
			return nil, resolve.EmptyPath
		}
		return resolve.Path{vv}, nil
	case []interface{}:
		if len(vv) == 0 {
			return nil, resolve.EmptyPath
		}
		path := make(resolve.Path, len(vv))
		for i, seg := range vv {
			s, is := seg.(string)
			if !is {
				return nil, &badPathSegment{seg}
			}
			path[i] = s
		}
		return path, nil
	case nil:
		return nil, resolve.EmptyPath
	default:
		return nil, &badPathSegment{x}
	}
}

type badPathSegment struct {
	Segment interface{}
}

func (e *badPathSegment) Error() string {
	return "path segment is not a string"
}

// dateString renders lastupdated, which YAML may have read as a bare
// number, as its YYYYMMDD string.
func dateString(x interface{}) (string, bool) {
	var s string
	switch vv := x.(type) {
	case string:
		s = vv
	case int:
		s = strconv.Itoa(vv)
	case int64:
		s = strconv.FormatInt(vv, 10)
	default:
		return "", false
	}
	if len(s) != 8 {
		return "", false
	}
	for _, c := range s {
		if c < '0' || '9' < c {
			return "", false
		}
	}
	return s, true
}
