package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var sampleSpec = `
datasource: datacite
table: dois
lastupdated: 20260831
updatedby: dev
doc: |
  Example cleaning specification.
filter_records:
  - path: type
    value: dois
    desired_test_result: true
cleaners:
  - container volume:
      path:
        - container
        - volume
      function: normalize_to_string_or_none
  - description text:
      path:
        - descriptions
        - description
      function: normalize_to_string_or_none
  - award amounts:
      path: awards
      function: nested_array_to_dict
      params:
        keys:
          - currency
          - amount
`

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec([]byte(sampleSpec))
	if err != nil {
		t.Fatal(err)
	}

	if spec.Datasource != "datacite" || spec.Table != "dois" {
		t.Fatal(spec.Id())
	}
	if spec.LastUpdated != "20260831" {
		t.Fatal(spec.LastUpdated)
	}
	if spec.Doc == "" {
		t.Fatal("doc dropped")
	}

	if len(spec.Cleaners) != 3 {
		t.Fatalf("got %d rules", len(spec.Cleaners))
	}
	// Rule order is the YAML sequence order.
	wanted := []string{"container volume", "description text", "award amounts"}
	for i, name := range wanted {
		if spec.Cleaners[i].Name != name {
			t.Fatalf("rule %d: %s", i, spec.Cleaners[i].Name)
		}
	}
	if got := spec.Cleaners[0].Path.String(); got != "container.volume" {
		t.Fatal(got)
	}
	// A bare-string path is a one-segment path.
	if got := spec.Cleaners[2].Path.String(); got != "awards" {
		t.Fatal(got)
	}

	params := spec.Cleaners[2].Params
	if params == nil {
		t.Fatal("params dropped")
	}
	keys := params["keys"].([]interface{})
	if len(keys) != 2 || keys[0] != "currency" {
		t.Fatal(keys)
	}

	if len(spec.Filters) != 1 {
		t.Fatalf("got %d filters", len(spec.Filters))
	}
	f := spec.Filters[0]
	if f.Path.String() != "type" || f.Value != "dois" || !f.Desired {
		t.Fatalf("filter %#v", f)
	}

	if spec.Compiled() {
		t.Fatal("parse should not compile")
	}
}

func TestParseSpecFilterDesiredDefault(t *testing.T) {
	spec, err := ParseSpec([]byte(`
datasource: d
table: t
lastupdated: "20260101"
updatedby: dev
filter_records:
  - path: type
    value: clients
cleaners:
  - a:
      path: doi
      function: f
`))
	if err != nil {
		t.Fatal(err)
	}
	if !spec.Filters[0].Desired {
		t.Fatal("desired_test_result should default to true")
	}
}

func TestParseSpecErrors(t *testing.T) {
	type ParseErrorTest struct {
		Src    string
		Wanted string
	}
	for name, test := range map[string]ParseErrorTest{
		"missing datasource": {`
table: t
lastupdated: 20260101
updatedby: dev
cleaners:
  - a:
      path: x
      function: f
`, "missing datasource"},
		"missing table": {`
datasource: d
lastupdated: 20260101
updatedby: dev
cleaners:
  - a:
      path: x
      function: f
`, "missing table"},
		"missing lastupdated": {`
datasource: d
table: t
updatedby: dev
cleaners:
  - a:
      path: x
      function: f
`, "missing lastupdated"},
		"bad lastupdated": {`
datasource: d
table: t
lastupdated: yesterday
updatedby: dev
cleaners:
  - a:
      path: x
      function: f
`, "lastupdated is not a YYYYMMDD date"},
		"missing updatedby": {`
datasource: d
table: t
lastupdated: 20260101
cleaners:
  - a:
      path: x
      function: f
`, "missing updatedby"},
		"missing cleaners": {`
datasource: d
table: t
lastupdated: 20260101
updatedby: dev
`, "missing cleaners"},
		"two labels in one entry": {`
datasource: d
table: t
lastupdated: 20260101
updatedby: dev
cleaners:
  - a:
      path: x
      function: f
    b:
      path: y
      function: f
`, "exactly one label"},
		"scalar rule body": {`
datasource: d
table: t
lastupdated: 20260101
updatedby: dev
cleaners:
  - a: drop
`, `rule "a" has no body`},
		"empty path": {`
datasource: d
table: t
lastupdated: 20260101
updatedby: dev
cleaners:
  - a:
      path: []
      function: f
`, `rule "a"`},
		"non-string path segment": {`
datasource: d
table: t
lastupdated: 20260101
updatedby: dev
cleaners:
  - a:
      path:
        - x
        - 2
      function: f
`, "path segment"},
		"non-map params": {`
datasource: d
table: t
lastupdated: 20260101
updatedby: dev
cleaners:
  - a:
      path: x
      function: f
      params: 42
`, "non-map params"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSpec([]byte(test.Src))
			if err == nil {
				t.Fatal("parsed")
			}
			if !strings.Contains(err.Error(), test.Wanted) {
				t.Fatalf("got %q, wanted %q", err, test.Wanted)
			}
		})
	}
}

func TestParseSpecsMultiDoc(t *testing.T) {
	specs, err := ParseSpecs([]byte(`
datasource: datacite
table: dois
lastupdated: 20260101
updatedby: dev
cleaners:
  - a:
      path: doi
      function: f
---
datasource: crossref
table: works
lastupdated: 20260101
updatedby: dev
cleaners:
  - a:
      path: doi
      function: f
`))
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 2 {
		t.Fatalf("got %d specs", len(specs))
	}
	if specs[0].Id() != "datacite.dois" || specs[1].Id() != "crossref.works" {
		t.Fatalf("%s, %s", specs[0].Id(), specs[1].Id())
	}
}

func TestParseSpecsDedup(t *testing.T) {
	// Two specs for the same table where one's rules are a subset
	// of the other's: only the superset survives.
	specs, err := ParseSpecs([]byte(`
datasource: datacite
table: dois
lastupdated: 20260101
updatedby: dev
cleaners:
  - a:
      path: doi
      function: f
---
datasource: datacite
table: dois
lastupdated: 20260201
updatedby: dev
cleaners:
  - a:
      path: doi
      function: f
  - b:
      path: version
      function: f
`))
	if err != nil {
		t.Fatal(err)
	}
	if len(specs) != 1 {
		t.Fatalf("got %d specs", len(specs))
	}
	if len(specs[0].Cleaners) != 2 {
		t.Fatal("kept the subset")
	}
}

func TestSubsetOf(t *testing.T) {
	a, err := ParseSpec([]byte(`
datasource: d
table: t
lastupdated: 20260101
updatedby: dev
cleaners:
  - a:
      path: doi
      function: f
`))
	if err != nil {
		t.Fatal(err)
	}
	b := a.Copy()
	b.Cleaners = append(b.Cleaners, &Rule{
		Name:     "b",
		Function: "g",
		Path:     a.Cleaners[0].Path,
	})

	if !SubsetOf(a, b) {
		t.Fatal("a should be a subset of b")
	}
	if SubsetOf(b, a) {
		t.Fatal("b should not be a subset of a")
	}
}

func TestLoadSpec(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "spec.yaml")
	if err := os.WriteFile(filename, []byte(sampleSpec), 0644); err != nil {
		t.Fatal(err)
	}
	spec, err := LoadSpec(filename)
	if err != nil {
		t.Fatal(err)
	}
	if spec.Id() != "datacite.dois" {
		t.Fatal(spec.Id())
	}

	if _, err = LoadSpec(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("loaded a missing file")
	}
}
