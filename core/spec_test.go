package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/schemawash/schemawash/resolve"

	. "github.com/schemawash/schemawash/util/testutil"
)

func testRegistry() *Registry {
	reg := NewRegistry()
	reg.Register("stringify", func(x interface{}) (interface{}, error) {
		if x == nil {
			return nil, nil
		}
		if s, is := x.(string); is {
			return s, nil
		}
		return JS(x), nil
	})
	reg.Register("upper", func(x interface{}) (interface{}, error) {
		s, is := x.(string)
		if !is {
			return x, nil
		}
		return strings.ToUpper(s), nil
	})
	reg.Register("explode", func(x interface{}) (interface{}, error) {
		return nil, errors.New("boom")
	})
	reg.RegisterMaker("suffix", func(params map[string]interface{}) (Cleaner, error) {
		suffix, is := params["suffix"].(string)
		if !is {
			return nil, errors.New("need a suffix param")
		}
		return func(x interface{}) (interface{}, error) {
			s, is := x.(string)
			if !is {
				return x, nil
			}
			return s + suffix, nil
		}, nil
	})
	return reg
}

func compiled(t *testing.T, spec *Spec) *Spec {
	if err := spec.Compile(context.Background(), testRegistry(), false); err != nil {
		t.Fatal(err)
	}
	return spec
}

func TestCompileErrors(t *testing.T) {
	specs := map[string]*Spec{
		"duplicate label": {
			Datasource: "d", Table: "t",
			Cleaners: []*Rule{
				{Name: "a", Function: "upper", Path: resolve.Path{"x"}},
				{Name: "a", Function: "upper", Path: resolve.Path{"y"}},
			},
		},
		"empty label": {
			Datasource: "d", Table: "t",
			Cleaners: []*Rule{
				{Function: "upper", Path: resolve.Path{"x"}},
			},
		},
		"empty path": {
			Datasource: "d", Table: "t",
			Cleaners: []*Rule{
				{Name: "a", Function: "upper"},
			},
		},
		"empty path segment": {
			Datasource: "d", Table: "t",
			Cleaners: []*Rule{
				{Name: "a", Function: "upper", Path: resolve.Path{"x", ""}},
			},
		},
		"no function": {
			Datasource: "d", Table: "t",
			Cleaners: []*Rule{
				{Name: "a", Path: resolve.Path{"x"}},
			},
		},
		"function and source": {
			Datasource: "d", Table: "t",
			Cleaners: []*Rule{
				{Name: "a", Function: "upper", Source: "return value;", Path: resolve.Path{"x"}},
			},
		},
		"bad maker params": {
			Datasource: "d", Table: "t",
			Cleaners: []*Rule{
				{Name: "a", Function: "suffix", Params: map[string]interface{}{}, Path: resolve.Path{"x"}},
			},
		},
		"filter with empty path": {
			Datasource: "d", Table: "t",
			Cleaners: []*Rule{
				{Name: "a", Function: "upper", Path: resolve.Path{"x"}},
			},
			Filters: []*Filter{{}},
		},
	}

	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			err := spec.Compile(context.Background(), testRegistry(), false)
			if err == nil {
				t.Fatal("compiled")
			}
			if _, is := err.(*ConfigError); !is {
				t.Fatalf("got %T: %v", err, err)
			}
			if spec.Compiled() {
				t.Fatal("marked compiled")
			}
		})
	}
}

func TestCompileUnknownFunction(t *testing.T) {
	spec := &Spec{
		Datasource: "d", Table: "t",
		Cleaners: []*Rule{
			{Name: "a", Function: "nope", Path: resolve.Path{"x"}},
		},
	}
	err := spec.Compile(context.Background(), testRegistry(), false)
	uc, is := err.(*UnknownCleaner)
	if !is {
		t.Fatalf("got %T: %v", err, err)
	}
	if uc.Name != "nope" || uc.Rule != "a" {
		t.Fatalf("got %#v", uc)
	}
}

func TestCleanNotCompiled(t *testing.T) {
	spec := &Spec{Datasource: "d", Table: "t"}
	_, err := spec.Clean(context.Background(), Record(`{}`))
	if _, is := err.(*SpecNotCompiled); !is {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestCleanOrder(t *testing.T) {
	// The second rule sees the first rule's output.
	spec := compiled(t, &Spec{
		Datasource: "d", Table: "t",
		Cleaners: []*Rule{
			{Name: "stringify volume", Function: "stringify", Path: resolve.Path{"container", "volume"}},
			{Name: "upper volume", Function: "upper", Path: resolve.Path{"container", "volume"}},
		},
	})

	record := Record(`{"container":{"volume":true}}`)
	if _, err := spec.Clean(context.Background(), record); err != nil {
		t.Fatal(err)
	}
	container := record["container"].(map[string]interface{})
	if container["volume"] != "TRUE" {
		t.Fatal(container)
	}
}

func TestCleanOrderSignificant(t *testing.T) {
	// Swapping two rules changes the output: upper only acts on
	// strings, so it matters whether stringification came first.
	forward := compiled(t, &Spec{
		Datasource: "d", Table: "t",
		Cleaners: []*Rule{
			{Name: "stringify", Function: "stringify", Path: resolve.Path{"volume"}},
			{Name: "upper", Function: "upper", Path: resolve.Path{"volume"}},
		},
	})
	backward := compiled(t, &Spec{
		Datasource: "d", Table: "t",
		Cleaners: []*Rule{
			{Name: "upper", Function: "upper", Path: resolve.Path{"volume"}},
			{Name: "stringify", Function: "stringify", Path: resolve.Path{"volume"}},
		},
	})

	a := Record(`{"volume":true}`)
	b := Record(`{"volume":true}`)
	if _, err := forward.Clean(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if _, err := backward.Clean(context.Background(), b); err != nil {
		t.Fatal(err)
	}

	if a["volume"] != "TRUE" || b["volume"] != "true" {
		t.Fatalf("forward %v, backward %v", a["volume"], b["volume"])
	}
}

func TestCleanTolerant(t *testing.T) {
	// Missing keys, scalars mid-path, and empty fan-outs are all
	// silent no-ops.
	spec := compiled(t, &Spec{
		Datasource: "d", Table: "t",
		Cleaners: []*Rule{
			{Name: "a", Function: "upper", Path: resolve.Path{"container", "volume"}},
			{Name: "b", Function: "upper", Path: resolve.Path{"creators", "name"}},
		},
	})

	record := Record(`{"container":"oops","creators":[]}`)
	if _, err := spec.Clean(context.Background(), record); err != nil {
		t.Fatal(err)
	}
	if record["container"] != "oops" {
		t.Fatal(record)
	}
}

func TestCleanFanOut(t *testing.T) {
	spec := compiled(t, &Spec{
		Datasource: "d", Table: "t",
		Cleaners: []*Rule{
			{Name: "names", Function: "upper", Path: resolve.Path{"creators", "name"}},
		},
	})

	record := Record(`{"creators":[{"name":"ada"},{"id":1},{"name":"grace"}]}`)
	if _, err := spec.Clean(context.Background(), record); err != nil {
		t.Fatal(err)
	}
	creators := record["creators"].([]interface{})
	if creators[0].(map[string]interface{})["name"] != "ADA" {
		t.Fatal(creators)
	}
	if creators[2].(map[string]interface{})["name"] != "GRACE" {
		t.Fatal(creators)
	}
}

func TestCleanMaker(t *testing.T) {
	spec := compiled(t, &Spec{
		Datasource: "d", Table: "t",
		Cleaners: []*Rule{
			{
				Name:     "suffix doi",
				Function: "suffix",
				Params:   map[string]interface{}{"suffix": "!"},
				Path:     resolve.Path{"doi"},
			},
		},
	})

	record := Record(`{"doi":"10.0/x"}`)
	if _, err := spec.Clean(context.Background(), record); err != nil {
		t.Fatal(err)
	}
	if record["doi"] != "10.0/x!" {
		t.Fatal(record)
	}
}

func TestCleanError(t *testing.T) {
	spec := compiled(t, &Spec{
		Datasource: "d", Table: "t",
		Cleaners: []*Rule{
			{Name: "bad rule", Function: "explode", Path: resolve.Path{"doi"}},
		},
	})

	_, err := spec.Clean(context.Background(), Record(`{"doi":"10.0/x"}`))
	ce, is := err.(*CleanError)
	if !is {
		t.Fatalf("got %T: %v", err, err)
	}
	if ce.Rule != "bad rule" {
		t.Fatalf("got %#v", ce)
	}
	if errors.Unwrap(ce) == nil {
		t.Fatal("no cause")
	}
	// The error names the rule and path, not the record.
	if strings.Contains(ce.Error(), "10.0/x") {
		t.Fatal(ce.Error())
	}
}

func TestCleanCanceled(t *testing.T) {
	spec := compiled(t, &Spec{
		Datasource: "d", Table: "t",
		Cleaners: []*Rule{
			{Name: "a", Function: "upper", Path: resolve.Path{"doi"}},
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := spec.Clean(ctx, Record(`{"doi":"x"}`)); err != context.Canceled {
		t.Fatalf("got %v", err)
	}
}

func TestSpecCopy(t *testing.T) {
	spec := compiled(t, &Spec{
		Datasource: "d", Table: "t",
		Filters: []*Filter{
			{Path: resolve.Path{"type"}, Value: "dois", Desired: true},
		},
		Cleaners: []*Rule{
			{Name: "a", Function: "upper", Path: resolve.Path{"doi"}},
		},
	})

	clone := spec.Copy()
	if !clone.Compiled() {
		t.Fatal("copy lost compilation")
	}
	clone.Cleaners[0].Path[0] = "changed"
	if spec.Cleaners[0].Path[0] != "doi" {
		t.Fatal("copy shares paths")
	}
}

func TestSpecId(t *testing.T) {
	for _, test := range []struct {
		spec   *Spec
		wanted string
	}{
		{nil, "?"},
		{&Spec{}, "?"},
		{&Spec{Datasource: "datacite"}, "datacite"},
		{&Spec{Datasource: "datacite", Table: "dois"}, "datacite.dois"},
	} {
		if got := test.spec.Id(); got != test.wanted {
			t.Fatalf("got %s, wanted %s", got, test.wanted)
		}
	}
}
