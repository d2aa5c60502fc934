package core

import (
	"context"

	"github.com/schemawash/schemawash/resolve"
)

// Rule is a named binding of a cleaner function to a path.
//
// Rules are ordered, and order is significant: a later rule may
// address a path whose parent structure was rewritten by an earlier
// rule.
type Rule struct {
	// Name is the rule's human-readable label.  Labels are unique
	// within a Spec, and errors cite them.
	Name string `json:"name" yaml:"name"`

	// Function is the symbolic name of a registered cleaner.
	Function string `json:"function,omitempty" yaml:"function,omitempty"`

	// Source is inline source for an ad hoc cleaner, an
	// alternative to Function.  See Interpreter.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`

	// Interpreter names the language for Source.  Empty means
	// "ecmascript".
	Interpreter string `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`

	// Path addresses the locations the cleaner applies to.
	Path resolve.Path `json:"path" yaml:"path"`

	// Params optionally configures a parameterized cleaner (one
	// registered via a Maker).
	Params map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`

	// cleaner is set by Spec.Compile.
	cleaner Cleaner
}

// Copy makes a copy of the Rule (Params are not deep-copied).
func (r *Rule) Copy() *Rule {
	return &Rule{
		Name:        r.Name,
		Function:    r.Function,
		Source:      r.Source,
		Interpreter: r.Interpreter,
		Path:        r.Path.Copy(),
		Params:      r.Params,
		cleaner:     r.cleaner,
	}
}

// Filter is a record-level predicate applied before cleaning.
//
// A record is kept when the value at Path equals Value (or any
// element of Value when Value is a list).  Desired inverts the test
// when false.
type Filter struct {
	Path    resolve.Path `json:"path" yaml:"path"`
	Value   interface{}  `json:"value" yaml:"value"`
	Desired bool         `json:"desired_test_result" yaml:"desired_test_result"`
}

// Spec is the cleaning specification for one datasource/table.
//
// A Spec is parsed once per pipeline invocation, Compile()ed eagerly,
// and read-only afterwards, so many records can be cleaned against it
// concurrently.  Each Clean call touches only its own record.
type Spec struct {
	// Datasource identifies where the records come from.
	// Something like "datacite".
	Datasource string `json:"datasource" yaml:"datasource"`

	// Table is the destination table for the cleaned records.
	Table string `json:"table" yaml:"table"`

	// LastUpdated is the spec's revision date, format YYYYMMDD.
	LastUpdated string `json:"lastupdated" yaml:"lastupdated"`

	// UpdatedBy names the spec's last author.
	UpdatedBy string `json:"updatedby" yaml:"updatedby"`

	// Doc is general documentation, in Markdown, about what this
	// specification cleans and why.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Filters drop records before any cleaning.  See package
	// filter.
	Filters []*Filter `json:"filter_records,omitempty" yaml:"filter_records,omitempty"`

	// Cleaners is the ordered rule list.
	Cleaners []*Rule `json:"cleaners" yaml:"cleaners"`

	compiled bool
}

// Id gives the spec's datasource/table identity for error messages.
func (spec *Spec) Id() string {
	switch {
	case spec == nil:
		return "?"
	case spec.Datasource == "" && spec.Table == "":
		return "?"
	case spec.Table == "":
		return spec.Datasource
	default:
		return spec.Datasource + "." + spec.Table
	}
}

// Copy makes a deep copy of the Spec.
func (spec *Spec) Copy() *Spec {
	rules := make([]*Rule, len(spec.Cleaners))
	for i, r := range spec.Cleaners {
		rules[i] = r.Copy()
	}
	filters := make([]*Filter, len(spec.Filters))
	for i, f := range spec.Filters {
		filters[i] = &Filter{
			Path:    f.Path.Copy(),
			Value:   f.Value,
			Desired: f.Desired,
		}
	}
	return &Spec{
		Datasource:  spec.Datasource,
		Table:       spec.Table,
		LastUpdated: spec.LastUpdated,
		UpdatedBy:   spec.UpdatedBy,
		Doc:         spec.Doc,
		Filters:     filters,
		Cleaners:    rules,
		compiled:    spec.compiled,
	}
}

// Compiled reports whether the spec has been Compile()ed.
func (spec *Spec) Compiled() bool {
	return spec.compiled
}

// Compile validates the spec and binds every rule to its cleaner.
//
// Validation is eager: an empty or degenerate path, a duplicate rule
// label, or a function name absent from the registry fails here,
// before any record is processed.  Rules with inline Source are
// compiled through the registry's interpreter for their language.
//
// Compile must be called before Clean.  With force, already-compiled
// rules are compiled again.
func (spec *Spec) Compile(ctx context.Context, reg *Registry, force bool) error {
	if reg == nil {
		reg = NewRegistry()
	}

	seen := make(map[string]bool, len(spec.Cleaners))
	for _, r := range spec.Cleaners {
		if r == nil {
			return &ConfigError{spec, "nil rule"}
		}
		if r.Name == "" {
			return &ConfigError{spec, "rule with empty label"}
		}
		if seen[r.Name] {
			return &ConfigError{spec, `duplicate rule label "` + r.Name + `"`}
		}
		seen[r.Name] = true

		if len(r.Path) == 0 {
			return &ConfigError{spec, `rule "` + r.Name + `" has an empty path`}
		}
		for _, seg := range r.Path {
			if seg == "" {
				return &ConfigError{spec, `rule "` + r.Name + `" has an empty path segment`}
			}
		}

		if r.cleaner != nil && !force {
			continue
		}

		switch {
		case r.Source != "" && r.Function != "":
			return &ConfigError{spec, `rule "` + r.Name + `" has both a function and a source`}
		case r.Source != "":
			lang := r.Interpreter
			if lang == "" {
				lang = "ecmascript"
			}
			in, have := reg.Interpreter(lang)
			if !have {
				return &ConfigError{spec, `no interpreter "` + lang + `" for rule "` + r.Name + `"`}
			}
			f, err := in.Compile(ctx, r.Source)
			if err != nil {
				return &ConfigError{spec, `rule "` + r.Name + `": ` + err.Error()}
			}
			r.cleaner = f
		case r.Function == "":
			return &ConfigError{spec, `rule "` + r.Name + `" has no function`}
		case r.Params != nil:
			m, have := reg.Maker(r.Function)
			if !have {
				return &UnknownCleaner{Name: r.Function, Rule: r.Name}
			}
			f, err := m(r.Params)
			if err != nil {
				return &ConfigError{spec, `rule "` + r.Name + `": ` + err.Error()}
			}
			r.cleaner = f
		default:
			f, err := reg.Get(r.Function)
			if err != nil {
				if uc, is := err.(*UnknownCleaner); is {
					uc.Rule = r.Name
				}
				return err
			}
			r.cleaner = f
		}
	}

	for _, f := range spec.Filters {
		if f == nil || len(f.Path) == 0 {
			return &ConfigError{spec, "filter with an empty path"}
		}
	}

	spec.compiled = true

	return nil
}

// Clean applies the spec's rules, in order, to the given record.
//
// The record is mutated in place and also returned, so later rules in
// the same pass observe earlier rules' effects.  A rule whose path
// resolves to zero locations is a no-op for that record.  A cleaner
// failure aborts cleaning for this record only, surfaced as a
// *CleanError.
func (spec *Spec) Clean(ctx context.Context, record map[string]interface{}) (map[string]interface{}, error) {
	if !spec.compiled {
		return nil, &SpecNotCompiled{spec}
	}

	for _, r := range spec.Cleaners {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		locs, err := resolve.Resolve(record, r.Path)
		if err != nil {
			// Compile rejects empty paths, so this is an
			// internal inconsistency.
			return nil, &CleanError{r.Name, r.Path, err}
		}

		for _, loc := range locs {
			x, err := r.cleaner(loc.Get())
			if err != nil {
				return nil, &CleanError{r.Name, r.Path, err}
			}
			loc.Set(x)
		}
	}

	return record, nil
}
