package tools

import (
	"sort"

	"github.com/schemawash/schemawash/core"
)

// SpecAnalysis summarizes a spec's structure and its problems, for
// review before the spec goes anywhere near real records.
type SpecAnalysis struct {
	spec *core.Spec

	Errors      []string
	RuleCount   int
	FilterCount int

	// Functions counts rules per function name.  Inline-source
	// rules count under Sources instead.
	Functions map[string]int
	Sources   int

	// Unknown lists function names no registry entry covers.
	Unknown []string

	// DuplicateLabels lists rule labels that appear more than
	// once.  Compile rejects these; listed here so a review tool
	// can show all of them at once.
	DuplicateLabels []string

	// SharedPaths lists paths addressed by more than one rule.
	// Legitimate (a path can be cleaned in stages) but worth a
	// look.
	SharedPaths []string
}

// Analyze examines the spec against the given registry.
//
// Unlike Compile, Analyze never stops at the first problem.
func Analyze(s *core.Spec, reg *core.Registry) (*SpecAnalysis, error) {
	a := SpecAnalysis{
		spec:        s,
		RuleCount:   len(s.Cleaners),
		FilterCount: len(s.Filters),
		Functions:   make(map[string]int, len(s.Cleaners)),
		Errors:      make([]string, 0, 8),
	}

	var (
		labels  = make(map[string]int, len(s.Cleaners))
		paths   = make(map[string]int, len(s.Cleaners))
		unknown = make(map[string]bool, 4)
	)

	for _, r := range s.Cleaners {
		labels[r.Name]++
		paths[r.Path.String()]++

		if r.Name == "" {
			a.Errors = append(a.Errors, "rule with empty label")
		}
		if len(r.Path) == 0 {
			a.Errors = append(a.Errors, `rule "`+r.Name+`" has an empty path`)
		}

		switch {
		case r.Source != "" && r.Function != "":
			a.Errors = append(a.Errors, `rule "`+r.Name+`" has both a function and a source`)
		case r.Source != "":
			a.Sources++
		case r.Function == "":
			a.Errors = append(a.Errors, `rule "`+r.Name+`" has no function`)
		default:
			a.Functions[r.Function]++
			if reg != nil {
				if r.Params != nil {
					if _, have := reg.Maker(r.Function); !have {
						unknown[r.Function] = true
					}
				} else if _, err := reg.Get(r.Function); err != nil {
					unknown[r.Function] = true
				}
			}
		}
	}

	for name, count := range labels {
		if 1 < count {
			a.DuplicateLabels = append(a.DuplicateLabels, name)
			a.Errors = append(a.Errors, `duplicate rule label "`+name+`"`)
		}
	}
	sort.Strings(a.DuplicateLabels)

	for path, count := range paths {
		if 1 < count {
			a.SharedPaths = append(a.SharedPaths, path)
		}
	}
	sort.Strings(a.SharedPaths)

	for name := range unknown {
		a.Unknown = append(a.Unknown, name)
		a.Errors = append(a.Errors, `cleaner "`+name+`" not registered`)
	}
	sort.Strings(a.Unknown)

	return &a, nil
}

// AnalyzeAll analyzes each spec and flags duplicate specifications of
// the same datasource/table across the collection.
//
// core.ParseSpecs already drops a duplicate whose rules are a strict
// subset of another's, so what's left here is the ugly case: same
// identity, diverging rules.  When the caller hands over an undeduped
// collection, subset pairs are reported too.
func AnalyzeAll(specs []*core.Spec, reg *core.Registry) ([]*SpecAnalysis, []string, error) {
	acc := make([]*SpecAnalysis, 0, len(specs))
	for _, spec := range specs {
		a, err := Analyze(spec, reg)
		if err != nil {
			return nil, nil, err
		}
		acc = append(acc, a)
	}

	var duplicates []string
	for i, a := range specs {
		for _, b := range specs[i+1:] {
			if a.Datasource != b.Datasource || a.Table != b.Table {
				continue
			}
			switch {
			case core.SubsetOf(a, b):
				duplicates = append(duplicates, `spec "`+a.Id()+`" appears twice; the earlier rules are a subset of the later`)
			case core.SubsetOf(b, a):
				duplicates = append(duplicates, `spec "`+a.Id()+`" appears twice; the later rules are a subset of the earlier`)
			default:
				duplicates = append(duplicates, `spec "`+a.Id()+`" appears twice with diverging rules`)
			}
		}
	}

	return acc, duplicates, nil
}
