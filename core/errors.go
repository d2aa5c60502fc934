package core

// These errors are configuration errors, not record conditions.
//
// Absent paths and nil values in a record are never errors.  See
// package resolve.

import (
	"github.com/schemawash/schemawash/resolve"
)

// ConfigError occurs when a specification is malformed: an empty
// path, a missing required top-level key, a duplicate rule label.
//
// Fatal at load time, before any record is processed.
type ConfigError struct {
	Spec *Spec
	Msg  string
}

func (e *ConfigError) Error() string {
	return `bad spec "` + e.Spec.Id() + `": ` + e.Msg
}

// UnknownCleaner occurs when a rule references a function name that
// was never registered.
//
// Detected eagerly by Spec.Compile, so a bad specification fails
// before the first record.
type UnknownCleaner struct {
	Name string
	Rule string
}

func (e *UnknownCleaner) Error() string {
	s := `cleaner "` + e.Name + `" not registered`
	if e.Rule != "" {
		s += ` (rule "` + e.Rule + `")`
	}
	return s
}

// SpecNotCompiled occurs when a Spec is used (say via Clean()) before
// it has been Compile()ed.
type SpecNotCompiled struct {
	Spec *Spec
}

func (e *SpecNotCompiled) Error() string {
	return `spec "` + e.Spec.Id() + `" not compiled`
}

// CleanError occurs when a cleaner fails on a specific value.
//
// The error identifies the offending rule by its label and the
// literal path segments, never by the record's content, to keep logs
// concise.
type CleanError struct {
	Rule string
	Path resolve.Path
	Err  error
}

func (e *CleanError) Error() string {
	return `rule "` + e.Rule + `" failed at ` + e.Path.String() + `: ` + e.Err.Error()
}

func (e *CleanError) Unwrap() error {
	return e.Err
}
