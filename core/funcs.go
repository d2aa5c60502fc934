package core

import (
	"context"
)

// Cleaner is a transformation function: one JSON-compatible value in,
// one JSON-compatible value (or nil) out.
//
// A Cleaner must be side-effect-free and deterministic given its
// input, since the engine may invoke it once per fan-out location and
// tests rely on referential transparency.  It sees only the value at
// the resolved path, never sibling fields.
//
// Every shipped Cleaner is idempotent: cleaning an already-clean
// value is a no-op.
type Cleaner func(x interface{}) (interface{}, error)

// Maker builds a Cleaner from a rule's params.
//
// Parameterized cleaners (such as nested_array_to_dict, which needs
// the target keys) are registered as Makers and bound to their params
// once, at Spec.Compile time.
type Maker func(params map[string]interface{}) (Cleaner, error)

// Interpreter compiles inline source (a rule with 'source' instead of
// 'function') into a Cleaner.
type Interpreter interface {
	Compile(ctx context.Context, src string) (Cleaner, error)
}

// DefaultInterpreters will be consulted by Spec.Compile when the
// given Registry has no interpreter for a rule's language.
//
// Package cleaners/ecmascript registers itself here in its init.
var DefaultInterpreters = make(map[string]Interpreter)

// Registry is the closed mapping from symbolic cleaner names to
// implementations.
//
// A Registry is populated before any spec is compiled and is
// read-only afterwards, so it can be shared across concurrently
// cleaned records without locking.
type Registry struct {
	funcs        map[string]Cleaner
	makers       map[string]Maker
	interpreters map[string]Interpreter
}

// NewRegistry makes an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs:        make(map[string]Cleaner, 16),
		makers:       make(map[string]Maker, 4),
		interpreters: make(map[string]Interpreter, 2),
	}
}

// Register binds a name to a Cleaner, replacing any previous binding.
func (r *Registry) Register(name string, f Cleaner) {
	r.funcs[name] = f
}

// RegisterMaker binds a name to a Maker for a parameterized cleaner.
func (r *Registry) RegisterMaker(name string, m Maker) {
	r.makers[name] = m
}

// RegisterInterpreter binds a language name to an Interpreter.
func (r *Registry) RegisterInterpreter(lang string, in Interpreter) {
	r.interpreters[lang] = in
}

// Get returns the Cleaner registered under the given name or an
// *UnknownCleaner.
func (r *Registry) Get(name string) (Cleaner, error) {
	if f, have := r.funcs[name]; have {
		return f, nil
	}
	return nil, &UnknownCleaner{Name: name}
}

// Maker returns the Maker registered under the given name.
func (r *Registry) Maker(name string) (Maker, bool) {
	m, have := r.makers[name]
	return m, have
}

// Interpreter returns the interpreter for the given language, falling
// back to DefaultInterpreters.
func (r *Registry) Interpreter(lang string) (Interpreter, bool) {
	if in, have := r.interpreters[lang]; have {
		return in, true
	}
	in, have := DefaultInterpreters[lang]
	return in, have
}

// Copy makes a shallow copy of the Registry.
func (r *Registry) Copy() *Registry {
	acc := NewRegistry()
	for name, f := range r.funcs {
		acc.funcs[name] = f
	}
	for name, m := range r.makers {
		acc.makers[name] = m
	}
	for lang, in := range r.interpreters {
		acc.interpreters[lang] = in
	}
	return acc
}

// Names returns the registered cleaner names (makers included),
// unsorted.
func (r *Registry) Names() []string {
	acc := make([]string, 0, len(r.funcs)+len(r.makers))
	for name := range r.funcs {
		acc = append(acc, name)
	}
	for name := range r.makers {
		acc = append(acc, name)
	}
	return acc
}
