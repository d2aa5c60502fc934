// Package core provides the core gear for specification-driven
// record cleaning.  A specification binds named cleaner functions to
// paths into a nested record, and the engine applies those bindings
// in order.
//
// The primary type is Spec(ification), and the primary method is
// Clean().  A Spec holds an ordered list of Rules.  Each Rule names a
// cleaner (a value-in, value-out function looked up in a Registry)
// and a path (see package resolve) addressing the locations in a
// record where that cleaner applies.
//
// A Rule can also carry inline source for an ad hoc cleaner.  When a
// Spec is Compiled, the compiler looks up each rule's function in the
// Registry and hands any inline source to an Interpreter for its
// language.  Compilation validates everything eagerly: a bad path, a
// duplicate rule label, or an unregistered function name fails before
// the first record is processed.
//
// A cleaner should be a pure function.  It sees only the value at the
// resolved path, and the engine substitutes its result back at the
// same location.  Absent paths are tolerated silently: an optional
// field that a record lacks just makes the rule a no-op for that
// record.
//
// To use this package, load a Spec (ParseSpec or LoadSpec), Compile()
// it against a Registry (package cleaners supplies the stock one),
// and then Clean() each record.  A Spec and a Registry are read-only
// after compilation, so records can be cleaned concurrently.
package core
