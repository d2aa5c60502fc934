// Package ecmascript compiles cleaner functions written in
// ECMAScript.
//
// A rule can carry inline 'source' instead of naming a registered
// function.  The source is the body of a function of one argument:
// read _.value and return the cleaned value.
package ecmascript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"

	"github.com/schemawash/schemawash/core"

	"github.com/dop251/goja"
)

// init adds an Interpreter to core.DefaultInterpreters.
func init() {
	core.DefaultInterpreters["ecmascript"] = NewInterpreter()
}

// Interpreter implements core.Interpreter using Goja, which is a Go
// implementation of ECMAScript 5.1+.
//
// See https://github.com/dop251/goja.
type Interpreter struct {
	// Verbose wires the script's log() helper to log.Printf.
	Verbose bool
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function(value) {\n%s\n}(_.value));\n", src)
}

// Compile compiles the source once and returns a Cleaner that runs
// the program per value.
//
// The following properties are available from the runtime at _:
//
//	value: the value at the resolved path (also the function's
//	  argument).
//	log(x): log the given value (when the Interpreter is Verbose).
//	esc(s): URL query-escape the given string.
//
// The input value is deep-copied before execution, so a script cannot
// mutate the record other than through its return value, and the
// returned value is canonicalized to JSON-compatible shapes.
func (i *Interpreter) Compile(ctx context.Context, src string) (core.Cleaner, error) {
	if src == "" {
		return nil, errors.New("empty ECMAScript source")
	}

	code := wrapSrc(src)

	p, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	return func(x interface{}) (interface{}, error) {
		// The script must not be able to reach into the
		// record through a shared map.  So:
		x, err := core.Canonicalize(x)
		if err != nil {
			return nil, err
		}

		env := map[string]interface{}{
			"value": x,
		}

		env["log"] = func(x interface{}) interface{} {
			switch vv := x.(type) {
			case goja.Value:
				x = vv.Export()
			}
			if i.Verbose {
				js, err := json.Marshal(&x)
				if err != nil {
					log.Printf("cleaner log error %v on %#v", err, x)
					return x
				}
				log.Printf("cleaner: %s", js)
			}
			return x
		}

		env["esc"] = func(s string) string {
			return url.QueryEscape(s)
		}

		o := goja.New()
		o.Set("_", env)

		v, err := o.RunProgram(p)
		if err != nil {
			return nil, err
		}

		var y interface{}
		if v != nil {
			y = v.Export()
		}

		return core.Canonicalize(y)
	}, nil
}
