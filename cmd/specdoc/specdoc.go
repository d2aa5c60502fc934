// Package main is a utility for working with cleaning spec files.
//
//	specdoc html specs/datacite.yaml > datacite.html
//	specdoc analyze specs/datacite.yaml
//	specdoc json specs/datacite.yaml
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/schemawash/schemawash/cleaners"
	"github.com/schemawash/schemawash/core"
	"github.com/schemawash/schemawash/tools"

	_ "github.com/schemawash/schemawash/cleaners/ecmascript"
)

func main() {
	if len(os.Args) < 3 {
		Usage()
		os.Exit(1)
	}

	filename := os.Args[2]

	switch os.Args[1] {
	case "html":
		if err := tools.ReadAndRenderSpecPage(filename, nil, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

	case "analyze":
		specs, err := core.LoadSpecs(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		analyses, duplicates, err := tools.AnalyzeAll(specs, cleaners.Standard())
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		problems := 0
		for _, msg := range duplicates {
			fmt.Printf("error: %s\n", msg)
			problems++
		}
		for i, a := range analyses {
			spec := specs[i]
			fmt.Printf("%s: %d rules, %d filters, %d inline sources\n",
				spec.Id(), a.RuleCount, a.FilterCount, a.Sources)
			for _, path := range a.SharedPaths {
				fmt.Printf("  shared path %s\n", path)
			}
			for _, msg := range a.Errors {
				fmt.Printf("  error: %s\n", msg)
				problems++
			}
		}
		if 0 < problems {
			os.Exit(1)
		}

	case "json":
		spec, err := core.LoadSpec(filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		bs, err := json.MarshalIndent(&spec, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s\n", bs)

	default:
		Usage()
		os.Exit(1)
	}
}

func Usage() {
	fmt.Fprintf(os.Stderr, `usage:

  specdoc html FILE      render a spec as an HTML page
  specdoc analyze FILE   report a spec's structure and problems
  specdoc json FILE      print a spec as JSON

`)
}
