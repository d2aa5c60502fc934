// Package main is the batch cleaner: it runs a cleaning spec over a
// directory of JSON-lines record dumps and writes the cleaned files,
// a deduced schema, and an error report to an output directory.
//
//	schemawash -in dumps/ -out cleaned/ -spec specs/datacite.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/schemawash/schemawash/cleaners"
	"github.com/schemawash/schemawash/core"
	"github.com/schemawash/schemawash/util"
	"github.com/schemawash/schemawash/wash"

	_ "github.com/schemawash/schemawash/cleaners/ecmascript"
)

func main() {
	var (
		inDir     = flag.String("in", "", "input directory")
		outDir    = flag.String("out", "", "output directory")
		specFile  = flag.String("spec", "", "cleaning spec YAML file")
		table     = flag.String("table", "", "datasource.table to select when the spec file has several specs")
		workers   = flag.Int("workers", runtime.NumCPU(), "number of files processed concurrently")
		keepNulls = flag.Bool("keep-nulls", true, "keep never-populated fields in the deduced schema")
		suffix    = flag.String("suffix", ".jsonl.gz", "input filename suffix")
		progress  = flag.String("progress", "", "optional BoltDB file for resumable progress")
		verbose   = flag.Bool("v", false, "verbosity")
	)

	flag.Parse()
	util.Logging = *verbose

	if *inDir == "" || *outDir == "" || *specFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	spec, err := pickSpec(*specFile, *table)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err = spec.Compile(ctx, cleaners.Standard(), false); err != nil {
		log.Fatal(err)
	}
	util.Logf(`spec "%s": %d rules, %d filters`, spec.Id(), len(spec.Cleaners), len(spec.Filters))

	opts := &wash.Options{
		InDir:     *inDir,
		OutDir:    *outDir,
		Suffix:    *suffix,
		Workers:   *workers,
		KeepNulls: *keepNulls,
	}

	if *progress != "" {
		store := wash.NewBoltStore(*progress)
		if err = store.Open(); err != nil {
			log.Fatal(err)
		}
		defer store.Close()
		opts.Progress = store
	}

	summary, err := wash.Wash(ctx, spec, opts)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%d files (%d skipped, %d emptied), %d records read, %d written, %d errors\n",
		summary.Files, summary.Skipped, summary.Deleted,
		summary.Read, summary.Written, len(summary.Errors))

	if 0 < len(summary.Errors) {
		os.Exit(1)
	}
}

func pickSpec(filename, table string) (*core.Spec, error) {
	specs, err := core.LoadSpecs(filename)
	if err != nil {
		return nil, err
	}
	switch {
	case len(specs) == 0:
		return nil, fmt.Errorf("no specs in %s", filename)
	case table == "":
		if 1 < len(specs) {
			return nil, fmt.Errorf("%s has %d specs; pick one with -table", filename, len(specs))
		}
		return specs[0], nil
	}
	for _, spec := range specs {
		if spec.Id() == table {
			return spec, nil
		}
	}
	return nil, fmt.Errorf(`no spec "%s" in %s`, table, filename)
}
