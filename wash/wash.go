// Package wash runs compiled specs over directories of JSON-lines
// record dumps.
//
// A wash reads each input file, drops records the spec's filters
// reject, cleans the survivors in place, writes them to a mirror file
// in the output directory, and deduces a merged schema for everything
// it wrote.  Finished files can be marked in a BoltStore so an
// interrupted run resumes where it left off.
package wash

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/schemawash/schemawash/bqschema"
	"github.com/schemawash/schemawash/core"
	"github.com/schemawash/schemawash/filter"
	"github.com/schemawash/schemawash/util"
)

// Options configures a Wash.
type Options struct {
	// InDir holds the input record files.
	InDir string

	// OutDir receives the cleaned files, the merged schema, and
	// the error report.  Created if needed.
	OutDir string

	// Suffix selects input files by filename suffix.  Defaults to
	// ".jsonl.gz".
	Suffix string

	// Workers is the number of files processed concurrently.
	// Defaults to the CPU count.
	Workers int

	// KeepNulls keeps never-populated fields in the deduced
	// schema.
	KeepNulls bool

	// Progress, when not nil, is consulted to skip files already
	// marked done and updated as files finish.
	Progress *BoltStore

	// SchemaFilename is the merged schema output name, relative
	// to OutDir.  Defaults to "schema.json".
	SchemaFilename string

	// ErrorsFilename is the error report name, relative to
	// OutDir.  Defaults to "errors.txt".
	ErrorsFilename string
}

func (o *Options) fill() {
	if o.Suffix == "" {
		o.Suffix = ".jsonl.gz"
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.SchemaFilename == "" {
		o.SchemaFilename = "schema.json"
	}
	if o.ErrorsFilename == "" {
		o.ErrorsFilename = "errors.txt"
	}
}

// A FileResult reports what happened to one input file.
type FileResult struct {
	Filename string

	// Read counts records read, Kept those that passed the
	// filters, Written those cleaned and written.
	Read    int
	Kept    int
	Written int

	// Errors holds per-record cleaning problems.  A record that
	// failed to clean is reported here and not written.
	Errors []string

	// Schema is the schema deduced from the written records.
	Schema map[string]*bqschema.Entry

	// Deleted reports that the output file held no records and
	// was removed.
	Deleted bool
}

// TransformFile washes one file.
//
// Filter rejections are silent.  A record whose cleaning fails is
// skipped and the failure recorded in the result.  An output file
// that ends up empty is deleted.
func TransformFile(ctx context.Context, spec *core.Spec, inName, outName string, keepNulls bool) (*FileResult, error) {
	if !spec.Compiled() {
		return nil, &core.SpecNotCompiled{Spec: spec}
	}

	r, err := NewRecordReader(inName)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	w, err := NewRecordWriter(outName)
	if err != nil {
		return nil, err
	}

	// A mid-file failure leaves a truncated output behind, which a
	// later resumed run would mistake for a finished file.
	abort := func(err error) (*FileResult, error) {
		w.Close()
		os.Remove(outName)
		return nil, err
	}

	g := bqschema.NewGenerator(keepNulls)
	result := &FileResult{
		Filename: inName,
		Schema:   make(map[string]*bqschema.Entry, 32),
	}

	for {
		if err = ctx.Err(); err != nil {
			return abort(err)
		}

		record, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return abort(err)
		}
		result.Read++

		if !filter.Keep(record, spec.Filters) {
			continue
		}
		result.Kept++

		if _, err = spec.Clean(ctx, record); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s line %d: %s", inName, r.Line(), err))
			continue
		}

		if err = w.Write(record); err != nil {
			return abort(err)
		}
		g.Deduce(record, result.Schema)
	}

	if err = w.Close(); err != nil {
		os.Remove(outName)
		return nil, err
	}
	result.Written = w.Count()
	result.Errors = append(result.Errors, g.Errors...)

	if result.Written == 0 {
		if err = os.Remove(outName); err != nil {
			return nil, err
		}
		result.Deleted = true
	}

	return result, nil
}

// A Summary reports what a whole Wash did.
type Summary struct {
	Files   int
	Skipped int
	Deleted int
	Read    int
	Kept    int
	Written int

	// Errors holds everything that went wrong without stopping
	// the run.
	Errors []string

	// Schema is the merged schema over all written records.
	Schema []*bqschema.Field
}

// Wash processes every matching file in the input directory with a
// pool of workers, then writes the merged schema and the error report
// to the output directory.
//
// A file that fails outright is reported in the summary's errors and
// the run continues.
func Wash(ctx context.Context, spec *core.Spec, opts *Options) (*Summary, error) {
	if !spec.Compiled() {
		return nil, &core.SpecNotCompiled{Spec: spec}
	}
	opts.fill()

	names, err := ListFiles(opts.InDir, opts.Suffix)
	if err != nil {
		return nil, err
	}

	if err = os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, err
	}

	summary := &Summary{}

	todo := make([]string, 0, len(names))
	for _, name := range names {
		if opts.Progress != nil {
			done, err := opts.Progress.Done(filepath.Base(name))
			if err != nil {
				return nil, err
			}
			if done {
				util.Logf("wash skipping %s", name)
				summary.Skipped++
				continue
			}
		}
		todo = append(todo, name)
	}

	var (
		in      = make(chan string)
		results = make(chan *FileResult, len(todo))
		fails   = make(chan string, len(todo))
		wg      sync.WaitGroup
	)

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range in {
				outName := filepath.Join(opts.OutDir, filepath.Base(name))
				result, err := TransformFile(ctx, spec, name, outName, opts.KeepNulls)
				if err != nil {
					fails <- fmt.Sprintf("%s: %s", name, err)
					continue
				}
				util.Logf("wash %s read %d wrote %d", name, result.Read, result.Written)
				if opts.Progress != nil {
					if err = opts.Progress.MarkDone(filepath.Base(name), result.Read); err != nil {
						fails <- fmt.Sprintf("%s: %s", name, err)
					}
				}
				results <- result
			}
		}()
	}

	for _, name := range todo {
		in <- name
	}
	close(in)
	wg.Wait()
	close(results)
	close(fails)

	g := bqschema.NewGenerator(opts.KeepNulls)
	schema := make(map[string]*bqschema.Entry, 64)
	for result := range results {
		summary.Files++
		summary.Read += result.Read
		summary.Kept += result.Kept
		summary.Written += result.Written
		summary.Errors = append(summary.Errors, result.Errors...)
		if result.Deleted {
			summary.Deleted++
			continue
		}
		g.Merge(schema, result.Schema)
	}
	for fail := range fails {
		summary.Errors = append(summary.Errors, fail)
	}
	summary.Errors = append(summary.Errors, g.Errors...)
	sort.Strings(summary.Errors)

	summary.Schema = bqschema.Flatten(schema, opts.KeepNulls)
	if err = writeSchema(filepath.Join(opts.OutDir, opts.SchemaFilename), summary.Schema); err != nil {
		return nil, err
	}
	if err = writeErrors(filepath.Join(opts.OutDir, opts.ErrorsFilename), summary.Errors); err != nil {
		return nil, err
	}

	util.Logf("wash done: %d files, %d skipped, %d records written, %d errors",
		summary.Files, summary.Skipped, summary.Written, len(summary.Errors))

	return summary, nil
}

func writeSchema(filename string, schema []*bqschema.Field) error {
	js, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, append(js, '\n'), 0644)
}

// writeErrors writes the report, or removes a stale one when there is
// nothing to report.
func writeErrors(filename string, errors []string) error {
	if len(errors) == 0 {
		if err := os.Remove(filename); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	for _, line := range errors {
		if _, err = fmt.Fprintln(f, line); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}
