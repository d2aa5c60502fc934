package wash

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxLine is the largest record line we'll read.  Some DataCite dumps
// carry records with embedded full-text descriptions.
const maxLine = 16 * 1024 * 1024

// A RecordReader reads records from a JSON-lines file, gunzipping
// when the filename ends in ".gz".
type RecordReader struct {
	filename string
	f        *os.File
	gz       *gzip.Reader
	sc       *bufio.Scanner
	line     int
}

// NewRecordReader opens the given file for reading.
func NewRecordReader(filename string) (*RecordReader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	r := &RecordReader{
		filename: filename,
		f:        f,
	}

	var src io.Reader = f
	if strings.HasSuffix(filename, ".gz") {
		if r.gz, err = gzip.NewReader(f); err != nil {
			f.Close()
			return nil, err
		}
		src = r.gz
	}

	r.sc = bufio.NewScanner(src)
	r.sc.Buffer(make([]byte, 64*1024), maxLine)

	return r, nil
}

// Line gives the line number of the record last returned by Next.
func (r *RecordReader) Line() int {
	return r.line
}

// Next returns the next record, or io.EOF when the file is done.
// Blank lines are skipped.
func (r *RecordReader) Next() (map[string]interface{}, error) {
	for r.sc.Scan() {
		r.line++
		bs := r.sc.Bytes()
		if len(strings.TrimSpace(string(bs))) == 0 {
			continue
		}
		var record map[string]interface{}
		if err := json.Unmarshal(bs, &record); err != nil {
			return nil, fmt.Errorf("%s line %d: %s", r.filename, r.line, err)
		}
		return record, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (r *RecordReader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	return r.f.Close()
}

// A RecordWriter writes records to a JSON-lines file, gzipping when
// the filename ends in ".gz".
type RecordWriter struct {
	filename string
	f        *os.File
	gz       *gzip.Writer
	bw       *bufio.Writer
	count    int
}

// NewRecordWriter creates (or truncates) the given file.
func NewRecordWriter(filename string) (*RecordWriter, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	w := &RecordWriter{
		filename: filename,
		f:        f,
	}

	var dst io.Writer = f
	if strings.HasSuffix(filename, ".gz") {
		w.gz = gzip.NewWriter(f)
		dst = w.gz
	}
	w.bw = bufio.NewWriter(dst)

	return w, nil
}

// Count gives the number of records written so far.
func (w *RecordWriter) Count() int {
	return w.count
}

// Write appends one record as a JSON line.
func (w *RecordWriter) Write(record map[string]interface{}) error {
	js, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if _, err = w.bw.Write(js); err != nil {
		return err
	}
	if err = w.bw.WriteByte('\n'); err != nil {
		return err
	}
	w.count++
	return nil
}

func (w *RecordWriter) Close() error {
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return err
	}
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			w.f.Close()
			return err
		}
	}
	return w.f.Close()
}

// ListFiles finds the files in dir with the given suffix, sorted by
// name so runs are repeatable.
func ListFiles(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	acc := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		acc = append(acc, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(acc)
	return acc, nil
}
