// Package source loads raw tabular rows from recipient lists and gift
// documents.
//
// An Adapter turns one file format into rows of cells. Adapters are
// registered by file extension; Loader.Open picks one, enforces the size
// limit and wraps every failure in a typed error so a batch of files can
// report per-file results.
package source

import (
	"errors"
	"fmt"
	"io"
)

// Kind tells what a source describes.
type Kind string

const (
	// KindList is a tabular recipient list with addresses, e.g. a CSV export.
	KindList Kind = "list"

	// KindDocument is a free-text gift document with one recipient per paragraph.
	KindDocument Kind = "document"
)

// Adapter reads one file format into rows.
type Adapter interface {
	// Kind returns the kind of source this format holds.
	Kind() Kind

	// ReadRows parses the whole input. size is the byte length of r, or -1.
	ReadRows(r io.Reader, size int64) ([][]string, error)
}

// Table is a loaded source before any column mapping is applied.
type Table struct {
	Name string     `json:"name"`
	Kind Kind       `json:"kind"`
	Rows [][]string `json:"rows"`
}

// Width returns the length of the longest row.
func (t *Table) Width() int {
	w := 0
	for _, row := range t.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// ErrFileTooLarge is returned when a source exceeds the configured limit.
var ErrFileTooLarge = errors.New("file too large")

// ErrEmptySource is returned when a source yields no rows.
var ErrEmptySource = errors.New("empty source")

// UnsupportedSourceError reports a file whose extension has no adapter.
type UnsupportedSourceError struct {
	Path string
	Ext  string
}

func (e *UnsupportedSourceError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("unsupported source %s: no file extension", e.Path)
	}
	return fmt.Sprintf("unsupported source %s: type %s", e.Path, e.Ext)
}

// UnreadableSourceError reports a file that could not be opened or parsed.
type UnreadableSourceError struct {
	Path string
	Err  error
}

func (e *UnreadableSourceError) Error() string {
	return fmt.Sprintf("unreadable source %s: %v", e.Path, e.Err)
}

func (e *UnreadableSourceError) Unwrap() error {
	return e.Err
}
