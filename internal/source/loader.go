package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxFileSize bounds a single source file.
const DefaultMaxFileSize int64 = 20 << 20

// Options configure how sources are read.
type Options struct {
	// MaxFileSize in bytes; zero or less disables the limit.
	MaxFileSize int64

	// Encoding of delimited text: "latin-1" (default) or "utf-8".
	Encoding string

	// Concurrency bounds parallel file reads in AddFiles. Zero means 4.
	Concurrency int
}

// DefaultOptions returns the options used by the package-level Open.
func DefaultOptions() Options {
	return Options{MaxFileSize: DefaultMaxFileSize, Encoding: EncodingLatin1}
}

// Loader opens source files with a fixed set of options.
type Loader struct {
	opts   Options
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger uses slog.Default().
func NewLoader(opts Options, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{opts: opts, logger: logger}
}

// Open reads the file at path with DefaultOptions.
func Open(path string) (*Table, error) {
	return NewLoader(DefaultOptions(), nil).Open(path)
}

// Open reads the file at path using the adapter registered for its extension.
func (l *Loader) Open(path string) (*Table, error) {
	if _, ok := Lookup(path); !ok {
		return nil, &UnsupportedSourceError{Path: path, Ext: filepath.Ext(path)}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &UnreadableSourceError{Path: path, Err: err}
	}
	defer f.Close()

	size := int64(-1)
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	return l.Read(path, f, size)
}

// Read parses r as the file named name, e.g. an uploaded multipart part.
// size may be -1 when unknown.
func (l *Loader) Read(name string, r io.Reader, size int64) (*Table, error) {
	factory, ok := Lookup(name)
	if !ok {
		return nil, &UnsupportedSourceError{Path: name, Ext: filepath.Ext(name)}
	}

	if l.opts.MaxFileSize > 0 && size > l.opts.MaxFileSize {
		return nil, fmt.Errorf("%s: %w (%d bytes, limit %d)", name, ErrFileTooLarge, size, l.opts.MaxFileSize)
	}

	adapter := factory(l.opts)
	rows, err := adapter.ReadRows(newSizeLimitReader(r, l.opts.MaxFileSize), size)
	if errors.Is(err, ErrFileTooLarge) {
		return nil, fmt.Errorf("%s: %w (limit %d)", name, ErrFileTooLarge, l.opts.MaxFileSize)
	}
	if err != nil {
		return nil, &UnreadableSourceError{Path: name, Err: err}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptySource)
	}

	l.logger.Debug("source loaded",
		slog.String("name", filepath.Base(name)),
		slog.String("kind", string(adapter.Kind())),
		slog.Int("rows", len(rows)),
	)

	return &Table{Name: filepath.Base(name), Kind: adapter.Kind(), Rows: rows}, nil
}

// FileResult is the outcome of loading one file of a batch.
type FileResult struct {
	Path  string `json:"path"`
	Table *Table `json:"-"`
	Err   error  `json:"-"`
}

// BatchResult lists per-file outcomes in input order.
type BatchResult struct {
	Files []FileResult
}

// Loaded returns the tables that were read successfully, in input order.
func (b BatchResult) Loaded() []*Table {
	var out []*Table
	for _, f := range b.Files {
		if f.Err == nil {
			out = append(out, f.Table)
		}
	}
	return out
}

// Failed returns the results that carry an error.
func (b BatchResult) Failed() []FileResult {
	var out []FileResult
	for _, f := range b.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// AddFiles loads every path. A file that fails is reported in its result and
// never stops the others. Files are read concurrently; results keep input
// order. Cancelling ctx marks files not yet started as failed.
func (l *Loader) AddFiles(ctx context.Context, paths []string) BatchResult {
	results := make([]FileResult, len(paths))

	limit := l.opts.Concurrency
	if limit <= 0 {
		limit = 4
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i].Path = path
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Table, results[i].Err = l.Open(path)
			if results[i].Err != nil {
				l.logger.Warn("source rejected",
					slog.String("path", path),
					slog.String("error", results[i].Err.Error()),
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	return BatchResult{Files: results}
}
