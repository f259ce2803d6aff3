package source

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Factory builds an adapter for the options of a Loader.
type Factory func(opts Options) Adapter

var (
	registry   = make(map[string]Factory)
	registryMu sync.RWMutex
)

func init() {
	Register(".csv", func(opts Options) Adapter {
		return &CSVAdapter{Encoding: opts.Encoding, Comma: ','}
	})
	Register(".tsv", func(opts Options) Adapter {
		return &CSVAdapter{Encoding: opts.Encoding, Comma: '\t'}
	})
	Register(".docx", func(Options) Adapter {
		return &DocxAdapter{}
	})
}

// Register adds an adapter factory for a file extension such as ".csv".
// Panics if the extension is already registered.
func Register(ext string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	ext = normalizeExt(ext)
	if _, exists := registry[ext]; exists {
		panic(fmt.Sprintf("source adapter already registered: %s", ext))
	}
	registry[ext] = f
}

// Lookup returns the factory registered for the extension of path.
func Lookup(path string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	f, ok := registry[normalizeExt(filepath.Ext(path))]
	return f, ok
}

// Extensions returns the registered extensions, sorted.
func Extensions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
