package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/graticard/internal/source"
)

// MemoryStore keeps templates for the life of the process.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[string]Template
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{templates: make(map[string]Template)}
}

// Save stores a new template. Names are unique.
func (m *MemoryStore) Save(_ context.Context, t Template) (*Template, error) {
	t, err := prepare(t)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.templates {
		if existing.Name == t.Name {
			return nil, fmt.Errorf("%w: %q", ErrTemplateExists, t.Name)
		}
	}

	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	m.templates[t.ID] = t
	return &t, nil
}

// Get returns a template by ID.
func (m *MemoryStore) Get(_ context.Context, id string) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return &t, nil
}

// List returns templates of kind, or all when kind is empty, sorted by name.
func (m *MemoryStore) List(_ context.Context, kind source.Kind) ([]Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Template, 0, len(m.templates))
	for _, t := range m.templates {
		if kind == "" || t.Kind == kind {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a template.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.templates[id]; !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	delete(m.templates, id)
	return nil
}
