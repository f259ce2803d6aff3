// Package store persists column-mapping templates.
//
// A template remembers the labels a user assigned to the columns of a source
// layout so the same export can be parsed again without relabelling. Templates
// are configuration; they never hold pipeline state.
package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/JonMunkholm/graticard/internal/core"
	"github.com/JonMunkholm/graticard/internal/source"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateExists   = errors.New("template already exists")
	ErrTemplateName     = errors.New("template name is required")
)

// MatchThreshold is the minimum header overlap for a template suggestion.
const MatchThreshold = 0.5

// Template is a saved column mapping.
type Template struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Kind      source.Kind        `json:"kind"`
	Labels    core.ColumnMapping `json:"labels"`
	Headers   []string           `json:"headers,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// TemplateStore is implemented by MemoryStore and PGStore.
type TemplateStore interface {
	Save(ctx context.Context, t Template) (*Template, error)
	Get(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context, kind source.Kind) ([]Template, error)
	Delete(ctx context.Context, id string) error
}

// prepare validates a template before it is stored.
func prepare(t Template) (Template, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return t, ErrTemplateName
	}
	if _, err := core.ValidateMapping(t.Labels); err != nil {
		return t, err
	}
	if t.Kind == "" {
		t.Kind = source.KindList
	}
	return t, nil
}

// TemplateMatch is a template suggestion with its header overlap score.
type TemplateMatch struct {
	Template Template `json:"template"`
	Score    float64  `json:"score"`
}

// MatchTemplates suggests templates whose saved headers overlap the given
// header row, best first. Templates without headers are never suggested.
func MatchTemplates(ctx context.Context, s TemplateStore, kind source.Kind, headers []string) ([]TemplateMatch, error) {
	templates, err := s.List(ctx, kind)
	if err != nil {
		return nil, err
	}

	var matches []TemplateMatch
	for _, t := range templates {
		if score := matchHeaders(headers, t.Headers); score >= MatchThreshold {
			matches = append(matches, TemplateMatch{Template: t, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// matchHeaders returns the share of template headers found in headers.
func matchHeaders(headers, templateHeaders []string) float64 {
	if len(templateHeaders) == 0 {
		return 0
	}

	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		seen[strings.ToLower(strings.TrimSpace(h))] = true
	}

	matched := 0
	for _, h := range templateHeaders {
		if seen[strings.ToLower(strings.TrimSpace(h))] {
			matched++
		}
	}
	return float64(matched) / float64(len(templateHeaders))
}
