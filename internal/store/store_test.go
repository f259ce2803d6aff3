package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/JonMunkholm/graticard/internal/core"
	"github.com/JonMunkholm/graticard/internal/source"
)

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	saved, err := s.Save(ctx, Template{
		Name:    "  Holiday list ",
		Labels:  core.ColumnMapping{"Name", "", "Address Line 1", "City", "State", "Postal Code"},
		Headers: []string{"Full Name", "Notes", "Street", "City", "State", "Zip"},
	})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID == "" {
		t.Error("Save() ID is empty")
	}
	if saved.Name != "Holiday list" {
		t.Errorf("Name = %q, want %q", saved.Name, "Holiday list")
	}
	if saved.Kind != source.KindList {
		t.Errorf("Kind = %q, want %q", saved.Kind, source.KindList)
	}
	if saved.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}

	got, err := s.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(*saved, *got) {
		t.Errorf("Get() = %+v, want %+v", *got, *saved)
	}

	_, err = s.Save(ctx, Template{Name: "Holiday list", Labels: core.ColumnMapping{"Name"}})
	if !errors.Is(err, ErrTemplateExists) {
		t.Errorf("Save(duplicate) error = %v, want %v", err, ErrTemplateExists)
	}

	if err := s.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, saved.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Get(deleted) error = %v, want %v", err, ErrTemplateNotFound)
	}
	if err := s.Delete(ctx, saved.ID); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Delete(deleted) error = %v, want %v", err, ErrTemplateNotFound)
	}
}

func TestMemoryStore_SaveValidates(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    Template
		wantErr error
	}{
		{
			name:    "blank name",
			tmpl:    Template{Name: " ", Labels: core.ColumnMapping{"Name"}},
			wantErr: ErrTemplateName,
		},
		{
			name:    "incomplete address",
			tmpl:    Template{Name: "bad", Labels: core.ColumnMapping{"Name", "Street Address"}},
			wantErr: core.ErrInvalidMapping,
		},
		{
			name:    "unknown label",
			tmpl:    Template{Name: "bad", Labels: core.ColumnMapping{"Name", "Nickname"}},
			wantErr: core.ErrInvalidMapping,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMemoryStore().Save(context.Background(), tt.tmpl)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Save() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryStore_ListFiltersByKind(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, tmpl := range []Template{
		{Name: "b-list", Kind: source.KindList, Labels: core.ColumnMapping{"Name"}},
		{Name: "a-doc", Kind: source.KindDocument, Labels: core.ColumnMapping{"Name", "Gift"}},
		{Name: "a-list", Kind: source.KindList, Labels: core.ColumnMapping{"Name"}},
	} {
		if _, err := s.Save(ctx, tmpl); err != nil {
			t.Fatalf("Save(%s) error = %v", tmpl.Name, err)
		}
	}

	tests := []struct {
		kind source.Kind
		want []string
	}{
		{"", []string{"a-doc", "a-list", "b-list"}},
		{source.KindList, []string{"a-list", "b-list"}},
		{source.KindDocument, []string{"a-doc"}},
	}

	for _, tt := range tests {
		got, err := s.List(ctx, tt.kind)
		if err != nil {
			t.Fatalf("List(%q) error = %v", tt.kind, err)
		}
		names := make([]string, len(got))
		for i, tmpl := range got {
			names[i] = tmpl.Name
		}
		if !reflect.DeepEqual(names, tt.want) {
			t.Errorf("List(%q) = %v, want %v", tt.kind, names, tt.want)
		}
	}
}

func TestMatchHeaders(t *testing.T) {
	tests := []struct {
		name     string
		headers  []string
		template []string
		want     float64
	}{
		{"exact", []string{"Name", "Gift"}, []string{"Name", "Gift"}, 1},
		{"case and space insensitive", []string{" name", "GIFT"}, []string{"Name", "Gift "}, 1},
		{"half", []string{"Name", "Gift"}, []string{"name", "Present", "Extra", "Gift"}, 0.5},
		{"none", []string{"Name"}, []string{"Other"}, 0},
		{"no template headers", []string{"Name"}, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchHeaders(tt.headers, tt.template); got != tt.want {
				t.Errorf("matchHeaders(%v, %v) = %v, want %v", tt.headers, tt.template, got, tt.want)
			}
		})
	}
}

func TestMatchTemplates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, tmpl := range []Template{
		{Name: "full", Labels: core.ColumnMapping{"Name", "Gift"}, Headers: []string{"Name", "Gift"}},
		{Name: "half", Labels: core.ColumnMapping{"Name", "Gift"}, Headers: []string{"name", "Present", "Extra", "Gift "}},
		{Name: "none", Labels: core.ColumnMapping{"Name"}, Headers: []string{"Other"}},
		{Name: "headerless", Labels: core.ColumnMapping{"Name"}},
	} {
		if _, err := s.Save(ctx, tmpl); err != nil {
			t.Fatalf("Save(%s) error = %v", tmpl.Name, err)
		}
	}

	matches, err := MatchTemplates(ctx, s, source.KindList, []string{"Name", "Gift"})
	if err != nil {
		t.Fatalf("MatchTemplates() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("MatchTemplates() returned %d matches, want 2", len(matches))
	}

	want := []struct {
		name  string
		score float64
	}{{"full", 1}, {"half", 0.5}}
	for i, w := range want {
		if matches[i].Template.Name != w.name || matches[i].Score != w.score {
			t.Errorf("matches[%d] = %s/%v, want %s/%v",
				i, matches[i].Template.Name, matches[i].Score, w.name, w.score)
		}
	}
}
