package pipeline

import (
	"time"

	"github.com/JonMunkholm/graticard/internal/core"
	"github.com/JonMunkholm/graticard/internal/source"
)

// Role selects which side of the merge a source feeds.
type Role string

const (
	// RolePrimary sources are recipient lists; their entities are the output.
	RolePrimary Role = "primary"

	// RoleSecondary sources contribute gifts only.
	RoleSecondary Role = "secondary"
)

// ParseRole converts a string to a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RolePrimary, RoleSecondary:
		return Role(s), true
	}
	return "", false
}

// RoleFor returns the default role of a source kind.
func RoleFor(k source.Kind) Role {
	if k == source.KindDocument {
		return RoleSecondary
	}
	return RolePrimary
}

// Status tracks whether a source has been parsed.
type Status string

const (
	StatusPending  Status = "pending"
	StatusComplete Status = "complete"
)

// Source is one loaded file inside a session.
type Source struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Kind     source.Kind        `json:"kind"`
	Role     Role               `json:"role"`
	Status   Status             `json:"status"`
	Rows     [][]string         `json:"rows"`
	Mapping  core.ColumnMapping `json:"mapping,omitempty"`
	Entities []*core.Entity     `json:"entities,omitempty"`
	AddedAt  time.Time          `json:"added_at"`
}

// Width returns the length of the longest raw row.
func (s *Source) Width() int {
	w := 0
	for _, row := range s.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// clone copies the source header and slices so callers can read it without
// holding the session lock. Entities are shared.
func (s *Source) clone() *Source {
	c := *s
	c.Rows = append([][]string(nil), s.Rows...)
	c.Mapping = append(core.ColumnMapping(nil), s.Mapping...)
	c.Entities = append([]*core.Entity(nil), s.Entities...)
	return &c
}
