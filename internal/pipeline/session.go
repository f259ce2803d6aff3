// Package pipeline drives a batch of sources from loading to merge.
//
// A Session replaces the original screen-by-screen workflow with explicit
// state: each source is Pending until a valid column mapping is applied, and
// Merge refuses to run until every source is Complete and both roles are
// represented.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/graticard/internal/address"
	"github.com/JonMunkholm/graticard/internal/core"
	"github.com/JonMunkholm/graticard/internal/source"
)

// Options configure a Session. Zero values fall back to the defaults.
type Options struct {
	Normalizer address.Normalizer
	Scorer     core.Scorer
	Loader     *source.Loader
	Logger     *slog.Logger
}

// MergeResult is the output of a successful Merge.
type MergeResult struct {
	Entities  []*core.Entity   `json:"entities"`
	Report    core.MergeReport `json:"report"`
	Primary   string           `json:"primary"`
	Secondary string           `json:"secondary"`

	// Duplicate recipient names replaced within each side.
	PrimaryOverwritten   int `json:"primary_overwritten"`
	SecondaryOverwritten int `json:"secondary_overwritten"`
}

// Session holds the sources of one reconciliation run. It is safe for
// concurrent use.
type Session struct {
	id        string
	createdAt time.Time

	normalizer address.Normalizer
	scorer     core.Scorer
	loader     *source.Loader
	logger     *slog.Logger

	mu       sync.Mutex
	sources  []*Source
	result   *MergeResult
	lastUsed time.Time
}

// NewSession creates an empty session.
func NewSession(opts Options) *Session {
	if opts.Normalizer == nil {
		opts.Normalizer = address.NewUSNormalizer()
	}
	if opts.Scorer == nil {
		opts.Scorer = core.DefaultScorer{}
	}
	if opts.Loader == nil {
		opts.Loader = source.NewLoader(source.DefaultOptions(), opts.Logger)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	id := uuid.NewString()
	now := time.Now()
	return &Session{
		id:         id,
		createdAt:  now,
		normalizer: opts.Normalizer,
		scorer:     opts.Scorer,
		loader:     opts.Loader,
		logger:     opts.Logger.With("session_id", id),
		lastUsed:   now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// LastUsed returns the time of the last operation on the session.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) touch() {
	s.lastUsed = time.Now()
}

// Add appends a loaded table as a Pending source with the default role of
// its kind.
func (s *Session) Add(t *source.Table) *Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	src := &Source{
		ID:      uuid.NewString(),
		Name:    t.Name,
		Kind:    t.Kind,
		Role:    RoleFor(t.Kind),
		Status:  StatusPending,
		Rows:    t.Rows,
		AddedAt: time.Now(),
	}
	s.sources = append(s.sources, src)

	s.logger.Info("source added",
		"source_id", src.ID,
		"name", src.Name,
		"kind", src.Kind,
		"rows", len(src.Rows),
	)
	return src.clone()
}

// AddFiles loads every path and adds the ones that succeed, in input order.
// Failed files are reported in the batch result only.
func (s *Session) AddFiles(ctx context.Context, paths []string) (source.BatchResult, []*Source) {
	batch := s.loader.AddFiles(ctx, paths)

	var added []*Source
	for _, t := range batch.Loaded() {
		added = append(added, s.Add(t))
	}
	return batch, added
}

// Sources returns a snapshot of every source in insertion order.
func (s *Session) Sources() []*Source {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Source, len(s.sources))
	for i, src := range s.sources {
		out[i] = src.clone()
	}
	return out
}

// Source returns a snapshot of one source.
func (s *Session) Source(id string) (*Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, src, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return src.clone(), nil
}

func (s *Session) find(id string) (int, *Source, error) {
	for i, src := range s.sources {
		if src.ID == id {
			return i, src, nil
		}
	}
	return -1, nil, fmt.Errorf("%w: %s", ErrSourceNotFound, id)
}

// Remove drops a source regardless of its status.
func (s *Session) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	i, _, err := s.find(id)
	if err != nil {
		return err
	}
	s.sources = append(s.sources[:i], s.sources[i+1:]...)
	s.result = nil
	s.logger.Info("source removed", "source_id", id)
	return nil
}

// SetRole overrides which side of the merge a Pending source feeds.
func (s *Session) SetRole(id string, role Role) (*Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	_, src, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if src.Status != StatusPending {
		return nil, ErrAlreadyParsed
	}
	src.Role = role
	return src.clone(), nil
}

// RemoveRows drops raw rows by index, e.g. header or title lines, from a
// Pending source. Indices refer to the current rows; duplicates are ignored.
func (s *Session) RemoveRows(id string, indices ...int) (*Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	_, src, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if src.Status != StatusPending {
		return nil, ErrAlreadyParsed
	}

	drop := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(src.Rows) {
			return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrRowOutOfRange, idx, len(src.Rows))
		}
		drop[idx] = true
	}

	rows := make([][]string, 0, len(src.Rows)-len(drop))
	for i, row := range src.Rows {
		if !drop[i] {
			rows = append(rows, row)
		}
	}
	src.Rows = rows

	s.logger.Debug("rows removed", "source_id", id, "removed", len(drop), "remaining", len(rows))
	return src.clone(), nil
}

// Advance returns the first Pending source in insertion order, or false when
// every source is Complete.
func (s *Session) Advance() (*Source, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	for _, src := range s.sources {
		if src.Status == StatusPending {
			return src.clone(), true
		}
	}
	return nil, false
}

// Parse applies a column mapping to a Pending source. On success the source
// becomes Complete with one entity per raw row. A mapping error leaves the
// source Pending and is returned unchanged for errors.As.
func (s *Session) Parse(id string, m core.ColumnMapping) (*Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	_, src, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if src.Status != StatusPending {
		return nil, ErrAlreadyParsed
	}

	start := time.Now()
	entities, err := core.Project(src.Rows, m, s.normalizer)
	if err != nil {
		s.logger.Info("mapping rejected", "source_id", id, "mapping", m.String(), "error", err)
		return nil, err
	}

	normalized := 0
	for _, e := range entities {
		if e.NormalizedAddress() != nil {
			normalized++
		}
	}

	src.Mapping = append(core.ColumnMapping(nil), m...)
	src.Entities = entities
	src.Status = StatusComplete
	s.result = nil

	s.logger.Info("source parsed",
		"source_id", id,
		"entities", len(entities),
		"normalized", normalized,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return src.clone(), nil
}

// Merge reconciles the parsed sources. Every source must be Complete and
// each role needs at least one; the last Complete source of each role is
// used. Fuzzy matches must score strictly above floor.
func (s *Session) Merge(floor float64) (*MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	var primary, secondary *Source
	for _, src := range s.sources {
		if src.Status != StatusComplete {
			return nil, ErrParseFirst
		}
		switch src.Role {
		case RolePrimary:
			primary = src
		case RoleSecondary:
			secondary = src
		}
	}
	if primary == nil || secondary == nil {
		return nil, ErrParseFirst
	}

	start := time.Now()
	// Merge writes gifts into the primary entities; keep parsed data intact.
	entities := make([]*core.Entity, len(primary.Entities))
	for i, e := range primary.Entities {
		entities[i] = e.Clone()
	}
	pc := core.NewCollection(entities)
	sc := core.NewCollection(secondary.Entities)
	report := core.Merge(pc, sc, floor, s.scorer)

	result := &MergeResult{
		Entities:             pc.Entities(),
		Report:               report,
		Primary:              primary.Name,
		Secondary:            secondary.Name,
		PrimaryOverwritten:   pc.Overwritten(),
		SecondaryOverwritten: sc.Overwritten(),
	}
	s.result = result

	if result.PrimaryOverwritten > 0 || result.SecondaryOverwritten > 0 {
		s.logger.Warn("duplicate recipient names replaced",
			"primary", result.PrimaryOverwritten,
			"secondary", result.SecondaryOverwritten,
		)
	}
	for _, r := range report.Results {
		if r.Outcome == core.OutcomeBelowFloor {
			s.logger.Debug("no gift match", "name", r.Name, "best", r.Matched, "score", r.Score)
		}
	}
	s.logger.Info("merge completed",
		"entities", len(result.Entities),
		"exact", report.Exact,
		"fuzzy", report.Fuzzy,
		"below_floor", report.BelowFloor,
		"floor", floor,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// Result returns the last successful merge, cleared by any later Parse.
func (s *Session) Result() (*MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.result == nil {
		return nil, ErrNoMergeResult
	}
	return s.result, nil
}

// Summary counts sources by status.
type Summary struct {
	ID        string    `json:"id"`
	Sources   int       `json:"sources"`
	Pending   int       `json:"pending"`
	Complete  int       `json:"complete"`
	Merged    bool      `json:"merged"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
}

// Summary describes the session state.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		ID:        s.id,
		Sources:   len(s.sources),
		Merged:    s.result != nil,
		CreatedAt: s.createdAt,
		LastUsed:  s.lastUsed,
	}
	for _, src := range s.sources {
		if src.Status == StatusPending {
			sum.Pending++
		} else {
			sum.Complete++
		}
	}
	return sum
}

// sortedByLastUsed orders sessions oldest first.
func sortedByLastUsed(sessions []*Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastUsed().Before(sessions[j].LastUsed())
	})
}
