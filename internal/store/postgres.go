package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/graticard/internal/core"
	"github.com/JonMunkholm/graticard/internal/source"
)

const schema = `
CREATE TABLE IF NOT EXISTS mapping_templates (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	kind       TEXT NOT NULL,
	labels     JSONB NOT NULL,
	headers    JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT mapping_templates_name_unique UNIQUE (name)
)`

const templateColumns = `id, name, kind, labels, headers, created_at`

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// DBTX is the subset of pgxpool.Pool used by PGStore.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ DBTX = (*pgxpool.Pool)(nil)

// PGStore keeps templates in the mapping_templates table.
type PGStore struct {
	db DBTX
}

// NewPGStore wraps a pool. Call Migrate once before use.
func NewPGStore(db DBTX) *PGStore {
	return &PGStore{db: db}
}

// Migrate creates the templates table if it does not exist.
func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate mapping_templates: %w", err)
	}
	return nil
}

// Save inserts a new template.
func (s *PGStore) Save(ctx context.Context, t Template) (*Template, error) {
	t, err := prepare(t)
	if err != nil {
		return nil, err
	}

	labels, err := json.Marshal(t.Labels)
	if err != nil {
		return nil, fmt.Errorf("marshal labels: %w", err)
	}
	headers, err := json.Marshal(nonNil(t.Headers))
	if err != nil {
		return nil, fmt.Errorf("marshal headers: %w", err)
	}

	id := uuid.New()
	row := s.db.QueryRow(ctx,
		`INSERT INTO mapping_templates (id, name, kind, labels, headers)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+templateColumns,
		pgtype.UUID{Bytes: id, Valid: true}, t.Name, string(t.Kind), labels, headers,
	)

	saved, err := scanTemplate(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %q", ErrTemplateExists, t.Name)
		}
		return nil, fmt.Errorf("create template: %w", err)
	}
	return saved, nil
}

// Get returns a template by ID.
func (s *PGStore) Get(ctx context.Context, id string) (*Template, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ID %q", ErrTemplateNotFound, id)
	}

	row := s.db.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM mapping_templates WHERE id = $1`,
		pgtype.UUID{Bytes: uid, Valid: true},
	)
	t, err := scanTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// List returns templates of kind, or all when kind is empty, sorted by name.
func (s *PGStore) List(ctx context.Context, kind source.Kind) ([]Template, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+templateColumns+` FROM mapping_templates
		 WHERE $1::text = '' OR kind = $1::text
		 ORDER BY name`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return out, nil
}

// Delete removes a template.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: invalid ID %q", ErrTemplateNotFound, id)
	}

	tag, err := s.db.Exec(ctx,
		`DELETE FROM mapping_templates WHERE id = $1`,
		pgtype.UUID{Bytes: uid, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return nil
}

func scanTemplate(row pgx.Row) (*Template, error) {
	var (
		id        pgtype.UUID
		name      string
		kind      string
		labels    []byte
		headers   []byte
		createdAt time.Time
	)
	if err := row.Scan(&id, &name, &kind, &labels, &headers, &createdAt); err != nil {
		return nil, err
	}

	t := &Template{
		Name:      name,
		Kind:      source.Kind(kind),
		CreatedAt: createdAt,
	}
	if id.Valid {
		t.ID = uuid.UUID(id.Bytes).String()
	}
	if err := json.Unmarshal(labels, &t.Labels); err != nil {
		return nil, fmt.Errorf("unmarshal labels: %w", err)
	}
	if err := json.Unmarshal(headers, &t.Headers); err != nil {
		return nil, fmt.Errorf("unmarshal headers: %w", err)
	}
	if t.Labels == nil {
		t.Labels = core.ColumnMapping{}
	}
	return t, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Connect opens a pool tuned by the given limits and verifies it with a ping.
func Connect(ctx context.Context, url string, maxConns, minConns int32, lifetime, idle time.Duration) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}
	if lifetime > 0 {
		cfg.MaxConnLifetime = lifetime
	}
	if idle > 0 {
		cfg.MaxConnIdleTime = idle
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
