package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/graticard/internal/core"
)

// fakeDB answers every call with canned results.
type fakeDB struct {
	row     pgx.Row
	execTag pgconn.CommandTag
	execErr error
	sql     []string
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.sql = append(f.sql, sql)
	return f.execTag, f.execErr
}

func (f *fakeDB) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	f.sql = append(f.sql, sql)
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.sql = append(f.sql, sql)
	return f.row
}

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

func templateRow(name string) rowFunc {
	return func(dest ...any) error {
		*dest[0].(*pgtype.UUID) = pgtype.UUID{Bytes: [16]byte{1}, Valid: true}
		*dest[1].(*string) = name
		*dest[2].(*string) = "list"
		*dest[3].(*[]byte) = []byte(`["Name","","Gift"]`)
		*dest[4].(*[]byte) = []byte(`[]`)
		*dest[5].(*time.Time) = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		return nil
	}
}

func TestPGStore_Save(t *testing.T) {
	db := &fakeDB{row: templateRow("Holiday")}
	s := NewPGStore(db)

	got, err := s.Save(context.Background(), Template{Name: "Holiday", Labels: core.ColumnMapping{"Name", "", "Gift"}})
	require.NoError(t, err)
	assert.Equal(t, "01000000-0000-0000-0000-000000000000", got.ID)
	assert.Equal(t, core.ColumnMapping{"Name", "", "Gift"}, got.Labels)
	assert.Empty(t, got.Headers)
	assert.Contains(t, db.sql[0], "INSERT INTO mapping_templates")
}

func TestPGStore_SaveDuplicateName(t *testing.T) {
	db := &fakeDB{row: rowFunc(func(...any) error {
		return &pgconn.PgError{Code: uniqueViolation, ConstraintName: "mapping_templates_name_unique"}
	})}

	_, err := NewPGStore(db).Save(context.Background(), Template{Name: "Holiday", Labels: core.ColumnMapping{"Name"}})
	assert.ErrorIs(t, err, ErrTemplateExists)
}

func TestPGStore_SaveRejectsInvalidLabels(t *testing.T) {
	db := &fakeDB{}
	_, err := NewPGStore(db).Save(context.Background(), Template{Name: "x", Labels: core.ColumnMapping{"Gift"}})
	assert.ErrorIs(t, err, core.ErrInvalidMapping)
	assert.Empty(t, db.sql)
}

func TestPGStore_GetNotFound(t *testing.T) {
	db := &fakeDB{row: rowFunc(func(...any) error { return pgx.ErrNoRows })}
	s := NewPGStore(db)

	_, err := s.Get(context.Background(), "01000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = s.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestPGStore_Delete(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("DELETE 0")}
	s := NewPGStore(db)

	err := s.Delete(context.Background(), "01000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	db.execTag = pgconn.NewCommandTag("DELETE 1")
	assert.NoError(t, s.Delete(context.Background(), "01000000-0000-0000-0000-000000000000"))
}

func TestPGStore_Migrate(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, NewPGStore(db).Migrate(context.Background()))
	assert.Contains(t, db.sql[0], "CREATE TABLE IF NOT EXISTS mapping_templates")

	db.execErr = errors.New("permission denied")
	assert.ErrorContains(t, NewPGStore(db).Migrate(context.Background()), "permission denied")
}
