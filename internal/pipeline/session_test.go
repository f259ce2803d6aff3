package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/graticard/internal/core"
	"github.com/JonMunkholm/graticard/internal/source"
)

var (
	listMapping = core.ColumnMapping{"Name", "", "Address Line 1", "City", "State", "Postal Code", "Gift"}
	docMapping  = core.ColumnMapping{"Name", "Gift"}
)

func listTable() *source.Table {
	return &source.Table{
		Name: "list.csv",
		Kind: source.KindList,
		Rows: [][]string{
			{"Name", "Note", "Street", "City", "State", "Zip", "Gift"},
			{"Ann Lee", "", "1 Main St", "Springfield", "IL", "62701", ""},
			{"Jon Smith", "", "2 Elm St", "Boise", "ID", "83702", ""},
		},
	}
}

func docTable() *source.Table {
	return &source.Table{
		Name: "gifts.docx",
		Kind: source.KindDocument,
		Rows: [][]string{
			{"Ann Lee", "Mug"},
			{"John Smith", "Book"},
			{"Zed Unknown", "Lamp"},
		},
	}
}

func TestSession_AddAssignsRoleByKind(t *testing.T) {
	s := NewSession(Options{})

	list := s.Add(listTable())
	doc := s.Add(docTable())

	assert.Equal(t, RolePrimary, list.Role)
	assert.Equal(t, RoleSecondary, doc.Role)
	assert.Equal(t, StatusPending, list.Status)
	assert.NotEqual(t, list.ID, doc.ID)
	assert.Len(t, s.Sources(), 2)
}

func TestSession_AdvanceFollowsInsertionOrder(t *testing.T) {
	s := NewSession(Options{})
	list := s.Add(listTable())
	doc := s.Add(docTable())

	next, ok := s.Advance()
	require.True(t, ok)
	assert.Equal(t, list.ID, next.ID)

	_, err := s.RemoveRows(list.ID, 0)
	require.NoError(t, err)
	_, err = s.Parse(list.ID, listMapping)
	require.NoError(t, err)

	next, ok = s.Advance()
	require.True(t, ok)
	assert.Equal(t, doc.ID, next.ID)

	_, err = s.Parse(doc.ID, docMapping)
	require.NoError(t, err)

	_, ok = s.Advance()
	assert.False(t, ok)
}

func TestSession_ParseFailureLeavesSourcePending(t *testing.T) {
	s := NewSession(Options{})
	list := s.Add(listTable())
	doc := s.Add(docTable())

	_, err := s.Parse(doc.ID, docMapping)
	require.NoError(t, err)

	_, err = s.Parse(list.ID, core.ColumnMapping{"Gift"})
	var missing *core.MissingNameError
	require.ErrorAs(t, err, &missing)

	got, err := s.Source(list.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Empty(t, got.Entities)

	other, err := s.Source(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, other.Status)
	assert.Len(t, other.Entities, 3)
}

func TestSession_ParseTwiceFails(t *testing.T) {
	s := NewSession(Options{})
	doc := s.Add(docTable())

	_, err := s.Parse(doc.ID, docMapping)
	require.NoError(t, err)

	_, err = s.Parse(doc.ID, docMapping)
	assert.ErrorIs(t, err, ErrAlreadyParsed)

	_, err = s.RemoveRows(doc.ID, 0)
	assert.ErrorIs(t, err, ErrAlreadyParsed)
}

func TestSession_UnknownSource(t *testing.T) {
	s := NewSession(Options{})

	_, err := s.Parse("nope", docMapping)
	assert.ErrorIs(t, err, ErrSourceNotFound)
	assert.ErrorIs(t, s.Remove("nope"), ErrSourceNotFound)
	_, err = s.Source("nope")
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestSession_RemoveRows(t *testing.T) {
	s := NewSession(Options{})
	list := s.Add(listTable())

	got, err := s.RemoveRows(list.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "Ann Lee", got.Rows[0][0])

	_, err = s.RemoveRows(list.ID, 5)
	assert.ErrorIs(t, err, ErrRowOutOfRange)

	unchanged, err := s.Source(list.ID)
	require.NoError(t, err)
	assert.Len(t, unchanged.Rows, 2)
}

func TestSession_MergeRequiresParsedSources(t *testing.T) {
	s := NewSession(Options{})

	_, err := s.Merge(core.DefaultConfidenceFloor)
	assert.ErrorIs(t, err, ErrParseFirst, "no sources")

	list := s.Add(listTable())
	_, err = s.RemoveRows(list.ID, 0)
	require.NoError(t, err)
	_, err = s.Parse(list.ID, listMapping)
	require.NoError(t, err)

	_, err = s.Merge(core.DefaultConfidenceFloor)
	assert.ErrorIs(t, err, ErrParseFirst, "no secondary")

	s.Add(docTable())
	_, err = s.Merge(core.DefaultConfidenceFloor)
	assert.ErrorIs(t, err, ErrParseFirst, "secondary pending")

	_, err = s.Result()
	assert.ErrorIs(t, err, ErrNoMergeResult)
}

func TestSession_Merge(t *testing.T) {
	s := NewSession(Options{})
	list := s.Add(listTable())
	doc := s.Add(docTable())

	_, err := s.RemoveRows(list.ID, 0)
	require.NoError(t, err)
	_, err = s.Parse(list.ID, listMapping)
	require.NoError(t, err)
	_, err = s.Parse(doc.ID, docMapping)
	require.NoError(t, err)

	result, err := s.Merge(core.DefaultConfidenceFloor)
	require.NoError(t, err)

	require.Len(t, result.Entities, 2)
	assert.Equal(t, "Ann Lee", result.Entities[0].RecipientName())
	assert.Equal(t, "Mug", result.Entities[0].Gift())
	assert.Equal(t, "Jon Smith", result.Entities[1].RecipientName())
	assert.Equal(t, "Book", result.Entities[1].Gift())
	assert.Equal(t, 1, result.Report.Exact)
	assert.Equal(t, 1, result.Report.Fuzzy)
	assert.Equal(t, "list.csv", result.Primary)
	assert.Equal(t, "gifts.docx", result.Secondary)

	stored, err := s.Result()
	require.NoError(t, err)
	assert.Same(t, result, stored)

	sum := s.Summary()
	assert.True(t, sum.Merged)
	assert.Equal(t, 2, sum.Complete)
}

func TestSession_MergeUsesLastCompletePerRole(t *testing.T) {
	s := NewSession(Options{})
	first := s.Add(&source.Table{Name: "old.docx", Kind: source.KindDocument, Rows: [][]string{{"Ann Lee", "Old"}}})
	list := s.Add(&source.Table{Name: "list.csv", Kind: source.KindList, Rows: [][]string{{"Ann Lee"}}})
	second := s.Add(&source.Table{Name: "new.docx", Kind: source.KindDocument, Rows: [][]string{{"Ann Lee", "New"}}})

	for _, id := range []string{first.ID, second.ID} {
		_, err := s.Parse(id, docMapping)
		require.NoError(t, err)
	}
	_, err := s.Parse(list.ID, core.ColumnMapping{"Name"})
	require.NoError(t, err)

	result, err := s.Merge(core.DefaultConfidenceFloor)
	require.NoError(t, err)
	assert.Equal(t, "New", result.Entities[0].Gift())
	assert.Equal(t, "new.docx", result.Secondary)
}

func TestSession_SetRole(t *testing.T) {
	s := NewSession(Options{})
	a := s.Add(&source.Table{Name: "gifts.csv", Kind: source.KindList, Rows: [][]string{{"Ann Lee", "Mug"}}})
	b := s.Add(&source.Table{Name: "list.csv", Kind: source.KindList, Rows: [][]string{{"Ann Lee"}}})

	_, err := s.SetRole(a.ID, RoleSecondary)
	require.NoError(t, err)

	_, err = s.Parse(a.ID, docMapping)
	require.NoError(t, err)
	_, err = s.Parse(b.ID, core.ColumnMapping{"Name"})
	require.NoError(t, err)

	result, err := s.Merge(core.DefaultConfidenceFloor)
	require.NoError(t, err)
	assert.Equal(t, "Mug", result.Entities[0].Gift())

	_, err = s.SetRole(a.ID, RolePrimary)
	assert.ErrorIs(t, err, ErrAlreadyParsed)
}

func TestSession_DuplicateNamesAreCounted(t *testing.T) {
	s := NewSession(Options{})
	list := s.Add(&source.Table{Name: "list.csv", Kind: source.KindList, Rows: [][]string{{"Ann Lee"}, {"Ann Lee"}}})
	doc := s.Add(&source.Table{Name: "gifts.docx", Kind: source.KindDocument, Rows: [][]string{{"Ann Lee", "Mug"}}})

	_, err := s.Parse(list.ID, core.ColumnMapping{"Name"})
	require.NoError(t, err)
	_, err = s.Parse(doc.ID, docMapping)
	require.NoError(t, err)

	result, err := s.Merge(core.DefaultConfidenceFloor)
	require.NoError(t, err)
	assert.Len(t, result.Entities, 1)
	assert.Equal(t, 1, result.PrimaryOverwritten)
}

func TestSession_AddFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "list.csv")
	require.NoError(t, os.WriteFile(good, []byte("Ann Lee,1 Main St\n"), 0o644))

	s := NewSession(Options{})
	batch, added := s.AddFiles(context.Background(), []string{good, filepath.Join(dir, "nope.pdf")})

	require.Len(t, added, 1)
	assert.Equal(t, "list.csv", added[0].Name)
	assert.Len(t, batch.Failed(), 1)
	assert.Len(t, s.Sources(), 1)
}

func TestSession_SnapshotsAreIndependent(t *testing.T) {
	s := NewSession(Options{})
	list := s.Add(listTable())

	snap, err := s.Source(list.ID)
	require.NoError(t, err)
	snap.Rows = nil

	again, err := s.Source(list.ID)
	require.NoError(t, err)
	assert.Len(t, again.Rows, 3)
}

func TestSession_RemergeStartsFromParsedData(t *testing.T) {
	s := NewSession(Options{})
	list := s.Add(listTable())
	doc := s.Add(docTable())

	_, err := s.RemoveRows(list.ID, 0)
	require.NoError(t, err)
	_, err = s.Parse(list.ID, listMapping)
	require.NoError(t, err)
	_, err = s.Parse(doc.ID, docMapping)
	require.NoError(t, err)

	loose, err := s.Merge(20)
	require.NoError(t, err)
	assert.Equal(t, "Book", loose.Entities[1].Gift())
	assert.Equal(t, 1, loose.Report.Fuzzy)

	strict, err := s.Merge(99)
	require.NoError(t, err)
	assert.Equal(t, "Mug", strict.Entities[0].Gift())
	assert.Equal(t, "Jon Smith", strict.Entities[1].RecipientName())
	assert.Empty(t, strict.Entities[1].Gift())
	assert.Equal(t, 1, strict.Report.BelowFloor)

	// The first result is not rewritten by the second merge.
	assert.Equal(t, "Book", loose.Entities[1].Gift())

	parsed, err := s.Source(list.ID)
	require.NoError(t, err)
	for _, e := range parsed.Entities {
		assert.Empty(t, e.Gift(), "parsed gift of %s", e.RecipientName())
	}
}
