package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "bakery-paris", Slug("Bakery Paris"))
	assert.Equal(t, "caf-s-co", Slug("  Café's & Co!  "))
	assert.Equal(t, "plombier-75011", Slug("plombier   75011"))
}

func sessionFixture() *model.SessionReport {
	finished := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	return &model.SessionReport{
		ID:         "3f6c9a1e-0000-0000-0000-000000000001",
		Query:      "bakery paris",
		Surface:    "search",
		StartedAt:  finished.Add(-90 * time.Second),
		FinishedAt: finished,
		Steps:      2,
		Outcome:    model.OutcomeExhausted,
		Records: []model.BusinessRecord{
			{Name: "Boulangerie Épi d'Or", Phone: "0142685300", Timestamp: finished},
			{Name: "Maison Martin", Phone: "+33142685301", Rating: 4.5, Timestamp: finished},
		},
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	rep := sessionFixture()
	path, err := w.Write(rep)
	require.NoError(t, err)
	assert.Equal(t, "bakery-paris-2026-08-31-14-30-00.json", filepath.Base(path))

	doc, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, rep.Records, doc.Results)
	assert.Equal(t, rep.Query, doc.Metadata.Query)
	assert.Equal(t, 2, doc.Metadata.TotalResults)
	assert.Equal(t, 2, doc.Metadata.PagesScraped)
	assert.True(t, doc.Metadata.Success)
	assert.Empty(t, doc.Metadata.Error)
}

func TestWrite_PreservesNonASCII(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.Write(sessionFixture())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "Épi d'Or"), "UTF-8 must not be escaped")
}

func TestWrite_EmptySession(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	rep := sessionFixture()
	rep.Records = nil
	rep.Outcome = model.OutcomeBlocked

	path, err := w.Write(rep)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filepath.Base(path), "-empty.json"))

	doc, err := Read(path)
	require.NoError(t, err)
	assert.False(t, doc.Metadata.Success)
	assert.Equal(t, model.OutcomeBlocked, doc.Metadata.Outcome)
	assert.Equal(t, "No results found", doc.Metadata.Error)
}

func TestWrite_FallbackName(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	rep := sessionFixture()
	// Occupy the primary name with a directory so the first write fails.
	primary := filepath.Join(dir, "bakery-paris-2026-08-31-14-30-00.json")
	require.NoError(t, os.Mkdir(primary, 0o755))

	path, err := w.Write(rep)
	require.NoError(t, err)
	assert.Equal(t, "results-2026-08-31-14-30-00.json", filepath.Base(path))
}
