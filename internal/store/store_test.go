package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "leadscout.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertBatch_SkipsDuplicates(t *testing.T) {
	s := openTemp(t)

	lat, lng := 48.8566, 2.3522
	records := []model.BusinessRecord{
		{Name: "Boulangerie Martin", Phone: "0142685300", Query: "bakery paris", Page: 1, Timestamp: time.Now().UTC()},
		{Name: "Chez Marcel", Phone: "0144073312", Latitude: &lat, Longitude: &lng, Query: "bistro paris", Page: 1, Timestamp: time.Now().UTC()},
	}

	n, err := s.InsertBatch(records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Same rows again, plus one new: only the new one lands.
	records = append(records, model.BusinessRecord{
		Name: "Le Fournil", Phone: "0140091234", Query: "bakery paris", Page: 2, Timestamp: time.Now().UTC(),
	})
	n, err = s.InsertBatch(records)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestInsertBatch_SameNameDifferentPhone(t *testing.T) {
	s := openTemp(t)

	n, err := s.InsertBatch([]model.BusinessRecord{
		{Name: "Boulangerie Martin", Phone: "0142685300", Query: "bakery paris"},
		{Name: "Boulangerie Martin", Phone: "0145221807", Query: "bakery paris"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSaveSession(t *testing.T) {
	s := openTemp(t)

	rep := &model.SessionReport{
		ID:         "11111111-2222-3333-4444-555555555555",
		Query:      "bakery paris",
		Surface:    "search",
		StartedAt:  time.Now().UTC().Add(-time.Minute),
		FinishedAt: time.Now().UTC(),
		Steps:      2,
		Outcome:    model.OutcomeExhausted,
		Records:    []model.BusinessRecord{{Name: "Boulangerie Martin", Phone: "0142685300"}},
	}
	require.NoError(t, s.SaveSession(rep))

	// Replaying the same session id overwrites rather than erroring.
	rep.Steps = 3
	require.NoError(t, s.SaveSession(rep))

	var steps int
	require.NoError(t, s.db.QueryRow("SELECT steps FROM sessions WHERE id = ?", rep.ID).Scan(&steps))
	assert.Equal(t, 3, steps)
}
