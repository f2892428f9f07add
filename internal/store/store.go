// Package store mirrors accepted records into a local SQLite database
// so results accumulate across sessions and survive nicely beyond the
// per-session JSON files.
package store

import (
	"database/sql"
	"sync"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadscout/internal/model"
)

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: opening database")
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, eris.Wrapf(err, "store: setting pragma %q", p)
		}
	}

	if err := createSchema(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS businesses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT NOT NULL,
		image TEXT,
		lat REAL,
		lng REAL,
		rating REAL,
		reviews INTEGER,
		category TEXT,
		query TEXT NOT NULL,
		page INTEGER,
		scraped_at DATETIME,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(name, phone)
	);
	CREATE INDEX IF NOT EXISTS idx_businesses_query ON businesses(query);
	CREATE INDEX IF NOT EXISTS idx_businesses_phone ON businesses(phone);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		surface TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		steps INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		records INTEGER NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return eris.Wrap(err, "store: creating schema")
	}
	return nil
}

// InsertBatch writes records inside one transaction, skipping rows
// already present under the name+phone uniqueness rule. It reports how
// many rows were actually inserted.
func (s *Store) InsertBatch(records []model.BusinessRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, eris.Wrap(err, "store: beginning tx")
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO businesses
		(name, phone, image, lat, lng, rating, reviews, category, query, page, scraped_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
	`)
	if err != nil {
		tx.Rollback()
		return 0, eris.Wrap(err, "store: preparing insert")
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		res, err := stmt.Exec(
			r.Name, r.Phone, r.Image, r.Latitude, r.Longitude,
			r.Rating, r.Reviews, r.Category, r.Query, r.Page, r.Timestamp,
		)
		if err != nil {
			continue
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "store: committing tx")
	}
	return inserted, nil
}

// SaveSession records the session's summary row. The record rows
// themselves go through InsertBatch.
func (s *Store) SaveSession(rep *model.SessionReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO sessions
		(id, query, surface, started_at, finished_at, steps, outcome, records)
		VALUES (?,?,?,?,?,?,?,?)
	`, rep.ID, rep.Query, rep.Surface, rep.StartedAt, rep.FinishedAt,
		rep.Steps, string(rep.Outcome), len(rep.Records))
	if err != nil {
		return eris.Wrap(err, "store: saving session")
	}
	return nil
}

// Count returns the number of distinct businesses accumulated so far.
func (s *Store) Count() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM businesses").Scan(&count); err != nil {
		return 0, eris.Wrap(err, "store: counting businesses")
	}
	return count, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
