package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/praetorian-inc/yearbump/pkg/types"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a SQLite-based store.
// Use ":memory:" for in-memory database (useful for testing).
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection serializes writers and keeps a :memory: database alive.
	db.SetMaxOpenConns(1)

	// Initialize schema
	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// AddRun stores a run and assigns its ID.
func (s *SQLiteStore) AddRun(r *Run) error {
	res, err := s.db.Exec(`
		INSERT INTO runs (started_at, year, mode)
		VALUES (?, ?, ?)
	`,
		r.StartedAt.UTC().Format(time.RFC3339Nano),
		r.Year,
		r.Mode,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading run ID: %w", err)
	}
	r.ID = id
	return nil
}

// AddResult stores the outcome of one file of a run.
func (s *SQLiteStore) AddResult(runID int64, r *types.Result) error {
	rec := NewRecord(runID, r)

	var line *int
	if rec.Line > 0 {
		line = &rec.Line
	}

	_, err := s.db.Exec(`
		INSERT INTO results (run_id, path, blob_id, year, status, line, owner, old_line, new_line, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.RunID,
		rec.Path,
		rec.BlobID.Hex(),
		rec.Year,
		rec.Status.String(),
		line,
		rec.Owner,
		rec.OldLine,
		rec.NewLine,
		rec.Error,
	)
	if err != nil {
		return fmt.Errorf("inserting result: %w", err)
	}

	return nil
}

// MarkBlobUpToDate records that content id carries a notice covering year.
// A later year replaces an earlier one.
func (s *SQLiteStore) MarkBlobUpToDate(id types.BlobID, year int) error {
	_, err := s.db.Exec(`
		INSERT INTO blobs (id, year) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET year = MAX(year, excluded.year)
	`, id.Hex(), year)
	if err != nil {
		return fmt.Errorf("inserting blob: %w", err)
	}
	return nil
}

// BlobUpToDate reports whether content id is known to carry a notice
// covering year.
func (s *SQLiteStore) BlobUpToDate(id types.BlobID, year int) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM blobs WHERE id = ? AND year >= ?", id.Hex(), year).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking blob: %w", err)
	}
	return count > 0, nil
}

// GetRuns retrieves all runs, oldest first.
func (s *SQLiteStore) GetRuns() ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, year, mode
		FROM runs
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var startedAt string

		if err := rows.Scan(&r.ID, &startedAt, &r.Year, &r.Mode); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing start time of run %d: %w", r.ID, err)
		}

		runs = append(runs, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	return runs, nil
}

// GetResults retrieves the results of a run in insertion order.
func (s *SQLiteStore) GetResults(runID int64) ([]*Record, error) {
	rows, err := s.db.Query(`
		SELECT run_id, path, blob_id, year, status, line, owner, old_line, new_line, error
		FROM results
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		var status string
		var line sql.NullInt64
		var owner, oldLine, newLine, errText sql.NullString

		err := rows.Scan(
			&rec.RunID,
			&rec.Path,
			&rec.BlobID,
			&rec.Year,
			&status,
			&line,
			&owner,
			&oldLine,
			&newLine,
			&errText,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}

		rec.Status, err = types.ParseStatus(status)
		if err != nil {
			return nil, fmt.Errorf("parsing status: %w", err)
		}
		rec.Line = int(line.Int64)
		rec.Owner = owner.String
		rec.OldLine = oldLine.String
		rec.NewLine = newLine.String
		rec.Error = errText.String

		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}

	return records, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
