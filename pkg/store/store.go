// Package store keeps the history of runs: every file outcome, and which
// blobs are known to carry an up-to-date notice so incremental runs can
// skip them.
package store

import (
	"fmt"
	"time"

	"github.com/praetorian-inc/yearbump/pkg/types"
)

// Run modes.
const (
	ModeUpdate = "update"
	ModeCheck  = "check"
	ModeDryRun = "dry-run"
)

// Run is one invocation of the updater.
type Run struct {
	ID        int64     `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Year      int       `json:"year"` // 0 when years came from git history
	Mode      string    `json:"mode"`
}

// Record is the stored form of a types.Result.
type Record struct {
	RunID   int64        `json:"run_id"`
	Path    string       `json:"path"`
	BlobID  types.BlobID `json:"blob_id"`
	Year    int          `json:"year"`
	Status  types.Status `json:"status"`
	Line    int          `json:"line,omitempty"` // 1-based, 0 when there is no notice
	Owner   string       `json:"owner,omitempty"`
	OldLine string       `json:"old_line,omitempty"`
	NewLine string       `json:"new_line,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// NewRecord flattens r for storage.
func NewRecord(runID int64, r *types.Result) *Record {
	rec := &Record{
		RunID:  runID,
		Path:   r.Path,
		BlobID: r.BlobID,
		Year:   r.Year,
		Status: r.Status,
	}
	if r.Notice != nil {
		rec.Line = r.Notice.Line + 1
		rec.Owner = r.Notice.Owner
		rec.OldLine = r.Notice.Text
		if r.Decision.Changed {
			rec.NewLine = r.Decision.NewLine
		}
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	return rec
}

// Store provides persistence for run history.
// This interface abstracts the underlying storage implementation,
// allowing for different backends (memory, SQLite).
// Implementations are safe for concurrent use.
type Store interface {
	// AddRun stores a run and assigns its ID.
	AddRun(r *Run) error

	// AddResult stores the outcome of one file of a run.
	AddResult(runID int64, r *types.Result) error

	// MarkBlobUpToDate records that content id carries a notice covering year.
	MarkBlobUpToDate(id types.BlobID, year int) error

	// BlobUpToDate reports whether content id is known to carry a notice
	// covering year.
	BlobUpToDate(id types.BlobID, year int) (bool, error)

	// GetRuns retrieves all runs, oldest first.
	GetRuns() ([]*Run, error)

	// GetResults retrieves the results of a run in insertion order.
	GetResults(runID int64) ([]*Record, error)

	// Close closes the database connection.
	Close() error
}

// Config for store initialization.
type Config struct {
	// Path is the database file path.
	// Use ":memory:" for an in-memory store (the default for one-off runs).
	Path string
}

// New creates a new Store.
// For ":memory:" paths, returns MemoryStore; for file paths, SQLite.
func New(cfg Config) (Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	if cfg.Path == ":memory:" {
		return NewMemory(), nil
	}

	return NewSQLite(cfg.Path)
}
