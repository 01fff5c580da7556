package store

import (
	"sync"

	"github.com/praetorian-inc/yearbump/pkg/types"
)

// MemoryStore implements Store using in-memory data structures.
// History is lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	runs    []*Run
	results map[int64][]*Record  // keyed by run ID
	blobs   map[types.BlobID]int // newest year each blob is known to cover
}

// NewMemory creates a new in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		results: make(map[int64][]*Record),
		blobs:   make(map[types.BlobID]int),
	}
}

// AddRun stores a run and assigns its ID.
func (m *MemoryStore) AddRun(r *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.ID = int64(len(m.runs) + 1)
	run := *r
	m.runs = append(m.runs, &run)
	return nil
}

// AddResult stores the outcome of one file of a run.
func (m *MemoryStore) AddResult(runID int64, r *types.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.results[runID] = append(m.results[runID], NewRecord(runID, r))
	return nil
}

// MarkBlobUpToDate records that content id carries a notice covering year.
func (m *MemoryStore) MarkBlobUpToDate(id types.BlobID, year int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if year > m.blobs[id] {
		m.blobs[id] = year
	}
	return nil
}

// BlobUpToDate reports whether content id is known to carry a notice
// covering year.
func (m *MemoryStore) BlobUpToDate(id types.BlobID, year int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	covered, ok := m.blobs[id]
	return ok && covered >= year, nil
}

// GetRuns retrieves all runs, oldest first.
func (m *MemoryStore) GetRuns() ([]*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]*Run, len(m.runs))
	for i, r := range m.runs {
		run := *r
		runs[i] = &run
	}
	return runs, nil
}

// GetResults retrieves the results of a run in insertion order.
func (m *MemoryStore) GetResults(runID int64) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Record, len(m.results[runID]))
	copy(records, m.results[runID])
	return records, nil
}

// Close is a no-op for the memory store.
func (m *MemoryStore) Close() error {
	return nil
}
