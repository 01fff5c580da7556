package batch

import (
	"fmt"
	"sort"
	"sync"

	"github.com/praetorian-inc/yearbump/pkg/types"
	"go.uber.org/multierr"
)

// Exit codes derived from a Summary.
const (
	ExitOK       = 0
	ExitFailure  = 1 // at least one parse, write or read error
	ExitOutdated = 2 // check mode found notices to update
)

// Summary aggregates the results of a run. It is safe for concurrent use.
type Summary struct {
	RunID int64
	Year  int
	Check bool

	mu         sync.Mutex
	results    []*types.Result
	counts     map[types.Status]int
	readErrors []error
}

// NewSummary creates an empty summary.
func NewSummary(runID int64, year int, check bool) *Summary {
	return &Summary{
		RunID:  runID,
		Year:   year,
		Check:  check,
		counts: make(map[types.Status]int),
	}
}

// Add records the outcome of one file.
func (s *Summary) Add(r *types.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	s.counts[r.Status]++
}

// AddError records a file that could not be read. It has no result.
func (s *Summary) AddError(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErrors = append(s.readErrors, fmt.Errorf("reading %s: %w", path, err))
}

// Count returns the number of files that ended in status.
func (s *Summary) Count(status types.Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[status]
}

// Total returns the number of files with a result.
func (s *Summary) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// ReadErrors returns the number of files that could not be read.
func (s *Summary) ReadErrors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.readErrors)
}

// Results returns every result sorted by path.
func (s *Summary) Results() []*types.Result {
	s.mu.Lock()
	out := make([]*types.Result, len(s.results))
	copy(out, s.results)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Paths returns the sorted paths of files that ended in status.
func (s *Summary) Paths(status types.Status) []string {
	var paths []string
	for _, r := range s.Results() {
		if r.Status == status {
			paths = append(paths, r.Path)
		}
	}
	return paths
}

// Err combines every hard error of the run, nil when there is none.
// Not-found files are not errors.
func (s *Summary) Err() error {
	var err error
	for _, r := range s.Results() {
		if r.Status.Failed() && r.Err != nil {
			err = multierr.Append(err, r.Err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.readErrors {
		err = multierr.Append(err, e)
	}
	return err
}

// ExitCode maps the summary to a process exit status. Hard errors take
// precedence over outdated notices.
func (s *Summary) ExitCode() int {
	if s.Err() != nil {
		return ExitFailure
	}
	if s.Check && s.Count(types.StatusOutdated) > 0 {
		return ExitOutdated
	}
	return ExitOK
}
