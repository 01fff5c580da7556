package batch

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/praetorian-inc/yearbump/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestSummary(t *testing.T) {
	s := NewSummary(7, 2026, false)
	s.Add(&types.Result{Path: "c.go", Status: types.StatusNotFound})
	s.Add(&types.Result{Path: "a.go", Status: types.StatusRewritten})
	s.Add(&types.Result{Path: "b.go", Status: types.StatusRewritten})

	assert.Equal(t, 3, s.Total())
	assert.Equal(t, 2, s.Count(types.StatusRewritten))
	assert.Equal(t, 0, s.Count(types.StatusWriteError))
	assert.Equal(t, []string{"a.go", "b.go"}, s.Paths(types.StatusRewritten))

	results := s.Results()
	require.Len(t, results, 3)
	assert.Equal(t, "a.go", results[0].Path)
	assert.Equal(t, "c.go", results[2].Path)

	assert.NoError(t, s.Err())
	assert.Equal(t, ExitOK, s.ExitCode())
}

func TestSummary_ErrCombinesHardErrors(t *testing.T) {
	s := NewSummary(1, 2026, false)
	parseErr := &types.ParseError{Path: "a.go", Text: "// Copyright 20x9", Err: errors.New("malformed year")}
	writeErr := &types.WriteError{Path: "b.go", Err: errors.New("disk full")}
	readErr := errors.New("permission denied")

	s.Add(&types.Result{Path: "a.go", Status: types.StatusParseError, Err: parseErr})
	s.Add(&types.Result{Path: "b.go", Status: types.StatusWriteError, Err: writeErr})
	s.Add(&types.Result{Path: "c.go", Status: types.StatusNotFound})
	s.AddError("d.go", readErr)

	err := s.Err()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
	assert.ErrorIs(t, err, readErr)

	var pe *types.ParseError
	assert.ErrorAs(t, err, &pe)
	var we *types.WriteError
	assert.ErrorAs(t, err, &we)
	assert.Equal(t, ExitFailure, s.ExitCode())
}

func TestSummary_ExitCode(t *testing.T) {
	tests := []struct {
		name   string
		check  bool
		status types.Status
		want   int
	}{
		{name: "rewritten", status: types.StatusRewritten, want: ExitOK},
		{name: "unchanged", status: types.StatusUnchanged, want: ExitOK},
		{name: "not found", status: types.StatusNotFound, want: ExitOK},
		{name: "check outdated", check: true, status: types.StatusOutdated, want: ExitOutdated},
		{name: "check unchanged", check: true, status: types.StatusUnchanged, want: ExitOK},
		{name: "parse error", status: types.StatusParseError, want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSummary(1, 2026, tt.check)
			r := &types.Result{Path: "a.go", Status: tt.status}
			if tt.status.Failed() {
				r.Err = &types.ParseError{Path: "a.go", Err: errors.New("bad")}
			}
			s.Add(r)
			assert.Equal(t, tt.want, s.ExitCode())
		})
	}
}

func TestSummary_Concurrent(t *testing.T) {
	s := NewSummary(1, 2026, false)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Add(&types.Result{Path: fmt.Sprintf("f%02d.go", i), Status: types.StatusUnchanged})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Count(types.StatusUnchanged))
	assert.Equal(t, "f00.go", s.Results()[0].Path)
}
