package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/praetorian-inc/yearbump/pkg/store"
	"github.com/praetorian-inc/yearbump/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetReportFlags(dbPath string) {
	reportDatastore = dbPath
	reportRun = 0
	reportFormat = "human"
	reportColor = "never"
	reportAll = false
}

// updateInto runs update over dir and records the run in dbPath.
func updateInto(t *testing.T, dir, dbPath string) {
	t.Helper()
	resetUpdateFlags()
	updateDatastore = dbPath
	cmd, _, _ := newTestCmd()
	require.NoError(t, runUpdate(cmd, []string{dir}))
}

func TestRunReport_Human(t *testing.T) {
	dir := fixtureDir(t)
	dbPath := filepath.Join(t.TempDir(), "yearbump.db")
	updateInto(t, dir, dbPath)

	resetReportFlags(dbPath)
	cmd, stdout, _ := newTestCmd()
	require.NoError(t, runReport(cmd, nil))

	output := stdout.String()
	assert.Contains(t, output, "Run 1")
	assert.Contains(t, output, "update")
	assert.Contains(t, output, "Year: 2026")
	assert.Contains(t, output, filepath.Join(dir, "old.go")+":1")
	assert.Contains(t, output, "- // Copyright 2020 Acme Corp")
	assert.Contains(t, output, "+ // Copyright 2020-2026 Acme Corp")
	assert.NotContains(t, output, "current.go")
	assert.Contains(t, output, "3 files: rewritten=1 unchanged=1 not_found=1")
}

func TestRunReport_All(t *testing.T) {
	dir := fixtureDir(t)
	dbPath := filepath.Join(t.TempDir(), "yearbump.db")
	updateInto(t, dir, dbPath)

	resetReportFlags(dbPath)
	reportAll = true
	cmd, stdout, _ := newTestCmd()
	require.NoError(t, runReport(cmd, nil))

	assert.Contains(t, stdout.String(), "current.go")
	assert.Contains(t, stdout.String(), "bare.go")
}

func TestRunReport_JSON(t *testing.T) {
	dir := fixtureDir(t)
	dbPath := filepath.Join(t.TempDir(), "yearbump.db")
	updateInto(t, dir, dbPath)
	// The second run finds everything up to date.
	updateInto(t, dir, dbPath)

	resetReportFlags(dbPath)
	reportFormat = "json"
	cmd, stdout, _ := newTestCmd()
	require.NoError(t, runReport(cmd, nil))

	var out struct {
		Run     store.Run       `json:"run"`
		Results []*store.Record `json:"results"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, int64(2), out.Run.ID)
	assert.Equal(t, store.ModeUpdate, out.Run.Mode)
	require.Len(t, out.Results, 3)
	for _, r := range out.Results {
		assert.NotEqual(t, types.StatusRewritten, r.Status, r.Path)
	}

	// The first run is still there.
	reportRun = 1
	stdout.Reset()
	require.NoError(t, runReport(cmd, nil))
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, int64(1), out.Run.ID)
}

func TestRunReport_Errors(t *testing.T) {
	cmd, _, _ := newTestCmd()

	resetReportFlags(":memory:")
	assert.ErrorContains(t, runReport(cmd, nil), "in-memory")

	resetReportFlags(filepath.Join(t.TempDir(), "missing.db"))
	assert.ErrorContains(t, runReport(cmd, nil), "datastore not found")

	dbPath := filepath.Join(t.TempDir(), "yearbump.db")
	updateInto(t, fixtureDir(t), dbPath)

	resetReportFlags(dbPath)
	reportRun = 42
	assert.ErrorContains(t, runReport(cmd, nil), "run 42 not found")

	resetReportFlags(dbPath)
	reportFormat = "xml"
	assert.ErrorContains(t, runReport(cmd, nil), "unknown output format")
}

func TestNeedsAttention(t *testing.T) {
	assert.True(t, needsAttention(types.StatusRewritten))
	assert.True(t, needsAttention(types.StatusParseError))
	assert.False(t, needsAttention(types.StatusUnchanged))
	assert.False(t, needsAttention(types.StatusNotFound))
}
