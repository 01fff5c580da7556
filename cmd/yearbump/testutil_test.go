package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// resetUpdateFlags restores the update flag variables to their defaults.
func resetUpdateFlags() {
	updateYear = 2026
	updateOwner = ""
	updateStylesPath = ""
	updateGrammarsPath = ""
	updateRulesInclude = ""
	updateRulesExclude = ""
	updateCheck = false
	updateDryRun = false
	updateGit = false
	updateGitYear = false
	updateIncludeHidden = false
	updateMaxFileSize = 10 * 1024 * 1024
	updateMaxStart = 0
	updateExclude = nil
	updateWorkers = 1
	updateDatastore = ":memory:"
	updateIncremental = false
	updateFormat = "human"
	updateConfigPath = ""
	verbose = false
	quiet = false
	noColor = true
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// fixtureDir holds one file per outcome of an update run.
func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "old.go", "// Copyright 2020 Acme Corp\n\npackage a\n")
	writeFile(t, dir, "current.go", "// Copyright 2019-2026 Acme Corp\n\npackage a\n")
	writeFile(t, dir, "bare.go", "package a\n")
	return dir
}
