package types

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFileProvenance(t *testing.T) {
	prov := FileProvenance{FilePath: "/path/to/file.go"}

	assert.Equal(t, "file", prov.Kind())
	assert.Equal(t, "/path/to/file.go", prov.Path())
}

func TestGitProvenance_NoCommit(t *testing.T) {
	prov := GitProvenance{
		RepoPath: "/path/to/repo",
		BlobPath: "src/main.go",
	}

	assert.Equal(t, "git", prov.Kind())
	assert.Equal(t, filepath.Join("/path/to/repo", "src", "main.go"), prov.Path())
	assert.Equal(t, 0, prov.Year())
}

func TestGitProvenance_WithCommit(t *testing.T) {
	prov := GitProvenance{
		RepoPath: "/repo",
		BlobPath: "main.go",
		Commit: &CommitMetadata{
			CommitID:        "abc123def456",
			AuthorName:      "Jane Doe",
			AuthorTimestamp: time.Date(2023, 11, 2, 10, 30, 0, 0, time.UTC),
		},
	}

	assert.Equal(t, 2023, prov.Year())
}

func TestProvenance_InterfaceUsage(t *testing.T) {
	provs := []Provenance{
		FileProvenance{FilePath: "/file.txt"},
		GitProvenance{RepoPath: "/repo", BlobPath: "main.go"},
	}

	assert.Equal(t, "file", provs[0].Kind())
	assert.Equal(t, "git", provs[1].Kind())
}
