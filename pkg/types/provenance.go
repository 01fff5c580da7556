package types

import (
	"path/filepath"
	"time"
)

// Provenance tracks where a file was discovered.
type Provenance interface {
	Kind() string
	// Path returns the filesystem path the file is read from and written to.
	Path() string
}

// FileProvenance for files found on disk or named on the command line.
type FileProvenance struct {
	FilePath string
}

// Kind returns "file".
func (f FileProvenance) Kind() string { return "file" }

// Path returns the file path.
func (f FileProvenance) Path() string { return f.FilePath }

// GitProvenance for files tracked by a git repository.
// The content always comes from the working tree.
type GitProvenance struct {
	RepoPath string
	BlobPath string          // slash-separated path within the repository
	Commit   *CommitMetadata // last commit touching BlobPath, nil if not looked up
}

// Kind returns "git".
func (g GitProvenance) Kind() string { return "git" }

// Path returns the working tree path of the file.
func (g GitProvenance) Path() string {
	return filepath.Join(g.RepoPath, filepath.FromSlash(g.BlobPath))
}

// Year returns the year of the last commit, 0 when unknown.
func (g GitProvenance) Year() int {
	if g.Commit == nil || g.Commit.AuthorTimestamp.IsZero() {
		return 0
	}
	return g.Commit.AuthorTimestamp.Year()
}

// CommitMetadata holds git commit information.
type CommitMetadata struct {
	CommitID        string
	AuthorName      string
	AuthorEmail     string
	AuthorTimestamp time.Time
	Message         string
}
