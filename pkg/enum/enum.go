// Package enum discovers the files to scan: explicit paths, directory
// trees and the tracked files of git repositories.
package enum

import (
	"context"

	"github.com/praetorian-inc/yearbump/pkg/types"
)

// Callback receives the content of one file, its blob ID and where it
// came from.
type Callback func(content []byte, blobID types.BlobID, prov types.Provenance) error

// Enumerator discovers content to scan from a source.
type Enumerator interface {
	// Enumerate yields files from the source.
	// The callback receives file content, its ID, and provenance information.
	// It may be called concurrently when the enumerator uses several workers.
	Enumerate(ctx context.Context, callback Callback) error
}

// Config for enumeration.
type Config struct {
	// Root is the starting path for enumeration.
	Root string

	// IncludeHidden includes hidden files/directories (starting with .).
	IncludeHidden bool

	// MaxFileSize is the maximum file size to process (0 = no limit).
	MaxFileSize int64

	// FollowSymlinks follows symbolic links.
	FollowSymlinks bool

	// Exclude holds gitignore-style patterns, relative to Root, of paths
	// to skip.
	Exclude []string

	// Filter, when set, must return true for a file to be yielded by a
	// directory walk. Explicitly named files are not filtered.
	Filter func(path string) bool

	// Workers is the number of files read and handed to the callback in
	// parallel. Zero means one.
	Workers int

	// OnError receives per-file read errors. When nil, the first such
	// error aborts the enumeration.
	OnError func(path string, err error)

	// CommitYears looks up the last commit touching each file of a git
	// repository so its year can be used instead of the current one.
	CommitYears bool
}

func (c Config) workers() int {
	if c.Workers < 1 {
		return 1
	}
	return c.Workers
}

// fileError routes a per-file error to OnError, or returns it.
func (c Config) fileError(path string, err error) error {
	if c.OnError == nil {
		return err
	}
	c.OnError(path, err)
	return nil
}
