package enum

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// PathsEnumerator yields an explicit list of files, such as the arguments
// of a command line. Hidden, size and filter settings do not apply; binary
// files are still skipped.
type PathsEnumerator struct {
	config Config
	paths  []string
}

// NewPathsEnumerator creates an enumerator over paths. config.Root is
// ignored.
func NewPathsEnumerator(config Config, paths ...string) *PathsEnumerator {
	return &PathsEnumerator{config: config, paths: paths}
}

// Enumerate reads each path in order.
func (e *PathsEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	files := make([]string, 0, len(e.paths))
	for _, path := range e.paths {
		info, err := os.Stat(path)
		if err != nil {
			if err := e.config.fileError(path, err); err != nil {
				return err
			}
			continue
		}
		if !info.Mode().IsRegular() {
			if err := e.config.fileError(path, fmt.Errorf("%s is not a regular file", path)); err != nil {
				return err
			}
			continue
		}
		files = append(files, path)
	}
	return readFiles(ctx, e.config, files, callback)
}

func cleanPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
