package enum

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/praetorian-inc/yearbump/pkg/types"
	"golang.org/x/sync/errgroup"
)

// FilesystemEnumerator enumerates files from a filesystem directory.
type FilesystemEnumerator struct {
	config Config
}

// NewFilesystemEnumerator creates a new filesystem enumerator.
func NewFilesystemEnumerator(config Config) *FilesystemEnumerator {
	return &FilesystemEnumerator{config: config}
}

// Enumerate walks the filesystem and yields file contents.
// Phase 1: Walk directory tree and collect eligible file paths (fast, sequential).
// Phase 2: Read files and invoke callback on Workers goroutines.
func (e *FilesystemEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	var ignores []*gitignore.GitIgnore
	gitignorePath := filepath.Join(e.config.Root, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		if ignore, err := gitignore.CompileIgnoreFile(gitignorePath); err == nil {
			ignores = append(ignores, ignore)
		}
	}
	if exclude := compileExcludes(e.config.Exclude); exclude != nil {
		ignores = append(ignores, exclude)
	}

	// Phase 1: Walk and collect eligible file paths
	var files []string
	err := filepath.Walk(e.config.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == e.config.Root {
				return err
			}
			return e.config.fileError(path, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		relPath, err := filepath.Rel(e.config.Root, path)
		if err != nil {
			return err
		}
		ignored := relPath != "." && matchesAny(ignores, filepath.ToSlash(relPath), info.IsDir())

		if info.IsDir() {
			if path != e.config.Root && (ignored || (!e.config.IncludeHidden && isHidden(info.Name()))) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 && !e.config.FollowSymlinks {
			return nil
		}
		if !info.Mode().IsRegular() && info.Mode()&os.ModeSymlink == 0 {
			return nil
		}

		if !e.config.IncludeHidden && isHidden(info.Name()) {
			return nil
		}

		if e.config.MaxFileSize > 0 && info.Size() > e.config.MaxFileSize {
			return nil
		}

		if ignored {
			return nil
		}

		if e.config.Filter != nil && !e.config.Filter(path) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return err
	}

	return readFiles(ctx, e.config, files, callback)
}

// readFiles reads paths on config.Workers goroutines and yields each file.
func readFiles(ctx context.Context, config Config, files []string, callback Callback) error {
	numReaders := config.workers()

	origCtx := ctx
	g, ctx := errgroup.WithContext(ctx)
	pathsCh := make(chan string, numReaders*2)

	// Feed paths to readers
	g.Go(func() error {
		defer close(pathsCh)
		for _, f := range files {
			select {
			case pathsCh <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < numReaders; i++ {
		g.Go(func() error {
			for path := range pathsCh {
				if err := processFile(ctx, config, path, callback); err != nil {
					return err
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// If the caller's context was cancelled but all goroutines finished
	// before noticing, propagate the cancellation.
	if origCtx.Err() != nil {
		return origCtx.Err()
	}
	return nil
}

// processFile reads a single file and invokes the callback.
// Binary files are skipped.
func processFile(ctx context.Context, config Config, path string, callback Callback) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return config.fileError(path, fmt.Errorf("failed to read file %s: %w", path, err))
	}

	if isBinary(content) {
		return nil
	}

	blobID := types.ComputeBlobID(content)
	prov := types.FileProvenance{
		FilePath: path,
	}

	return callback(content, blobID, prov)
}

// compileExcludes returns nil when there are no patterns.
func compileExcludes(patterns []string) *gitignore.GitIgnore {
	if len(patterns) == 0 {
		return nil
	}
	return gitignore.CompileIgnoreLines(patterns...)
}

func matchesAny(ignores []*gitignore.GitIgnore, relPath string, dir bool) bool {
	if dir {
		relPath += "/"
	}
	for _, ignore := range ignores {
		if ignore.MatchesPath(relPath) {
			return true
		}
	}
	return false
}

// isHidden checks if a filename is hidden (starts with .).
// The special entries "." and ".." are NOT considered hidden.
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return strings.HasPrefix(name, ".")
}

// isBinary detects if content is binary by checking first 8KB for null bytes.
func isBinary(content []byte) bool {
	checkSize := len(content)
	if checkSize > 8192 {
		checkSize = 8192
	}
	return bytes.IndexByte(content[:checkSize], 0) != -1
}
