package enum

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/praetorian-inc/yearbump/pkg/types"
)

// GitEnumerator enumerates the files tracked by a git repository.
// Content is read from the working tree, since that is what gets rewritten.
type GitEnumerator struct {
	config Config
	// CommitRef optionally specifies the commit whose tree lists the files (defaults to HEAD)
	CommitRef string
}

// NewGitEnumerator creates a new git enumerator.
func NewGitEnumerator(config Config) *GitEnumerator {
	return &GitEnumerator{
		config:    config,
		CommitRef: "HEAD",
	}
}

// Enumerate walks the tree of CommitRef and yields the working tree copy of
// every tracked file. With CommitYears set, each provenance carries the last
// commit that touched the file.
func (e *GitEnumerator) Enumerate(ctx context.Context, callback Callback) error {
	repo, err := git.PlainOpen(e.config.Root)
	if err != nil {
		return fmt.Errorf("failed to open git repository: %w", err)
	}

	ref, err := repo.ResolveRevision(plumbing.Revision(e.CommitRef))
	if err != nil {
		return fmt.Errorf("failed to resolve ref %s: %w", e.CommitRef, err)
	}

	commit, err := repo.CommitObject(*ref)
	if err != nil {
		return fmt.Errorf("failed to get commit: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("failed to get tree: %w", err)
	}

	ignores := compileExcludes(e.config.Exclude)

	err = tree.Files().ForEach(func(f *object.File) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !f.Mode.IsFile() {
			return nil
		}
		if !e.config.IncludeHidden && hasHiddenElem(f.Name) {
			return nil
		}
		if ignores != nil && ignores.MatchesPath(f.Name) {
			return nil
		}

		path := filepath.Join(e.config.Root, filepath.FromSlash(f.Name))
		if e.config.Filter != nil && !e.config.Filter(path) {
			return nil
		}

		info, err := os.Lstat(path)
		if errors.Is(err, fs.ErrNotExist) {
			// Deleted in the working tree.
			return nil
		}
		if err != nil {
			return e.config.fileError(path, err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if e.config.MaxFileSize > 0 && info.Size() > e.config.MaxFileSize {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return e.config.fileError(path, fmt.Errorf("failed to read file %s: %w", path, err))
		}
		if isBinary(content) {
			return nil
		}

		prov := types.GitProvenance{
			RepoPath: e.config.Root,
			BlobPath: f.Name,
		}
		if e.config.CommitYears {
			meta, err := lastCommit(repo, *ref, f.Name)
			if err != nil {
				return fmt.Errorf("failed to get history of %s: %w", f.Name, err)
			}
			prov.Commit = meta
		}

		return callback(content, types.ComputeBlobID(content), prov)
	})
	if err != nil {
		return fmt.Errorf("failed to walk tree: %w", err)
	}

	return nil
}

// lastCommit returns the newest commit reachable from head that touched
// name, or nil when there is none.
func lastCommit(repo *git.Repository, head plumbing.Hash, name string) (*types.CommitMetadata, error) {
	iter, err := repo.Log(&git.LogOptions{
		From:     head,
		FileName: &name,
		Order:    git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	c, err := iter.Next()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &types.CommitMetadata{
		CommitID:        c.Hash.String(),
		AuthorName:      c.Author.Name,
		AuthorEmail:     c.Author.Email,
		AuthorTimestamp: c.Author.When,
		Message:         c.Message,
	}, nil
}

// hasHiddenElem reports whether any element of a slash-separated path is
// hidden.
func hasHiddenElem(name string) bool {
	for _, elem := range strings.Split(name, "/") {
		if isHidden(elem) {
			return true
		}
	}
	return false
}
