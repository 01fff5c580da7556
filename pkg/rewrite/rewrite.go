// Package rewrite writes an updated copyright line back to its file.
package rewrite

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"

	"github.com/natefinch/atomic"
	"github.com/praetorian-inc/yearbump/pkg/types"
)

// Rewriter replaces single lines of files and saves them atomically.
type Rewriter struct {
	dryRun bool
	save   func(path string, data []byte, mode fs.FileMode) error
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithDryRun computes the new content without writing it.
func WithDryRun(dryRun bool) Option {
	return func(r *Rewriter) {
		r.dryRun = dryRun
	}
}

// New creates a Rewriter.
func New(opts ...Option) *Rewriter {
	r := &Rewriter{save: Save}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DryRun reports whether the rewriter skips writing.
func (r *Rewriter) DryRun() bool { return r.dryRun }

// Apply writes decision d for notice n of f. An unchanged decision returns
// f as is and never touches the file.
func (r *Rewriter) Apply(f *types.SourceFile, n *types.Notice, d types.Decision) (*types.SourceFile, error) {
	if !d.Changed {
		return f, nil
	}
	return r.Rewrite(f, n.Line, d.NewLine)
}

// Rewrite replaces line i of f with text, keeping the line's terminator and
// every other byte, and saves the whole file. f itself is not modified; the
// updated file is returned. When text equals the current line nothing is
// written.
//
// Failures are returned as *types.WriteError and leave the file on disk
// as it was.
func (r *Rewriter) Rewrite(f *types.SourceFile, i int, text string) (*types.SourceFile, error) {
	if i >= 0 && i < f.Len() && f.Line(i) == text {
		return f, nil
	}

	out := f.Clone()
	if err := out.ReplaceLine(i, text); err != nil {
		return nil, &types.WriteError{Path: f.Path, Err: err}
	}
	if r.dryRun {
		return out, nil
	}
	if err := r.save(out.Path, out.Bytes(), out.Mode); err != nil {
		return nil, &types.WriteError{Path: f.Path, Err: err}
	}
	return out, nil
}

// Save replaces the file at path with data through a temporary file in the
// same directory, so readers see either the old or the new content. The
// file keeps mode.
func Save(path string, data []byte, mode fs.FileMode) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return err
	}
	if mode == 0 {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat after save: %w", err)
	}
	if info.Mode().Perm() != mode.Perm() {
		if err := os.Chmod(path, mode.Perm()); err != nil {
			return fmt.Errorf("restoring mode: %w", err)
		}
	}
	return nil
}

// Load reads path into a SourceFile, recording its mode.
func Load(path string) (*types.SourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f := types.NewSourceFile(path, content)
	f.Mode = info.Mode()
	return f, nil
}
