// Package batch runs the per-file state machine over many files and
// aggregates the outcomes.
//
// Each file ends in exactly one terminal state: not found, parse error,
// unchanged, rewritten or write error (outdated in check mode, skipped in
// incremental mode). A failure on one file never stops the others.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/praetorian-inc/yearbump/pkg/locate"
	"github.com/praetorian-inc/yearbump/pkg/notice"
	"github.com/praetorian-inc/yearbump/pkg/rewrite"
	"github.com/praetorian-inc/yearbump/pkg/types"
	"github.com/praetorian-inc/yearbump/pkg/update"
)

// Processor takes one file from scanned to a terminal state.
// It holds no per-file state and is safe for concurrent use.
type Processor struct {
	locator  *locate.Locator
	parser   *notice.Parser
	rewriter *rewrite.Rewriter
	check    bool
}

// NewProcessor creates a Processor. In check mode decisions are computed
// but never written.
func NewProcessor(locator *locate.Locator, parser *notice.Parser, rewriter *rewrite.Rewriter, check bool) (*Processor, error) {
	if locator == nil || parser == nil {
		return nil, fmt.Errorf("locator and parser are required")
	}
	if rewriter == nil {
		rewriter = rewrite.New()
	}
	return &Processor{locator: locator, parser: parser, rewriter: rewriter, check: check}, nil
}

// Check reports whether the processor only computes decisions.
func (p *Processor) Check() bool { return p.check }

// DryRun reports whether rewritten files are left unsaved.
func (p *Processor) DryRun() bool { return p.rewriter.DryRun() }

// Process brings the notice of f up to year. Once ctx is done no file is
// written.
func (p *Processor) Process(ctx context.Context, f *types.SourceFile, year int) *types.Result {
	r, _ := p.ProcessFile(ctx, f, year)
	return r
}

// ProcessFile is like Process but also returns the rewritten file, nil
// unless the status is StatusRewritten. In dry-run mode the file holds the
// content that would have been written.
func (p *Processor) ProcessFile(ctx context.Context, f *types.SourceFile, year int) (*types.Result, *types.SourceFile) {
	r := &types.Result{
		Path:   f.Path,
		BlobID: types.ComputeBlobID(f.Bytes()),
		Year:   year,
	}

	block, err := p.locator.Locate(f)
	if err != nil {
		return p.fail(r, err), nil
	}
	r.Block = &block

	n, err := p.parser.Parse(f, block)
	if err != nil {
		return p.fail(r, err), nil
	}
	r.Notice = n

	r.Decision = update.Decide(n, year)
	if !r.Decision.Changed {
		r.Status = types.StatusUnchanged
		return r, nil
	}

	if p.check {
		r.Status = types.StatusOutdated
		return r, nil
	}

	// A cancelled run abandons pending writes.
	if err := ctx.Err(); err != nil {
		r.Status = types.StatusWriteError
		r.Err = &types.WriteError{Path: f.Path, Err: err}
		return r, nil
	}

	out, err := p.rewriter.Apply(f, n, r.Decision)
	if err != nil {
		r.Status = types.StatusWriteError
		r.Err = err
		return r, nil
	}
	r.Status = types.StatusRewritten
	return r, out
}

// fail classifies a locate or parse error.
func (p *Processor) fail(r *types.Result, err error) *types.Result {
	var pe *types.ParseError
	switch {
	case errors.Is(err, types.ErrNotFound):
		r.Status = types.StatusNotFound
	case errors.As(err, &pe):
		r.Status = types.StatusParseError
		r.Err = err
	default:
		// Pattern failures such as match timeouts.
		r.Status = types.StatusParseError
		r.Err = &types.ParseError{Path: r.Path, Err: err}
	}
	return r
}
