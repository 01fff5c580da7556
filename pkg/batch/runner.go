package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/praetorian-inc/yearbump/pkg/enum"
	"github.com/praetorian-inc/yearbump/pkg/store"
	"github.com/praetorian-inc/yearbump/pkg/types"
)

// Config for a Runner.
type Config struct {
	// Processor handles each file. Required.
	Processor *Processor

	// Store records the run. Defaults to an in-memory store.
	Store store.Store

	// Logger receives one record per file. Defaults to discarding.
	Logger *slog.Logger

	// Year is the year notices are brought up to. Zero means the current
	// year.
	Year int

	// UseCommitYear prefers the year of the last commit touching a file
	// when the enumerator provides it.
	UseCommitYear bool

	// Incremental skips content already known to carry an up-to-date
	// notice.
	Incremental bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Runner drives an enumerator through a Processor and records every
// outcome.
type Runner struct {
	config Config
	log    *slog.Logger

	mu      sync.Mutex
	current *Summary
}

// NewRunner creates a Runner.
func NewRunner(config Config) (*Runner, error) {
	if config.Processor == nil {
		return nil, fmt.Errorf("processor is required")
	}
	if config.Store == nil {
		config.Store = store.NewMemory()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Year == 0 {
		config.Year = config.Now().Year()
	}
	return &Runner{config: config, log: config.Logger}, nil
}

// Year returns the default target year of the runner.
func (r *Runner) Year() int { return r.config.Year }

// Mode returns the store mode of runs started by r.
func (r *Runner) Mode() string {
	switch {
	case r.config.Processor.Check():
		return store.ModeCheck
	case r.config.Processor.DryRun():
		return store.ModeDryRun
	default:
		return store.ModeUpdate
	}
}

// Run processes every file yielded by e. Per-file failures end up in the
// summary; the returned error is reserved for failures of the enumerator or
// the store, in which case the summary holds what was processed so far.
func (r *Runner) Run(ctx context.Context, e enum.Enumerator) (*Summary, error) {
	run := &store.Run{
		StartedAt: r.config.Now(),
		Year:      r.config.Year,
		Mode:      r.Mode(),
	}
	if r.config.UseCommitYear {
		run.Year = 0
	}
	if err := r.config.Store.AddRun(run); err != nil {
		return nil, fmt.Errorf("recording run: %w", err)
	}

	summary := NewSummary(run.ID, r.config.Year, r.config.Processor.Check())
	r.mu.Lock()
	r.current = summary
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.current = nil
		r.mu.Unlock()
	}()

	r.log.Debug("run started", "run", run.ID, "mode", run.Mode, "year", r.config.Year)

	err := e.Enumerate(ctx, func(content []byte, blobID types.BlobID, prov types.Provenance) error {
		return r.handle(ctx, summary, run.ID, content, blobID, prov)
	})
	if err != nil {
		return summary, fmt.Errorf("enumerating: %w", err)
	}

	r.log.Debug("run finished",
		"run", run.ID,
		"files", summary.Total(),
		"rewritten", summary.Count(types.StatusRewritten),
		"outdated", summary.Count(types.StatusOutdated),
	)
	return summary, nil
}

// ReadError records a file the enumerator could not read. It is meant to be
// used as enum.Config.OnError.
func (r *Runner) ReadError(path string, err error) {
	r.log.Error("cannot read file", "path", path, "err", err)

	r.mu.Lock()
	summary := r.current
	r.mu.Unlock()
	if summary != nil {
		summary.AddError(path, err)
	}
}

func (r *Runner) handle(ctx context.Context, summary *Summary, runID int64, content []byte, blobID types.BlobID, prov types.Provenance) error {
	path := prov.Path()
	year := r.yearFor(prov)

	if r.config.Incremental {
		ok, err := r.config.Store.BlobUpToDate(blobID, year)
		if err != nil {
			return fmt.Errorf("checking blob %s: %w", blobID, err)
		}
		if ok {
			res := &types.Result{Path: path, BlobID: blobID, Year: year, Status: types.StatusSkipped}
			return r.record(summary, runID, res)
		}
	}

	f := types.NewSourceFile(path, content)
	if info, err := os.Stat(path); err == nil {
		f.Mode = info.Mode()
	}

	res, out := r.config.Processor.ProcessFile(ctx, f, year)
	if err := r.record(summary, runID, res); err != nil {
		return err
	}

	// Unchanged content is current whatever the mode. Rewritten content is
	// only known once it is on disk.
	switch {
	case res.Status == types.StatusUnchanged:
		if err := r.config.Store.MarkBlobUpToDate(blobID, res.Notice.LastYear()); err != nil {
			return fmt.Errorf("marking blob %s: %w", blobID, err)
		}
	case res.Status == types.StatusRewritten && out != nil && !r.config.Processor.DryRun():
		id := types.ComputeBlobID(out.Bytes())
		if err := r.config.Store.MarkBlobUpToDate(id, year); err != nil {
			return fmt.Errorf("marking blob %s: %w", id, err)
		}
	}
	return nil
}

// yearFor returns the target year for a file.
func (r *Runner) yearFor(prov types.Provenance) int {
	if !r.config.UseCommitYear {
		return r.config.Year
	}
	if gp, ok := prov.(types.GitProvenance); ok && gp.Year() > 0 {
		return gp.Year()
	}
	return r.config.Year
}

func (r *Runner) record(summary *Summary, runID int64, res *types.Result) error {
	summary.Add(res)
	r.logResult(res)
	if err := r.config.Store.AddResult(runID, res); err != nil {
		return fmt.Errorf("recording %s: %w", res.Path, err)
	}
	return nil
}

func (r *Runner) logResult(res *types.Result) {
	attrs := []any{"path", res.Path, "status", res.Status.String(), "year", res.Year}
	if res.Notice != nil {
		attrs = append(attrs, "line", res.Notice.Line+1, "owner", res.Notice.Owner)
	}

	switch res.Status {
	case types.StatusNotFound:
		r.log.Debug("no copyright notice", attrs...)
	case types.StatusUnchanged:
		r.log.Debug("notice up to date", attrs...)
	case types.StatusSkipped:
		r.log.Debug("content unchanged since last run", attrs...)
	case types.StatusRewritten:
		r.log.Info("notice updated", append(attrs, "new", res.Decision.NewLine)...)
	case types.StatusOutdated:
		r.log.Info("notice outdated", append(attrs, "new", res.Decision.NewLine)...)
	case types.StatusParseError:
		var pe *types.ParseError
		if errors.As(res.Err, &pe) && pe.Text != "" {
			attrs = append(attrs, "line", pe.Line+1)
		}
		r.log.Warn("malformed copyright notice", append(attrs, "err", res.Err)...)
	case types.StatusWriteError:
		r.log.Error("cannot write file", append(attrs, "err", res.Err)...)
	}
}
