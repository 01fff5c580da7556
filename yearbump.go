// Package yearbump keeps the copyright years in source file headers
// current.
//
// It finds the first comment block of a file, parses the copyright line in
// it and extends its years to the current year, rewriting only the year
// text and leaving every other byte of the file as it was.
//
// # Basic Usage
//
// Create an updater with builtin rules and update a file in place:
//
//	u, err := yearbump.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := u.UpdateFile(ctx, "main.go")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Status) // rewritten, unchanged, not_found, ...
//
// # Without Touching Files
//
// UpdateBytes computes the new content without writing anything:
//
//	result, content := u.UpdateBytes("main.go", src)
//	if result.Status == yearbump.StatusRewritten {
//	    os.Stdout.Write(content)
//	}
package yearbump

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/praetorian-inc/yearbump/pkg/batch"
	"github.com/praetorian-inc/yearbump/pkg/enum"
	"github.com/praetorian-inc/yearbump/pkg/locate"
	"github.com/praetorian-inc/yearbump/pkg/notice"
	"github.com/praetorian-inc/yearbump/pkg/rewrite"
	"github.com/praetorian-inc/yearbump/pkg/rule"
	"github.com/praetorian-inc/yearbump/pkg/types"
	"github.com/praetorian-inc/yearbump/pkg/update"
)

// Re-export commonly used types for convenience.
// Users can import just "github.com/praetorian-inc/yearbump" without subpackages.
type (
	// SourceFile is a file split into lines, each keeping its terminator.
	SourceFile = types.SourceFile

	// CommentBlock is the line range of the first comment block of a file.
	CommentBlock = types.CommentBlock

	// Notice is a parsed copyright line.
	Notice = types.Notice

	// Decision is the outcome of comparing a notice with the target year.
	Decision = types.Decision

	// Result is the outcome of processing one file.
	Result = types.Result

	// Status is the terminal state of one file.
	Status = types.Status

	// Style describes how comments are written.
	Style = types.Style

	// Grammar describes the text of a copyright line.
	Grammar = types.Grammar

	// ParseError reports a copyright line with malformed years.
	ParseError = types.ParseError

	// WriteError reports a file that could not be saved.
	WriteError = types.WriteError

	// Summary aggregates the results of many files.
	Summary = batch.Summary
)

// ErrNotFound reports a file without a comment block or a notice in it.
var ErrNotFound = types.ErrNotFound

// Re-export status constants.
const (
	StatusNotFound   = types.StatusNotFound
	StatusParseError = types.StatusParseError
	StatusUnchanged  = types.StatusUnchanged
	StatusRewritten  = types.StatusRewritten
	StatusWriteError = types.StatusWriteError
	StatusOutdated   = types.StatusOutdated
	StatusSkipped    = types.StatusSkipped
)

// Updater brings copyright notices up to a year.
type Updater struct {
	config    *updaterConfig
	parser    *notice.Parser
	processor *batch.Processor
	preview   *batch.Processor // never writes, used by UpdateBytes
}

// updaterConfig holds updater configuration.
type updaterConfig struct {
	styles   []*types.Style
	grammars []*types.Grammar
	owner    string
	year     int
	maxStart int
	dryRun   bool
	check    bool
	logger   *slog.Logger
}

// Option configures an Updater.
type Option func(*updaterConfig)

// WithStyles uses custom comment styles instead of the builtin ones.
func WithStyles(styles []*Style) Option {
	return func(c *updaterConfig) {
		c.styles = styles
	}
}

// WithGrammars uses custom copyright grammars instead of the builtin ones.
func WithGrammars(grammars []*Grammar) Option {
	return func(c *updaterConfig) {
		c.grammars = grammars
	}
}

// WithOwner only updates notices whose owner matches the regular
// expression expr. Notices of other owners are left alone.
func WithOwner(expr string) Option {
	return func(c *updaterConfig) {
		c.owner = expr
	}
}

// WithYear sets the target year. Defaults to the current year.
func WithYear(year int) Option {
	return func(c *updaterConfig) {
		c.year = year
	}
}

// WithMaxStart only considers comment blocks starting within the first n
// lines of a file.
func WithMaxStart(n int) Option {
	return func(c *updaterConfig) {
		c.maxStart = n
	}
}

// WithDryRun computes updates without writing files.
func WithDryRun() Option {
	return func(c *updaterConfig) {
		c.dryRun = true
	}
}

// WithCheck reports outdated notices instead of updating them.
func WithCheck() Option {
	return func(c *updaterConfig) {
		c.check = true
	}
}

// WithLogger sets the logger used by Run. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(c *updaterConfig) {
		c.logger = logger
	}
}

// New creates an Updater with the given options.
//
// By default, the updater:
//   - Uses the builtin comment styles and copyright grammars
//   - Targets the current year
//   - Rewrites files in place
func New(opts ...Option) (*Updater, error) {
	config := &updaterConfig{}
	for _, opt := range opts {
		opt(config)
	}

	if config.styles == nil || config.grammars == nil {
		set, err := rule.NewLoader().LoadBuiltin()
		if err != nil {
			return nil, fmt.Errorf("loading builtin rules: %w", err)
		}
		if config.styles == nil {
			config.styles = set.Styles
		}
		if config.grammars == nil {
			config.grammars = set.Grammars
		}
	}

	var locOpts []locate.Option
	if config.maxStart > 0 {
		locOpts = append(locOpts, locate.WithMaxStart(config.maxStart))
	}
	locator, err := locate.New(config.styles, locOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating locator: %w", err)
	}

	var parserOpts []notice.Option
	if config.owner != "" {
		parserOpts = append(parserOpts, notice.WithOwner(config.owner))
	}
	parser, err := notice.New(config.grammars, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating parser: %w", err)
	}

	processor, err := batch.NewProcessor(locator, parser, rewrite.New(rewrite.WithDryRun(config.dryRun)), config.check)
	if err != nil {
		return nil, err
	}
	preview, err := batch.NewProcessor(locator, parser, rewrite.New(rewrite.WithDryRun(true)), false)
	if err != nil {
		return nil, err
	}

	if config.year == 0 {
		config.year = time.Now().Year()
	}
	return &Updater{
		config:    config,
		parser:    parser,
		processor: processor,
		preview:   preview,
	}, nil
}

// Year returns the target year.
func (u *Updater) Year() int { return u.config.year }

// UpdateFile updates the notice of the file at path. The returned error is
// only set when the file cannot be read; every other outcome, including
// parse and write errors, is reported in the result.
func (u *Updater) UpdateFile(ctx context.Context, path string) (*Result, error) {
	f, err := rewrite.Load(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return u.processor.Process(ctx, f, u.config.year), nil
}

// UpdateBytes computes the update of content as if it were the file at
// path. Nothing is written. The returned content is the input when the
// status is not StatusRewritten.
func (u *Updater) UpdateBytes(path string, content []byte) (*Result, []byte) {
	r, out := u.preview.ProcessFile(context.Background(), types.NewSourceFile(path, content), u.config.year)
	if out == nil {
		return r, content
	}
	return r, out.Bytes()
}

// Decide parses a single copyright line and decides how it should read in
// the target year.
func (u *Updater) Decide(line string) (Decision, error) {
	n, err := u.parser.ParseLine(line)
	if err != nil {
		return Decision{NewLine: line}, err
	}
	return update.Decide(n, u.config.year), nil
}

// Run updates every file yielded by e and returns the aggregated outcome.
func (u *Updater) Run(ctx context.Context, e enum.Enumerator) (*Summary, error) {
	runner, err := u.runner()
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx, e)
}

// UpdatePaths updates the named files.
func (u *Updater) UpdatePaths(ctx context.Context, paths ...string) (*Summary, error) {
	runner, err := u.runner()
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx, enum.NewPathsEnumerator(enum.Config{OnError: runner.ReadError}, paths...))
}

func (u *Updater) runner() (*batch.Runner, error) {
	return batch.NewRunner(batch.Config{
		Processor: u.processor,
		Logger:    u.config.logger,
		Year:      u.config.year,
	})
}

// LoadBuiltinRules returns the builtin comment styles and copyright
// grammars. Use it to inspect the rules or to build a subset for
// WithStyles and WithGrammars.
func LoadBuiltinRules() (*rule.Set, error) {
	return rule.NewLoader().LoadBuiltin()
}

// LoadRules loads comment styles and copyright grammars from a YAML file or
// a directory of YAML files.
func LoadRules(path string) (*rule.Set, error) {
	return rule.NewLoader().LoadPath(path)
}
