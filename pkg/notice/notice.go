// Package notice parses copyright notices out of comment blocks.
package notice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/praetorian-inc/yearbump/pkg/matcher"
	"github.com/praetorian-inc/yearbump/pkg/prefilter"
	"github.com/praetorian-inc/yearbump/pkg/types"
)

// Named groups a grammar pattern may define. Owner and start are required.
const (
	GroupOwner = "owner"
	GroupStart = "start"
	GroupEnd   = "end"
	GroupSep   = "sep"
)

// Causes carried by a *types.ParseError.
var (
	ErrMalformedYear = errors.New("malformed year")
	ErrBackwardRange = errors.New("end year before start year")
)

// Parser finds the copyright notice of a comment block.
// It is immutable after New and safe for concurrent use.
type Parser struct {
	grammars  map[*types.Grammar]*matcher.Pattern
	prefilter *prefilter.Prefilter
	owner     *matcher.Pattern
}

type options struct {
	owner string
}

// Option configures a Parser.
type Option func(*options)

// WithOwner only accepts notices whose owner matches expr.
// Notices of other owners are skipped as if absent.
func WithOwner(expr string) Option {
	return func(o *options) {
		o.owner = expr
	}
}

// New compiles grammars into a Parser. Grammars are tried in order.
func New(grammars []*types.Grammar, opts ...Option) (*Parser, error) {
	if len(grammars) == 0 {
		return nil, fmt.Errorf("no copyright grammars provided")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	p := &Parser{
		grammars:  make(map[*types.Grammar]*matcher.Pattern, len(grammars)),
		prefilter: prefilter.New(grammars),
	}
	for _, g := range grammars {
		pat, err := Compile(g)
		if err != nil {
			return nil, err
		}
		p.grammars[g] = pat
	}

	if o.owner != "" {
		pat, err := matcher.Compile(o.owner)
		if err != nil {
			return nil, fmt.Errorf("owner filter: %w", err)
		}
		p.owner = pat
	}
	return p, nil
}

// Compile compiles a grammar pattern and checks its named groups.
func Compile(g *types.Grammar) (*matcher.Pattern, error) {
	pat, err := matcher.Compile(g.Pattern)
	if err != nil {
		return nil, fmt.Errorf("grammar %s: %w", g.ID, err)
	}
	for _, name := range []string{GroupOwner, GroupStart} {
		if !pat.HasGroup(name) {
			return nil, fmt.Errorf("grammar %s: pattern lacks required group %q", g.ID, name)
		}
	}
	return pat, nil
}

// Parse returns the first notice inside block b of f.
//
// It returns types.ErrNotFound when the block holds no notice, and a
// *types.ParseError when the first notice has malformed years.
func (p *Parser) Parse(f *types.SourceFile, b types.CommentBlock) (*types.Notice, error) {
	n, err := p.ParseLines(f.Lines(), b)
	var pe *types.ParseError
	if errors.As(err, &pe) {
		pe.Path = f.Path
	}
	return n, err
}

// ParseLines is Parse for a file already split into lines.
func (p *Parser) ParseLines(lines []string, b types.CommentBlock) (*types.Notice, error) {
	start, end := max(b.Start, 0), min(b.End, len(lines))
	if start >= end {
		return nil, types.ErrNotFound
	}

	candidates := p.prefilter.Filter([]byte(strings.Join(lines[start:end], "\n")))
	if len(candidates) == 0 {
		return nil, types.ErrNotFound
	}

	for i := start; i < end; i++ {
		for _, g := range candidates {
			n, err := p.parseLine(g, lines[i], i)
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			return n, nil
		}
	}
	return nil, types.ErrNotFound
}

// ParseLine parses a single line as if it were the whole block.
func (p *Parser) ParseLine(text string) (*types.Notice, error) {
	return p.ParseLines([]string{text}, types.CommentBlock{Start: 0, End: 1})
}

func (p *Parser) parseLine(g *types.Grammar, text string, line int) (*types.Notice, error) {
	m, err := p.grammars[g].Find(text)
	if err != nil {
		return nil, fmt.Errorf("grammar %s: %w", g.ID, err)
	}
	if m == nil {
		return nil, types.ErrNotFound
	}

	owner, _ := m.Group(GroupOwner)
	n := &types.Notice{
		Owner:     strings.TrimSpace(owner.Text),
		Line:      line,
		Text:      text,
		GrammarID: g.ID,
	}
	if p.owner != nil {
		ok, err := p.owner.MatchString(n.Owner)
		if err != nil {
			return nil, fmt.Errorf("owner filter: %w", err)
		}
		if !ok {
			return nil, types.ErrNotFound
		}
	}

	parseErr := func(err error) error {
		return &types.ParseError{Line: line, Text: text, Err: err}
	}

	start, _ := m.Group(GroupStart)
	if n.Start, err = parseYear(start.Text); err != nil {
		return nil, parseErr(err)
	}
	n.Years = start.Span

	if end, ok := m.Group(GroupEnd); ok {
		if n.End, err = parseYear(end.Text); err != nil {
			return nil, parseErr(err)
		}
		if n.End < n.Start {
			return nil, parseErr(fmt.Errorf("%w: %d-%d", ErrBackwardRange, n.Start, n.End))
		}
		n.Years.End = end.Span.End
		n.Sep = "-"
		if sep, ok := m.Group(GroupSep); ok {
			n.Sep = sep.Text
		}
	}
	return n, nil
}

// parseYear accepts exactly four ASCII digits. Year zero is rejected
// because a zero end year means the notice has no range.
func parseYear(s string) (int, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("%w %q", ErrMalformedYear, s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("%w %q", ErrMalformedYear, s)
		}
	}
	year, err := strconv.Atoi(s)
	if err != nil || year == 0 {
		return 0, fmt.Errorf("%w %q", ErrMalformedYear, s)
	}
	return year, nil
}
