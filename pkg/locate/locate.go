// Package locate finds the first comment block of a source file.
package locate

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/praetorian-inc/yearbump/pkg/matcher"
	"github.com/praetorian-inc/yearbump/pkg/types"
)

// Locator finds comment blocks using a fixed set of styles.
// It is immutable after New and safe for concurrent use.
type Locator struct {
	styles   []*compiledStyle
	maxStart int
}

type compiledStyle struct {
	style *types.Style
	open  *matcher.Pattern
	close *matcher.Pattern
	line  *matcher.Pattern
}

// Option configures a Locator.
type Option func(*Locator)

// WithMaxStart only accepts blocks starting before line n (0-based).
// Zero, the default, accepts a block anywhere in the file.
func WithMaxStart(n int) Option {
	return func(l *Locator) {
		l.maxStart = n
	}
}

// New compiles styles into a Locator.
func New(styles []*types.Style, opts ...Option) (*Locator, error) {
	if len(styles) == 0 {
		return nil, fmt.Errorf("no comment styles provided")
	}

	l := &Locator{}
	for _, opt := range opts {
		opt(l)
	}

	for _, s := range styles {
		cs, err := compileStyle(s)
		if err != nil {
			return nil, err
		}
		l.styles = append(l.styles, cs)
	}
	return l, nil
}

func compileStyle(s *types.Style) (*compiledStyle, error) {
	cs := &compiledStyle{style: s}
	var err error
	switch {
	case s.Open != "" && s.Close != "":
		if cs.open, err = matcher.Compile(s.Open); err != nil {
			return nil, fmt.Errorf("style %s: open: %w", s.ID, err)
		}
		if cs.close, err = matcher.Compile(s.Close); err != nil {
			return nil, fmt.Errorf("style %s: close: %w", s.ID, err)
		}
	case s.Line != "":
		if cs.line, err = matcher.Compile(s.Line); err != nil {
			return nil, fmt.Errorf("style %s: line: %w", s.ID, err)
		}
	default:
		return nil, fmt.Errorf("style %s needs either open and close or line", s.ID)
	}
	return cs, nil
}

// Styles returns the styles the locator was built from.
func (l *Locator) Styles() []*types.Style {
	out := make([]*types.Style, len(l.styles))
	for i, cs := range l.styles {
		out[i] = cs.style
	}
	return out
}

// Locate returns the first comment block of f. Styles declaring f's
// extension are tried; when none does, every style is. The earliest block
// wins, ties go to the style listed first.
//
// It returns types.ErrNotFound when the file has no block.
func (l *Locator) Locate(f *types.SourceFile) (types.CommentBlock, error) {
	return l.LocateLines(f.Path, f.Lines())
}

// LocateLines is Locate for a file already split into lines.
func (l *Locator) LocateLines(path string, lines []string) (types.CommentBlock, error) {
	best := types.CommentBlock{Start: -1}
	for _, cs := range l.stylesFor(path) {
		b, err := cs.find(lines, l.limit(len(lines)))
		if errors.Is(err, types.ErrNotFound) {
			continue
		}
		if err != nil {
			return types.CommentBlock{}, err
		}
		if best.Start < 0 || b.Start < best.Start {
			best = b
		}
	}
	if best.Start < 0 {
		return types.CommentBlock{}, types.ErrNotFound
	}
	return best, nil
}

// Find returns the first block of a single style in lines.
func Find(style *types.Style, lines []string) (types.CommentBlock, error) {
	cs, err := compileStyle(style)
	if err != nil {
		return types.CommentBlock{}, err
	}
	return cs.find(lines, len(lines))
}

func (l *Locator) limit(n int) int {
	if l.maxStart > 0 && l.maxStart < n {
		return l.maxStart
	}
	return n
}

func (l *Locator) stylesFor(path string) []*compiledStyle {
	var out []*compiledStyle
	for _, cs := range l.styles {
		if cs.style.AppliesTo(path) {
			out = append(out, cs)
		}
	}
	if len(out) == 0 {
		return l.styles
	}
	return out
}

// find searches for a block starting before line limit.
func (cs *compiledStyle) find(lines []string, limit int) (types.CommentBlock, error) {
	if cs.line != nil {
		return cs.findLineBlock(lines, limit)
	}
	return cs.findDelimitedBlock(lines, limit)
}

func (cs *compiledStyle) findLineBlock(lines []string, limit int) (types.CommentBlock, error) {
	for i := 0; i < limit; i++ {
		ok, err := cs.line.MatchString(lines[i])
		if err != nil {
			return types.CommentBlock{}, err
		}
		if !ok {
			continue
		}
		end := i + 1
		for end < len(lines) {
			ok, err := cs.line.MatchString(lines[end])
			if err != nil {
				return types.CommentBlock{}, err
			}
			if !ok {
				break
			}
			end++
		}
		return types.CommentBlock{Start: i, End: end, StyleID: cs.style.ID}, nil
	}
	return types.CommentBlock{}, types.ErrNotFound
}

func (cs *compiledStyle) findDelimitedBlock(lines []string, limit int) (types.CommentBlock, error) {
	for i := 0; i < limit; i++ {
		from, err := cs.opener(lines[i])
		if err != nil {
			return types.CommentBlock{}, err
		}
		if from < 0 {
			continue
		}
		for j := i; j < len(lines); j++ {
			m, err := cs.close.FindFrom(lines[j], from)
			if err != nil {
				return types.CommentBlock{}, err
			}
			if m != nil {
				return types.CommentBlock{Start: i, End: j + 1, StyleID: cs.style.ID}, nil
			}
			from = 0
		}
		// Unterminated.
		return types.CommentBlock{}, types.ErrNotFound
	}
	return types.CommentBlock{}, types.ErrNotFound
}

// opener returns the byte offset just past the first opener of line that is
// not inside a string literal, or -1.
func (cs *compiledStyle) opener(line string) (int, error) {
	from := 0
	for {
		m, err := cs.open.FindFrom(line, from)
		if err != nil || m == nil {
			return -1, err
		}
		if !inString(line, m.Span.Start) {
			return m.Span.End, nil
		}
		from = m.Span.End
		if m.Span.End == m.Span.Start {
			from++
		}
	}
}

// inString reports whether pos sits inside a string literal opened earlier
// on the same line. A single quote directly after a letter is an
// apostrophe, not a quote.
func inString(line string, pos int) bool {
	var quote rune
	escaped := false
	prev := rune(0)
	for _, r := range line[:pos] {
		switch {
		case quote != 0:
			switch {
			case escaped:
				escaped = false
			case r == '\\' && quote != '`':
				escaped = true
			case r == quote:
				quote = 0
			}
		case r == '"' || r == '`':
			quote = r
		case r == '\'' && !unicode.IsLetter(prev):
			quote = r
		}
		prev = r
	}
	return quote != 0
}
