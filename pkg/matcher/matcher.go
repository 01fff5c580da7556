// Package matcher compiles the regular expressions carried by comment styles
// and copyright grammars and reports matches as byte spans.
//
// Patterns are compiled with regexp2 so rule files may use Perl features
// (lookaround, inline flags) that RE2 lacks. RE2 syntax is tried first.
package matcher

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/praetorian-inc/yearbump/pkg/types"
)

// DefaultTimeout bounds a single match to prevent catastrophic backtracking.
const DefaultTimeout = time.Second

// Pattern is a compiled rule pattern. It is safe for concurrent use.
type Pattern struct {
	expr  string
	re    *regexp2.Regexp
	names []string // named groups, numbered groups excluded
}

// Compile compiles expr, trying RE2 syntax first and falling back to the
// default Perl-compatible mode.
func Compile(expr string) (*Pattern, error) {
	re, err := regexp2.Compile(expr, regexp2.RE2)
	if err != nil {
		re, err = regexp2.Compile(expr, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("compiling pattern %q: %w", expr, err)
		}
	}
	re.MatchTimeout = DefaultTimeout

	var names []string
	for _, name := range re.GetGroupNames() {
		if name == "" || (name[0] >= '0' && name[0] <= '9') {
			continue
		}
		names = append(names, name)
	}
	return &Pattern{expr: expr, re: re, names: names}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) *Pattern {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source expression.
func (p *Pattern) String() string { return p.expr }

// GroupNames returns the named groups of the pattern.
func (p *Pattern) GroupNames() []string { return p.names }

// HasGroup reports whether the pattern defines the named group.
func (p *Pattern) HasGroup(name string) bool {
	for _, n := range p.names {
		if n == name {
			return true
		}
	}
	return false
}

// Match is a single match within a string. Spans are byte offsets.
type Match struct {
	Span   types.Span
	Text   string
	groups map[string]Group
}

// Group is a named capture.
type Group struct {
	Span types.Span
	Text string
}

// Group returns the named capture, ok is false when the group did not
// participate in the match.
func (m *Match) Group(name string) (Group, bool) {
	g, ok := m.groups[name]
	return g, ok
}

// MatchString reports whether s contains a match.
func (p *Pattern) MatchString(s string) (bool, error) {
	return p.re.MatchString(s)
}

// Find returns the leftmost match in s, or nil.
func (p *Pattern) Find(s string) (*Match, error) {
	return p.FindFrom(s, 0)
}

// FindFrom returns the leftmost match in s starting at byte offset from,
// or nil.
func (p *Pattern) FindFrom(s string, from int) (*Match, error) {
	if from > len(s) {
		return nil, nil
	}
	offsets := runeOffsets(s)
	start := 0
	for start < len(offsets)-1 && offsets[start] < from {
		start++
	}

	m, err := p.re.FindStringMatchStartingAt(s, start)
	if err != nil {
		return nil, fmt.Errorf("matching %q: %w", p.expr, err)
	}
	if m == nil {
		return nil, nil
	}

	span := func(index, length int) types.Span {
		return types.Span{Start: offsets[index], End: offsets[index+length]}
	}
	out := &Match{
		Span:   span(m.Index, m.Length),
		Text:   m.String(),
		groups: make(map[string]Group, len(p.names)),
	}
	for _, name := range p.names {
		g := m.GroupByName(name)
		if g == nil || len(g.Captures) == 0 {
			continue
		}
		out.groups[name] = Group{Span: span(g.Index, g.Length), Text: g.String()}
	}
	return out, nil
}

// runeOffsets maps rune indexes, as reported by regexp2, to byte offsets.
// The final element is len(s).
func runeOffsets(s string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}
