// Package update decides whether a copyright notice needs a newer year.
package update

import "github.com/praetorian-inc/yearbump/pkg/types"

// DefaultSep joins a single year to the current year.
const DefaultSep = "-"

// Decide compares n against year and returns the line to write.
//
// A single year older than year becomes the range "start-year"; a range
// ending before year gets year as its new end. Anything else, including a
// year older than the notice, is left unchanged. Only the year text of the
// line is replaced.
func Decide(n *types.Notice, year int) types.Decision {
	next, changed := Extend(n, year)
	if !changed {
		return types.Decision{NewLine: n.Text}
	}
	return types.Decision{
		Changed: true,
		NewLine: n.Text[:n.Years.Start] + next.YearText() + n.Text[n.Years.End:],
	}
}

// Extend returns n with its years extended to cover year, and whether
// anything changed. The returned notice keeps the span of the original
// line.
func Extend(n *types.Notice, year int) (types.Notice, bool) {
	next := *n
	if year <= n.LastYear() {
		return next, false
	}
	if !n.HasEnd() {
		next.Sep = DefaultSep
	}
	next.End = year
	return next, true
}
