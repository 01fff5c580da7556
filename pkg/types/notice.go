package types

import "strconv"

// CommentBlock is a half-open line range [Start, End) of a SourceFile.
type CommentBlock struct {
	Start   int
	End     int
	StyleID string // id of the style that matched
}

// Len returns the number of lines in the block.
func (b CommentBlock) Len() int { return b.End - b.Start }

// Contains reports whether line i is inside the block.
func (b CommentBlock) Contains(i int) bool { return i >= b.Start && i < b.End }

// Span is a byte range [Start, End) within a line.
type Span struct {
	Start int
	End   int
}

// Notice is a copyright notice parsed from a single line.
// When End is non-zero it is never less than Start.
type Notice struct {
	Owner     string
	Start     int    // first year
	End       int    // last year, 0 when the notice has a single year
	Sep       string // range separator as written, "" for a single year
	Line      int    // 0-based line index in the file
	Text      string // the line as read
	Years     Span   // byte span of the year text within Text
	GrammarID string
}

// HasEnd reports whether the notice carries a year range.
func (n *Notice) HasEnd() bool { return n.End != 0 }

// LastYear returns the newest year covered by the notice.
func (n *Notice) LastYear() int {
	if n.HasEnd() {
		return n.End
	}
	return n.Start
}

// YearText renders the years as they should appear in the line.
func (n *Notice) YearText() string {
	if !n.HasEnd() {
		return strconv.Itoa(n.Start)
	}
	sep := n.Sep
	if sep == "" {
		sep = "-"
	}
	return strconv.Itoa(n.Start) + sep + strconv.Itoa(n.End)
}

// Decision is the outcome of comparing a notice against the current year.
type Decision struct {
	Changed bool
	NewLine string // line text to write; equals the original when unchanged
}
