package types

import (
	"path/filepath"
	"strings"
)

// Style describes how comments are written in a family of languages.
// A style is either a block style (Open and Close set) or a line style
// (Line set). All three are regular expressions.
type Style struct {
	ID               string   // e.g. "style.c-block"
	Name             string   // human-readable name
	Description      string   // optional
	Extensions       []string // file suffixes, e.g. ".go", "Makefile"
	Open             string   // block opener, e.g. `/\*`
	Close            string   // block closer, e.g. `\*/`
	Line             string   // line comment, e.g. `^\s*//`
	Examples         []string // texts that contain a block of this style
	NegativeExamples []string // texts that must not yield a block
}

// IsBlock reports whether the style uses open/close delimiters.
func (s *Style) IsBlock() bool { return s.Open != "" }

// AppliesTo reports whether the style declares path's extension or name.
// A style without extensions applies to nothing by name.
func (s *Style) AppliesTo(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(path)
	for _, e := range s.Extensions {
		if strings.HasPrefix(e, ".") {
			if strings.EqualFold(e, ext) {
				return true
			}
		} else if e == base {
			return true
		}
	}
	return false
}

// Grammar describes the text of a copyright line.
// Pattern must define the named groups "owner" and "start" and may define
// "end" and "sep".
type Grammar struct {
	ID               string   // e.g. "copyright.owner-first"
	Name             string   // human-readable name
	Description      string   // optional
	Pattern          string   // regular expression
	Keywords         []string // literal markers used for prefiltering
	Examples         []string // lines that must parse
	NegativeExamples []string // lines that must not match
}
