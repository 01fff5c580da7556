// Package prefilter narrows the grammars worth running against a comment
// block by looking for their literal keywords first.
package prefilter

import (
	"github.com/cloudflare/ahocorasick"
	"github.com/praetorian-inc/yearbump/pkg/types"
)

// Prefilter uses Aho-Corasick for efficient keyword matching.
type Prefilter struct {
	matcher           *ahocorasick.Matcher
	grammars          []*types.Grammar            // in input order
	keywords          []string                    // keyword at each index
	keywordGrammars   map[string][]*types.Grammar // keyword -> grammars needing it
	noKeywordGrammars []*types.Grammar            // grammars without keywords (always checked)
}

// New creates a prefilter from grammars.
func New(grammars []*types.Grammar) *Prefilter {
	pf := &Prefilter{
		grammars:        grammars,
		keywordGrammars: make(map[string][]*types.Grammar),
	}

	keywordSet := make(map[string]bool)
	for _, g := range grammars {
		if len(g.Keywords) == 0 {
			pf.noKeywordGrammars = append(pf.noKeywordGrammars, g)
			continue
		}
		for _, keyword := range g.Keywords {
			if !keywordSet[keyword] {
				keywordSet[keyword] = true
				pf.keywords = append(pf.keywords, keyword)
			}
			pf.keywordGrammars[keyword] = append(pf.keywordGrammars[keyword], g)
		}
	}

	if len(pf.keywords) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.keywords)
	}

	return pf
}

// Filter returns the grammars that might match content, in the order they
// were given to New. Grammars without keywords are always returned.
func (pf *Prefilter) Filter(content []byte) []*types.Grammar {
	hit := make(map[*types.Grammar]bool, len(pf.grammars))
	for _, g := range pf.noKeywordGrammars {
		hit[g] = true
	}
	if pf.matcher != nil {
		for _, i := range pf.matcher.Match(content) {
			for _, g := range pf.keywordGrammars[pf.keywords[i]] {
				hit[g] = true
			}
		}
	}

	result := make([]*types.Grammar, 0, len(hit))
	for _, g := range pf.grammars {
		if hit[g] {
			result = append(result, g)
		}
	}
	return result
}

// Any reports whether content holds at least one keyword, or whether some
// grammar has no keywords at all.
func (pf *Prefilter) Any(content []byte) bool {
	if len(pf.noKeywordGrammars) > 0 {
		return true
	}
	if pf.matcher == nil {
		return false
	}
	return len(pf.matcher.Match(content)) > 0
}
