package rule

import (
	"testing"

	"github.com/praetorian-inc/yearbump/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePatterns(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string returns empty slice",
			input:    "",
			expected: []string{},
		},
		{
			name:     "single pattern",
			input:    "style.c-.*",
			expected: []string{"style.c-.*"},
		},
		{
			name:     "multiple patterns comma-separated",
			input:    "style.hash,style.xml,copyright.*",
			expected: []string{"style.hash", "style.xml", "copyright.*"},
		},
		{
			name:     "patterns with spaces are trimmed",
			input:    " style.hash , style.xml ,, ",
			expected: []string{"style.hash", "style.xml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParsePatterns(tt.input))
		})
	}
}

func testSet() *Set {
	return &Set{
		Styles: []*types.Style{
			{ID: "style.c-block"},
			{ID: "style.c-line"},
			{ID: "style.hash"},
		},
		Grammars: []*types.Grammar{
			{ID: "copyright.owner-first"},
			{ID: "copyright.year-first"},
		},
	}
}

func ids(set *Set) []string {
	out := []string{}
	for _, s := range set.Styles {
		out = append(out, s.ID)
	}
	for _, g := range set.Grammars {
		out = append(out, g.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		config   FilterConfig
		expected []string
	}{
		{
			name:     "empty config keeps everything",
			expected: []string{"style.c-block", "style.c-line", "style.hash", "copyright.owner-first", "copyright.year-first"},
		},
		{
			name:     "include C styles and every grammar",
			config:   FilterConfig{Include: []string{`^style\.c-`, `^copyright\.`}},
			expected: []string{"style.c-block", "style.c-line", "copyright.owner-first", "copyright.year-first"},
		},
		{
			name:     "exclude only",
			config:   FilterConfig{Exclude: []string{"hash", "year-first"}},
			expected: []string{"style.c-block", "style.c-line", "copyright.owner-first"},
		},
		{
			name:     "include then exclude",
			config:   FilterConfig{Include: []string{"^style"}, Exclude: []string{"block"}},
			expected: []string{"style.c-line", "style.hash"},
		},
		{
			name:     "include matches none",
			config:   FilterConfig{Include: []string{"nomatch"}},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := testSet()
			got, err := Filter(set, tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ids(got))
			assert.Len(t, set.Styles, 3, "input set is not modified")
		})
	}
}

func TestFilter_InvalidPattern(t *testing.T) {
	_, err := Filter(testSet(), FilterConfig{Include: []string{"[invalid"}})
	assert.ErrorContains(t, err, "invalid regex pattern")

	_, err = Filter(testSet(), FilterConfig{Exclude: []string{"(unclosed"}})
	assert.ErrorContains(t, err, "invalid regex pattern")
}

func TestSet_Merge(t *testing.T) {
	set := testSet()
	set.Merge(&Set{
		Styles:   []*types.Style{{ID: "style.hash", Name: "override"}, {ID: "style.percent"}},
		Grammars: []*types.Grammar{{ID: "copyright.spdx"}},
	})

	assert.Equal(t, []string{
		"style.c-block", "style.c-line", "style.hash", "style.percent",
		"copyright.owner-first", "copyright.year-first", "copyright.spdx",
	}, ids(set))
	assert.Equal(t, "override", set.Styles[2].Name)

	set.Merge(nil)
	assert.Len(t, set.Styles, 4)
}
