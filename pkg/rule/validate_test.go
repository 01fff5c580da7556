package rule

import (
	"testing"

	"github.com/praetorian-inc/yearbump/pkg/types"
	"github.com/stretchr/testify/assert"
	"go.uber.org/multierr"
)

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		name    string
		style   *types.Style
		wantErr string
	}{
		{
			name:  "valid line style",
			style: &types.Style{ID: "style.t", Name: "T", Line: `^\s*%`, Examples: []string{"% hi\n"}, NegativeExamples: []string{"x\n"}},
		},
		{
			name:  "valid block style",
			style: &types.Style{ID: "style.t", Name: "T", Open: `\{-`, Close: `-\}`, Examples: []string{"{- a\n b -}\n"}},
		},
		{
			name:    "nil",
			wantErr: "nil",
		},
		{
			name:    "missing ID",
			style:   &types.Style{Name: "T", Line: "x"},
			wantErr: "ID is required",
		},
		{
			name:    "missing name",
			style:   &types.Style{ID: "style.t", Line: "x"},
			wantErr: "name is required",
		},
		{
			name:    "no delimiters",
			style:   &types.Style{ID: "style.t", Name: "T"},
			wantErr: "either line or both open and close",
		},
		{
			name:    "open without close",
			style:   &types.Style{ID: "style.t", Name: "T", Open: "x"},
			wantErr: "either line or both open and close",
		},
		{
			name:    "line and block",
			style:   &types.Style{ID: "style.t", Name: "T", Line: "x", Open: "a", Close: "b"},
			wantErr: "cannot be combined",
		},
		{
			name:    "invalid regex",
			style:   &types.Style{ID: "style.t", Name: "T", Line: "(", Examples: []string{"("}},
			wantErr: "compiling pattern",
		},
		{
			name:    "example without block",
			style:   &types.Style{ID: "style.t", Name: "T", Line: `^%`, Examples: []string{"no comment"}},
			wantErr: "example 1 has no comment block",
		},
		{
			name:    "negative example with block",
			style:   &types.Style{ID: "style.t", Name: "T", Line: `^%`, NegativeExamples: []string{"a\n% b"}},
			wantErr: "negative example 1 has a comment block at line 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStyle(tt.style)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateGrammar(t *testing.T) {
	const pattern = `(?i)copyright\s+(?<owner>[a-z]+)\s+(?<start>\d\w*)`

	tests := []struct {
		name    string
		grammar *types.Grammar
		wantErr string
	}{
		{
			name:    "valid",
			grammar: &types.Grammar{ID: "g", Name: "G", Pattern: pattern, Examples: []string{"Copyright Acme 2019"}, NegativeExamples: []string{"Acme 2019"}},
		},
		{
			name:    "nil",
			wantErr: "nil",
		},
		{
			name:    "missing ID",
			grammar: &types.Grammar{Name: "G", Pattern: pattern},
			wantErr: "ID is required",
		},
		{
			name:    "missing name",
			grammar: &types.Grammar{ID: "g", Pattern: pattern},
			wantErr: "name is required",
		},
		{
			name:    "missing pattern",
			grammar: &types.Grammar{ID: "g", Name: "G"},
			wantErr: "pattern is required",
		},
		{
			name:    "missing owner group",
			grammar: &types.Grammar{ID: "g", Name: "G", Pattern: `(?<start>\d{4})`},
			wantErr: `required group "owner"`,
		},
		{
			name:    "missing start group",
			grammar: &types.Grammar{ID: "g", Name: "G", Pattern: `(?<owner>\w+)`},
			wantErr: `required group "start"`,
		},
		{
			name:    "example does not match",
			grammar: &types.Grammar{ID: "g", Name: "G", Pattern: pattern, Examples: []string{"nothing here"}},
			wantErr: "example 1: not found",
		},
		{
			name:    "example with malformed year",
			grammar: &types.Grammar{ID: "g", Name: "G", Pattern: pattern, Examples: []string{"Copyright Acme 19"}},
			wantErr: "malformed year",
		},
		{
			name:    "negative example matches",
			grammar: &types.Grammar{ID: "g", Name: "G", Pattern: pattern, NegativeExamples: []string{"copyright acme 2020"}},
			wantErr: `negative example 1 matches owner "acme"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGrammar(tt.grammar)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateSet_ReportsEveryProblem(t *testing.T) {
	set := &Set{
		Styles: []*types.Style{
			{ID: "style.a", Name: "A", Line: "^#"},
			{ID: "style.a", Name: "A again", Line: "^#"},
			{ID: "style.b"},
		},
		Grammars: []*types.Grammar{
			{ID: "g", Name: "G"},
		},
	}

	err := ValidateSet(set)
	errs := multierr.Errors(err)
	assert.Len(t, errs, 3)
	assert.ErrorContains(t, err, "duplicate rule ID: style.a")
	assert.ErrorContains(t, err, "style style.b: name is required")
	assert.ErrorContains(t, err, "grammar g: pattern is required")
}
