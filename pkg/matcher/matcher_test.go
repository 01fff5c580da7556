package matcher

import (
	"testing"

	"github.com/praetorian-inc/yearbump/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_FallsBackToPerlSyntax(t *testing.T) {
	// Lookahead is not RE2 syntax.
	p, err := Compile(`^\s*#(?!!)`)
	require.NoError(t, err)

	ok, err := p.MatchString("# comment")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.MatchString("#!/bin/sh")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(`(unclosed`)
	assert.Error(t, err)

	assert.Panics(t, func() { MustCompile(`(unclosed`) })
}

func TestPattern_GroupNames(t *testing.T) {
	p := MustCompile(`(?<owner>\w+) (?<start>\d{4})(?:-(?<end>\d{4}))?`)

	assert.ElementsMatch(t, []string{"owner", "start", "end"}, p.GroupNames())
	assert.True(t, p.HasGroup("end"))
	assert.False(t, p.HasGroup("sep"))
}

func TestPattern_FindByteSpans(t *testing.T) {
	p := MustCompile(`(?<start>\d{4})(?:-(?<end>\d{4}))?`)

	// The copyright sign is two bytes, so rune and byte offsets differ.
	line := "// © Acme 2019-2022"
	m, err := p.Find(line)
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, "2019-2022", m.Text)
	assert.Equal(t, "2019-2022", line[m.Span.Start:m.Span.End])

	start, ok := m.Group("start")
	require.True(t, ok)
	assert.Equal(t, "2019", line[start.Span.Start:start.Span.End])

	end, ok := m.Group("end")
	require.True(t, ok)
	assert.Equal(t, types.Span{Start: len(line) - 4, End: len(line)}, end.Span)
}

func TestPattern_OptionalGroupAbsent(t *testing.T) {
	p := MustCompile(`(?<start>\d{4})(?:-(?<end>\d{4}))?`)

	m, err := p.Find("since 2019")
	require.NoError(t, err)
	require.NotNil(t, m)

	_, ok := m.Group("end")
	assert.False(t, ok)
}

func TestPattern_FindFrom(t *testing.T) {
	p := MustCompile(`\*/`)
	line := "/* a */ b */"

	m, err := p.FindFrom(line, 3)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 5, m.Span.Start)

	m, err = p.FindFrom(line, 7)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 10, m.Span.Start)

	m, err = p.FindFrom(line, len(line)+1)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestPattern_NoMatch(t *testing.T) {
	m, err := MustCompile(`copyright`).Find("package main")
	require.NoError(t, err)
	assert.Nil(t, m)
}
