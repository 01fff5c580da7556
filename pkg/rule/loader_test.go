package rule

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Valid(t *testing.T) {
	loader := NewLoader()

	validYAML := `styles:
  - name: Percent line comment
    id: style.percent
    description: TeX comments
    extensions: [.tex, .sty]
    line: '^\s*%'
    examples:
      - "% Copyright 2020 Acme"
    negative_examples:
      - "\\documentclass{article}"
grammars:
  - name: Bare years
    id: copyright.bare
    pattern: |
      (?i)copyright\s+(?<start>\d{4})\s+(?<owner>.+)
    keywords: [Copyright]
    examples:
      - "Copyright 2020 Acme"
`

	set, err := loader.Load([]byte(validYAML))
	require.NoError(t, err)
	require.Len(t, set.Styles, 1)
	require.Len(t, set.Grammars, 1)

	s := set.Styles[0]
	assert.Equal(t, "style.percent", s.ID)
	assert.Equal(t, "Percent line comment", s.Name)
	assert.Equal(t, "TeX comments", s.Description)
	assert.Equal(t, []string{".tex", ".sty"}, s.Extensions)
	assert.Equal(t, `^\s*%`, s.Line)
	assert.False(t, s.IsBlock())
	assert.Len(t, s.Examples, 1)
	assert.Len(t, s.NegativeExamples, 1)

	g := set.Grammars[0]
	assert.Equal(t, "copyright.bare", g.ID)
	assert.Equal(t, `(?i)copyright\s+(?<start>\d{4})\s+(?<owner>.+)`, g.Pattern, "block scalar is trimmed")
	assert.Equal(t, []string{"Copyright"}, g.Keywords)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := NewLoader().Load([]byte(`this is not valid yaml: [[[`))
	assert.Error(t, err)
}

func TestLoad_NoRules(t *testing.T) {
	_, err := NewLoader().Load([]byte(`styles: []`))
	assert.ErrorContains(t, err, "no styles or grammars")
}

func TestLoadBuiltin(t *testing.T) {
	set, err := NewLoader().LoadBuiltin()
	require.NoError(t, err)

	var styleIDs, grammarIDs []string
	for _, s := range set.Styles {
		styleIDs = append(styleIDs, s.ID)
	}
	for _, g := range set.Grammars {
		grammarIDs = append(grammarIDs, g.ID)
	}

	for _, id := range []string{"style.c-block", "style.c-line", "style.hash", "style.xml", "style.dash", "style.semicolon", "style.rem"} {
		assert.Contains(t, styleIDs, id)
	}
	assert.Equal(t, []string{"copyright.owner-first", "copyright.year-first"}, grammarIDs)
}

func TestLoadBuiltin_AllValid(t *testing.T) {
	set, err := NewLoader().LoadBuiltin()
	require.NoError(t, err)
	require.NoError(t, ValidateSet(set))
}

func TestBuiltinFiles_EachParsesAndValidates(t *testing.T) {
	loader := NewLoader()
	paths, err := fs.Glob(builtinRulesFS, "*/*.yml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			data, err := fs.ReadFile(builtinRulesFS, path)
			require.NoError(t, err)

			set, err := loader.Load(data)
			require.NoError(t, err)
			assert.NoError(t, ValidateSet(set))
		})
	}
}

func TestLoadBuiltin_CustomFS(t *testing.T) {
	fsys := fstest.MapFS{
		"styles/one.yml": &fstest.MapFile{Data: []byte(`styles:
  - {id: style.a, name: A, line: '^#'}
`)},
		"styles/README.md": &fstest.MapFile{Data: []byte("ignored")},
		"grammars/two.yaml": &fstest.MapFile{Data: []byte(`grammars:
  - {id: g.a, name: A, pattern: '(?<owner>x)(?<start>\d+)'}
`)},
	}

	set, err := NewLoaderWithFS(fsys).LoadBuiltin()
	require.NoError(t, err)
	require.Len(t, set.Styles, 1)
	require.Len(t, set.Grammars, 1)
	assert.Equal(t, "style.a", set.Styles[0].ID)
	assert.Equal(t, "g.a", set.Grammars[0].ID)
}

func TestLoadBuiltin_BadFile(t *testing.T) {
	fsys := fstest.MapFS{
		"styles/bad.yml": &fstest.MapFile{Data: []byte(`styles: [[[`)},
		"grammars/ok.yml": &fstest.MapFile{Data: []byte(`grammars: [{id: g, name: g, pattern: x}]`)},
	}

	_, err := NewLoaderWithFS(fsys).LoadBuiltin()
	assert.ErrorContains(t, err, "styles/bad.yml")
}

func TestLoadPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), []byte(`styles:
  - {id: style.a, name: First, line: '^#'}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.yaml"), []byte(`styles:
  - {id: style.a, name: Replaced, line: '^;'}
  - {id: style.b, name: B, line: '^--'}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not yaml"), 0o644))

	loader := NewLoader()

	set, err := loader.LoadPath(dir)
	require.NoError(t, err)
	require.Len(t, set.Styles, 2)
	assert.Equal(t, "Replaced", set.Styles[0].Name)
	assert.Equal(t, "style.b", set.Styles[1].ID)

	set, err = loader.LoadPath(filepath.Join(dir, "a.yml"))
	require.NoError(t, err)
	require.Len(t, set.Styles, 1)
	assert.Equal(t, "First", set.Styles[0].Name)

	_, err = loader.LoadPath(filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := NewLoader().LoadFile(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorContains(t, err, "failed to read file")
}
