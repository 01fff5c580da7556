// Package rule loads the named pattern rules that drive the scanner:
// comment styles for the block locator and copyright grammars for the
// notice parser.
package rule

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/praetorian-inc/yearbump/pkg/types"
	"gopkg.in/yaml.v3"
)

// Set is a collection of styles and grammars.
type Set struct {
	Styles   []*types.Style
	Grammars []*types.Grammar
}

// Merge adds the rules of other to s. A rule whose ID is already present
// replaces the existing one in place.
func (s *Set) Merge(other *Set) {
	if other == nil {
		return
	}
	s.Styles = mergeByID(s.Styles, other.Styles, func(st *types.Style) string { return st.ID })
	s.Grammars = mergeByID(s.Grammars, other.Grammars, func(g *types.Grammar) string { return g.ID })
}

func mergeByID[T any](dst, src []T, id func(T) string) []T {
	index := make(map[string]int, len(dst))
	for i, item := range dst {
		index[id(item)] = i
	}
	for _, item := range src {
		if i, ok := index[id(item)]; ok {
			dst[i] = item
			continue
		}
		index[id(item)] = len(dst)
		dst = append(dst, item)
	}
	return dst
}

// Loader handles loading rules from YAML files.
type Loader struct {
	fs fs.FS // embedded filesystem for built-in rules
}

// NewLoader creates a loader with built-in rules from embedded filesystem.
func NewLoader() *Loader {
	return &Loader{
		fs: builtinRulesFS,
	}
}

// NewLoaderWithFS creates a loader with a custom filesystem.
func NewLoaderWithFS(fsys fs.FS) *Loader {
	return &Loader{
		fs: fsys,
	}
}

// Load parses styles and grammars from YAML bytes.
// Returns error if YAML is invalid or holds no rules.
func (l *Loader) Load(data []byte) (*Set, error) {
	var yamlFile yamlRulesFile
	if err := yaml.Unmarshal(data, &yamlFile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(yamlFile.Styles) == 0 && len(yamlFile.Grammars) == 0 {
		return nil, fmt.Errorf("no styles or grammars found in YAML")
	}

	set := &Set{}
	for _, ys := range yamlFile.Styles {
		set.Styles = append(set.Styles, convertYAMLStyle(ys))
	}
	for _, yg := range yamlFile.Grammars {
		set.Grammars = append(set.Grammars, convertYAMLGrammar(yg))
	}
	return set, nil
}

// LoadFile loads rules from a YAML file path.
func (l *Loader) LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	set, err := l.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// LoadPath loads rules from a file or from every .yml and .yaml file of a
// directory tree, in lexical order.
func (l *Loader) LoadPath(path string) (*Set, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return l.LoadFile(path)
	}

	set := &Set{}
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(p) {
			return nil
		}
		s, err := l.LoadFile(p)
		if err != nil {
			return err
		}
		set.Merge(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// LoadBuiltin loads all built-in rules from the loader's filesystem:
// styles/*.yml then grammars/*.yml.
func (l *Loader) LoadBuiltin() (*Set, error) {
	set := &Set{}
	for _, dir := range []string{"styles", "grammars"} {
		err := fs.WalkDir(l.fs, dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isYAML(p) {
				return nil
			}

			data, err := fs.ReadFile(l.fs, p)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", p, err)
			}
			s, err := l.Load(data)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", p, err)
			}
			set.Merge(s)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return set, nil
}

func isYAML(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return ext == ".yml" || ext == ".yaml"
}

// convertYAMLStyle converts yamlStyle to types.Style.
func convertYAMLStyle(ys yamlStyle) *types.Style {
	return &types.Style{
		ID:               ys.ID,
		Name:             ys.Name,
		Description:      strings.TrimSpace(ys.Description),
		Extensions:       ys.Extensions,
		Open:             ys.Open,
		Close:            ys.Close,
		Line:             ys.Line,
		Examples:         ys.Examples,
		NegativeExamples: ys.NegativeExamples,
	}
}

// convertYAMLGrammar converts yamlGrammar to types.Grammar.
func convertYAMLGrammar(yg yamlGrammar) *types.Grammar {
	return &types.Grammar{
		ID:               yg.ID,
		Name:             yg.Name,
		Description:      strings.TrimSpace(yg.Description),
		Pattern:          strings.TrimSpace(yg.Pattern),
		Keywords:         yg.Keywords,
		Examples:         yg.Examples,
		NegativeExamples: yg.NegativeExamples,
	}
}
