package rule

import (
	"errors"
	"fmt"

	"github.com/praetorian-inc/yearbump/pkg/locate"
	"github.com/praetorian-inc/yearbump/pkg/notice"
	"github.com/praetorian-inc/yearbump/pkg/types"
	"go.uber.org/multierr"
)

// ValidateStyle checks required fields, compiles the patterns and runs the
// style's examples through the block locator. Every example must yield a
// block and no negative example may.
func ValidateStyle(s *types.Style) error {
	if s == nil {
		return fmt.Errorf("style is nil")
	}
	if s.ID == "" {
		return fmt.Errorf("style ID is required")
	}
	if s.Name == "" {
		return fmt.Errorf("style %s: name is required", s.ID)
	}
	switch {
	case s.Line != "" && (s.Open != "" || s.Close != ""):
		return fmt.Errorf("style %s: line cannot be combined with open/close", s.ID)
	case s.Line == "" && (s.Open == "" || s.Close == ""):
		return fmt.Errorf("style %s: either line or both open and close are required", s.ID)
	}
	if _, err := locate.New([]*types.Style{s}); err != nil {
		return err
	}

	for i, ex := range s.Examples {
		_, err := locate.Find(s, types.NewSourceFile("", []byte(ex)).Lines())
		if errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("style %s: example %d has no comment block", s.ID, i+1)
		}
		if err != nil {
			return fmt.Errorf("style %s: %w", s.ID, err)
		}
	}
	for i, ex := range s.NegativeExamples {
		b, err := locate.Find(s, types.NewSourceFile("", []byte(ex)).Lines())
		if err == nil {
			return fmt.Errorf("style %s: negative example %d has a comment block at line %d", s.ID, i+1, b.Start+1)
		}
		if !errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("style %s: %w", s.ID, err)
		}
	}
	return nil
}

// ValidateGrammar checks required fields, compiles the pattern, requires the
// owner and start groups and runs the grammar's examples through the notice
// parser. Every example must parse cleanly and no negative example may match.
func ValidateGrammar(g *types.Grammar) error {
	if g == nil {
		return fmt.Errorf("grammar is nil")
	}
	if g.ID == "" {
		return fmt.Errorf("grammar ID is required")
	}
	if g.Name == "" {
		return fmt.Errorf("grammar %s: name is required", g.ID)
	}
	if g.Pattern == "" {
		return fmt.Errorf("grammar %s: pattern is required", g.ID)
	}

	p, err := notice.New([]*types.Grammar{g})
	if err != nil {
		return err
	}

	for i, ex := range g.Examples {
		if _, err := p.ParseLine(ex); err != nil {
			return fmt.Errorf("grammar %s: example %d: %w", g.ID, i+1, err)
		}
	}
	for i, ex := range g.NegativeExamples {
		n, err := p.ParseLine(ex)
		if errors.Is(err, types.ErrNotFound) {
			continue
		}
		if err != nil {
			var pe *types.ParseError
			if errors.As(err, &pe) {
				return fmt.Errorf("grammar %s: negative example %d matches: %w", g.ID, i+1, err)
			}
			return fmt.Errorf("grammar %s: %w", g.ID, err)
		}
		return fmt.Errorf("grammar %s: negative example %d matches owner %q", g.ID, i+1, n.Owner)
	}
	return nil
}

// ValidateSet validates every rule of set and rejects duplicate IDs.
// All problems are reported, not just the first.
func ValidateSet(set *Set) error {
	var errs error
	seen := make(map[string]bool)
	dup := func(id string) {
		if seen[id] {
			errs = multierr.Append(errs, fmt.Errorf("duplicate rule ID: %s", id))
		}
		seen[id] = true
	}

	for _, s := range set.Styles {
		dup(s.ID)
		if err := ValidateStyle(s); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	for _, g := range set.Grammars {
		dup(g.ID)
		if err := ValidateGrammar(g); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
