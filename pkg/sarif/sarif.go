// Package sarif renders check results as SARIF 2.1.0 so CI systems can
// annotate outdated and malformed copyright notices.
package sarif

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/praetorian-inc/yearbump/pkg/types"
	"github.com/praetorian-inc/yearbump/pkg/update"
)

// SARIF 2.1.0 constants
const (
	SchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	Version   = "2.1.0"
	ToolName  = "yearbump"
)

// Rule IDs for results that are not tied to a grammar.
const (
	RuleParseError = "yearbump.parse-error"
	RuleWriteError = "yearbump.write-error"
)

// Result levels.
const (
	LevelWarning = "warning"
	LevelError   = "error"
)

// Report is the top-level SARIF report structure
type Report struct {
	Schema  string `json:"$schema"`
	Version string `json:"version"`
	Runs    []Run  `json:"runs"`
}

// Run represents a single invocation of the tool
type Run struct {
	Tool    Tool     `json:"tool"`
	Results []Result `json:"results"`
}

// Tool describes the analysis tool
type Tool struct {
	Driver Driver `json:"driver"`
}

// Driver contains tool metadata
type Driver struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Rules   []Rule `json:"rules,omitempty"`
}

// Rule represents a copyright grammar or an error class.
type Rule struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	ShortDescription ShortDescription `json:"shortDescription"`
}

// ShortDescription contains rule description text
type ShortDescription struct {
	Text string `json:"text"`
}

// Result represents a single file that needs attention.
type Result struct {
	RuleID    string     `json:"ruleId"`
	Level     string     `json:"level"`
	Message   Message    `json:"message"`
	Locations []Location `json:"locations"`
}

// Message contains the result message
type Message struct {
	Text string `json:"text"`
}

// Location describes where a result was found
type Location struct {
	PhysicalLocation PhysicalLocation `json:"physicalLocation"`
}

// PhysicalLocation specifies file location
type PhysicalLocation struct {
	ArtifactLocation ArtifactLocation `json:"artifactLocation"`
	Region           *Region          `json:"region,omitempty"`
}

// ArtifactLocation identifies the file
type ArtifactLocation struct {
	URI string `json:"uri"`
}

// Region specifies the line/column range
type Region struct {
	StartLine   int      `json:"startLine"`
	StartColumn int      `json:"startColumn,omitempty"`
	EndLine     int      `json:"endLine,omitempty"`
	EndColumn   int      `json:"endColumn,omitempty"`
	Snippet     *Snippet `json:"snippet,omitempty"`
}

// Snippet contains the notice line
type Snippet struct {
	Text string `json:"text"`
}

// NewReport creates a new SARIF report for the given tool version.
func NewReport(toolVersion string) *Report {
	return &Report{
		Schema:  SchemaURI,
		Version: Version,
		Runs: []Run{
			{
				Tool: Tool{
					Driver: Driver{
						Name:    ToolName,
						Version: toolVersion,
						Rules: []Rule{
							{
								ID:               RuleParseError,
								Name:             "Malformed copyright notice",
								ShortDescription: ShortDescription{Text: "A copyright notice has a malformed year or a backward range"},
							},
							{
								ID:               RuleWriteError,
								Name:             "Unwritable file",
								ShortDescription: ShortDescription{Text: "An outdated notice could not be saved"},
							},
						},
					},
				},
				Results: []Result{},
			},
		},
	}
}

// AddGrammar adds a copyright grammar as a rule. Outdated notices are
// reported against the grammar that parsed them.
func (r *Report) AddGrammar(g *types.Grammar) {
	r.Runs[0].Tool.Driver.Rules = append(r.Runs[0].Tool.Driver.Rules, Rule{
		ID:   g.ID,
		Name: g.Name,
		ShortDescription: ShortDescription{
			Text: g.Description,
		},
	})
}

// AddResult adds res to the report when it needs attention: outdated
// notices as warnings, parse and write errors as errors. It reports whether
// the result was added.
func (r *Report) AddResult(res *types.Result) bool {
	var out Result
	switch res.Status {
	case types.StatusOutdated:
		n := res.Notice
		next, _ := update.Extend(n, res.Year)
		out = Result{
			RuleID: n.GrammarID,
			Level:  LevelWarning,
			Message: Message{
				Text: fmt.Sprintf("copyright years %q should be %q", n.Text[n.Years.Start:n.Years.End], next.YearText()),
			},
		}
		out.Locations = location(res.Path, noticeRegion(n))
	case types.StatusParseError:
		out = Result{
			RuleID:  RuleParseError,
			Level:   LevelError,
			Message: Message{Text: errorText(res)},
		}
		var region *Region
		var pe *types.ParseError
		if errors.As(res.Err, &pe) && pe.Text != "" {
			region = &Region{StartLine: pe.Line + 1, Snippet: &Snippet{Text: pe.Text}}
		}
		out.Locations = location(res.Path, region)
	case types.StatusWriteError:
		out = Result{
			RuleID:  RuleWriteError,
			Level:   LevelError,
			Message: Message{Text: errorText(res)},
		}
		var region *Region
		if res.Notice != nil {
			region = noticeRegion(res.Notice)
		}
		out.Locations = location(res.Path, region)
	default:
		return false
	}

	r.Runs[0].Results = append(r.Runs[0].Results, out)
	return true
}

// ToJSON serializes the report to JSON bytes
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func location(path string, region *Region) []Location {
	return []Location{
		{
			PhysicalLocation: PhysicalLocation{
				ArtifactLocation: ArtifactLocation{URI: formatFileURI(path)},
				Region:           region,
			},
		},
	}
}

// noticeRegion covers the year text of n. Columns count characters and
// start at 1.
func noticeRegion(n *types.Notice) *Region {
	line := n.Line + 1
	return &Region{
		StartLine:   line,
		StartColumn: utf8.RuneCountInString(n.Text[:n.Years.Start]) + 1,
		EndLine:     line,
		EndColumn:   utf8.RuneCountInString(n.Text[:n.Years.End]) + 1,
		Snippet:     &Snippet{Text: n.Text},
	}
}

func errorText(res *types.Result) string {
	if res.Err == nil {
		return res.Status.String()
	}
	return res.Err.Error()
}

// formatFileURI converts a file path to SARIF URI format
// Absolute paths get file:// prefix, relative paths stay as-is
func formatFileURI(path string) string {
	if filepath.IsAbs(path) {
		// Normalize path separators for URI format
		path = filepath.ToSlash(path)
		// Ensure path starts with /
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		return "file://" + path
	}
	// Relative paths stay as-is
	return filepath.ToSlash(path)
}
