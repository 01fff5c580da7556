package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/praetorian-inc/yearbump/pkg/store"
	"github.com/praetorian-inc/yearbump/pkg/types"
	"github.com/spf13/cobra"
)

var (
	reportDatastore string
	reportRun       int64
	reportFormat    string
	reportColor     string
	reportAll       bool
)

// styles holds color formatters for human output
type styles struct {
	heading   *color.Color
	id        *color.Color
	path      *color.Color
	old       *color.Color
	new       *color.Color
	metadata  *color.Color
	rewritten *color.Color
	outdated  *color.Color
	failed    *color.Color
	quiet     *color.Color
}

// newStyles creates color formatters for report output
// enabled=false respects --no-color flag and NO_COLOR env var
func newStyles(enabled bool) *styles {
	s := &styles{
		heading:   color.New(color.Bold),
		id:        color.New(color.FgHiGreen),
		path:      color.New(color.Bold, color.FgHiWhite),
		old:       color.New(color.FgRed),
		new:       color.New(color.FgGreen),
		metadata:  color.New(color.FgHiBlue),
		rewritten: color.New(color.Bold, color.FgGreen),
		outdated:  color.New(color.Bold, color.FgYellow),
		failed:    color.New(color.Bold, color.FgRed),
		quiet:     color.New(color.Faint),
	}

	if !enabled {
		for _, c := range []*color.Color{
			s.heading, s.id, s.path, s.old, s.new, s.metadata,
			s.rewritten, s.outdated, s.failed, s.quiet,
		} {
			c.DisableColor()
		}
	}

	return s
}

// status returns the formatter for a result status.
func (s *styles) status(st types.Status) *color.Color {
	switch st {
	case types.StatusRewritten:
		return s.rewritten
	case types.StatusOutdated:
		return s.outdated
	case types.StatusParseError, types.StatusWriteError:
		return s.failed
	default:
		return s.quiet
	}
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the history of previous runs",
	Long:  "Read run history from a datastore written by 'update --datastore' and print the outcome of a run",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDatastore, "datastore", "yearbump.db", "Path to run history database")
	reportCmd.Flags().Int64Var(&reportRun, "run", 0, "Run ID to show (default: latest run)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "human", "Output format: human, json")
	reportCmd.Flags().StringVar(&reportColor, "color", "auto", "Color output: auto, always, never")
	reportCmd.Flags().BoolVar(&reportAll, "all", false, "Also list files that needed no change")
}

func runReport(cmd *cobra.Command, args []string) error {
	// Check if it's :memory: (invalid for report)
	if reportDatastore == ":memory:" {
		return fmt.Errorf("cannot report from in-memory store")
	}
	if _, err := os.Stat(reportDatastore); err != nil {
		return fmt.Errorf("datastore not found: %s", reportDatastore)
	}

	s, err := store.New(store.Config{Path: reportDatastore})
	if err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer s.Close()

	runs, err := s.GetRuns()
	if err != nil {
		return fmt.Errorf("retrieving runs: %w", err)
	}
	if len(runs) == 0 {
		return fmt.Errorf("datastore %s holds no runs", reportDatastore)
	}

	run := runs[len(runs)-1]
	if reportRun != 0 {
		run = nil
		for _, r := range runs {
			if r.ID == reportRun {
				run = r
				break
			}
		}
		if run == nil {
			return fmt.Errorf("run %d not found", reportRun)
		}
	}

	records, err := s.GetResults(run.ID)
	if err != nil {
		return fmt.Errorf("retrieving results: %w", err)
	}

	switch reportFormat {
	case "json":
		return outputReportJSON(cmd, run, records)
	case "human":
		if err := setColorMode(cmd.OutOrStdout(), reportColor); err != nil {
			return err
		}
		outputReportHuman(cmd.OutOrStdout(), run, records, newStyles(!color.NoColor))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", reportFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func outputReportJSON(cmd *cobra.Command, run *store.Run, records []*store.Record) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		Run     *store.Run      `json:"run"`
		Results []*store.Record `json:"results"`
	}{run, records})
}

func outputReportHuman(out io.Writer, run *store.Run, records []*store.Record, s *styles) {
	year := "per-file commit year"
	if run.Year != 0 {
		year = fmt.Sprint(run.Year)
	}
	fmt.Fprintf(out, "%s (%s %s)\n",
		s.heading.Sprintf("Run %d", run.ID),
		s.heading.Sprint("mode"),
		s.id.Sprint(run.Mode))
	fmt.Fprintf(out, "%s %s\n", s.heading.Sprint("Started:"), s.metadata.Sprint(run.StartedAt.Format("2006-01-02 15:04:05")))
	fmt.Fprintf(out, "%s %s\n\n", s.heading.Sprint("Year:"), s.metadata.Sprint(year))

	counts := make(map[types.Status]int)
	for _, r := range records {
		counts[r.Status]++
		if !reportAll && !needsAttention(r.Status) {
			continue
		}

		fmt.Fprintf(out, "%s %s", s.status(r.Status).Sprintf("%-11s", r.Status), s.path.Sprint(r.Path))
		if r.Line > 0 {
			fmt.Fprintf(out, ":%d", r.Line)
		}
		fmt.Fprintln(out)

		switch {
		case r.NewLine != "":
			fmt.Fprintf(out, "    %s\n    %s\n", s.old.Sprint("- "+strings.TrimSpace(r.OldLine)), s.new.Sprint("+ "+strings.TrimSpace(r.NewLine)))
		case r.Error != "":
			fmt.Fprintf(out, "    %s\n", r.Error)
		}
	}

	fmt.Fprintf(out, "\n%s", s.heading.Sprintf("%d files:", len(records)))
	for _, st := range []types.Status{
		types.StatusRewritten,
		types.StatusOutdated,
		types.StatusUnchanged,
		types.StatusSkipped,
		types.StatusNotFound,
		types.StatusParseError,
		types.StatusWriteError,
	} {
		if counts[st] > 0 {
			fmt.Fprintf(out, " %s=%d", st, counts[st])
		}
	}
	fmt.Fprintln(out)
}

func needsAttention(st types.Status) bool {
	switch st {
	case types.StatusRewritten, types.StatusOutdated, types.StatusParseError, types.StatusWriteError:
		return true
	}
	return false
}
