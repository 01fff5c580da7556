package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/praetorian-inc/yearbump/pkg/batch"
	"github.com/praetorian-inc/yearbump/pkg/enum"
	"github.com/praetorian-inc/yearbump/pkg/locate"
	"github.com/praetorian-inc/yearbump/pkg/notice"
	"github.com/praetorian-inc/yearbump/pkg/rewrite"
	"github.com/praetorian-inc/yearbump/pkg/rule"
	"github.com/praetorian-inc/yearbump/pkg/sarif"
	"github.com/praetorian-inc/yearbump/pkg/store"
	"github.com/praetorian-inc/yearbump/pkg/types"
	"github.com/spf13/cobra"
)

var (
	updateYear          int
	updateOwner         string
	updateStylesPath    string
	updateGrammarsPath  string
	updateRulesInclude  string
	updateRulesExclude  string
	updateCheck         bool
	updateDryRun        bool
	updateGit           bool
	updateGitYear       bool
	updateIncludeHidden bool
	updateMaxFileSize   int64
	updateMaxStart      int
	updateExclude       []string
	updateWorkers       int
	updateDatastore     string
	updateIncremental   bool
	updateFormat        string
	updateConfigPath    string
)

var updateCmd = &cobra.Command{
	Use:   "update [paths...]",
	Short: "Update copyright years",
	Long: `Update the copyright notice of every file under the given paths
(default: the current directory) to the current year.

Exit status is 0 when every file is fine, 1 when a notice is malformed or a
file cannot be read or written, and 2 in --check mode when a notice is
outdated.`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().IntVar(&updateYear, "year", 0, "Target year (default: current year)")
	updateCmd.Flags().StringVar(&updateOwner, "owner", "", "Only update notices whose owner matches this regex")
	updateCmd.Flags().StringVar(&updateStylesPath, "styles", "", "Path to custom comment style rules (file or directory)")
	updateCmd.Flags().StringVar(&updateGrammarsPath, "grammars", "", "Path to custom copyright grammar rules (file or directory)")
	updateCmd.Flags().StringVar(&updateRulesInclude, "rules-include", "", "Include rules matching regex pattern (comma-separated)")
	updateCmd.Flags().StringVar(&updateRulesExclude, "rules-exclude", "", "Exclude rules matching regex pattern (comma-separated)")
	updateCmd.Flags().BoolVar(&updateCheck, "check", false, "Report outdated notices without changing files")
	updateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "Compute updates without writing files")
	updateCmd.Flags().BoolVar(&updateGit, "git", false, "Treat directories as git repositories (tracked files only)")
	updateCmd.Flags().BoolVar(&updateGitYear, "git-year", false, "Use the year of the last commit touching each file (implies --git)")
	updateCmd.Flags().BoolVar(&updateIncludeHidden, "include-hidden", false, "Include hidden files and directories")
	updateCmd.Flags().Int64Var(&updateMaxFileSize, "max-file-size", 10*1024*1024, "Maximum file size to process (bytes)")
	updateCmd.Flags().IntVar(&updateMaxStart, "max-start", 0, "Only consider comment blocks starting within the first N lines (0 = anywhere)")
	updateCmd.Flags().StringSliceVar(&updateExclude, "exclude", nil, "Gitignore-style patterns of paths to skip")
	updateCmd.Flags().IntVar(&updateWorkers, "workers", 1, "Number of files processed in parallel")
	updateCmd.Flags().StringVar(&updateDatastore, "datastore", ":memory:", "Path to run history database")
	updateCmd.Flags().BoolVar(&updateIncremental, "incremental", false, "Skip files whose content was up to date in a previous run")
	updateCmd.Flags().StringVar(&updateFormat, "format", "human", "Output format: human, json, sarif")
	updateCmd.Flags().StringVar(&updateConfigPath, "config", "", "Path to project config (default: "+DefaultConfigFile+" if present)")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	configPath, explicit := updateConfigPath, updateConfigPath != ""
	if !explicit {
		configPath = DefaultConfigFile
	}
	config, err := loadProjectConfig(configPath, explicit)
	if err != nil {
		return err
	}
	config.apply(cmd.Flags())

	switch updateFormat {
	case "human", "json", "sarif":
	default:
		return fmt.Errorf("unknown output format: %s", updateFormat)
	}
	if len(args) == 0 {
		args = []string{"."}
	}

	set, err := loadRuleSet(updateStylesPath, updateGrammarsPath, updateRulesInclude, updateRulesExclude)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	processor, err := newProcessor(set)
	if err != nil {
		return err
	}

	s, err := store.New(store.Config{Path: updateDatastore})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer s.Close()

	runner, err := batch.NewRunner(batch.Config{
		Processor:     processor,
		Store:         s,
		Logger:        newLogger(cmd.ErrOrStderr()),
		Year:          updateYear,
		UseCommitYear: updateGitYear,
		Incremental:   updateIncremental,
	})
	if err != nil {
		return err
	}

	enumerator, err := createEnumerator(args, set.Styles, runner.ReadError)
	if err != nil {
		return fmt.Errorf("creating enumerator: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	summary, err := runner.Run(ctx, enumerator)
	if err != nil {
		return fmt.Errorf("updating: %w", err)
	}

	if err := outputSummary(cmd, summary, set); err != nil {
		return err
	}
	if code := summary.ExitCode(); code != batch.ExitOK {
		return &exitError{code: code}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// loadRuleSet returns the builtin rules, overridden by the rules found at
// stylesPath and grammarsPath, and filtered by rule ID.
func loadRuleSet(stylesPath, grammarsPath, include, exclude string) (*rule.Set, error) {
	loader := rule.NewLoader()

	set, err := loader.LoadBuiltin()
	if err != nil {
		return nil, err
	}

	if stylesPath != "" {
		custom, err := loader.LoadPath(stylesPath)
		if err != nil {
			return nil, fmt.Errorf("loading styles from %s: %w", stylesPath, err)
		}
		set.Merge(&rule.Set{Styles: custom.Styles})
	}
	if grammarsPath != "" {
		custom, err := loader.LoadPath(grammarsPath)
		if err != nil {
			return nil, fmt.Errorf("loading grammars from %s: %w", grammarsPath, err)
		}
		set.Merge(&rule.Set{Grammars: custom.Grammars})
	}

	// Apply filtering if patterns specified
	if include != "" || exclude != "" {
		set, err = rule.Filter(set, rule.FilterConfig{
			Include: rule.ParsePatterns(include),
			Exclude: rule.ParsePatterns(exclude),
		})
		if err != nil {
			return nil, fmt.Errorf("filtering rules: %w", err)
		}
	}

	if len(set.Styles) == 0 {
		return nil, fmt.Errorf("no comment styles selected")
	}
	if len(set.Grammars) == 0 {
		return nil, fmt.Errorf("no copyright grammars selected")
	}
	return set, nil
}

func newProcessor(set *rule.Set) (*batch.Processor, error) {
	var locOpts []locate.Option
	if updateMaxStart > 0 {
		locOpts = append(locOpts, locate.WithMaxStart(updateMaxStart))
	}
	locator, err := locate.New(set.Styles, locOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating locator: %w", err)
	}

	var parserOpts []notice.Option
	if updateOwner != "" {
		parserOpts = append(parserOpts, notice.WithOwner(updateOwner))
	}
	parser, err := notice.New(set.Grammars, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating parser: %w", err)
	}

	return batch.NewProcessor(locator, parser, rewrite.New(rewrite.WithDryRun(updateDryRun)), updateCheck)
}

// createEnumerator walks directory arguments and reads file arguments
// as given. Walks only yield files some style applies to.
func createEnumerator(targets []string, styles []*types.Style, onError func(string, error)) (enum.Enumerator, error) {
	filter := func(path string) bool {
		for _, s := range styles {
			if s.AppliesTo(path) {
				return true
			}
		}
		return false
	}

	var enumerators []enum.Enumerator
	var files []string
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("target does not exist: %s", target)
		}
		if !info.IsDir() {
			files = append(files, target)
			continue
		}

		config := enum.Config{
			Root:          target,
			IncludeHidden: updateIncludeHidden,
			MaxFileSize:   updateMaxFileSize,
			Exclude:       updateExclude,
			Filter:        filter,
			Workers:       updateWorkers,
			OnError:       onError,
			CommitYears:   updateGitYear,
		}
		if updateGit || updateGitYear {
			enumerators = append(enumerators, enum.NewGitEnumerator(config))
		} else {
			enumerators = append(enumerators, enum.NewFilesystemEnumerator(config))
		}
	}
	if len(files) > 0 {
		paths := enum.NewPathsEnumerator(enum.Config{Workers: updateWorkers, OnError: onError}, files...)
		enumerators = append([]enum.Enumerator{paths}, enumerators...)
	}

	if len(enumerators) == 1 {
		return enumerators[0], nil
	}
	return enum.NewCombinedEnumerator(enumerators...), nil
}

func outputSummary(cmd *cobra.Command, summary *batch.Summary, set *rule.Set) error {
	switch updateFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(summary.Results()); err != nil {
			return err
		}
		printTotals(cmd.ErrOrStderr(), summary)
		return nil
	case "sarif":
		report := sarif.NewReport(version)
		for _, g := range set.Grammars {
			report.AddGrammar(g)
		}
		for _, r := range summary.Results() {
			report.AddResult(r)
		}
		jsonBytes, err := report.ToJSON()
		if err != nil {
			return fmt.Errorf("serializing SARIF: %w", err)
		}
		if _, err := cmd.OutOrStdout().Write(append(jsonBytes, '\n')); err != nil {
			return fmt.Errorf("writing SARIF output: %w", err)
		}
		printTotals(cmd.ErrOrStderr(), summary)
		return nil
	default:
		out := cmd.OutOrStdout()
		if err := setColorMode(out, "auto"); err != nil {
			return err
		}
		printResults(out, summary, newStyles(!color.NoColor))
		printTotals(out, summary)
		return nil
	}
}

// printResults lists the files that changed or need attention.
func printResults(w io.Writer, summary *batch.Summary, s *styles) {
	for _, r := range summary.Results() {
		label, ok := statusLabels[r.Status]
		if !ok {
			continue
		}
		path := displayPath(r.Path)
		switch r.Status {
		case types.StatusRewritten, types.StatusOutdated:
			fmt.Fprintf(w, "%s %s:%d  %s %s %s\n",
				s.status(r.Status).Sprintf("%-9s", label),
				s.path.Sprint(path), r.Notice.Line+1,
				s.old.Sprint(yearText(r.Notice)), s.heading.Sprint("->"), s.new.Sprint(newYearText(r)))
		default:
			fmt.Fprintf(w, "%s %s  %v\n",
				s.status(r.Status).Sprintf("%-9s", label),
				s.path.Sprint(path), r.Err)
		}
	}
}

var statusLabels = map[types.Status]string{
	types.StatusRewritten:  "updated",
	types.StatusOutdated:   "outdated",
	types.StatusParseError: "malformed",
	types.StatusWriteError: "failed",
}

// printTotals writes the one-line summary of a run.
func printTotals(w io.Writer, summary *batch.Summary) {
	changed := summary.Count(types.StatusRewritten)
	verb := "updated"
	if summary.Check {
		changed = summary.Count(types.StatusOutdated)
		verb = "outdated"
	} else if updateDryRun {
		verb = "would be updated"
	}

	fmt.Fprintf(w, "%d files: %d %s, %d up to date, %d without notice",
		summary.Total()+summary.ReadErrors(), changed, verb,
		summary.Count(types.StatusUnchanged)+summary.Count(types.StatusSkipped),
		summary.Count(types.StatusNotFound))
	if failed := summary.Count(types.StatusParseError) + summary.Count(types.StatusWriteError) + summary.ReadErrors(); failed > 0 {
		fmt.Fprintf(w, ", %d failed", failed)
	}
	fmt.Fprintln(w)
}

func yearText(n *types.Notice) string {
	return n.Text[n.Years.Start:n.Years.End]
}

// newYearText is the year text of the decided line.
func newYearText(r *types.Result) string {
	tail := len(r.Notice.Text) - r.Notice.Years.End
	return r.Decision.NewLine[r.Notice.Years.Start : len(r.Decision.NewLine)-tail]
}

// displayPath shortens path relative to the working directory.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
