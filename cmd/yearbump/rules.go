package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/praetorian-inc/yearbump/pkg/rule"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var (
	rulesStylesPath   string
	rulesGrammarsPath string
	outputFormat      string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage comment styles and copyright grammars",
	Long:  "Commands for listing and validating the rules that find comment blocks and parse copyright lines",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available rules",
	Long:  "Display all comment styles and copyright grammars with their IDs and names",
	RunE:  runRulesList,
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Validate rule files",
	Long: `Validate rule files or directories: required fields, patterns and named
groups, and every example and negative example. Without paths the builtin
rules are checked.`,
	RunE: runRulesCheck,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesCheckCmd)
	rulesListCmd.Flags().StringVar(&rulesStylesPath, "styles", "", "Path to custom comment style rules (file or directory)")
	rulesListCmd.Flags().StringVar(&rulesGrammarsPath, "grammars", "", "Path to custom copyright grammar rules (file or directory)")
	rulesListCmd.Flags().StringVar(&outputFormat, "format", "table", "Output format: table, json")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	set, err := loadRuleSet(rulesStylesPath, rulesGrammarsPath, "", "")
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	// Output based on format
	switch outputFormat {
	case "json":
		return outputRulesJSON(cmd, set)
	case "table":
		return outputRulesTable(cmd, set)
	default:
		return fmt.Errorf("unknown output format: %s", outputFormat)
	}
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	loader := rule.NewLoader()

	if len(args) == 0 {
		set, err := loader.LoadBuiltin()
		if err != nil {
			return fmt.Errorf("loading builtin rules: %w", err)
		}
		if err := rule.ValidateSet(set); err != nil {
			return err
		}
		fmt.Fprintf(out, "builtin: %d styles, %d grammars ok\n", len(set.Styles), len(set.Grammars))
		return nil
	}

	failed := 0
	for _, path := range args {
		set, err := loader.LoadPath(path)
		if err == nil {
			err = rule.ValidateSet(set)
		}
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s: FAIL\n", path)
			for _, e := range multierr.Errors(err) {
				fmt.Fprintf(out, "    %v\n", e)
			}
			continue
		}
		fmt.Fprintf(out, "%s: %d styles, %d grammars ok\n", path, len(set.Styles), len(set.Grammars))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d rule paths invalid", failed, len(args))
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func outputRulesJSON(cmd *cobra.Command, set *rule.Set) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(set)
}

func outputRulesTable(cmd *cobra.Command, set *rule.Set) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "ID\tName\tApplies to\n")
	fmt.Fprintf(w, "--\t----\t----------\n")

	for _, s := range set.Styles {
		applies := "any file"
		if len(s.Extensions) > 0 {
			applies = strings.Join(s.Extensions[:min(len(s.Extensions), 4)], " ")
			if len(s.Extensions) > 4 {
				applies += fmt.Sprintf(" (+%d)", len(s.Extensions)-4)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Name, applies)
	}
	for _, g := range set.Grammars {
		fmt.Fprintf(w, "%s\t%s\t%s\n", g.ID, g.Name, "copyright lines")
	}

	return nil
}
