package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	verbose bool
	quiet   bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "yearbump",
	Short: "Yearbump - keep copyright years current",
	Long: `Yearbump finds the copyright notice in the first comment block of each file
and extends its years to the current year, rewriting only the year text.

Files without a notice are left alone. Malformed notices and files that
cannot be written are reported without stopping the run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	// Add subcommands
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// exitError carries a process exit status without a message. The summary
// has already been printed when it is returned.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// logLevel maps --verbose and --quiet to a level.
func logLevel() slog.Level {
	switch {
	case quiet:
		return slog.LevelError
	case verbose:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}

// newLogger creates the logger handed to every component.
func newLogger(w io.Writer) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      logLevel(),
		TimeFormat: time.TimeOnly,
		NoColor:    !colorEnabled(w),
	}))
}

// colorEnabled reports whether w is a terminal and color was not turned
// off with --no-color or NO_COLOR.
func colorEnabled(w io.Writer) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// setColorMode configures fatih/color for output written to w.
// mode is one of auto, always or never.
func setColorMode(w io.Writer, mode string) error {
	switch mode {
	case "always":
		color.NoColor = noColor
	case "never":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !colorEnabled(w)
	default:
		return fmt.Errorf("unknown color mode: %s", mode)
	}
	return nil
}
