package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"voltaire/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "voltaire",
	Short: "Grammar checker that overlays corrections on your text",
	Long: `voltaire sends text to a LanguageTool server and prints it back with every
issue marked and corrected in place. House rules are applied on top of the
provider's suggestions.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupRun,
}

// exitError carries a process status for outcomes that were already reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// cleanups run after the command finishes, even when it fails.
var cleanups []func()

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.String("config", "", "path to voltaire.toml (default: nearest one above the working directory)")
	pf.Int("max-suggestions", 0, "maximum suggestions per issue (0 = config value)")

	pf.String("trace", "", "write trace events to file ('-' for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.String("trace-format", "auto", "trace output format (auto|text|ndjson|chrome)")
	pf.Int("trace-ring-size", 4096, "events kept in memory for ring mode")
	pf.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 = off)")

	pf.String("cpu-profile", "", "write CPU profile to file")
	pf.String("mem-profile", "", "write heap profile to file")
	pf.String("runtime-trace", "", "write Go runtime trace to file")
}

// main executes the root command. Errors exit with status 1;
// --fail-on-issues uses status 2.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		dumpTraceRing(os.Stderr)
	}
	runCleanups()
	stop()

	if err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		os.Exit(1)
	}
}

func setupRun(cmd *cobra.Command, _ []string) error {
	if err := applyColorMode(cmd); err != nil {
		return err
	}
	cleanupTrace, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, cleanupTrace)

	cleanupProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, cleanupProf)
	return nil
}

func runCleanups() {
	// в обратном порядке, как defer
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
