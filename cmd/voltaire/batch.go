package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"voltaire/internal/diagfmt"
	"voltaire/internal/driver"
	"voltaire/internal/source"
)

var batchCmd = &cobra.Command{
	Use:   "batch [flags] <file|directory>...",
	Short: "Check every .txt and .md file in parallel",
	Long:  `Check files, or all *.txt and *.md files within directories, printing results in path order`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

func init() {
	addCheckFlags(batchCmd)
	batchCmd.Flags().Int("jobs", 0, "max parallel checks (0=auto)")
	batchCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

// batchSummary counts outcomes across files.
type batchSummary struct {
	files  int
	issues int
	failed int
}

func runBatch(cmd *cobra.Command, args []string) error {
	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode("ui", uiValue)
	if err != nil {
		return err
	}

	files, err := driver.CollectFiles(args)
	if err != nil {
		return err
	}
	env, err := newCheckEnv(cmd, flags)
	if err != nil {
		return err
	}

	var results []driver.FileResult
	if flags.format == "pretty" && !isQuiet(cmd) && shouldUseTUI(mode) {
		results, err = runBatchWithUI(cmd.Context(), fmt.Sprintf("checking %d files", len(files)), files, env.checker, jobs)
	} else {
		results, err = env.checker.CheckFiles(cmd.Context(), files, jobs, nil)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var summary batchSummary
	if flags.format == "json" {
		summary, err = writeBatchJSON(cmd, out, results)
	} else {
		summary, err = writeBatchPretty(cmd, out, results)
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if !isQuiet(cmd) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d files checked, %d issues, %d failed\n", summary.files, summary.issues, summary.failed)
	}
	if env.timer != nil {
		printTimings(cmd.ErrOrStderr(), env.timer)
	}

	switch {
	case summary.failed > 0:
		return fmt.Errorf("%d of %d files could not be checked", summary.failed, summary.files)
	case flags.failOnIssues && summary.issues > 0:
		return &exitError{code: 2}
	}
	return nil
}

func writeBatchPretty(cmd *cobra.Command, out io.Writer, results []driver.FileResult) (batchSummary, error) {
	header := color.New(color.Bold)
	failure := color.New(color.FgRed)
	cwd, _ := os.Getwd()

	summary := batchSummary{files: len(results)}
	for i, r := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(out); err != nil {
				return summary, err
			}
		}
		if _, err := header.Fprintln(out, displayPath(r.Path, cwd)); err != nil {
			return summary, err
		}
		if r.Err != nil {
			summary.failed++
			if _, err := failure.Fprintf(out, "error: %v\n", r.Err); err != nil {
				return summary, err
			}
			continue
		}
		for _, w := range r.Result.Warnings {
			warnf(cmd, "%s: %s", r.Path, w)
		}
		summary.issues += len(r.Result.Annotations)
		if err := r.Result.Overlay.Write(out); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func writeBatchJSON(cmd *cobra.Command, out io.Writer, results []driver.FileResult) (batchSummary, error) {
	summary := batchSummary{files: len(results)}
	payload := make([]diagfmt.CheckJSON, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			summary.failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, r.Err)
			continue
		}
		summary.issues += len(r.Result.Annotations)
		payload = append(payload, checkJSON(r.Result))
	}
	return summary, diagfmt.JSON(out, payload...)
}

func displayPath(path, cwd string) string {
	if cwd == "" {
		return path
	}
	rel, err := source.RelativePath(path, cwd)
	if err != nil {
		return path
	}
	return rel
}
