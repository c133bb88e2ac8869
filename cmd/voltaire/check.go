package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"voltaire/internal/diagfmt"
	"voltaire/internal/driver"
	"voltaire/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [text...]",
	Short: "Check a piece of text and print it with corrections",
	Long: `Check text given as arguments, read from --file, or piped on stdin.
The output marks every issue and shows the corrected text:

  Bonjour [-emmanuel-] -> Bonjour {+Emanuel+}`,
	RunE: runCheck,
}

func init() {
	addCheckFlags(checkCmd)
	checkCmd.Flags().StringP("file", "f", "", "read text from file instead of arguments")
}

func runCheck(cmd *cobra.Command, args []string) error {
	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}
	filePath, err := cmd.Flags().GetString("file")
	if err != nil {
		return fmt.Errorf("failed to get file flag: %w", err)
	}

	in, err := readCheckInput(cmd, args, filePath)
	if err != nil {
		return err
	}

	env, err := newCheckEnv(cmd, flags)
	if err != nil {
		return err
	}
	res, err := env.checker.Check(cmd.Context(), in)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		warnf(cmd, "%s", w)
	}

	out := cmd.OutOrStdout()
	if flags.format == "json" {
		err = diagfmt.JSON(out, checkJSON(res))
	} else {
		err = res.Overlay.Write(out)
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if env.timer != nil {
		printTimings(cmd.ErrOrStderr(), env.timer)
	}
	if flags.failOnIssues && res.HasIssues() {
		return &exitError{code: 2}
	}
	return nil
}

// readCheckInput picks the text source: arguments, --file, or stdin.
func readCheckInput(cmd *cobra.Command, args []string, filePath string) (*source.Input, error) {
	switch {
	case len(args) > 0 && filePath != "":
		return nil, errors.New("pass text as arguments or with --file, not both")
	case len(args) > 0:
		return source.FromString("<args>", strings.Join(args, " ")), nil
	case filePath == "-":
		return source.Read("<stdin>", cmd.InOrStdin())
	case filePath != "":
		in, err := source.Load(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load file: %w", err)
		}
		return in, nil
	}

	stdin := cmd.InOrStdin()
	if f, ok := stdin.(*os.File); ok && isTerminal(f) {
		return nil, errors.New("no text to check: pass it as arguments, with --file, or on stdin")
	}
	return source.Read("<stdin>", stdin)
}

func checkJSON(res *driver.Result) diagfmt.CheckJSON {
	return diagfmt.BuildCheckOutput(res.Path, res.Input.Buffer, res.Annotations, diagfmt.JSONOpts{
		IncludePositions: true,
		IncludeOriginal:  true,
	})
}
