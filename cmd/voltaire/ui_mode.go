package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"voltaire/internal/diagfmt"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(flag, value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// shouldColor follows --color; auto also honours NO_COLOR.
func shouldColor(mode uiMode, f *os.File) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return os.Getenv("NO_COLOR") == "" && isTerminal(f)
	}
}

// applyColorMode resolves --color once for the whole process.
func applyColorMode(cmd *cobra.Command) error {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	mode, err := readUIMode("color", value)
	if err != nil {
		return err
	}
	color.NoColor = !shouldColor(mode, os.Stdout)
	return nil
}

// outputFormatter picks ANSI styling when color is on, bracket markers otherwise.
func outputFormatter() diagfmt.Formatter {
	if color.NoColor {
		return diagfmt.PlainFormatter{}
	}
	return diagfmt.NewANSIFormatter()
}
