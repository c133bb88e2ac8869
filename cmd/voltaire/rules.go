package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"voltaire/internal/fix"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the house rules in effect",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type ruleJSON struct {
	ID          string `json:"id"`
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	Explanation string `json:"explanation,omitempty"`
	Guard       bool   `json:"guard"`
}

func runRules(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rules, err := cfg.RuleSet()
	if err != nil {
		return err
	}

	origin := cfg.Path
	if origin == "" || len(cfg.Rules) == 0 {
		origin = "built-in"
	}
	if cfg.HouseRules != nil && !*cfg.HouseRules {
		origin = "disabled in " + cfg.Path
	}

	switch strings.ToLower(format) {
	case "json":
		return renderRulesJSON(cmd.OutOrStdout(), rules)
	case "pretty":
		return renderRulesPretty(cmd.OutOrStdout(), origin, rules)
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

func renderRulesPretty(out io.Writer, origin string, rules fix.RuleSet) error {
	if _, err := fmt.Fprintf(out, "house rules (%s)\n", origin); err != nil {
		return err
	}
	if len(rules) == 0 {
		_, err := fmt.Fprintln(out, "  none")
		return err
	}
	width := 0
	for _, r := range rules {
		width = max(width, runewidth.StringWidth(r.Pattern))
	}
	for _, r := range rules {
		pad := strings.Repeat(" ", width-runewidth.StringWidth(r.Pattern))
		line := fmt.Sprintf("  %s%s -> %s", r.Pattern, pad, r.Replacement)
		if r.Explanation != "" {
			line += ": " + r.Explanation
		}
		line += "  [" + r.ID
		if !r.Guard {
			line += ", no guard"
		}
		line += "]"
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func renderRulesJSON(out io.Writer, rules fix.RuleSet) error {
	payload := make([]ruleJSON, 0, len(rules))
	for _, r := range rules {
		payload = append(payload, ruleJSON{
			ID:          r.ID,
			Pattern:     r.Pattern,
			Replacement: r.Replacement,
			Explanation: r.Explanation,
			Guard:       r.Guard,
		})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
