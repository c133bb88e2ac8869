package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voltaire/internal/config"
	"voltaire/internal/diagfmt"
	"voltaire/internal/driver"
	"voltaire/internal/observ"
	"voltaire/internal/provider"
)

// checkFlags are shared by check and batch.
type checkFlags struct {
	verbose      bool
	strike       bool
	language     string
	level        string
	noHouseRules bool
	noCache      bool
	failOnIssues bool
	format       string
}

func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("verbose", "v", false, "print one explanation line per issue")
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	cmd.Flags().String("language", "", "language code sent to the provider (default: config value)")
	cmd.Flags().String("level", "", "provider level (default|picky)")
	cmd.Flags().Bool("strike", false, "show struck-through originals followed by corrections")
	cmd.Flags().Bool("no-house-rules", false, "disable house rules")
	cmd.Flags().Bool("no-cache", false, "bypass the response cache")
	cmd.Flags().Bool("fail-on-issues", false, "exit with status 2 when issues are found")
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var f checkFlags
	var err error
	if f.verbose, err = cmd.Flags().GetBool("verbose"); err != nil {
		return f, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if f.format, err = cmd.Flags().GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	if f.language, err = cmd.Flags().GetString("language"); err != nil {
		return f, fmt.Errorf("failed to get language flag: %w", err)
	}
	if f.level, err = cmd.Flags().GetString("level"); err != nil {
		return f, fmt.Errorf("failed to get level flag: %w", err)
	}
	if f.strike, err = cmd.Flags().GetBool("strike"); err != nil {
		return f, fmt.Errorf("failed to get strike flag: %w", err)
	}
	if f.noHouseRules, err = cmd.Flags().GetBool("no-house-rules"); err != nil {
		return f, fmt.Errorf("failed to get no-house-rules flag: %w", err)
	}
	if f.noCache, err = cmd.Flags().GetBool("no-cache"); err != nil {
		return f, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	if f.failOnIssues, err = cmd.Flags().GetBool("fail-on-issues"); err != nil {
		return f, fmt.Errorf("failed to get fail-on-issues flag: %w", err)
	}

	f.format = strings.ToLower(strings.TrimSpace(f.format))
	switch f.format {
	case "pretty", "json":
	default:
		return f, fmt.Errorf("unsupported format %q (must be pretty or json)", f.format)
	}
	switch strings.ToLower(f.level) {
	case "", "default", "picky":
	default:
		return f, fmt.Errorf("invalid --level value %q (expected default|picky)", f.level)
	}
	return f, nil
}

// loadConfig reads .env and voltaire.toml, honouring --config.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		warnf(cmd, "ignoring .env: %v", err)
	}
	path, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	return config.Load(path, ".")
}

// checkEnv is everything a command needs to run checks.
type checkEnv struct {
	cfg     config.Config
	checker *driver.Checker
	timer   *observ.Timer
}

func newCheckEnv(cmd *cobra.Command, flags checkFlags) (*checkEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	maxSuggestions, err := cmd.Root().PersistentFlags().GetInt("max-suggestions")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-suggestions flag: %w", err)
	}
	if maxSuggestions < 0 {
		return nil, fmt.Errorf("--max-suggestions must not be negative")
	}
	if maxSuggestions == 0 {
		maxSuggestions = cfg.Render.MaxSuggestions
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	var timer *observ.Timer
	if showTimings {
		timer = observ.NewTimer()
	}

	rules, err := cfg.RuleSet()
	if err != nil {
		return nil, err
	}
	if flags.noHouseRules {
		rules = nil
	}

	req := cfg.Request()
	if flags.language != "" {
		req.Language = flags.language
	}
	if flags.level != "" {
		req.Level = strings.ToLower(flags.level)
	}

	var cache *driver.ResponseCache
	if cfg.Cache.Enabled && !flags.noCache {
		cache, err = openCache(cmd, cfg)
		if err != nil {
			return nil, err
		}
	}

	client := provider.NewClient(cfg.ProviderOptions())
	checker := driver.NewChecker(client, cache, driver.Options{
		Request:        req,
		Endpoint:       client.Endpoint(),
		Account:        client.Account(),
		Units:          cfg.Units(),
		MaxSuggestions: maxSuggestions,
		Rules:          rules,
		Render: diagfmt.RenderOptions{
			Verbose: flags.verbose,
			Strike:  flags.strike || cfg.Render.Strike,
		},
		Formatter: outputFormatter(),
		Timer:     timer,
	})
	return &checkEnv{cfg: cfg, checker: checker, timer: timer}, nil
}

// openCache opens the response cache; an unusable disk directory only costs persistence.
func openCache(cmd *cobra.Command, cfg config.Config) (*driver.ResponseCache, error) {
	var disk *driver.DiskCache
	dir, err := cfg.CacheDir()
	if err == nil {
		disk, err = driver.OpenDiskCache(dir)
	}
	if err != nil {
		warnf(cmd, "disk cache disabled: %v", err)
		disk = nil
	}
	return driver.NewResponseCache(cfg.Cache.MemoryEntries, disk)
}

func isQuiet(cmd *cobra.Command) bool {
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && quiet
}

// warnf prints a warning to stderr unless --quiet.
func warnf(cmd *cobra.Command, format string, args ...any) {
	if isQuiet(cmd) {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
}
