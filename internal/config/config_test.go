package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"voltaire/internal/provider"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestFind_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find() = %q, %v, %v", path, ok, err)
	}
	want, _ := filepath.Abs(filepath.Join(root, FileName))
	if path != want {
		t.Errorf("Find() = %q, want %q", path, want)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, `
[provider]
language = "en-US"
level = "picky"
offset_units = "utf16"
timeout = "3s"
rate_per_minute = -1
disabled_rules = ["WHITESPACE_RULE"]

[render]
max_suggestions = 5
strike = true

[cache]
enabled = false

[[rules]]
pattern = "voltair"
replacement = "Voltaire"
explanation = "Nom propre."
guard = false
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
	if cfg.Provider.Endpoint != provider.DefaultEndpoint {
		t.Errorf("omitted endpoint should keep default, got %q", cfg.Provider.Endpoint)
	}
	if cfg.Provider.Timeout.Duration != 3*time.Second {
		t.Errorf("Timeout = %v", cfg.Provider.Timeout)
	}
	if cfg.Units() != provider.UnitsUTF16 {
		t.Errorf("Units() = %s", cfg.Units())
	}
	if cfg.Render.MaxSuggestions != 5 || !cfg.Render.Strike || cfg.Cache.Enabled {
		t.Errorf("render/cache = %+v %+v", cfg.Render, cfg.Cache)
	}
	if cfg.Cache.MemoryEntries != 256 {
		t.Errorf("MemoryEntries default lost: %d", cfg.Cache.MemoryEntries)
	}

	req := cfg.Request()
	if req.Language != "en-US" || req.Level != "picky" || !slices.Equal(req.DisabledRules, []string{"WHITESPACE_RULE"}) {
		t.Errorf("Request() = %+v", req)
	}
	if opts := cfg.ProviderOptions(); opts.RatePerMinute != -1 || opts.Timeout != 3*time.Second {
		t.Errorf("ProviderOptions() = %+v", opts)
	}

	rules, err := cfg.RuleSet()
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 1 || rules[0].Replacement != "Voltaire" || rules[0].Guard || rules[0].ID != "HOUSE_VOLTAIR" {
		t.Errorf("RuleSet() = %+v", rules)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "syntax", content: "[provider\n", wantErr: "failed to parse TOML"},
		{name: "unknown key", content: "[provider]\nlangauge = \"fr\"\n", wantErr: "unknown keys: provider.langauge"},
		{name: "units", content: "[provider]\noffset_units = \"bytes\"\n", wantErr: "invalid offset units"},
		{name: "level", content: "[provider]\nlevel = \"strict\"\n", wantErr: "invalid provider.level"},
		{name: "timeout", content: "[provider]\ntimeout = \"soon\"\n", wantErr: "failed to parse TOML"},
		{name: "max suggestions", content: "[render]\nmax_suggestions = 0\n", wantErr: "max_suggestions"},
		{name: "empty pattern", content: "[[rules]]\npattern = \" \"\nreplacement = \"x\"\n", wantErr: "rules[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tt.content)
			_, err := LoadFile(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("LoadFile() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestRuleSet_Defaults(t *testing.T) {
	cfg := Default()
	rules, err := cfg.RuleSet()
	if err != nil {
		t.Fatal(err)
	}
	if len(rules) != 1 || rules[0].Pattern != "emmanuel" {
		t.Errorf("default rules = %+v", rules)
	}

	off := false
	cfg.HouseRules = &off
	if rules, _ := cfg.RuleSet(); len(rules) != 0 {
		t.Errorf("house_rules = false should disable rules, got %+v", rules)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvUsername: " me@example.org ",
		EnvAPIKey:   "secret",
		EnvEndpoint: "",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if cfg.Username != "me@example.org" || cfg.APIKey != "secret" {
		t.Errorf("credentials = %q/%q", cfg.Username, cfg.APIKey)
	}
	if cfg.Provider.Endpoint != provider.DefaultEndpoint {
		t.Errorf("empty endpoint must not override, got %q", cfg.Provider.Endpoint)
	}

	env[EnvEndpoint] = "http://localhost:8081"
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if cfg.Provider.Endpoint != "http://localhost:8081" {
		t.Errorf("Endpoint = %q", cfg.Provider.Endpoint)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvUsername, "user")

	dir := t.TempDir()
	cfg, err := Load("", dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "from-env" || cfg.Username != "user" {
		t.Errorf("env not applied: %+v", cfg)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml"), dir); !errors.Is(err, ErrNoConfig) {
		t.Errorf("explicit missing config: got %v, want ErrNoConfig", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "VOLTAIRE_TEST_DOTENV=loaded\n")
	t.Setenv("VOLTAIRE_TEST_DOTENV", "")
	os.Unsetenv("VOLTAIRE_TEST_DOTENV")

	if err := LoadDotEnv(envFile, filepath.Join(dir, "absent.env")); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}
	if got := os.Getenv("VOLTAIRE_TEST_DOTENV"); got != "loaded" {
		t.Errorf("VOLTAIRE_TEST_DOTENV = %q", got)
	}
}
