package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// fakeLanguageTool flags every "emmanuel" with a single suggestion.
func fakeLanguageTool(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		text := r.PostForm.Get("text")
		idx := strings.Index(text, "emmanuel")
		if idx < 0 {
			_, _ = w.Write([]byte(`{"matches": []}`))
			return
		}
		fmt.Fprintf(w, `{"matches": [{"message": "Faute de frappe possible", "offset": %d, "length": 8,
			"replacements": [{"value": "Emmanuel"}], "rule": {"id": "FR_SPELLING_RULE", "issueType": "misspelling"}}]}`, idx)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeConfig(t *testing.T, endpoint, extra string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voltaire.toml")
	content := fmt.Sprintf("[provider]\nendpoint = %q\nrate_per_minute = -1\n\n[cache]\nenabled = false\n%s", endpoint, extra)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// resetFlags restores defaults: cobra keeps flag values between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("VOLTAIRE_ENDPOINT", "")
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	runCleanups()
	return stdout.String(), stderr.String(), err
}

func TestCheckCommand(t *testing.T) {
	srv := fakeLanguageTool(t)
	cfg := writeConfig(t, srv.URL, "")

	tests := []struct {
		name     string
		stdin    string
		args     []string
		want     string
		wantCode int
	}{
		{
			name: "arguments",
			args: []string{"check", "--config", cfg, "--color", "off", "--no-house-rules", "Salut", "emmanuel"},
			want: "Salut [-emmanuel-] -> Salut {+Emmanuel+}\n",
		},
		{
			name:  "stdin",
			stdin: "Salut emmanuel\n",
			args:  []string{"check", "--config", cfg, "--color", "off", "--no-house-rules"},
			want:  "Salut [-emmanuel-] -> Salut {+Emmanuel+}\n",
		},
		{
			name: "house rule only",
			args: []string{"check", "--config", cfg, "--color", "off", "Bonjour Emmanuel"},
			want: "Bonjour [-Emmanuel-] -> Bonjour {+Emanuel+}\n",
		},
		{
			name: "clean",
			args: []string{"check", "--config", cfg, "--color", "off", "Bonjour"},
			want: "Bonjour ✓ no issues found\n",
		},
		{
			name:     "fail on issues",
			args:     []string{"check", "--config", cfg, "--color", "off", "--no-house-rules", "--fail-on-issues", "emmanuel"},
			want:     "[-emmanuel-] -> {+Emmanuel+}\n",
			wantCode: 2,
		},
		{
			name: "verbose",
			args: []string{"check", "--config", cfg, "--color", "off", "--no-house-rules", "-v", "Salut emmanuel"},
			want: "6: [-emmanuel-] -> {+Emmanuel+}: Faute de frappe possible\nSalut [-emmanuel-] -> Salut {+Emmanuel+}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.stdin, tt.args...)
			if tt.wantCode != 0 {
				var exit *exitError
				if !errors.As(err, &exit) || exit.code != tt.wantCode {
					t.Fatalf("error = %v, want exit status %d", err, tt.wantCode)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != tt.want {
				t.Errorf("stdout = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestCheckCommand_JSON(t *testing.T) {
	srv := fakeLanguageTool(t)
	cfg := writeConfig(t, srv.URL, "")

	out, _, err := execute(t, "", "check", "--config", cfg, "--format", "json", "--no-house-rules", "Salut emmanuel")
	if err != nil {
		t.Fatal(err)
	}
	var payload struct {
		Results []struct {
			Corrected   string `json:"corrected"`
			Annotations []struct {
				RuleID string `json:"rule_id"`
			} `json:"annotations"`
		} `json:"results"`
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if payload.Count != 1 || len(payload.Results) != 1 || payload.Results[0].Corrected != "Salut Emmanuel" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestCheckCommand_InputErrors(t *testing.T) {
	srv := fakeLanguageTool(t)
	cfg := writeConfig(t, srv.URL, "")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "args and file", args: []string{"check", "--config", cfg, "--file", "x.txt", "texte"}, wantErr: "not both"},
		{name: "bad format", args: []string{"check", "--config", cfg, "--format", "xml", "texte"}, wantErr: "unsupported format"},
		{name: "bad level", args: []string{"check", "--config", cfg, "--level", "strict", "texte"}, wantErr: "invalid --level"},
		{name: "bad color", args: []string{"check", "--color", "maybe", "texte"}, wantErr: "invalid --color"},
		{name: "missing config", args: []string{"check", "--config", filepath.Join(t.TempDir(), "nope.toml"), "texte"}, wantErr: "no voltaire.toml found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestBatchCommand(t *testing.T) {
	srv := fakeLanguageTool(t)
	cfg := writeConfig(t, srv.URL, "")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Bonjour\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.md"), []byte("Salut emmanuel\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, errOut, err := execute(t, "", "batch", "--config", cfg, "--color", "off", "--ui", "off", "--no-house-rules", dir)
	if err != nil {
		t.Fatalf("batch error: %v", err)
	}
	first := strings.Index(out, "a.txt")
	second := strings.Index(out, "b.md")
	if first < 0 || second < first {
		t.Errorf("results not in path order:\n%s", out)
	}
	if !strings.Contains(out, "Salut [-emmanuel-] -> Salut {+Emmanuel+}") {
		t.Errorf("missing overlay:\n%s", out)
	}
	if !strings.Contains(errOut, "2 files checked, 1 issues, 0 failed") {
		t.Errorf("summary = %q", errOut)
	}
}

func TestRulesCommand(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:0", `
[[rules]]
pattern = "voltair"
replacement = "Voltaire"
explanation = "Nom propre."
`)
	out, _, err := execute(t, "", "rules", "--config", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "voltair -> Voltaire: Nom propre.  [HOUSE_VOLTAIR]") {
		t.Errorf("rules output:\n%s", out)
	}
	if !strings.Contains(out, cfg) {
		t.Errorf("rules output should name %s:\n%s", cfg, out)
	}
}

func TestCacheCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	cfg := writeConfig(t, "http://127.0.0.1:0", fmt.Sprintf("dir = %q\n", dir))

	out, _, err := execute(t, "", "cache", "dir", "--config", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache dir = %q, want %q", out, dir)
	}

	entry := filepath.Join(dir, "responses", "ab", "stale.mp")
	if err := os.MkdirAll(filepath.Dir(entry), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(entry, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, _, err = execute(t, "", "cache", "clear", "--config", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "cleared "+dir) {
		t.Errorf("clear output = %q", out)
	}
	if _, err := os.Stat(entry); !os.IsNotExist(err) {
		t.Errorf("entry survived clear: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cache dir should be recreated: %v", err)
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "", "version", "--format", "json", "--hash")
	if err != nil {
		t.Fatal(err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Tool != "voltaire" || payload.GitCommit != "unknown" || payload.BuildDate != "" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{in: "", want: uiModeAuto},
		{in: " ON ", want: uiModeOn},
		{in: "off", want: uiModeOff},
		{in: "yes", wantErr: true},
	}
	for _, tt := range tests {
		got, err := readUIMode("ui", tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("readUIMode(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("readUIMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
