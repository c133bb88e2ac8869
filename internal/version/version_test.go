package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	// GitCommit and BuildDate are optional
	_ = GitCommit
	_ = BuildDate
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origGitCommit, origBuildDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origGitCommit, origBuildDate
	})

	// как при сборке с -ldflags
	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	if Version != "1.2.3" {
		t.Errorf("Version = %q, want %q", Version, "1.2.3")
	}
	if GitCommit != "abc123def456" {
		t.Errorf("GitCommit = %q, want %q", GitCommit, "abc123def456")
	}
}

func TestColored(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	t.Cleanup(func() {
		Version, color.NoColor = origVersion, origNoColor
	})
	color.NoColor = true

	tests := []struct {
		in, want string
	}{
		{in: "0.1.0-dev", want: "0.1.0-dev"},
		{in: "2.0.1", want: "2.0.1"},
		{in: "nightly", want: "nightly"},
		{in: " 1.2 ", want: "1.2"},
	}
	for _, tt := range tests {
		Version = tt.in
		if got := Colored(); got != tt.want {
			t.Errorf("Colored() with Version=%q = %q, want %q", tt.in, got, tt.want)
		}
	}
}
