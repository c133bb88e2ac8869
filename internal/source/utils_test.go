package source

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	otherDir := filepath.Join(tmp, "other")

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}
	if err := os.MkdirAll(otherDir, 0o755); err != nil {
		t.Fatalf("failed to create other dir: %v", err)
	}

	target := filepath.Join(otherDir, "letter.txt")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	want := normalizePath(target)
	if got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	target := filepath.Join(baseDir, "nested", "letter.txt")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	want := normalizePath(filepath.Join("nested", "letter.txt"))
	if got != want {
		t.Fatalf("expected relative path %q, got %q", want, got)
	}
}

func TestNormalizeCRLF(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		want        string
		wantChanged bool
	}{
		{name: "no carriage return", in: "a\nb", want: "a\nb"},
		{name: "crlf", in: "a\r\nb\r\n", want: "a\nb\n", wantChanged: true},
		{name: "lone cr kept", in: "a\rb", want: "a\rb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := normalizeCRLF([]byte(tt.in))
			if string(got) != tt.want || changed != tt.wantChanged {
				t.Errorf("normalizeCRLF(%q) = (%q, %v), want (%q, %v)", tt.in, got, changed, tt.want, tt.wantChanged)
			}
		})
	}
}

func TestLoadStripsBOMAndCRLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letter.txt")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Bonjour\r\nle monde\r\n")...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	in, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := in.Buffer.Text(); got != "Bonjour\nle monde" {
		t.Fatalf("text = %q", got)
	}
	if in.Flags&InputHadBOM == 0 || in.Flags&InputNormalizedCRLF == 0 {
		t.Fatalf("flags = %b, want BOM and CRLF bits", in.Flags)
	}
	if in.Flags&InputVirtual != 0 {
		t.Fatal("file input must not be virtual")
	}
	if !strings.HasSuffix(in.Path, "letter.txt") {
		t.Fatalf("path = %q", in.Path)
	}
}

func TestReadMarksVirtual(t *testing.T) {
	in, err := Read("<stdin>", bytes.NewBufferString("Salut\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if in.Buffer.Text() != "Salut" {
		t.Fatalf("text = %q", in.Buffer.Text())
	}
	if in.Flags&InputVirtual == 0 {
		t.Fatal("stdin input should be virtual")
	}
}
