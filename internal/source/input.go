package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Input is a Buffer together with where it came from.
type Input struct {
	Path   string
	Buffer *Buffer
	Flags  InputFlags
}

// FromString wraps in-memory text (command arguments, tests) as a virtual Input.
func FromString(name, text string) *Input {
	return &Input{Path: name, Buffer: NewBuffer(text), Flags: InputVirtual}
}

// Load reads a file from disk, strips the BOM and normalizes CRLF.
func Load(path string) (*Input, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	in := fromBytes(content)
	in.Path = normalizePath(path)
	return in, nil
}

// Read consumes r completely (stdin) and returns a virtual Input named name.
func Read(name string, r io.Reader) (*Input, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	in := fromBytes(content)
	in.Path = name
	in.Flags |= InputVirtual
	return in, nil
}

func fromBytes(content []byte) *Input {
	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := InputFlags(0)
	if hadBOM {
		flags |= InputHadBOM
	}
	if hadCRLF {
		flags |= InputNormalizedCRLF
	}
	// завершающий перевод строки не отправляем на проверку
	text := strings.TrimRight(string(content), "\n")
	return &Input{Buffer: NewBuffer(text), Flags: flags}
}

// RelativePath returns target relative to baseDir, falling back to the cleaned
// absolute path when target lies outside baseDir.
func RelativePath(target, baseDir string) (string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return normalizePath(absTarget), nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return normalizePath(absTarget), nil
	}
	return normalizePath(rel), nil
}
