package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	maxSeedBytes = 16 << 10 // 16 KiB, ограничение для тестового корпуса
	maxFuzzInput = 1 << 16  // 64 KiB
)

// sampleBody flags "emmanuel" in the first text seed and carries one record
// the normalizer must drop.
const sampleBody = `{"matches": [
	{"message": "Faute de frappe possible", "offset": 6, "length": 8, "replacements": [{"value": "Emmanuel"}, {"value": "Emmanuelle"}]},
	{"message": "hors limites", "offset": 400, "length": 3, "replacements": [{"value": "x"}]},
	{"message": "espace", "offset": 0, "length": 5, "replacements": [{"value": ""}]}
]}`

// addTextSeeds adds every *.txt and *.md sample from testdata, paired with
// body so harnesses taking (text, body) get a realistic response as well.
func addTextSeeds(f *testing.F, body []byte) {
	root := filepath.Join("..", "..", "testdata")
	// проходим по дереву testdata, берём только текстовые файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
		default:
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(string(clampSeed(src)), body)
		return nil
	})
	// минимальные примеры на случай пустого testdata
	f.Add("", body)
	f.Add("Salut emmanuel", body)
	f.Add("Bonjour Emmanuel, ça va ? 👋🏽", body)
	f.Add("\xff\xfe invalide", body)
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(s string) string {
	if len(s) > maxFuzzInput {
		return s[:maxFuzzInput]
	}
	return s
}
