package driver

import (
	"testing"

	"voltaire/internal/provider"
)

func TestRequestDigest(t *testing.T) {
	base := provider.Request{Text: "Salut emmanuel", Language: "fr"}
	ref := RequestDigest("https://lt.example", "", provider.UnitsScalar, base)

	tests := []struct {
		name     string
		endpoint string
		account  string
		units    provider.OffsetUnits
		req      provider.Request
		same     bool
	}{
		{name: "identical", endpoint: "https://lt.example", req: base, same: true},
		{name: "defaults normalized", endpoint: "https://lt.example", req: provider.Request{Text: "Salut emmanuel", Level: "default"}, same: true},
		{name: "account", endpoint: "https://lt.example", account: "me@example.org+key", req: base},
		{name: "endpoint", endpoint: "https://other.example", req: base},
		{name: "units", endpoint: "https://lt.example", units: provider.UnitsUTF16, req: base},
		{name: "text", endpoint: "https://lt.example", req: provider.Request{Text: "Salut", Language: "fr"}},
		{name: "level", endpoint: "https://lt.example", req: provider.Request{Text: "Salut emmanuel", Language: "fr", Level: "picky"}},
		{name: "disabled rules", endpoint: "https://lt.example", req: provider.Request{Text: "Salut emmanuel", Language: "fr", DisabledRules: []string{"X"}}},
		// граница полей сдвинута: без префикса длины совпало бы
		{name: "field boundary", endpoint: "https://lt.exampl", account: "e", req: base},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequestDigest(tt.endpoint, tt.account, tt.units, tt.req)
			if (got == ref) != tt.same {
				t.Errorf("digest equal = %v, want %v", got == ref, tt.same)
			}
		})
	}
}
