package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"fortio.org/safecast"

	"voltaire/internal/provider"
)

// Digest is a SHA-256 cache key.
type Digest [sha256.Size]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// RequestDigest: H(endpoint || account || units || language || level || rules... || text).
// Каждое поле с префиксом длины, чтобы ("ab","c") и ("a","bc") не совпадали.
func RequestDigest(endpoint, account string, units provider.OffsetUnits, req provider.Request) Digest {
	req = req.Normalized()
	h := sha256.New()
	length := func(n int) {
		var buf [8]byte
		u, _ := safecast.Conv[uint64](n) // длины неотрицательны
		binary.BigEndian.PutUint64(buf[:], u)
		_, _ = h.Write(buf[:])
	}
	field := func(s string) {
		length(len(s))
		_, _ = h.Write([]byte(s))
	}
	field(endpoint)
	field(account)
	field(units.String())
	field(req.Language)
	field(req.Level)
	length(len(req.DisabledRules))
	for _, id := range req.DisabledRules {
		field(id)
	}
	field(req.Text)

	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
