package utils

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// HashStrings создает стабильный SHA256 хеш из набора строк.
// Каждая часть предваряется длиной, поэтому ("ab", "c") и ("a", "bc") дают разные хеши.
func HashStrings(parts ...string) string {
	h := sha256.New()
	var size [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(size[:], uint64(len(p)))
		h.Write(size[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
