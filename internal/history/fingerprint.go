package history

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint identifies an account without storing its session key: the first 16 hex
// characters of the BLAKE2b-256 digest of the trimmed key.
func Fingerprint(sessionKey string) string {
	sum := blake2b.Sum256([]byte(strings.TrimSpace(sessionKey)))
	return hex.EncodeToString(sum[:])[:16]
}
