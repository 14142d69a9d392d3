package cache

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a fixed-length identifier for key, used as the primary
// key of persistent stores so that arbitrary query text never ends up in an
// index.
func Fingerprint(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
