package ledger

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID generates a random prefixed identifier.
func NewID(prefix string) string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return prefix + "-" + hex.EncodeToString(buf)
}
