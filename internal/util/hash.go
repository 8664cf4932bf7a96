package util

import (
	"crypto/sha256"
	"encoding/hex"
)

func SHA256Hex(b []byte) string {
	x := sha256.Sum256(b)
	return hex.EncodeToString(x[:])
}

// ShortHash is the first 16 hex chars of the sha256, used for
// content-derived identifiers such as image source ids.
func ShortHash(b []byte) string {
	return SHA256Hex(b)[:16]
}
