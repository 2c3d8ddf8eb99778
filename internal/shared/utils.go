// Package shared holds small helpers used by both the server and the
// client: random token material and wiping of secrets.
package shared

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns size random bytes hex-encoded, so the result
// is 2*size characters. Share slugs and refresh tokens are minted here.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray zeroes b in place. Call it once a password or key has
// been handed off, so the secret does not linger on the heap.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
