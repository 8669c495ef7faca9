package digest

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Size is the length of an encoded digest.
const Size = sha256.Size * 2

// Sum computes the digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// String computes the digest of s.
func String(s string) string {
	return Sum([]byte(s))
}

// Verify reports whether data has the expected digest.
//
// Uses constant-time comparison.
func Verify(data []byte, expected string) bool {
	actual := Sum(data)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expected)) == 1
}

// Short returns the first n characters of a digest for display.
func Short(d string, n int) string {
	if n <= 0 || len(d) <= n {
		return d
	}
	return d[:n]
}
