package ident

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// DefaultTokenLength is the default authentication token length in bytes.
const DefaultTokenLength = 32

// HexToken generates a cryptographically secure hex-encoded
// authentication token of n random bytes.
func HexToken(n int) (string, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// HashToken computes the hex-encoded SHA-256 hash of a token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifyToken compares a presented token against an expected token.
//
// Both sides are hashed first so the comparison is constant-time over
// fixed-length digests regardless of token length.
func VerifyToken(presented, expected string) bool {
	a := sha256.Sum256([]byte(presented))
	b := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
