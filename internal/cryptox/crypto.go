// Package cryptox hashes user passwords.
package cryptox

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

const (
	hashTime    = 2
	hashMemory  = 19 * 1024
	hashThreads = 1
	hashKeyLen  = 32
)

// HashPassword derives a hex-encoded Argon2id key from password, using the
// server-wide secret as salt. The result is deterministic: the same password
// and secret always produce the same hash, which is what login compares.
func HashPassword(password, secret string) string {
	key := argon2.IDKey([]byte(password), []byte(secret), hashTime, hashMemory, hashThreads, hashKeyLen)
	return hex.EncodeToString(key)
}

// EqualHashes compares two hashes in constant time.
func EqualHashes(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
