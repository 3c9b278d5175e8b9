// Package id provides unique identifier generation utilities.
// This is the canonical source for ID generation across the codebase.
package id

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// SessionIDLength is the length of gateway session identifiers. The real
// gateway hands out 32 ASCII characters; clients are known to depend on it.
const SessionIDLength = 32

const alnumCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SessionID generates a gateway session identifier: 32 random alphanumeric
// characters from crypto/rand.
func SessionID() string {
	return Alphanumeric(SessionIDLength)
}

// Connection generates a connection identifier (UUID v4).
func Connection() string {
	return uuid.NewString()
}

// Alphanumeric generates a random alphanumeric string of the specified length.
// Uses uppercase, lowercase letters and digits.
func Alphanumeric(length int) string {
	b := make([]byte, length)
	randBytes := make([]byte, length)
	_, _ = rand.Read(randBytes)
	for i := range b {
		b[i] = alnumCharset[int(randBytes[i])%len(alnumCharset)]
	}
	return string(b)
}
