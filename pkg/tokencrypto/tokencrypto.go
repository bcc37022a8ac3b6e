// Package tokencrypto generates and hashes the bearer secrets behind
// ApiToken records. Secrets are never stored: only their SHA-256 hash
// and an 8-character display prefix survive past issuance.
package tokencrypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	secretLength = 48
	prefixLength = 8
	alphabet     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateSecret returns a new random alphanumeric bearer secret.
func GenerateSecret() (string, error) {
	buf := make([]byte, secretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("tokencrypto: generate secret: %w", err)
	}
	out := make([]byte, secretLength)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}

// Hash returns the hex-encoded SHA-256 digest of a secret, the value
// stored in place of the secret itself.
func Hash(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Prefix returns the leading characters of a secret safe to display in
// the UI so an operator can recognize a token without seeing it in full.
func Prefix(secret string) string {
	if len(secret) <= prefixLength {
		return secret
	}
	return secret[:prefixLength]
}
