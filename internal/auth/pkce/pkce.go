// Package pkce implements the Proof Key for Code Exchange primitives
// (RFC 7636, S256 method).
package pkce

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Method is the only challenge method this service supports.
const Method = "S256"

// verifierBytes gives 256 bits of entropy, 43 characters encoded.
const verifierBytes = 32

// Challenge is the verifier/challenge pair scoped to one login attempt.
type Challenge struct {
	Verifier  string
	Challenge string
}

// NewChallenge generates a fresh verifier and its derived challenge.
func NewChallenge() (*Challenge, error) {
	verifier, err := GenerateVerifier()
	if err != nil {
		return nil, err
	}
	return &Challenge{
		Verifier:  verifier,
		Challenge: DeriveChallenge(verifier),
	}, nil
}

// GenerateVerifier returns a URL-safe, padding-free base64 encoding of 32
// cryptographically random bytes.
func GenerateVerifier() (string, error) {
	buf := make([]byte, verifierBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// DeriveChallenge returns the URL-safe, padding-free base64 encoding of the
// SHA-256 digest of the verifier's ASCII bytes. Deterministic and one-way.
func DeriveChallenge(verifier string) string {
	digest := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(digest[:])
}
