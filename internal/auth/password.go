// Package auth hashes passwords and issues and verifies bearer tokens.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	iterations = 100_000
	keySize    = sha256.Size
)

// HashPassword derives a PBKDF2-HMAC-SHA256 key from password and returns
// base64(salt || key).
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, iterations, keySize, sha256.New)
	return base64.StdEncoding.EncodeToString(append(salt, key...)), nil
}

// VerifyPassword reports whether password matches a hash produced by
// HashPassword. Malformed hashes never match.
func VerifyPassword(password, hashed string) bool {
	raw, err := base64.StdEncoding.DecodeString(hashed)
	if err != nil || len(raw) <= saltSize {
		return false
	}
	salt, want := raw[:saltSize], raw[saltSize:]
	got := pbkdf2.Key([]byte(password), salt, iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
