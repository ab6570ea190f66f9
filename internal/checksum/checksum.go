// Package checksum computes the content checksums used as section ETags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of content.
func Sum(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

// Matches reports whether an If-Match style value accepts content.
// An empty value or "*" matches anything; surrounding quotes are ignored.
func Matches(ifMatch, content string) bool {
	v := strings.Trim(strings.TrimSpace(ifMatch), `"`)
	if v == "" || v == "*" {
		return true
	}
	return strings.EqualFold(v, Sum(content))
}
