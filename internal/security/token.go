package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const refreshTokenRawSize = 32

// NewRefreshToken returns a URL-safe opaque token with 32 bytes of entropy.
// Uniqueness holds by construction; the store's unique index is a backstop,
// not the mechanism.
func NewRefreshToken() (string, error) {
	raw := make([]byte, refreshTokenRawSize)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
