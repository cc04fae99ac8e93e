package utils

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// NewRefreshToken returns 32 random bytes hex-encoded, used as the opaque
// session refresh token.
func NewRefreshToken() (string, error) {
	b := make([]byte, 32)

	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", b), nil
}
