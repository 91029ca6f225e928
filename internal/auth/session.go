package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
)

// Session token format: cs_{secret}
// Example: cs_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
const (
	SessionTokenPrefix    = "cs_"
	SessionTokenSecretLen = 64 // hex encoded 32 bytes
)

var (
	// ErrInvalidTokenFormat indicates the session token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid session token format")
	// tokenFormatRegex validates the token format.
	tokenFormatRegex = regexp.MustCompile(`^cs_[a-f0-9]{64}$`)
	// pinRegex validates student PINs.
	pinRegex = regexp.MustCompile(`^[0-9]{4}$`)
)

// GenerateSessionToken creates a new random bearer token for a login session.
func GenerateSessionToken() (string, error) {
	secret := make([]byte, SessionTokenSecretLen/2)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return SessionTokenPrefix + hex.EncodeToString(secret), nil
}

// ValidateTokenFormat checks if the token matches the expected format.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}

// ValidatePIN checks that a student PIN is exactly four digits.
func ValidatePIN(pin string) bool {
	return pinRegex.MatchString(pin)
}
