// Package security provides secure random generation utilities
package security

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateULID generates a new ULID string.
func GenerateULID() string {
	return ulid.Make().String()
}

// GenerateEventID generates a unique event identifier.
func GenerateEventID() string {
	return "evt_" + ulid.Make().String()
}

// GenerateBatchID generates a unique batch identifier.
func GenerateBatchID() string {
	return "batch_" + ulid.Make().String()
}

// GenerateSessionID generates a unique session identifier.
func GenerateSessionID() string {
	return "session_" + ulid.Make().String()
}

// GenerateFeedbackID generates a unique feedback record identifier.
func GenerateFeedbackID() string {
	return "fb_" + ulid.Make().String()
}

// GenerateSecureToken generates a cryptographically secure random token suitable for URLs.
func GenerateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// GenerateSecureKey creates a cryptographically secure random key and returns it as a hex string.
// This is ideal for generating JWT secrets.
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length/2) // Each byte becomes two hex characters
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
