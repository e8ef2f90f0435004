package workflow

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// randomToken generates a URL-safe random invitation token of n raw bytes.
func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// asNonRetryable is errors.As with the target parameter pre-typed, so every
// activity's provider-error classification reads the same way.
func asNonRetryable[T error](err error, target *T) bool {
	return errors.As(err, target)
}
