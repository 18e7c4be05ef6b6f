// Package cryptox hashes and verifies account passwords with bcrypt.
package cryptox

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/imagekeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for every stored hash.
const PasswordCost = 10

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// HashPassword returns a salted bcrypt hash of plaintext.
func HashPassword(plaintext string) (string, error) {
	if plaintext == "" {
		return "", common.NewValidationError("password", "must not be empty")
	}
	if len(plaintext) > MaxPasswordBytes {
		return "", common.NewValidationError("password", fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes))
	}

	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("%w: bcrypt: %v", common.ErrorInternal, err)
	}
	return string(h), nil
}

// VerifyPassword compares plaintext against hash. A mismatch is reported as
// (false, nil); only a malformed hash yields an error.
func VerifyPassword(plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("malformed password hash: %w", err)
	}
}
