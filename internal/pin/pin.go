// Package pin hashes login PINs before they reach the auth state store.
package pin

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	minLength = 4
	maxLength = 12
)

var (
	// ErrInvalidPIN is returned for PINs that are not 4 to 12 digits.
	ErrInvalidPIN = errors.New("PIN must be 4 to 12 digits")
	// ErrMismatch is returned when a PIN does not match the stored hash.
	ErrMismatch = errors.New("invalid PIN")
)

// Validate checks the PIN shape.
func Validate(raw string) error {
	if len(raw) < minLength || len(raw) > maxLength {
		return ErrInvalidPIN
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}

// Hash validates raw and returns its bcrypt hash.
func Hash(raw string) (string, error) {
	if err := Validate(raw); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify compares raw against a stored hash.
func Verify(hash, raw string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)); err != nil {
		return ErrMismatch
	}
	return nil
}
