// Package cryptox wraps password hashing. Hashes are bcrypt strings and the
// plain password never leaves this package in any other form.
package cryptox

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used by HashPassword.
var DefaultCost = bcrypt.DefaultCost

// ErrPasswordTooLong is returned for inputs bcrypt would otherwise reject
// (more than 72 bytes).
var ErrPasswordTooLong = errors.New("password too long")

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. A malformed hash is
// treated as a mismatch.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
