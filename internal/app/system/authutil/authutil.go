// Package authutil provides password hashing and validation helpers for
// internal credential accounts.
package authutil

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor for password hashes. 12 is a deliberate
// step up from the library default.
const bcryptCost = 12

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// PasswordRules describes the password requirements for display to users.
const PasswordRules = "Password must be at least 8 characters."

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword checks a candidate password against the rules.
// Returns a user-facing message when the password is rejected.
func ValidatePassword(password string) (ok bool, msg string) {
	if len(password) < MinPasswordLength {
		return false, PasswordRules
	}
	return true, ""
}

// IsValidEmail performs a light structural check on an email address.
// It is intentionally permissive; the unique index is the real gate.
func IsValidEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at != strings.LastIndex(email, "@") {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
