package auth

import (
	"errors"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// ErrWeakPassword signals the password does not meet the complexity rule.
var ErrWeakPassword = errors.New("auth: password must contain at least 8 characters, one uppercase letter, one lowercase letter, one number and one special character")

const bcryptCost = 12

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	passwordUpper  = regexp.MustCompile(`[A-Z]`)
	passwordLower  = regexp.MustCompile(`[a-z]`)
	passwordDigit  = regexp.MustCompile(`\d`)
	passwordExtra  = regexp.MustCompile(`[@$!%*?&#^()_\-+=.]`)
)

// HashPassword derives a bcrypt digest from the plaintext password.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether plaintext matches the stored digest.
func CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// ValidateEmail reports whether the address has a plausible mailbox shape.
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePassword enforces the signup complexity rule.
func ValidatePassword(password string) error {
	if len(password) < 8 ||
		!passwordUpper.MatchString(password) ||
		!passwordLower.MatchString(password) ||
		!passwordDigit.MatchString(password) ||
		!passwordExtra.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
