package model

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	apperrors "twitterapi/internal/errors"
)

// MinPasswordLength is the minimum length of a trimmed plaintext password.
const MinPasswordLength = 7

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

const forbiddenPasswordWord = "password"

var validate = validator.New()

// Email is a trimmed, lower-cased address in a valid format.
type Email string

// NewEmail normalizes raw and checks its format.
func NewEmail(raw string) (Email, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperrors.NewValidationError("email", "email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return "", apperrors.NewValidationError("email", "invalid email")
	}
	return Email(email), nil
}

func (e Email) String() string { return string(e) }

// Password is a plaintext password that satisfies the password policy.
// It is only ever held in memory on its way to Hash.
type Password string

// NewPassword trims raw and enforces the password policy.
func NewPassword(raw string) (Password, error) {
	pw := strings.TrimSpace(raw)
	if len(pw) < MinPasswordLength {
		return "", apperrors.NewValidationError("password", "password must be at least 7 characters")
	}
	if len(pw) > MaxPasswordBytes {
		return "", apperrors.NewValidationError("password", "password must be at most 72 bytes")
	}
	if strings.Contains(strings.ToLower(pw), forbiddenPasswordWord) {
		return "", apperrors.NewValidationError("password", `password cannot contain "password"`)
	}
	return Password(pw), nil
}

// Hash returns the bcrypt hash of the password.
func (p Password) Hash(cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(p), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// NewUsername trims raw and rejects blank usernames.
func NewUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if username == "" {
		return "", apperrors.NewValidationError("username", "username is required")
	}
	return username, nil
}

// NewName trims raw and rejects blank names.
func NewName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", apperrors.NewValidationError("name", "name is required")
	}
	return name, nil
}
