// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"unicode"

	"accounts/config"
	domainerrors "accounts/internal/domain/errors"
	"accounts/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost   int
	policy *config.PasswordStrengthConfig
}

// NewBcryptHasher builds the hasher from the auth and passwordStrength sections.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost != 0 {
		cost = cfg.Auth.BcryptCost
	}

	var policy *config.PasswordStrengthConfig
	if cfg != nil {
		policy = cfg.PasswordStrength
	}

	return &bcryptHasher{
		cost:   cost,
		policy: policy,
	}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", domainerrors.ErrPasswordStrength.WithDetails("password is too long")
	}
	if err != nil {
		return "", errors.Wrap(err, "bcrypt")
	}

	return string(bytes), nil
}

// Check compares a plaintext password with a bcrypt hash.
func (h *bcryptHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength rejects passwords bcrypt cannot hash, then applies the configured policy.
// Lengths are counted in bytes.
func (h *bcryptHasher) ValidatePasswordStrength(password string) error {
	if len(password) > maxPasswordBytes {
		return domainerrors.ErrPasswordStrength.WithDetails("password is too long")
	}
	if h.policy == nil {
		return nil
	}

	if h.policy.MinLength > 0 && len(password) < h.policy.MinLength {
		return domainerrors.ErrPasswordStrength.WithDetails("password is too short")
	}
	if h.policy.MaxLength > 0 && len(password) > h.policy.MaxLength {
		return domainerrors.ErrPasswordStrength.WithDetails("password is too long")
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	switch {
	case h.policy.RequireUppercase && !hasUpper:
		return domainerrors.ErrPasswordStrength.WithDetails("password needs an uppercase letter")
	case h.policy.RequireLowercase && !hasLower:
		return domainerrors.ErrPasswordStrength.WithDetails("password needs a lowercase letter")
	case h.policy.RequireNumbers && !hasNumber:
		return domainerrors.ErrPasswordStrength.WithDetails("password needs a digit")
	case h.policy.RequireSpecial && !hasSpecial:
		return domainerrors.ErrPasswordStrength.WithDetails("password needs a special character")
	}

	return nil
}
