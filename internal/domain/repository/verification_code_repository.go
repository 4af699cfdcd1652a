package repository

import (
	"context"

	"accounts/internal/domain/entity"
	"accounts/internal/errors"

	"github.com/google/uuid"
)

// ErrCodeNotFound is returned when no outstanding code matches.
var ErrCodeNotFound = errors.New("verification code not found")

// VerificationCodeRepository stores single-use codes.
type VerificationCodeRepository interface {
	// Create persists a new code.
	Create(ctx context.Context, code *entity.VerificationCode) error

	// FindByCode looks up an outstanding code by exact match and purpose.
	FindByCode(ctx context.Context, code string, purpose entity.CodePurpose) (*entity.VerificationCode, error)

	// Delete destroys a code. It returns ErrCodeNotFound if the code was already gone,
	// which is how a concurrent second redemption is detected.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByUser removes every outstanding code of the given purpose for a user.
	DeleteByUser(ctx context.Context, userID uuid.UUID, purpose entity.CodePurpose) error
}
