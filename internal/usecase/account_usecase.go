// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"accounts/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterUserInput defines the data required to register a new user.
type RegisterUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Country   string
	Image     string
	// FrontBaseURL is the client page that receives the verification code as its last path segment.
	FrontBaseURL string
}

// UpdateUserInput carries a partial profile update. Nil fields are left untouched.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Country   *string
	Image     *string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// RequestPasswordResetInput starts a password reset for an email address.
type RequestPasswordResetInput struct {
	Email        string
	FrontBaseURL string
}

// ConfirmPasswordResetInput carries the new password for a reset code.
type ConfirmPasswordResetInput struct {
	Password string
}

// --- Output DTOs ---

// LoginOutput returns the signed session token with the user it was issued for.
type LoginOutput struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

// AccountUsecase defines the user account and authentication operations.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AccountUsecase interface {
	ListUsers(ctx context.Context) ([]*entity.User, error)
	RegisterUser(ctx context.Context, input *RegisterUserInput) (*entity.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input *UpdateUserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	VerifyEmail(ctx context.Context, code string) (*entity.User, error)
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	GetLoggedUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	RequestPasswordReset(ctx context.Context, input *RequestPasswordResetInput) (*entity.User, error)
	ConfirmPasswordReset(ctx context.Context, code string, input *ConfirmPasswordResetInput) (*entity.User, error)
}
