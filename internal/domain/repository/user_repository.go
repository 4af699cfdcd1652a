// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"accounts/internal/domain/entity"
	"accounts/internal/errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserFields carries a partial update; nil fields are left untouched.
type UserFields struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Country      *string
	Image        *string
	PasswordHash *string
	IsVerified   *bool
}

// IsEmpty reports whether the update would change nothing.
func (f UserFields) IsEmpty() bool {
	return f.FirstName == nil && f.LastName == nil && f.Email == nil &&
		f.Country == nil && f.Image == nil && f.PasswordHash == nil && f.IsVerified == nil
}

// UserRepository is the user directory.
type UserRepository interface {
	// List returns every user, oldest first.
	List(ctx context.Context) ([]*entity.User, error)

	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user and fills in its ID and timestamps.
	Create(ctx context.Context, user *entity.User) error

	// Update applies the non-nil fields and returns the stored record.
	// It returns ErrUserNotFound when no row matched.
	Update(ctx context.Context, id uuid.UUID, fields UserFields) (*entity.User, error)

	// Delete removes the user. Deleting a missing user is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}
