package entity

import (
	"time"

	"github.com/google/uuid"
)

// CodePurpose tells which flow issued a verification code and which flow may redeem it.
type CodePurpose string

const (
	// CodePurposeVerifyEmail proves control of the registered email address.
	CodePurposeVerifyEmail CodePurpose = "verify_email"
	// CodePurposeResetPassword authorizes a password change.
	CodePurposeResetPassword CodePurpose = "reset_password"
)

// String returns the string representation of the CodePurpose.
func (p CodePurpose) String() string {
	return string(p)
}

// VerificationCode is a single-use token emailed to a user.
// It has no expiry; it stays outstanding until redeemed or replaced.
type VerificationCode struct {
	ID        uuid.UUID
	Code      string
	UserID    uuid.UUID
	Purpose   CodePurpose
	CreatedAt time.Time
}
