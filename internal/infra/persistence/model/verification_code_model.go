package model

import (
	"time"

	"github.com/google/uuid"
)

// VerificationCodeModel mirrors the 'verification_codes' table.
// Rows cascade away with their owning user.
type VerificationCodeModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code      string    `gorm:"type:varchar(128);uniqueIndex:idx_verification_codes_code;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_verification_codes_user_purpose;not null"`
	Purpose   string    `gorm:"type:varchar(32);index:idx_verification_codes_user_purpose;not null"`
	CreatedAt time.Time

	User *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName explicitly sets the table name for GORM.
func (VerificationCodeModel) TableName() string {
	return "verification_codes"
}
