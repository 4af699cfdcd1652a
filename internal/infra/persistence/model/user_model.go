package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. IDs are generated by the application (UUIDv7).
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	FirstName    string    `gorm:"type:varchar(100);not null"`
	LastName     string    `gorm:"type:varchar(100);not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex:idx_users_email;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Country      string    `gorm:"type:varchar(100);not null;default:''"`
	Image        string    `gorm:"type:text;not null;default:''"`
	IsVerified   bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
