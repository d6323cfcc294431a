package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is a credentials account. EmailVerifiedAt stays nil until the user
// follows a verification link; sign-in never issues a session before that.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:text;not null"`

	EmailVerifiedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Sessions []Session
}
