package entity

import (
	"time"

	"github.com/google/uuid"
)

type TokenPurpose string

const (
	PurposeEmailVerify   TokenPurpose = "email_verify"
	PurposePasswordReset TokenPurpose = "password_reset"
)

// AuthToken is a single-use token delivered by email. Tokens are keyed by
// email, not user id, and the two purposes are independent namespaces: at
// most one live token exists per (email, purpose). Expiry is checked lazily
// at use; rows are never swept in the background.
type AuthToken struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email string    `gorm:"type:varchar(255);not null;index:idx_auth_tokens_email_purpose"`

	Token   string       `gorm:"type:text;not null;uniqueIndex"`
	Purpose TokenPurpose `gorm:"type:token_purpose;not null;index:idx_auth_tokens_email_purpose"`

	ExpiresAt time.Time

	CreatedAt time.Time
}
