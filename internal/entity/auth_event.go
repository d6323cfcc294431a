package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuthAction string

const (
	ActionSignUp        AuthAction = "sign_up"
	ActionSignInSuccess AuthAction = "sign_in_success"
	ActionSignInFailed  AuthAction = "sign_in_failed"
	ActionEmailVerified AuthAction = "email_verified"
	ActionPasswordReset AuthAction = "password_reset"
	ActionSignOut       AuthAction = "sign_out"
)

// AuthEvent is an append-only audit row. UserID is nil when the event
// concerns an email with no matching account.
type AuthEvent struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID *uuid.UUID `gorm:"type:uuid;index"`

	Action   AuthAction     `gorm:"type:varchar(50);not null"`
	Metadata datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time
}
