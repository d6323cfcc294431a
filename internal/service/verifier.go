package service

import (
	"context"

	"authgate/internal/entity"
	"authgate/internal/repository"
	"authgate/internal/utils"
)

// CredentialVerifier checks a submitted password against the stored hash.
// ErrEmailNotVerified is soft: credentials were correct but the account has
// no verified email yet, and callers are expected to reissue a verification
// token rather than deny outright.
type CredentialVerifier struct {
	users  repository.UserRepository
	hasher PasswordHasher
}

func NewCredentialVerifier(users repository.UserRepository, hasher PasswordHasher) *CredentialVerifier {
	return &CredentialVerifier{users: users, hasher: hasher}
}

func (v *CredentialVerifier) Verify(ctx context.Context, email string, password string) (*entity.User, error) {
	user, err := v.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !v.hasher.Verify(user.PasswordHash, password) {
		return nil, ErrInvalidPassword
	}
	if user.EmailVerifiedAt == nil {
		return user, ErrEmailNotVerified
	}
	return user, nil
}
