package repository

import (
	"context"
	"errors"

	"authgate/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenRepository persists single-use email tokens. Lookups never filter on
// expiry; callers compare ExpiresAt against their own clock so that an
// expired token is distinguishable from a missing one.
type TokenRepository interface {
	Create(ctx context.Context, token *entity.AuthToken) error
	FindByEmail(ctx context.Context, email string, purpose entity.TokenPurpose) (*entity.AuthToken, error)
	FindByValue(ctx context.Context, value string, purpose entity.TokenPurpose) (*entity.AuthToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, t *entity.AuthToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tokenRepository) FindByEmail(
	ctx context.Context,
	email string,
	purpose entity.TokenPurpose,
) (*entity.AuthToken, error) {
	var token entity.AuthToken
	err := r.db.WithContext(ctx).
		Where("email = ? AND purpose = ?", email, purpose).
		First(&token).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) FindByValue(
	ctx context.Context,
	value string,
	purpose entity.TokenPurpose,
) (*entity.AuthToken, error) {
	var token entity.AuthToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND purpose = ?", value, purpose).
		First(&token).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&entity.AuthToken{}).
		Error
}
