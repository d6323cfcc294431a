package service

import (
	"context"
	"time"

	"authgate/internal/entity"
	"authgate/internal/repository"

	"github.com/google/uuid"
)

const DefaultTokenTTL = time.Hour

// TokenIssuer creates single-use email tokens. Issuing for an email that
// already holds a live token in the same namespace deletes the old one
// first, so at most one token per (email, purpose) is ever valid.
type TokenIssuer struct {
	tokens repository.TokenRepository
	clock  Clock
}

func NewTokenIssuer(tokens repository.TokenRepository, clock Clock) *TokenIssuer {
	if clock == nil {
		clock = RealClock{}
	}
	return &TokenIssuer{tokens: tokens, clock: clock}
}

func (i *TokenIssuer) Issue(
	ctx context.Context,
	email string,
	purpose entity.TokenPurpose,
	ttl time.Duration,
) (*entity.AuthToken, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	existing, err := i.tokens.FindByEmail(ctx, email, purpose)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := i.tokens.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
	}

	token := &entity.AuthToken{
		Email:     email,
		Token:     uuid.NewString(),
		Purpose:   purpose,
		ExpiresAt: i.clock.Now().Add(ttl),
	}
	if err := i.tokens.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}
