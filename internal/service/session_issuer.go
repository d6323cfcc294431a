package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"authgate/internal/entity"
	"authgate/internal/repository"
	"authgate/internal/utils"

	"github.com/google/uuid"
)

// Session is the result of a successful sign-in. Token is the signed JWT the
// transport layer puts in the session cookie.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresIn time.Duration
}

type SessionErrorKind int

const (
	SessionErrorCallbackRoute SessionErrorKind = iota
	SessionErrorCredentials
	SessionErrorOther
)

// SessionError is a classified sign-in failure. Errors that carry no
// classification (store outages and the like) are returned bare and must
// propagate past the dispatcher untouched.
type SessionError struct {
	Kind  SessionErrorKind
	Cause error
}

func (e *SessionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("session issuance failed: %v", e.Cause)
	}
	return "session issuance failed"
}

func (e *SessionError) Unwrap() error {
	return e.Cause
}

type SessionIssuer interface {
	SignIn(ctx context.Context, email string, password string) (*Session, error)
	SignOut(ctx context.Context, sessionID uuid.UUID) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// JWTSessionIssuer re-authorizes the credentials itself, creates a session
// row (hashed opaque token) and signs a JWT referencing it.
type JWTSessionIssuer struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	hasher   PasswordHasher
	jwt      *utils.JWTManager
	clock    Clock
	ttl      time.Duration
}

func NewJWTSessionIssuer(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	hasher PasswordHasher,
	jwt *utils.JWTManager,
	clock Clock,
	ttl time.Duration,
) *JWTSessionIssuer {
	if clock == nil {
		clock = RealClock{}
	}
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &JWTSessionIssuer{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		jwt:      jwt,
		clock:    clock,
		ttl:      ttl,
	}
}

func (i *JWTSessionIssuer) SignIn(ctx context.Context, email string, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil, &SessionError{Kind: SessionErrorCallbackRoute, Cause: ErrInvalidInput}
	}

	user, err := i.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !i.hasher.Verify(user.PasswordHash, password) {
		return nil, &SessionError{Kind: SessionErrorCredentials, Cause: ErrInvalidPassword}
	}
	if user.EmailVerifiedAt == nil {
		return nil, &SessionError{Kind: SessionErrorCallbackRoute, Cause: ErrEmailNotVerified}
	}

	opaque, err := utils.GenerateRandomToken(48)
	if err != nil {
		return nil, err
	}
	session := &entity.Session{
		UserID:    user.ID,
		TokenHash: utils.HashToken(opaque),
		ExpiresAt: i.clock.Now().Add(i.ttl),
	}
	if err := i.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	signed, expiresIn, err := i.jwt.IssueSessionToken(user.ID.String(), session.ID.String(), opaque)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        session.ID,
		UserID:    user.ID,
		Token:     signed,
		ExpiresIn: expiresIn,
	}, nil
}

func (i *JWTSessionIssuer) SignOut(ctx context.Context, sessionID uuid.UUID) error {
	return i.sessions.Revoke(ctx, sessionID)
}

func (i *JWTSessionIssuer) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return i.sessions.RevokeAllByUser(ctx, userID)
}
