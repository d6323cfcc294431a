package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"authgate/internal/entity"
	"authgate/internal/repository"
	"authgate/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActionResult is what every auth action hands back to the transport layer.
// Exactly one of Success or Error is set; both are human-readable messages
// displayed verbatim. Store and email failures are returned as a separate
// error and mean the action did not complete.
type ActionResult struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

func succeed(message string) ActionResult {
	return ActionResult{Success: message}
}

func fail(message string) ActionResult {
	return ActionResult{Error: message}
}

// AuthService orchestrates the sign-up, verification, sign-in and password
// reset flows over the injected collaborators.
type AuthService struct {
	users    repository.UserRepository
	tokens   repository.TokenRepository
	tx       repository.TxManager
	events   repository.AuthEventRepository
	verifier *CredentialVerifier
	issuer   *TokenIssuer
	emails   EmailSender
	sessions SessionIssuer
	hasher   PasswordHasher
	clock    Clock
	config   AuthConfig
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	tx repository.TxManager,
	events repository.AuthEventRepository,
	verifier *CredentialVerifier,
	issuer *TokenIssuer,
	emails EmailSender,
	sessions SessionIssuer,
	hasher PasswordHasher,
	clock Clock,
	config AuthConfig,
) *AuthService {
	if clock == nil {
		clock = RealClock{}
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		tx:       tx,
		events:   events,
		verifier: verifier,
		issuer:   issuer,
		emails:   emails,
		sessions: sessions,
		hasher:   hasher,
		clock:    clock,
		config:   config,
	}
}

// SignUp creates an unverified account and emails a verification token.
// There is no upsert: a second call for the same email fails.
func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (ActionResult, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return fail("Invalid fields"), nil
	}

	email = utils.NormalizeEmail(email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return ActionResult{}, err
	}
	if existing != nil {
		return fail("Email already in use. Please try a different email"), nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return ActionResult{}, err
	}

	user := &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return ActionResult{}, err
	}

	if err := s.sendVerificationToken(ctx, email); err != nil {
		return ActionResult{}, err
	}

	_ = s.logEvent(ctx, &user.ID, entity.ActionSignUp, map[string]any{"email": email})
	return succeed("Verification email sent! Please check your email"), nil
}

// VerifyEmail consumes a verification token. The user mutation and the
// token deletion commit together or not at all.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenValue string) (ActionResult, error) {
	token, err := s.tokens.FindByValue(ctx, tokenValue, entity.PurposeEmailVerify)
	if err != nil {
		return ActionResult{}, err
	}
	if token == nil {
		return fail("Token does not exist"), nil
	}
	if token.ExpiresAt.Before(s.clock.Now()) {
		return fail("Token has expired"), nil
	}

	user, err := s.users.FindByEmail(ctx, token.Email)
	if err != nil {
		return ActionResult{}, err
	}
	if user == nil {
		return fail("Email does not exist"), nil
	}

	verifiedAt := s.clock.Now()
	err = s.tx.Do(ctx, func(r repository.Repositories) error {
		if err := r.Users.SetEmailVerified(ctx, user.ID, verifiedAt); err != nil {
			return err
		}
		return r.Tokens.Delete(ctx, token.ID)
	})
	if err != nil {
		return ActionResult{}, err
	}

	_ = s.logEvent(ctx, &user.ID, entity.ActionEmailVerified, nil)
	return succeed("Email verified"), nil
}

// SignIn verifies credentials and delegates session issuance. An unverified
// email is not a denial: a fresh verification token is mailed instead and
// no session is created.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (ActionResult, *Session, error) {
	email = utils.NormalizeEmail(email)

	user, err := s.verifier.Verify(ctx, email, password)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return fail("Email does not exist"), nil, nil
	case errors.Is(err, ErrInvalidPassword):
		_ = s.logEvent(ctx, s.userIDOrNil(user), entity.ActionSignInFailed, map[string]any{"email": email})
		return fail("Invalid password"), nil, nil
	case errors.Is(err, ErrEmailNotVerified):
		if err := s.sendVerificationToken(ctx, user.Email); err != nil {
			return ActionResult{}, nil, err
		}
		return succeed("Confirmation email sent"), nil, nil
	case err != nil:
		return ActionResult{}, nil, err
	}

	session, err := s.sessions.SignIn(ctx, email, password)
	if err != nil {
		var sessionErr *SessionError
		if !errors.As(err, &sessionErr) {
			return ActionResult{}, nil, err
		}
		_ = s.logEvent(ctx, &user.ID, entity.ActionSignInFailed, map[string]any{"email": email})
		switch sessionErr.Kind {
		case SessionErrorCallbackRoute, SessionErrorCredentials:
			return fail("Invalid credentials"), nil, nil
		default:
			return fail("Something went wrong"), nil, nil
		}
	}

	_ = s.logEvent(ctx, &user.ID, entity.ActionSignInSuccess, map[string]any{"session_id": session.ID.String()})
	return succeed("Successfully logged in"), session, nil
}

func (s *AuthService) SignOut(ctx context.Context, sessionID uuid.UUID, userID *uuid.UUID) error {
	if err := s.sessions.SignOut(ctx, sessionID); err != nil {
		return err
	}
	_ = s.logEvent(ctx, userID, entity.ActionSignOut, nil)
	return nil
}

// ResetPassword mails a password-reset token. An unknown email is reported
// as such; the enumeration channel is the observed product behavior and is
// kept until product decides otherwise.
func (s *AuthService) ResetPassword(ctx context.Context, email string) (ActionResult, error) {
	email = utils.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return ActionResult{}, err
	}
	if user == nil {
		return fail("Email not found"), nil
	}

	token, err := s.issuer.Issue(ctx, email, entity.PurposePasswordReset, s.config.ResetTokenTTL)
	if err != nil {
		return ActionResult{}, err
	}
	if err := s.emails.SendPasswordResetEmail(ctx, token.Email, token.Token); err != nil {
		return ActionResult{}, err
	}

	return succeed("Reset email sent! Please check your inbox"), nil
}

// SetNewPassword consumes a reset token and replaces the password hash.
// The password update and the token deletion are two separate writes; a
// failure between them leaves the token consumed-in-effect but present.
// Existing sessions for the user are revoked best-effort afterwards.
func (s *AuthService) SetNewPassword(ctx context.Context, password, tokenValue string) (ActionResult, error) {
	if strings.TrimSpace(tokenValue) == "" {
		return fail("Token is missing"), nil
	}
	if strings.TrimSpace(password) == "" {
		return fail("Invalid fields"), nil
	}

	token, err := s.tokens.FindByValue(ctx, tokenValue, entity.PurposePasswordReset)
	if err != nil {
		return ActionResult{}, err
	}
	if token == nil {
		return fail("Invalid token"), nil
	}
	if token.ExpiresAt.Before(s.clock.Now()) {
		return fail("Token has expired"), nil
	}

	user, err := s.users.FindByEmail(ctx, token.Email)
	if err != nil {
		return ActionResult{}, err
	}
	if user == nil {
		return fail("Email does not exist"), nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return ActionResult{}, err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return ActionResult{}, err
	}

	if err := s.tokens.Delete(ctx, token.ID); err != nil {
		return ActionResult{}, err
	}

	_ = s.sessions.RevokeAll(ctx, user.ID)
	_ = s.logEvent(ctx, &user.ID, entity.ActionPasswordReset, nil)
	return succeed("Your password has been updated"), nil
}

func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]entity.User, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *AuthService) sendVerificationToken(ctx context.Context, email string) error {
	token, err := s.issuer.Issue(ctx, email, entity.PurposeEmailVerify, s.config.VerificationTokenTTL)
	if err != nil {
		return err
	}
	return s.emails.SendVerificationEmail(ctx, token.Email, token.Token)
}

func (s *AuthService) userIDOrNil(user *entity.User) *uuid.UUID {
	if user == nil {
		return nil
	}
	return &user.ID
}

func (s *AuthService) logEvent(
	ctx context.Context,
	userID *uuid.UUID,
	action entity.AuthAction,
	metadata map[string]any,
) error {
	if s.events == nil {
		return nil
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(bytes)
	}
	return s.events.Log(ctx, &entity.AuthEvent{
		UserID:   userID,
		Action:   action,
		Metadata: payload,
	})
}
