package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"authgate/internal/entity"
	"authgate/internal/repository"

	"github.com/google/uuid"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// plainHasher avoids bcrypt cost in tests while keeping mismatches real.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (plainHasher) Verify(hash string, password string) bool {
	return hash == "hashed:"+password
}

type memUserRepo struct {
	mutex sync.Mutex
	users map[uuid.UUID]entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]entity.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return errors.New("duplicate email")
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if u, ok := r.users[id]; ok {
		copied := u
		return &copied, nil
	}
	return nil, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return errors.New("user not found")
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) SetEmailVerified(_ context.Context, userID uuid.UUID, at time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.EmailVerifiedAt = &at
	r.users[userID] = u
	return nil
}

func (r *memUserRepo) List(_ context.Context, _, _ int) ([]entity.User, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	users := make([]entity.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, u)
	}
	return users, nil
}

type memTokenRepo struct {
	mutex  sync.Mutex
	tokens map[uuid.UUID]entity.AuthToken

	failDelete error
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[uuid.UUID]entity.AuthToken)}
}

func (r *memTokenRepo) Create(_ context.Context, token *entity.AuthToken) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	r.tokens[token.ID] = *token
	return nil
}

func (r *memTokenRepo) FindByEmail(_ context.Context, email string, purpose entity.TokenPurpose) (*entity.AuthToken, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, t := range r.tokens {
		if t.Email == email && t.Purpose == purpose {
			copied := t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memTokenRepo) FindByValue(_ context.Context, value string, purpose entity.TokenPurpose) (*entity.AuthToken, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	for _, t := range r.tokens {
		if t.Token == value && t.Purpose == purpose {
			copied := t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memTokenRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.failDelete != nil {
		return r.failDelete
	}
	delete(r.tokens, id)
	return nil
}

func (r *memTokenRepo) count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.tokens)
}

type memTxManager struct {
	users  *memUserRepo
	tokens *memTokenRepo
}

func (m *memTxManager) Do(_ context.Context, fn func(repository.Repositories) error) error {
	return fn(repository.Repositories{Users: m.users, Tokens: m.tokens})
}

type recordedEmail struct {
	Email string
	Token string
}

type fakeEmailSender struct {
	mutex         sync.Mutex
	verifications []recordedEmail
	resets        []recordedEmail
	fail          error
}

func (s *fakeEmailSender) SendVerificationEmail(_ context.Context, email string, token string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.verifications = append(s.verifications, recordedEmail{Email: email, Token: token})
	return nil
}

func (s *fakeEmailSender) SendPasswordResetEmail(_ context.Context, email string, token string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.resets = append(s.resets, recordedEmail{Email: email, Token: token})
	return nil
}

func (s *fakeEmailSender) lastVerification() (recordedEmail, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if len(s.verifications) == 0 {
		return recordedEmail{}, false
	}
	return s.verifications[len(s.verifications)-1], true
}

type stubSessionIssuer struct {
	signInFn     func(ctx context.Context, email, password string) (*Session, error)
	signOutFn    func(ctx context.Context, sessionID uuid.UUID) error
	signIns      int
	revokedUsers []uuid.UUID
}

func (s *stubSessionIssuer) SignIn(ctx context.Context, email, password string) (*Session, error) {
	s.signIns++
	if s.signInFn == nil {
		return &Session{ID: uuid.New(), Token: "session-jwt", ExpiresIn: time.Hour}, nil
	}
	return s.signInFn(ctx, email, password)
}

func (s *stubSessionIssuer) SignOut(ctx context.Context, sessionID uuid.UUID) error {
	if s.signOutFn == nil {
		return nil
	}
	return s.signOutFn(ctx, sessionID)
}

func (s *stubSessionIssuer) RevokeAll(_ context.Context, userID uuid.UUID) error {
	s.revokedUsers = append(s.revokedUsers, userID)
	return nil
}

type authFixture struct {
	users    *memUserRepo
	tokens   *memTokenRepo
	emails   *fakeEmailSender
	sessions *stubSessionIssuer
	clock    *fakeClock
	svc      *AuthService
}

func newAuthFixture() *authFixture {
	users := newMemUserRepo()
	tokens := newMemTokenRepo()
	emails := &fakeEmailSender{}
	sessions := &stubSessionIssuer{}
	clock := newFakeClock()
	hasher := plainHasher{}

	svc := NewAuthService(
		users,
		tokens,
		&memTxManager{users: users, tokens: tokens},
		nil,
		NewCredentialVerifier(users, hasher),
		NewTokenIssuer(tokens, clock),
		emails,
		sessions,
		hasher,
		clock,
		AuthConfig{},
	)
	return &authFixture{
		users:    users,
		tokens:   tokens,
		emails:   emails,
		sessions: sessions,
		clock:    clock,
		svc:      svc,
	}
}
