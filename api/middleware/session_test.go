package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"authgate/internal/entity"
	"authgate/internal/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type stubSessionRepo struct {
	sessions map[string]entity.Session
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[string]entity.Session)}
}

func (r *stubSessionRepo) Create(_ context.Context, s *entity.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.TokenHash] = *s
	return nil
}

func (r *stubSessionRepo) FindByTokenHash(_ context.Context, hash string) (*entity.Session, error) {
	if s, ok := r.sessions[hash]; ok && s.RevokedAt == nil {
		copied := s
		return &copied, nil
	}
	return nil, nil
}

func (r *stubSessionRepo) Revoke(_ context.Context, sessionID uuid.UUID) error {
	now := time.Now()
	for hash, s := range r.sessions {
		if s.ID == sessionID {
			s.RevokedAt = &now
			r.sessions[hash] = s
		}
	}
	return nil
}

func (r *stubSessionRepo) RevokeAllByUser(_ context.Context, userID uuid.UUID) error {
	now := time.Now()
	for hash, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
			r.sessions[hash] = s
		}
	}
	return nil
}

func resolveWithCookie(t *testing.T, m SessionMiddleware, cookie string) (uuid.UUID, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID uuid.UUID
	var gotOK bool
	handler := m.Resolve(func(c echo.Context) error {
		gotID, gotOK = SessionIDFromContext(c)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return gotID, gotOK
}

func TestSessionMiddlewareResolve(t *testing.T) {
	manager := &utils.JWTManager{Secret: []byte("test-secret"), Issuer: "test"}
	repo := newStubSessionRepo()
	m := SessionMiddleware{JWT: manager, Sessions: repo}

	userID := uuid.New()
	opaque, err := utils.GenerateRandomToken(48)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	session := &entity.Session{
		UserID:    userID,
		TokenHash: utils.HashToken(opaque),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := repo.Create(context.Background(), session); err != nil {
		t.Fatalf("create: %v", err)
	}
	cookie, _, err := manager.IssueSessionToken(userID.String(), session.ID.String(), opaque)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	t.Run("valid cookie resolves the session", func(t *testing.T) {
		gotID, ok := resolveWithCookie(t, m, cookie)
		if !ok || gotID != session.ID {
			t.Fatalf("expected session %s in context, got %s ok=%v", session.ID, gotID, ok)
		}
	})

	t.Run("no cookie means no session", func(t *testing.T) {
		if _, ok := resolveWithCookie(t, m, ""); ok {
			t.Fatal("expected no session in context")
		}
	})

	t.Run("foreign signature is ignored", func(t *testing.T) {
		forged, _, err := (&utils.JWTManager{Secret: []byte("other-secret")}).
			IssueSessionToken(userID.String(), session.ID.String(), opaque)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, ok := resolveWithCookie(t, m, forged); ok {
			t.Fatal("expected a forged cookie to carry no session")
		}
	})

	t.Run("token not matching the stored hash is ignored", func(t *testing.T) {
		other, _ := utils.GenerateRandomToken(48)
		mismatched, _, err := manager.IssueSessionToken(userID.String(), session.ID.String(), other)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, ok := resolveWithCookie(t, m, mismatched); ok {
			t.Fatal("expected a mismatched token to carry no session")
		}
	})

	t.Run("revoked session no longer resolves", func(t *testing.T) {
		if err := repo.Revoke(context.Background(), session.ID); err != nil {
			t.Fatalf("revoke: %v", err)
		}
		if _, ok := resolveWithCookie(t, m, cookie); ok {
			t.Fatal("expected a revoked session not to resolve")
		}
	})
}
