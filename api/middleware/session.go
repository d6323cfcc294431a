package middleware

import (
	"authgate/internal/repository"
	"authgate/internal/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const SessionCookieName = "session_token"

// SessionMiddleware resolves the session cookie into request context. A
// missing, unparsable or revoked session is not an error here; the request
// simply carries no session and the route guard decides what that means.
type SessionMiddleware struct {
	JWT      *utils.JWTManager
	Sessions repository.SessionRepository
}

func (m SessionMiddleware) Resolve(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			return next(c)
		}
		claims, err := m.JWT.ParseSessionToken(cookie.Value)
		if err != nil {
			return next(c)
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return next(c)
		}
		sessionID, err := uuid.Parse(claims.SessionID)
		if err != nil {
			return next(c)
		}
		if m.Sessions != nil {
			// The claims carry the opaque token whose hash is stored on the
			// session row. A revoked or expired row no longer matches.
			session, err := m.Sessions.FindByTokenHash(c.Request().Context(), utils.HashToken(claims.SessionToken))
			if err != nil || session == nil || session.ID != sessionID {
				return next(c)
			}
		}
		SetSessionContext(c, userID, sessionID)
		return next(c)
	}
}
