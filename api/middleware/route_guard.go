package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
)

// RouteTable is the path classification the guard decides against.
type RouteTable struct {
	APIAuthPrefix  string
	AuthRoutes     []string
	PublicRoutes   []string
	ProtectedRoute string
	LoginRoute     string
}

// Decision is allow-or-redirect. RedirectTo is set only when Allow is false.
type Decision struct {
	Allow      bool
	RedirectTo string
}

func allow() Decision {
	return Decision{Allow: true}
}

func redirectTo(target string) Decision {
	return Decision{RedirectTo: target}
}

// Decide classifies path and returns the guard decision. First match wins:
// the api-auth prefix is always allowed, auth routes bounce signed-in
// visitors to the protected area, public routes are open, and anything else
// requires a session.
func Decide(path string, hasSession bool, routes RouteTable) Decision {
	if strings.HasPrefix(path, routes.APIAuthPrefix) {
		return allow()
	}
	if slices.Contains(routes.AuthRoutes, path) {
		if hasSession {
			return redirectTo(routes.ProtectedRoute)
		}
		return allow()
	}
	if slices.Contains(routes.PublicRoutes, path) {
		return allow()
	}
	if !hasSession {
		return redirectTo(routes.LoginRoute)
	}
	return allow()
}

// RouteGuard applies Decide to every request before it reaches a handler.
// It has no side effects beyond issuing the redirect.
func RouteGuard(routes RouteTable) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			_, hasSession := SessionIDFromContext(c)
			decision := Decide(c.Request().URL.Path, hasSession, routes)
			if !decision.Allow {
				return c.Redirect(http.StatusFound, decision.RedirectTo)
			}
			return next(c)
		}
	}
}
