package routes

import (
	"net/http"
	"time"

	"authgate/api/handler"
	"authgate/api/middleware"
	"authgate/config"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo      *echo.Echo
	Auth      *handler.AuthHandler
	Session   middleware.SessionMiddleware
	AuthRate  *middleware.RateLimiter
	LoginRate *middleware.RateLimiter
}

func NewRouter(e *echo.Echo, authHandler *handler.AuthHandler, session middleware.SessionMiddleware) *Router {
	return &Router{
		Echo:      e,
		Auth:      authHandler,
		Session:   session,
		AuthRate:  middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate: middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func GuardTable() middleware.RouteTable {
	return middleware.RouteTable{
		APIAuthPrefix:  config.APIAuthPrefix,
		AuthRoutes:     config.AuthRoutes,
		PublicRoutes:   config.PublicRoutes,
		ProtectedRoute: config.ProtectedRoute,
		LoginRoute:     config.LoginRoute,
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo

	// Session resolution runs before the guard on every request; the guard
	// sees every navigable path.
	e.Use(r.Session.Resolve)
	e.Use(middleware.RouteGuard(GuardTable()))

	e.POST(config.APIAuthPrefix+"/register", r.Auth.SignUp, r.AuthRate.Middleware())
	e.POST(config.APIAuthPrefix+"/verify-email", r.Auth.VerifyEmail, r.AuthRate.Middleware())
	e.POST(config.APIAuthPrefix+"/login", r.Auth.SignIn, r.LoginRate.Middleware())
	e.POST(config.APIAuthPrefix+"/logout", r.Auth.SignOut)
	e.POST(config.APIAuthPrefix+"/password/forgot", r.Auth.ResetPassword, r.LoginRate.Middleware())
	e.POST(config.APIAuthPrefix+"/password/new", r.Auth.NewPassword, r.AuthRate.Middleware())

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/me", r.Auth.Me)
	e.GET(config.ProtectedRoute, r.Auth.ListUsers)
}
