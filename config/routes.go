package config

// Route classification consumed by the route guard. Auth routes render
// sign-in/registration flows and bounce already-authenticated visitors to
// the protected area; everything not listed below requires a session.

var PublicRoutes = []string{
	"/",
}

var AuthRoutes = []string{
	"/login",
	"/register",
	"/verify-email",
	"/new-password",
	"/reset-password",
}

const (
	APIAuthPrefix  = "/api/auth"
	ProtectedRoute = "/users"
	LoginRoute     = "/login"
)
