package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"authgate/api/middleware"
	"authgate/internal/dto"
	"authgate/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Service       *service.AuthService
	Validate      *validator.Validate
	CookieDomain  string
	SecureCookies bool
	SameSite      http.SameSite
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate) *AuthHandler {
	return &AuthHandler{
		Service:       svc,
		Validate:      validate,
		SecureCookies: true,
		SameSite:      http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req dto.SignUpRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeFailure(c, "Invalid fields")
	}
	if err := h.validate(req); err != nil {
		return writeFailure(c, "Invalid fields")
	}
	result, err := h.Service.SignUp(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return writeResult(c, result)
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req dto.VerifyEmailRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeFailure(c, "Invalid fields")
	}
	if err := h.validate(req); err != nil {
		return writeFailure(c, "Invalid fields")
	}
	result, err := h.Service.VerifyEmail(c.Request().Context(), req.Token)
	if err != nil {
		return err
	}
	return writeResult(c, result)
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	var req dto.SignInRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeFailure(c, "Invalid fields")
	}
	if err := h.validate(req); err != nil {
		return writeFailure(c, "Invalid fields")
	}
	result, session, err := h.Service.SignIn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	if session != nil {
		h.setSessionCookie(c, session.Token, session.ExpiresIn)
	}
	return writeResult(c, result)
}

func (h *AuthHandler) SignOut(c echo.Context) error {
	sessionID, ok := middleware.SessionIDFromContext(c)
	if !ok {
		h.clearSessionCookie(c)
		return c.Redirect(http.StatusFound, "/login")
	}
	var userID *uuid.UUID
	if id, ok := middleware.UserIDFromContext(c); ok {
		userID = &id
	}
	if err := h.Service.SignOut(c.Request().Context(), sessionID, userID); err != nil {
		return err
	}
	h.clearSessionCookie(c)
	return c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeFailure(c, "Invalid fields")
	}
	if err := h.validate(req); err != nil {
		return writeFailure(c, "Invalid fields")
	}
	result, err := h.Service.ResetPassword(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	return writeResult(c, result)
}

func (h *AuthHandler) NewPassword(c echo.Context) error {
	var req dto.NewPasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeFailure(c, "Invalid fields")
	}
	if req.Token == "" {
		return writeFailure(c, "Token is missing")
	}
	if err := h.validate(req); err != nil {
		return writeFailure(c, "Invalid fields")
	}
	result, err := h.Service.SetNewPassword(c.Request().Context(), req.Password, req.Token)
	if err != nil {
		return err
	}
	return writeResult(c, result)
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeFailure(c, "Unauthorized")
	}
	user, err := h.Service.GetUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if user == nil {
		return writeFailure(c, "User not found")
	}
	return c.JSON(http.StatusOK, dto.UserResponseFromEntity(user))
}

func (h *AuthHandler) ListUsers(c echo.Context) error {
	limit, offset := parseLimitOffset(c)
	users, err := h.Service.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.UserResponsesFromEntities(users))
}

func (h *AuthHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string, expiresIn time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   int(expiresIn.Seconds()),
		Expires:  time.Now().Add(expiresIn),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

// writeResult renders the action's verbatim message: 200 for a success
// message, 400 for an error message.
func writeResult(c echo.Context, result service.ActionResult) error {
	if result.Error != "" {
		return c.JSON(http.StatusBadRequest, result)
	}
	return c.JSON(http.StatusOK, result)
}

func writeFailure(c echo.Context, message string) error {
	return writeResult(c, service.ActionResult{Error: message})
}

func parseLimitOffset(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return limit, offset
}
