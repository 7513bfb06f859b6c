package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/arrangemylist/planner/internal/application/services"
	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// Context keys set by the session middleware
const (
	ContextKeyUser   = "user"
	ContextKeyUserID = "user_id"
)

var errInvalidID = entities.Validation("Invalid id")

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles account creation
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, issued, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, issued)
	return c.JSON(http.StatusCreated, ports.AuthResponse{Message: "Registration successful", User: user})
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, issued, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidCredentials) {
			h.logger.LogSecurityEvent("login_failed", req.Username, c.RealIP(), nil)
		}
		return err
	}

	h.setSessionCookie(c, issued)
	return c.JSON(http.StatusOK, ports.AuthResponse{Message: "Login successful", User: user})
}

// Logout ends the current session and clears the cookie
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(h.authService.CookieName()); err == nil {
		if err := h.authService.Logout(c.Request().Context(), cookie.Value); err != nil {
			return err
		}
	}

	c.SetCookie(&http.Cookie{
		Name:     h.authService.CookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.authService.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Logout successful"})
}

// Me returns the signed-in user
func (h *AuthHandler) Me(c echo.Context) error {
	cookie, err := c.Cookie(h.authService.CookieName())
	if err != nil {
		return entities.ErrSessionNotFound
	}

	user, err := h.authService.Authenticate(c.Request().Context(), cookie.Value)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) setSessionCookie(c echo.Context, issued *services.IssuedSession) {
	c.SetCookie(&http.Cookie{
		Name:     h.authService.CookieName(),
		Value:    issued.Token,
		Path:     "/",
		Expires:  issued.ExpiresAt,
		MaxAge:   int(time.Until(issued.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.authService.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

// ProfileHandler handles the current user's profile
type ProfileHandler struct {
	profileService *services.ProfileService
	logger         *logger.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService, logger *logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		logger:         logger,
	}
}

// GetProfile returns the current user
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	user, err := h.profileService.Get(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile changes display name, email or profile image
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req ports.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.profileService.Update(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports.AuthResponse{Message: "Profile updated successfully", User: user})
}

// ChangePassword replaces the current user's password
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	var req ports.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.profileService.ChangePassword(c.Request().Context(), getUserIDFromContext(c), req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Password changed successfully"})
}

// bindAndValidate decodes the body into req and runs the validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return entities.Validation("Invalid request format")
	}
	return c.Validate(req)
}

// getUserIDFromContext extracts the authenticated user's id
func getUserIDFromContext(c echo.Context) int64 {
	id, _ := c.Get(ContextKeyUserID).(int64)
	return id
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
