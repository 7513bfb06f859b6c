package server

import (
	"errors"

	"github.com/labstack/echo/v4"

	httpHandlers "github.com/arrangemylist/planner/internal/adapters/http"
	"github.com/arrangemylist/planner/internal/domain/entities"
)

var errAuthRequired = &entities.Error{Kind: entities.ErrUnauthorized, Message: "Authentication required"}

// requireSession resolves the session cookie to a user before the handler runs
func (s *Server) requireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(s.auth.CookieName())
			if err != nil || cookie.Value == "" {
				return errAuthRequired
			}

			user, err := s.auth.Authenticate(c.Request().Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, entities.ErrUnauthorized) {
					s.logger.LogSecurityEvent("invalid_session", "", c.RealIP(), map[string]interface{}{
						"path": c.Request().URL.Path,
					})
					return errAuthRequired
				}
				return err
			}

			c.Set(httpHandlers.ContextKeyUser, user)
			c.Set(httpHandlers.ContextKeyUserID, user.ID)

			return next(c)
		}
	}
}
