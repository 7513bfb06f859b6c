package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	httpHandlers "github.com/arrangemylist/planner/internal/adapters/http"
	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// statusFor maps an error returned by a handler to its HTTP status
func statusFor(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}

	switch {
	case errors.Is(err, entities.ErrValidation), errors.Is(err, entities.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, entities.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the user-facing message for err
func messageFor(err error, code int) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return msg
		}
		return http.StatusText(he.Code)
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return fmt.Sprintf("Validation failed: %s", ve.Error())
	}
	var de *entities.Error
	if errors.As(err, &de) {
		return de.Message
	}
	if code == http.StatusInternalServerError {
		return "Internal server error"
	}
	return http.StatusText(code)
}

// customErrorHandler renders every error as {"error": message}
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := statusFor(err)
		if code >= http.StatusInternalServerError {
			reqLogger := logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID))
			if userID, ok := c.Get(httpHandlers.ContextKeyUserID).(int64); ok {
				reqLogger = reqLogger.WithUserID(userID)
			}
			reqLogger.WithError(err).Errorw("Internal server error", "path", c.Request().URL.Path)
		}

		var sendErr error
		if c.Request().Method == http.MethodHead {
			sendErr = c.NoContent(code)
		} else {
			sendErr = c.JSON(code, ports.ErrorResponse{Error: messageFor(err, code)})
		}
		if sendErr != nil {
			logger.Errorw("Error sending response", "error", sendErr)
		}
	}
}
