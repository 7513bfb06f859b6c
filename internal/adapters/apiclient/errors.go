package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/ports"
)

// Error is a non-2xx response. Message is the server's "error" field, or the
// status text when the body carried none.
type Error struct {
	Status  int
	Message string
}

func newError(status int, body []byte) *Error {
	var resp ports.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil || strings.TrimSpace(resp.Error) == "" {
		resp.Error = http.StatusText(status)
	}
	return &Error{Status: status, Message: resp.Error}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Unwrap maps the status onto an error kind so callers can use errors.Is
func (e *Error) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return entities.ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return entities.ErrNotFound
	case e.Status == http.StatusConflict:
		return entities.ErrConflict
	case e.Status == http.StatusTooManyRequests, e.Status >= 500:
		return entities.ErrNetwork
	case e.Status >= 400:
		return entities.ErrValidation
	default:
		return nil
	}
}
