// Package notify is the single sink every client-side failure and
// confirmation is reported through.
package notify

import (
	"errors"
	"sync"

	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
)

// Level is the severity of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is one toast-style message
type Notification struct {
	Level   Level
	Message string
	Err     error
}

// Notifier receives notifications from the stores. Implementations must be
// safe for concurrent use.
type Notifier interface {
	Notify(n Notification)
}

// Success builds a success notification
func Success(message string) Notification {
	return Notification{Level: LevelSuccess, Message: message}
}

// Failure builds an error notification carrying the cause
func Failure(message string, err error) Notification {
	return Notification{Level: LevelError, Message: message, Err: err}
}

// Kind reports which error kind err belongs to, or nil for unknown errors
func Kind(err error) error {
	for _, kind := range []error{
		entities.ErrUnauthorized,
		entities.ErrNotFound,
		entities.ErrValidation,
		entities.ErrConflict,
		entities.ErrNetwork,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// LogNotifier writes notifications to the application logger and calls
// OnAuthExpired when a failure says the session is gone.
type LogNotifier struct {
	logger        *logger.Logger
	onAuthExpired func()
}

// NewLogNotifier creates a notifier backed by the given logger
func NewLogNotifier(logger *logger.Logger, onAuthExpired func()) *LogNotifier {
	return &LogNotifier{
		logger:        logger.WithComponent("notify"),
		onAuthExpired: onAuthExpired,
	}
}

func (n *LogNotifier) Notify(note Notification) {
	switch note.Level {
	case LevelError:
		fields := []interface{}{"message", note.Message}
		if note.Err != nil {
			fields = append(fields, "error", note.Err.Error())
		}
		n.logger.Warnw("Notification", fields...)
		if n.onAuthExpired != nil && errors.Is(note.Err, entities.ErrUnauthorized) {
			n.onAuthExpired()
		}
	default:
		n.logger.Infow("Notification", "level", string(note.Level), "message", note.Message)
	}
}

// Recorder keeps every notification in memory. Useful for tests and for
// renderers that drain messages between frames.
type Recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

// All returns a copy of the recorded notifications
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notes...)
}

// Messages returns the recorded messages in order
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notes))
	for i, n := range r.notes {
		out[i] = n.Message
	}
	return out
}

// Drain returns and clears the recorded notifications
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notes
	r.notes = nil
	return out
}

// Multi fans a notification out to several notifiers
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, target := range m {
		if target != nil {
			target.Notify(n)
		}
	}
}

// Discard drops every notification
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Notification) {}
