package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/arrangemylist/planner/internal/domain/entities"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id int64) (*entities.User, error)
	// GetByLogin looks a user up by username or email.
	GetByLogin(ctx context.Context, login string) (*entities.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	EmailTakenByOther(ctx context.Context, email string, userID int64) (bool, error)
	Update(ctx context.Context, user *entities.User) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// SessionRepository defines the interface for server-side session storage
type SessionRepository interface {
	Create(ctx context.Context, session *entities.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TaskRepository defines the interface for task data operations. Every call
// is scoped to the owning user; rows of other users behave as absent.
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) error
	GetByID(ctx context.Context, userID, id int64) (*entities.Task, error)
	Update(ctx context.Context, task *entities.Task) error
	Reorder(ctx context.Context, userID, id int64, status entities.TaskStatus, position int) error
	Delete(ctx context.Context, userID, id int64) error
	// List returns the user's tasks ordered by status, position, then
	// newest first.
	List(ctx context.Context, userID int64) ([]entities.Task, error)
	MaxPosition(ctx context.Context, userID int64, status entities.TaskStatus) (int, error)
}

// NoteRepository defines the interface for note data operations
type NoteRepository interface {
	Create(ctx context.Context, note *entities.Note) error
	GetByID(ctx context.Context, userID, id int64) (*entities.Note, error)
	Update(ctx context.Context, note *entities.Note) error
	TogglePin(ctx context.Context, userID, id int64) (bool, error)
	Delete(ctx context.Context, userID, id int64) error
	// List returns pinned notes first, then the most recently updated.
	List(ctx context.Context, userID int64) ([]entities.Note, error)
}

// EventRepository defines the interface for calendar event data operations
type EventRepository interface {
	Create(ctx context.Context, event *entities.CalendarEvent) error
	GetByID(ctx context.Context, userID, id int64) (*entities.CalendarEvent, error)
	Update(ctx context.Context, event *entities.CalendarEvent) error
	Delete(ctx context.Context, userID, id int64) error
	List(ctx context.Context, userID int64, filter EventFilter) ([]entities.CalendarEvent, error)
}

// TimeRange is a closed interval of instants
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// EventFilter restricts an event listing. Within keeps events entirely
// inside the range; Overlapping keeps events touching it. Both nil lists
// every event.
type EventFilter struct {
	Within      *TimeRange
	Overlapping *TimeRange
}

// MonthRange returns the instants spanning a calendar month in loc, from the
// first day at midnight to the last day at 23:59:59.
func MonthRange(year int, month time.Month, loc *time.Location) TimeRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return TimeRange{Start: start, End: end}
}
