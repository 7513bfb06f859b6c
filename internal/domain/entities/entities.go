package entities

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Error kinds. Every domain error wraps exactly one of these so callers can
// branch with errors.Is regardless of the message.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrNetwork      = errors.New("network failure")
)

// Error is a domain error carrying a user-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Validation returns a validation error with the given message
func Validation(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

// Common errors
var (
	ErrUserNotFound        = &Error{Kind: ErrNotFound, Message: "User not found"}
	ErrTaskNotFound        = &Error{Kind: ErrNotFound, Message: "Task not found"}
	ErrNoteNotFound        = &Error{Kind: ErrNotFound, Message: "Note not found"}
	ErrEventNotFound       = &Error{Kind: ErrNotFound, Message: "Event not found"}
	ErrSessionNotFound     = &Error{Kind: ErrUnauthorized, Message: "Not authenticated"}
	ErrInvalidCredentials  = &Error{Kind: ErrUnauthorized, Message: "Invalid credentials"}
	ErrWrongPassword       = &Error{Kind: ErrUnauthorized, Message: "Current password is incorrect"}
	ErrUserExists          = &Error{Kind: ErrConflict, Message: "Username or email already exists"}
	ErrEmailInUse          = &Error{Kind: ErrConflict, Message: "Email already in use"}
	ErrNothingToUpdate     = &Error{Kind: ErrValidation, Message: "No fields to update"}
	ErrEventTimesInverted  = &Error{Kind: ErrValidation, Message: "End time must be after start time"}
	ErrTitleRequired       = &Error{Kind: ErrValidation, Message: "Title is required"}
	ErrEventFieldsRequired = &Error{Kind: ErrValidation, Message: "Title, start time, and end time are required"}
)

// TaskStatus is a kanban column.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Statuses lists the board columns in display order.
var Statuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Note color tags understood by the clients' palettes.
const (
	NoteColorDefault = "default"
	NoteColorYellow  = "yellow"
	NoteColorGreen   = "green"
	NoteColorBlue    = "blue"
	NoteColorPink    = "pink"
	NoteColorPurple  = "purple"
)

// DefaultEventColor is assigned to events created without a color.
const DefaultEventColor = "#4285f4"

// User represents an account owning tasks, notes and events
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	DisplayName  string    `json:"displayName" db:"display_name"`
	ProfileImage *string   `json:"profileImage" db:"profile_image"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Session is the server-side record behind a session cookie.
type Session struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// IsExpired checks if the session is past its expiry at the given instant
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Task is a kanban card
type Task struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	Status      TaskStatus `json:"status" db:"status"`
	Priority    Priority   `json:"priority" db:"priority"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	Position    int        `json:"position" db:"position"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Note is a free-form note, optionally pinned
type Note struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Color     string    `json:"color" db:"color"`
	IsPinned  bool      `json:"is_pinned" db:"is_pinned"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CalendarEvent is a (possibly multi-day) calendar entry
type CalendarEvent struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	StartTime   time.Time `json:"start_time" db:"start_time"`
	EndTime     time.Time `json:"end_time" db:"end_time"`
	Color       string    `json:"color" db:"color"`
	AllDay      bool      `json:"all_day" db:"all_day"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks the event's time ordering
func (e *CalendarEvent) Validate() error {
	if e.EndTime.Before(e.StartTime) {
		return ErrEventTimesInverted
	}
	return nil
}

// TaskGroups is the board partition returned by GET /api/tasks.
type TaskGroups struct {
	Todo       []Task `json:"todo"`
	InProgress []Task `json:"in_progress"`
	Done       []Task `json:"done"`
}

// NewTaskGroups returns groups with empty, non-nil columns.
func NewTaskGroups() TaskGroups {
	return TaskGroups{Todo: []Task{}, InProgress: []Task{}, Done: []Task{}}
}

// GroupTasks partitions tasks by status, keeping their relative order.
// Tasks with a status outside the three columns are dropped.
func GroupTasks(tasks []Task) TaskGroups {
	groups := NewTaskGroups()
	for _, t := range tasks {
		if col := groups.column(t.Status); col != nil {
			*col = append(*col, t)
		}
	}
	return groups
}

func (g *TaskGroups) column(status TaskStatus) *[]Task {
	switch status {
	case TaskStatusTodo:
		return &g.Todo
	case TaskStatusInProgress:
		return &g.InProgress
	case TaskStatusDone:
		return &g.Done
	default:
		return nil
	}
}

// Column returns the tasks of one status column.
func (g TaskGroups) Column(status TaskStatus) []Task {
	if col := g.column(status); col != nil {
		return *col
	}
	return nil
}

// SetColumn replaces one status column.
func (g *TaskGroups) SetColumn(status TaskStatus, tasks []Task) {
	if col := g.column(status); col != nil {
		*col = tasks
	}
}

// All flattens the groups in column order.
func (g TaskGroups) All() []Task {
	all := make([]Task, 0, len(g.Todo)+len(g.InProgress)+len(g.Done))
	all = append(all, g.Todo...)
	all = append(all, g.InProgress...)
	return append(all, g.Done...)
}

// Clone returns a deep copy safe to hand to other goroutines.
func (g TaskGroups) Clone() TaskGroups {
	clone := NewTaskGroups()
	for _, status := range Statuses {
		clone.SetColumn(status, append([]Task{}, g.Column(status)...))
	}
	return clone
}

// SortColumn orders a column by ascending position; ties go to the most
// recently created task, then the higher id.
func SortColumn(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// SortNotes puts pinned notes first, then the most recently updated.
func SortNotes(notes []Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID > b.ID
	})
}

// Utility methods
func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}
