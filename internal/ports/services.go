package ports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/arrangemylist/planner/internal/domain/entities"
)

// Request/Response Types

// Nullable distinguishes an absent JSON field (Set=false) from an explicit
// null (Set=true, Value=nil).
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Some returns a set, non-null value
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns an explicit null
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// IsZero reports an absent field, so `omitzero` drops it when encoding.
func (n Nullable[T]) IsZero() bool { return !n.Set }

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// FlexTime accepts RFC 3339 as well as the zone-less shapes browsers send
// from datetime-local inputs ("2024-03-01T10:00") and bare dates. Zone-less
// values are read as UTC.
type FlexTime struct {
	time.Time
}

// datetime-local and date input shapes
var localLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02"}

// ParseFlexTime parses s the way FlexTime decodes it
func ParseFlexTime(s string) (FlexTime, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return FlexTime{t}, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return FlexTime{t}, nil
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return FlexTime{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return FlexTime{t}, nil
}

// At wraps t as a FlexTime pointer, handy for building requests
func At(t time.Time) *FlexTime {
	return &FlexTime{t}
}

func (f *FlexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseFlexTime(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f FlexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Time.Format(time.RFC3339Nano))
}

// UnmarshalParam lets echo bind query and path parameters
func (f *FlexTime) UnmarshalParam(param string) error {
	parsed, err := ParseFlexTime(param)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Auth related types
type RegisterRequest struct {
	Username    string `json:"username" validate:"required"`
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName,omitempty"`
}

func (RegisterRequest) ValidationMessage() string {
	return "Username, email, and password are required"
}

type LoginRequest struct {
	// Username accepts either the username or the email address.
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (LoginRequest) ValidationMessage() string {
	return "Username and password are required"
}

// AuthResponse is returned by register, login and profile updates
type AuthResponse struct {
	Message string         `json:"message"`
	User    *entities.User `json:"user"`
}

// Profile related types
type UpdateProfileRequest struct {
	DisplayName  *string          `json:"displayName,omitempty"`
	Email        *string          `json:"email,omitempty"`
	ProfileImage Nullable[string] `json:"profileImage,omitzero"`
}

func (r UpdateProfileRequest) IsEmpty() bool {
	return r.DisplayName == nil && r.Email == nil && !r.ProfileImage.Set
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

func (ChangePasswordRequest) ValidationMessage() string {
	return "Current and new passwords are required"
}

// Task related types
type CreateTaskRequest struct {
	Title       string              `json:"title" validate:"required"`
	Description *string             `json:"description,omitempty"`
	Status      entities.TaskStatus `json:"status,omitempty"`
	Priority    entities.Priority   `json:"priority,omitempty"`
	DueDate     *FlexTime           `json:"dueDate,omitempty"`
}

func (CreateTaskRequest) ValidationMessage() string { return entities.ErrTitleRequired.Message }

type UpdateTaskRequest struct {
	Title       *string              `json:"title,omitempty"`
	Description Nullable[string]     `json:"description,omitzero"`
	Status      *entities.TaskStatus `json:"status,omitempty"`
	Priority    *entities.Priority   `json:"priority,omitempty"`
	DueDate     Nullable[FlexTime]   `json:"dueDate,omitzero"`
	Position    *int                 `json:"position,omitempty"`
}

func (r UpdateTaskRequest) IsEmpty() bool {
	return r.Title == nil && !r.Description.Set && r.Status == nil &&
		r.Priority == nil && !r.DueDate.Set && r.Position == nil
}

// ApplyTo copies the set fields onto t
func (r UpdateTaskRequest) ApplyTo(t *entities.Task) {
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Description.Set {
		t.Description = cloneString(r.Description.Value)
	}
	if r.Status != nil {
		t.Status = *r.Status
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
	if r.DueDate.Set {
		if r.DueDate.Value == nil {
			t.DueDate = nil
		} else {
			due := r.DueDate.Value.Time
			t.DueDate = &due
		}
	}
	if r.Position != nil {
		t.Position = *r.Position
	}
}

type ReorderTaskRequest struct {
	Status   entities.TaskStatus `json:"status" validate:"required"`
	Position int                 `json:"position"`
}

// MessageResponse is the body of mutation endpoints without a payload
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Note related types
type CreateNoteRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
	Color   string `json:"color,omitempty"`
}

func (CreateNoteRequest) ValidationMessage() string { return entities.ErrTitleRequired.Message }

type UpdateNoteRequest struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Color    *string `json:"color,omitempty"`
	IsPinned *bool   `json:"isPinned,omitempty"`
}

func (r UpdateNoteRequest) IsEmpty() bool {
	return r.Title == nil && r.Content == nil && r.Color == nil && r.IsPinned == nil
}

// ApplyTo copies the set fields onto n
func (r UpdateNoteRequest) ApplyTo(n *entities.Note) {
	if r.Title != nil {
		n.Title = *r.Title
	}
	if r.Content != nil {
		n.Content = *r.Content
	}
	if r.Color != nil {
		n.Color = *r.Color
	}
	if r.IsPinned != nil {
		n.IsPinned = *r.IsPinned
	}
}

type PinResponse struct {
	IsPinned bool `json:"isPinned"`
}

// Calendar related types
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description *string   `json:"description,omitempty"`
	StartTime   *FlexTime `json:"startTime" validate:"required"`
	EndTime     *FlexTime `json:"endTime" validate:"required"`
	Color       string    `json:"color,omitempty"`
	AllDay      bool      `json:"allDay,omitempty"`
}

func (CreateEventRequest) ValidationMessage() string {
	return entities.ErrEventFieldsRequired.Message
}

type UpdateEventRequest struct {
	Title       *string          `json:"title,omitempty"`
	Description Nullable[string] `json:"description,omitzero"`
	StartTime   *FlexTime        `json:"startTime,omitempty"`
	EndTime     *FlexTime        `json:"endTime,omitempty"`
	Color       *string          `json:"color,omitempty"`
	AllDay      *bool            `json:"allDay,omitempty"`
}

func (r UpdateEventRequest) IsEmpty() bool {
	return r.Title == nil && !r.Description.Set && r.StartTime == nil &&
		r.EndTime == nil && r.Color == nil && r.AllDay == nil
}

// ApplyTo copies the set fields onto e
func (r UpdateEventRequest) ApplyTo(e *entities.CalendarEvent) {
	if r.Title != nil {
		e.Title = *r.Title
	}
	if r.Description.Set {
		e.Description = cloneString(r.Description.Value)
	}
	if r.StartTime != nil {
		e.StartTime = r.StartTime.Time
	}
	if r.EndTime != nil {
		e.EndTime = r.EndTime.Time
	}
	if r.Color != nil {
		e.Color = *r.Color
	}
	if r.AllDay != nil {
		e.AllDay = *r.AllDay
	}
}

// CalendarQuery selects the events listed by GET /api/calendar. Month and
// Year take effect together; Start and End take precedence over them.
type CalendarQuery struct {
	Month int
	Year  int
	Start *time.Time
	End   *time.Time
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
