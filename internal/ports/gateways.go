package ports

import (
	"context"
	"time"

	"github.com/arrangemylist/planner/internal/domain/entities"
)

// The gateways below are what the client-side stores see of the REST API.
// They speak in domain types and return errors wrapping the entities kinds.

// TaskGateway is the board's view of the tasks endpoints
type TaskGateway interface {
	ListTasks(ctx context.Context) (entities.TaskGroups, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (*entities.Task, error)
	UpdateTask(ctx context.Context, id int64, req UpdateTaskRequest) (*entities.Task, error)
	ReorderTask(ctx context.Context, id int64, status entities.TaskStatus, position int) error
	DeleteTask(ctx context.Context, id int64) error
}

// NoteGateway is the notes store's view of the notes endpoints
type NoteGateway interface {
	ListNotes(ctx context.Context) ([]entities.Note, error)
	CreateNote(ctx context.Context, req CreateNoteRequest) (*entities.Note, error)
	UpdateNote(ctx context.Context, id int64, req UpdateNoteRequest) (*entities.Note, error)
	TogglePin(ctx context.Context, id int64) (bool, error)
	DeleteNote(ctx context.Context, id int64) error
}

// EventGateway covers calendar event mutations
type EventGateway interface {
	CreateEvent(ctx context.Context, req CreateEventRequest) (*entities.CalendarEvent, error)
	UpdateEvent(ctx context.Context, id int64, req UpdateEventRequest) (*entities.CalendarEvent, error)
	DeleteEvent(ctx context.Context, id int64) error
}

// CalendarSource is the shared read-only access the calendar uses to pull
// the three collections it merges. It never reads other stores' state.
type CalendarSource interface {
	ListEvents(ctx context.Context, year int, month time.Month) ([]entities.CalendarEvent, error)
	ListTasks(ctx context.Context) (entities.TaskGroups, error)
	ListNotes(ctx context.Context) ([]entities.Note, error)
}
