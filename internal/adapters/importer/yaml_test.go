package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/ports"
)

type fakeTarget struct {
	tasks   []ports.CreateTaskRequest
	notes   []ports.CreateNoteRequest
	pinned  []int64
	events  []ports.CreateEventRequest
	noteErr error
}

func (f *fakeTarget) CreateTask(_ context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	f.tasks = append(f.tasks, req)
	return &entities.Task{ID: int64(len(f.tasks)), Title: req.Title}, nil
}

func (f *fakeTarget) CreateNote(_ context.Context, req ports.CreateNoteRequest) (*entities.Note, error) {
	if f.noteErr != nil {
		return nil, f.noteErr
	}
	f.notes = append(f.notes, req)
	return &entities.Note{ID: int64(100 + len(f.notes)), Title: req.Title}, nil
}

func (f *fakeTarget) TogglePin(_ context.Context, id int64) (bool, error) {
	f.pinned = append(f.pinned, id)
	return true, nil
}

func (f *fakeTarget) CreateEvent(_ context.Context, req ports.CreateEventRequest) (*entities.CalendarEvent, error) {
	f.events = append(f.events, req)
	return &entities.CalendarEvent{ID: int64(len(f.events)), Title: req.Title}, nil
}

const seed = `
tasks:
  - title: Write report
    priority: high
    due_date: "2024-03-15"
  - title: Review PR
    status: in_progress
    description: second pass
notes:
  - title: Groceries
    content: milk, eggs
    color: yellow
  - title: Ideas
    pinned: true
events:
  - title: Trip
    start: "2024-03-01T00:00"
    end: "2024-03-03T23:59"
    all_day: true
`

func TestImport(t *testing.T) {
	target := &fakeTarget{}
	res, err := Import(context.Background(), target, []byte(seed))
	require.NoError(t, err)

	assert.Equal(t, Result{Tasks: 2, Notes: 2, Events: 1}, res)
	assert.Equal(t, 5, res.Total())

	require.Len(t, target.tasks, 2)
	assert.Equal(t, entities.PriorityHigh, target.tasks[0].Priority)
	require.NotNil(t, target.tasks[0].DueDate)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), target.tasks[0].DueDate.Time)
	assert.Equal(t, entities.TaskStatusInProgress, target.tasks[1].Status)
	require.NotNil(t, target.tasks[1].Description)
	assert.Equal(t, "second pass", *target.tasks[1].Description)

	assert.Equal(t, "yellow", target.notes[0].Color)
	assert.Equal(t, []int64{102}, target.pinned)

	require.Len(t, target.events, 1)
	assert.True(t, target.events[0].AllDay)
	assert.Equal(t, time.Date(2024, 3, 3, 23, 59, 0, 0, time.UTC), target.events[0].EndTime.Time)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"malformed", "tasks: [", "YAML parse error"},
		{"empty", "tasks: []", "no tasks, notes or events"},
		{"untitled task", "tasks:\n  - priority: low", "task title is required"},
		{"bad status", "tasks:\n  - title: a\n    status: blocked", `invalid status "blocked"`},
		{"untitled note", "notes:\n  - content: x", "note title is required"},
		{"inverted event", "events:\n  - title: a\n    start: \"2024-03-02\"\n    end: \"2024-03-01\"", "End time must be after start time"},
		{"missing start", "events:\n  - title: a\n    end: \"2024-03-01\"", "start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestImportStopsOnFailure(t *testing.T) {
	target := &fakeTarget{noteErr: errors.New("boom")}
	res, err := Import(context.Background(), target, []byte(seed))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `add note "Groceries"`)
	assert.Equal(t, Result{Tasks: 2}, res)
	assert.Empty(t, target.events)
}
