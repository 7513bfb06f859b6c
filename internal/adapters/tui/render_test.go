package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/arrangemylist/planner/internal/application/calendar"
	"github.com/arrangemylist/planner/internal/domain/entities"
)

func TestRenderBoard(t *testing.T) {
	due := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	groups := entities.GroupTasks([]entities.Task{
		{ID: 1, Title: "Write report", Status: entities.TaskStatusTodo, Priority: entities.PriorityHigh, DueDate: &due},
		{ID: 2, Title: "Review", Status: entities.TaskStatusTodo},
		{ID: 3, Title: "Ship", Status: entities.TaskStatusDone},
	})

	out := RenderBoard(groups, calendar.DefaultPalette())

	assert.Contains(t, out, "To Do (2)")
	assert.Contains(t, out, "In Progress (0)")
	assert.Contains(t, out, "Done (1)")
	assert.Contains(t, out, "#1 Write report")
	assert.Contains(t, out, "due 2024-03-15")
	assert.Contains(t, out, "(empty)")
}

func TestRenderMonth(t *testing.T) {
	start := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	var notes []entities.Note
	for i := int64(1); i <= 5; i++ {
		notes = append(notes, entities.Note{ID: i, Title: "n", CreatedAt: start})
	}

	now := time.Date(2024, 3, 20, 8, 0, 0, 0, time.UTC)
	view := calendar.NewAggregator(calendar.DefaultPalette(), time.UTC).BuildMonth(2024, time.March, now, nil, nil, notes)

	out := RenderMonth(view)

	assert.Contains(t, out, "March 2024")
	assert.Contains(t, out, "Sun")
	assert.Contains(t, out, "+1 more")
	assert.Contains(t, out, "20 *")
	// One row per week plus the title, blank and weekday lines.
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), len(view.Weeks())+3)
}

func TestRenderDay(t *testing.T) {
	day := calendar.BuildDayView("2024-03-02",
		[]entities.CalendarEvent{{
			ID:        9,
			Title:     "Trip",
			StartTime: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2024, 3, 3, 23, 59, 0, 0, time.UTC),
		}}, nil, nil)

	out := RenderDay(day)
	assert.Contains(t, out, "2024-03-02")
	assert.Contains(t, out, "Trip")
	assert.Contains(t, out, "#9 edit_event")

	assert.Contains(t, RenderDay(calendar.DayView{Date: "2024-03-09"}), "Nothing scheduled")
}

func TestRenderNotes(t *testing.T) {
	assert.Contains(t, RenderNotes(nil, calendar.DefaultPalette()), "No notes yet")

	out := RenderNotes([]entities.Note{
		{ID: 4, Title: "Ideas", IsPinned: true, Color: entities.NoteColorBlue},
		{ID: 2, Title: "Groceries", Content: "milk"},
	}, calendar.DefaultPalette())

	assert.Contains(t, out, "📌 #4 Ideas")
	assert.Contains(t, out, "#2 Groceries")
	assert.Contains(t, out, "milk")
	assert.Less(t, strings.Index(out, "Ideas"), strings.Index(out, "Groceries"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a very…", truncate("a very long title", 7))
}
