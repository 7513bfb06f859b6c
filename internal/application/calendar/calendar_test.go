package calendar

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrangemylist/planner/internal/application/notify"
	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

func TestBuildDayViewInclusion(t *testing.T) {
	events := []entities.CalendarEvent{
		{ID: 1, Title: "Offsite", StartTime: at("2024-03-01T00:00:00Z"), EndTime: at("2024-03-03T23:59:00Z")},
		{ID: 2, Title: "Review", StartTime: at("2024-03-02T10:00:00Z"), EndTime: at("2024-03-02T11:00:00Z"), Color: "#123456"},
	}
	tasks := []entities.Task{
		{ID: 3, Title: "Ship", Status: entities.TaskStatusTodo, Priority: entities.PriorityHigh, DueDate: ptr(at("2024-03-02T18:00:00Z"))},
		{ID: 4, Title: "Done", Status: entities.TaskStatusDone, Priority: "urgent", DueDate: ptr(at("2024-03-02T08:00:00Z"))},
		{ID: 5, Title: "Undated", Status: entities.TaskStatusTodo},
	}
	notes := []entities.Note{
		{ID: 6, Title: "Idea", Color: entities.NoteColorPink, CreatedAt: at("2024-03-02T09:00:00Z"), UpdatedAt: at("2024-03-05T09:00:00Z")},
		{ID: 7, Title: "Old", Color: "teal", CreatedAt: at("2024-02-28T09:00:00Z"), UpdatedAt: at("2024-03-02T09:00:00Z")},
	}

	t.Run("event spans every day", func(t *testing.T) {
		for _, day := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
			view := BuildDayView(day, events, nil, nil)
			require.NotEmpty(t, view.Items, day)
			assert.Equal(t, int64(1), view.Items[0].ID, day)
		}
		assert.Empty(t, BuildDayView("2024-02-29", events, nil, nil).Items)
		assert.Empty(t, BuildDayView("2024-03-04", events, nil, nil).Items)
	})

	t.Run("ordering and palette", func(t *testing.T) {
		view := BuildDayView("2024-03-02", events, tasks, notes)
		require.Len(t, view.Items, 5)

		want := []struct {
			typ    ItemType
			id     int64
			color  string
			icon   string
			action ActionKind
		}{
			{ItemEvent, 1, "#4285f4", "📅", ActionEditEvent},
			{ItemEvent, 2, "#123456", "📅", ActionEditEvent},
			{ItemTask, 3, "#ef4444", "📌", ActionViewTask},
			{ItemTask, 4, "#eab308", "✅", ActionViewTask},
			{ItemNote, 6, "#ec4899", "📝", ActionViewNote},
		}
		for i, w := range want {
			item := view.Items[i]
			assert.Equal(t, w.typ, item.Type)
			assert.Equal(t, w.id, item.ID)
			assert.Equal(t, w.color, item.Color)
			assert.Equal(t, w.icon, item.Icon)
			assert.Equal(t, Action{Kind: w.action, ID: w.id}, item.Action)
		}
	})

	t.Run("notes use creation date only", func(t *testing.T) {
		view := BuildDayView("2024-02-28", nil, nil, notes)
		require.Len(t, view.Items, 1)
		assert.Equal(t, "#6b7280", view.Items[0].Color)
		assert.Empty(t, BuildDayView("2024-03-05", nil, nil, notes).Items)
	})
}

func TestBuildDayViewLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	tasks := []entities.Task{{ID: 1, Title: "Late", DueDate: ptr(at("2024-03-02T03:00:00Z"))}}

	assert.Len(t, BuildDayView("2024-03-02", nil, tasks, nil).Items, 1)

	agg := NewAggregator(DefaultPalette(), loc)
	assert.Len(t, agg.BuildDayView("2024-03-01", nil, tasks, nil).Items, 1)
	assert.Empty(t, agg.BuildDayView("2024-03-02", nil, tasks, nil).Items)
}

func TestRenderedCap(t *testing.T) {
	var notes []entities.Note
	for i := 1; i <= 5; i++ {
		notes = append(notes, entities.Note{ID: int64(i), Title: "n", CreatedAt: at("2024-03-10T12:00:00Z")})
	}

	view := BuildDayView("2024-03-10", nil, nil, notes)
	rendered := view.Rendered(RenderLimit)

	require.Len(t, rendered, 5)
	for _, item := range rendered[:4] {
		assert.Equal(t, ItemNote, item.Type)
	}
	more := rendered[4]
	assert.Equal(t, ItemMore, more.Type)
	assert.Equal(t, "+1 more", more.Title)
	assert.Equal(t, Action{Kind: ActionShowMore, Date: "2024-03-10"}, more.Action)
	assert.Equal(t, 5, view.Len())

	assert.Len(t, BuildDayView("2024-03-10", nil, nil, notes[:4]).Rendered(RenderLimit), 4)
}

func TestBuildMonthGrid(t *testing.T) {
	agg := NewAggregator(DefaultPalette(), time.UTC)
	// March 2024 starts on a Friday and has 31 days.
	view := agg.BuildMonth(2024, time.March, at("2024-03-15T12:00:00Z"), nil, nil, nil)

	require.Len(t, view.Cells, 42)
	assert.Len(t, view.Weeks(), 6)
	assert.Equal(t, "March 2024", view.Title())

	first := view.Cells[0]
	assert.Equal(t, "2024-02-25", first.Date)
	assert.False(t, first.InMonth)
	assert.Equal(t, "2024-03-01", view.Cells[5].Date)
	assert.True(t, view.Cells[5].InMonth)
	assert.Equal(t, "2024-04-06", view.Cells[41].Date)

	today := 0
	for _, cell := range view.Cells {
		if cell.Today {
			today++
			assert.Equal(t, "2024-03-15", cell.Date)
		}
	}
	assert.Equal(t, 1, today)

	_, ok := view.Day("2024-03-31")
	assert.True(t, ok)
	_, ok = view.Day("2024-04-01")
	assert.False(t, ok)

	// February 2015 fills exactly four weeks.
	assert.Len(t, agg.BuildMonth(2015, time.February, at("2024-03-15T12:00:00Z"), nil, nil, nil).Cells, 28)
}

type fakeSource struct {
	mu        sync.Mutex
	events    map[time.Month][]entities.CalendarEvent
	tasks     entities.TaskGroups
	notes     []entities.Note
	notesErr  error
	requested []time.Month
}

func (f *fakeSource) ListEvents(_ context.Context, _ int, month time.Month) ([]entities.CalendarEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, month)
	return f.events[month], nil
}

func (f *fakeSource) ListTasks(context.Context) (entities.TaskGroups, error) {
	return f.tasks, nil
}

func (f *fakeSource) ListNotes(context.Context) ([]entities.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notes, f.notesErr
}

type fakeEvents struct {
	nextID int64
	err    error
}

func (f *fakeEvents) CreateEvent(_ context.Context, req ports.CreateEventRequest) (*entities.CalendarEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.nextID++
	return &entities.CalendarEvent{ID: f.nextID, Title: req.Title, StartTime: req.StartTime.Time, EndTime: req.EndTime.Time}, nil
}

func (f *fakeEvents) UpdateEvent(_ context.Context, id int64, req ports.UpdateEventRequest) (*entities.CalendarEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	e := entities.CalendarEvent{ID: id}
	req.ApplyTo(&e)
	return &e, nil
}

func (f *fakeEvents) DeleteEvent(context.Context, int64) error {
	return f.err
}

func newCalendar(source *fakeSource, events *fakeEvents) (*Calendar, *notify.Recorder) {
	rec := &notify.Recorder{}
	clock := func() time.Time { return at("2024-03-15T12:00:00Z") }
	return New(source, events, rec, logger.NewNop(), WithClock(clock)), rec
}

func TestRefreshAndNavigation(t *testing.T) {
	source := &fakeSource{
		events: map[time.Month][]entities.CalendarEvent{
			time.March: {{ID: 1, Title: "Offsite", StartTime: at("2024-03-01T00:00:00Z"), EndTime: at("2024-03-03T23:59:00Z")}},
			time.April: {{ID: 2, Title: "Trip", StartTime: at("2024-04-10T00:00:00Z"), EndTime: at("2024-04-10T05:00:00Z")}},
		},
		tasks: entities.TaskGroups{
			Done: []entities.Task{{ID: 3, Title: "Filed", Status: entities.TaskStatusDone, DueDate: ptr(at("2024-03-02T10:00:00Z"))}},
		},
	}
	cal, _ := newCalendar(source, &fakeEvents{})

	_, loaded := cal.View()
	assert.False(t, loaded)

	view, err := cal.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.March, view.Month)
	day, _ := view.Day("2024-03-02")
	assert.Equal(t, 2, day.Len())
	assert.Equal(t, "✅", day.Items[1].Icon)

	view, err = cal.NextMonth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.April, view.Month)
	day, _ = view.Day("2024-04-10")
	assert.Equal(t, 1, day.Len())

	view, err = cal.PrevMonth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.March, view.Month)

	_, err = cal.NextMonth(context.Background())
	require.NoError(t, err)
	view, err = cal.GoToToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.March, view.Month)

	assert.Equal(t, []time.Month{time.March, time.April, time.March, time.April, time.March}, source.requested)
}

func TestRefreshFailureKeepsLastView(t *testing.T) {
	source := &fakeSource{
		events: map[time.Month][]entities.CalendarEvent{
			time.March: {{ID: 1, Title: "Offsite", StartTime: at("2024-03-01T00:00:00Z"), EndTime: at("2024-03-01T10:00:00Z")}},
		},
	}
	cal, rec := newCalendar(source, &fakeEvents{})

	_, err := cal.Refresh(context.Background())
	require.NoError(t, err)

	source.mu.Lock()
	source.notesErr = &entities.Error{Kind: entities.ErrNetwork, Message: "Internal server error"}
	source.mu.Unlock()

	view, err := cal.NextMonth(context.Background())
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, entities.ErrNetwork)
	assert.Equal(t, time.April, fetchErr.Month)

	// The cursor moved but the last good view is still March.
	year, month := cal.Month()
	assert.Equal(t, 2024, year)
	assert.Equal(t, time.April, month)
	assert.Equal(t, time.March, view.Month)
	kept, loaded := cal.View()
	assert.True(t, loaded)
	assert.Equal(t, time.March, kept.Month)
	assert.Equal(t, []string{"Failed to load calendar data"}, rec.Messages())
}

func TestEventCRUD(t *testing.T) {
	source := &fakeSource{events: map[time.Month][]entities.CalendarEvent{}}
	events := &fakeEvents{}
	cal, rec := newCalendar(source, events)
	_, err := cal.Refresh(context.Background())
	require.NoError(t, err)

	created, err := cal.CreateEvent(context.Background(), ports.CreateEventRequest{
		Title:     "Standup",
		StartTime: ports.At(at("2024-03-20T09:00:00Z")),
		EndTime:   ports.At(at("2024-03-20T09:15:00Z")),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cal.DayView("2024-03-20").Len())

	view, _ := cal.View()
	day, _ := view.Day("2024-03-20")
	assert.Equal(t, "Standup", day.Items[0].Title)

	// Outside the viewed month it is not kept locally.
	_, err = cal.CreateEvent(context.Background(), ports.CreateEventRequest{
		Title:     "Later",
		StartTime: ports.At(at("2024-05-01T09:00:00Z")),
		EndTime:   ports.At(at("2024-05-01T10:00:00Z")),
	})
	require.NoError(t, err)
	assert.Len(t, cal.Events(), 1)

	renamed := "Daily standup"
	_, err = cal.UpdateEvent(context.Background(), created.ID, ports.UpdateEventRequest{
		Title:     &renamed,
		StartTime: ports.At(at("2024-03-21T09:00:00Z")),
		EndTime:   ports.At(at("2024-03-21T09:15:00Z")),
	})
	require.NoError(t, err)
	assert.Zero(t, cal.DayView("2024-03-20").Len())
	assert.Equal(t, "Daily standup", cal.DayView("2024-03-21").Items[0].Title)

	require.NoError(t, cal.DeleteEvent(context.Background(), created.ID))
	assert.Empty(t, cal.Events())

	_, err = cal.CreateEvent(context.Background(), ports.CreateEventRequest{
		Title:     "Backwards",
		StartTime: ports.At(at("2024-03-21T10:00:00Z")),
		EndTime:   ports.At(at("2024-03-21T09:00:00Z")),
	})
	assert.ErrorIs(t, err, entities.ErrValidation)

	events.err = errors.New("offline")
	assert.Error(t, cal.DeleteEvent(context.Background(), 1))

	assert.Equal(t, []string{
		"Event created",
		"Event created",
		"Event updated",
		"Event deleted",
		"End time must be after start time",
		"Failed to delete event",
	}, rec.Messages())
}
