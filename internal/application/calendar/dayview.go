package calendar

import (
	"fmt"
	"time"

	"github.com/arrangemylist/planner/internal/domain/entities"
)

// DateLayout is the format of day keys
const DateLayout = "2006-01-02"

// RenderLimit is how many items a day cell shows before "+N more"
const RenderLimit = 4

type ItemType string

const (
	ItemEvent ItemType = "event"
	ItemTask  ItemType = "task"
	ItemNote  ItemType = "note"
	ItemMore  ItemType = "more"
)

// ActionKind names what activating an item does
type ActionKind string

const (
	ActionEditEvent ActionKind = "edit_event"
	ActionViewTask  ActionKind = "view_task"
	ActionViewNote  ActionKind = "view_note"
	ActionShowMore  ActionKind = "show_more"
)

// Action is dispatched by the rendering layer when an item is activated.
// ID is the entity id; Date is set for show_more.
type Action struct {
	Kind ActionKind
	ID   int64
	Date string
}

// Item is one displayable entry of a day
type Item struct {
	Type   ItemType
	ID     int64
	Title  string
	Color  string
	Icon   string
	Action Action
}

// DayView is every item that falls on one date, events first, then tasks,
// then notes.
type DayView struct {
	Date  string
	Items []Item
}

// Len is the number of items on the day, rendered or not
func (d DayView) Len() int { return len(d.Items) }

// Rendered returns at most limit items. When items are cut they are
// followed by a synthetic "+N more" entry counting the hidden ones.
func (d DayView) Rendered(limit int) []Item {
	if limit <= 0 || len(d.Items) <= limit {
		return append([]Item(nil), d.Items...)
	}

	out := make([]Item, 0, limit+1)
	out = append(out, d.Items[:limit]...)
	return append(out, Item{
		Type:   ItemMore,
		Title:  fmt.Sprintf("+%d more", len(d.Items)-limit),
		Action: Action{Kind: ActionShowMore, Date: d.Date},
	})
}

// Palette maps entities to display colors
type Palette struct {
	EventFallback string
	TaskPriority  map[entities.Priority]string
	TaskFallback  string
	NoteColors    map[string]string
	NoteFallback  string
}

// DefaultPalette is the web client's color scheme
func DefaultPalette() Palette {
	return Palette{
		EventFallback: entities.DefaultEventColor,
		TaskPriority: map[entities.Priority]string{
			entities.PriorityLow:    "#22c55e",
			entities.PriorityMedium: "#eab308",
			entities.PriorityHigh:   "#ef4444",
		},
		TaskFallback: "#eab308",
		NoteColors: map[string]string{
			entities.NoteColorYellow:  "#fbbf24",
			entities.NoteColorGreen:   "#22c55e",
			entities.NoteColorBlue:    "#3b82f6",
			entities.NoteColorPink:    "#ec4899",
			entities.NoteColorPurple:  "#8b5cf6",
			entities.NoteColorDefault: "#6b7280",
		},
		NoteFallback: "#6b7280",
	}
}

func (p Palette) event(e entities.CalendarEvent) string {
	if e.Color != "" {
		return e.Color
	}
	return p.EventFallback
}

func (p Palette) task(t entities.Task) string {
	if c, ok := p.TaskPriority[t.Priority]; ok {
		return c
	}
	return p.TaskFallback
}

func (p Palette) note(n entities.Note) string {
	if c, ok := p.NoteColors[n.Color]; ok {
		return c
	}
	return p.NoteFallback
}

// DateKey formats the calendar date of t in loc
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// Aggregator merges events, tasks and notes into day views. Its zero value
// is not usable; see NewAggregator.
type Aggregator struct {
	palette  Palette
	location *time.Location
}

// NewAggregator creates an aggregator computing day keys in loc
func NewAggregator(palette Palette, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{palette: palette, location: loc}
}

// BuildDayView collects the items for dateKey. Events appear on every day
// of their span, tasks on their due date, notes on their creation date.
func (a *Aggregator) BuildDayView(dateKey string, events []entities.CalendarEvent, tasks []entities.Task, notes []entities.Note) DayView {
	view := DayView{Date: dateKey, Items: []Item{}}

	for _, e := range events {
		if DateKey(e.StartTime, a.location) <= dateKey && dateKey <= DateKey(e.EndTime, a.location) {
			view.Items = append(view.Items, Item{
				Type:   ItemEvent,
				ID:     e.ID,
				Title:  e.Title,
				Color:  a.palette.event(e),
				Icon:   "📅",
				Action: Action{Kind: ActionEditEvent, ID: e.ID},
			})
		}
	}

	for _, t := range tasks {
		if t.DueDate == nil || DateKey(*t.DueDate, a.location) != dateKey {
			continue
		}
		icon := "📌"
		if t.Status == entities.TaskStatusDone {
			icon = "✅"
		}
		view.Items = append(view.Items, Item{
			Type:   ItemTask,
			ID:     t.ID,
			Title:  t.Title,
			Color:  a.palette.task(t),
			Icon:   icon,
			Action: Action{Kind: ActionViewTask, ID: t.ID},
		})
	}

	for _, n := range notes {
		if DateKey(n.CreatedAt, a.location) != dateKey {
			continue
		}
		view.Items = append(view.Items, Item{
			Type:   ItemNote,
			ID:     n.ID,
			Title:  n.Title,
			Color:  a.palette.note(n),
			Icon:   "📝",
			Action: Action{Kind: ActionViewNote, ID: n.ID},
		})
	}

	return view
}

// BuildDayView builds a day view with the default palette in UTC
func BuildDayView(dateKey string, events []entities.CalendarEvent, tasks []entities.Task, notes []entities.Note) DayView {
	return NewAggregator(DefaultPalette(), time.UTC).BuildDayView(dateKey, events, tasks, notes)
}

// Cell is one square of the month grid
type Cell struct {
	Date    string
	Day     int
	InMonth bool
	Today   bool
	Items   []Item
	Total   int
}

// MonthView is a Sunday-first grid for one month, padded with days of the
// neighbouring months to whole weeks.
type MonthView struct {
	Year  int
	Month time.Month
	Cells []Cell
	days  map[string]DayView
}

// Weeks splits the grid into rows of seven
func (m MonthView) Weeks() [][]Cell {
	weeks := make([][]Cell, 0, len(m.Cells)/7)
	for i := 0; i+7 <= len(m.Cells); i += 7 {
		weeks = append(weeks, m.Cells[i:i+7])
	}
	return weeks
}

// Day returns the full day view of a date in the month
func (m MonthView) Day(dateKey string) (DayView, bool) {
	d, ok := m.days[dateKey]
	return d, ok
}

// Title is the month heading, e.g. "March 2024"
func (m MonthView) Title() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// BuildMonth lays out the grid for year/month. now marks today's cell.
func (a *Aggregator) BuildMonth(year int, month time.Month, now time.Time, events []entities.CalendarEvent, tasks []entities.Task, notes []entities.Note) MonthView {
	first := time.Date(year, month, 1, 0, 0, 0, 0, a.location)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	lead := int(first.Weekday())
	total := (lead + daysInMonth + 6) / 7 * 7
	today := DateKey(now, a.location)

	view := MonthView{
		Year:  year,
		Month: month,
		Cells: make([]Cell, 0, total),
		days:  make(map[string]DayView, daysInMonth),
	}

	for i := 0; i < total; i++ {
		date := first.AddDate(0, 0, i-lead)
		key := date.Format(DateLayout)
		cell := Cell{Date: key, Day: date.Day(), InMonth: date.Month() == month}

		if cell.InMonth {
			day := a.BuildDayView(key, events, tasks, notes)
			view.days[key] = day
			cell.Today = key == today
			cell.Items = day.Rendered(RenderLimit)
			cell.Total = day.Len()
		}
		view.Cells = append(view.Cells, cell)
	}

	return view
}
