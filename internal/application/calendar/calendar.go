// Package calendar merges events, due-dated tasks and notes into per-day
// view models for a month at a time.
package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arrangemylist/planner/internal/application/notify"
	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// FetchError reports a failed month refresh. The previous view is kept.
type FetchError struct {
	Year  int
	Month time.Month
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to load calendar data for %s %d: %v", e.Month, e.Year, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Option configures a Calendar
type Option func(*Calendar)

// WithLocation sets the zone day keys and month bounds are computed in
func WithLocation(loc *time.Location) Option {
	return func(c *Calendar) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Calendar) { c.now = now }
}

// WithPalette replaces the default colors
func WithPalette(p Palette) Option {
	return func(c *Calendar) { c.palette = p }
}

// Calendar is the month-at-a-time calendar store. Every refresh fetches the
// three collections again; nothing is cached across months.
type Calendar struct {
	mu     sync.RWMutex
	cursor time.Time
	view   MonthView
	loaded bool

	events []entities.CalendarEvent
	tasks  []entities.Task
	notes  []entities.Note

	source   ports.CalendarSource
	gateway  ports.EventGateway
	notifier notify.Notifier
	logger   *logger.Logger

	palette  Palette
	location *time.Location
	now      func() time.Time
}

// New creates a calendar positioned on the current month
func New(source ports.CalendarSource, gateway ports.EventGateway, notifier notify.Notifier, logger *logger.Logger, opts ...Option) *Calendar {
	c := &Calendar{
		source:   source,
		gateway:  gateway,
		notifier: notifier,
		logger:   logger.WithComponent("calendar"),
		palette:  DefaultPalette(),
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = notify.Discard
	}
	c.cursor = monthStart(c.now(), c.location)
	return c
}

func monthStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

func (c *Calendar) aggregator() *Aggregator {
	return NewAggregator(c.palette, c.location)
}

// Month returns the month under the cursor
func (c *Calendar) Month() (int, time.Month) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cursor.Year(), c.cursor.Month()
}

// View returns the last successfully built month view
func (c *Calendar) View() (MonthView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view, c.loaded
}

// DayView returns every item of a date from the last fetched collections
func (c *Calendar) DayView(dateKey string) DayView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.aggregator().BuildDayView(dateKey, c.events, c.tasks, c.notes)
}

// Refresh fetches events for the cursor's month plus all tasks and notes in
// parallel. Any failure leaves the previous view in place.
func (c *Calendar) Refresh(ctx context.Context) (MonthView, error) {
	c.mu.RLock()
	year, month := c.cursor.Year(), c.cursor.Month()
	c.mu.RUnlock()

	var (
		events []entities.CalendarEvent
		groups entities.TaskGroups
		notes  []entities.Note
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = c.source.ListEvents(gctx, year, month)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = c.source.ListTasks(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		notes, err = c.source.ListNotes(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		fetchErr := &FetchError{Year: year, Month: month, Err: err}
		c.logger.Warnw("Calendar refresh failed", "year", year, "month", int(month), "error", err.Error())
		c.notifier.Notify(notify.Failure("Failed to load calendar data", fetchErr))
		view, _ := c.View()
		return view, fetchErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The cursor may have moved while fetching; a newer refresh owns the view.
	if c.cursor.Year() != year || c.cursor.Month() != month {
		return c.view, nil
	}

	c.events = events
	c.tasks = groups.All()
	c.notes = notes
	c.rebuildLocked()
	return c.view, nil
}

func (c *Calendar) rebuildLocked() {
	c.view = c.aggregator().BuildMonth(c.cursor.Year(), c.cursor.Month(), c.now(), c.events, c.tasks, c.notes)
	c.loaded = true
}

// PrevMonth moves the cursor back one month and refreshes
func (c *Calendar) PrevMonth(ctx context.Context) (MonthView, error) {
	c.moveCursor(func(t time.Time) time.Time { return t.AddDate(0, -1, 0) })
	return c.Refresh(ctx)
}

// NextMonth moves the cursor forward one month and refreshes
func (c *Calendar) NextMonth(ctx context.Context) (MonthView, error) {
	c.moveCursor(func(t time.Time) time.Time { return t.AddDate(0, 1, 0) })
	return c.Refresh(ctx)
}

// GoToToday moves the cursor to the current month and refreshes
func (c *Calendar) GoToToday(ctx context.Context) (MonthView, error) {
	c.moveCursor(func(time.Time) time.Time { return monthStart(c.now(), c.location) })
	return c.Refresh(ctx)
}

// GoTo moves the cursor to year/month and refreshes
func (c *Calendar) GoTo(ctx context.Context, year int, month time.Month) (MonthView, error) {
	c.moveCursor(func(time.Time) time.Time { return time.Date(year, month, 1, 0, 0, 0, 0, c.location) })
	return c.Refresh(ctx)
}

func (c *Calendar) moveCursor(fn func(time.Time) time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor = monthStart(fn(c.cursor), c.location)
}

// CreateEvent creates an event on the server and shows it when it falls in
// the viewed month.
func (c *Calendar) CreateEvent(ctx context.Context, req ports.CreateEventRequest) (*entities.CalendarEvent, error) {
	if req.StartTime != nil && req.EndTime != nil && req.EndTime.Before(req.StartTime.Time) {
		c.notifier.Notify(notify.Failure(entities.ErrEventTimesInverted.Message, entities.ErrEventTimesInverted))
		return nil, entities.ErrEventTimesInverted
	}

	event, err := c.gateway.CreateEvent(ctx, req)
	if err != nil {
		c.notifier.Notify(notify.Failure("Failed to save event", err))
		return nil, err
	}

	c.mu.Lock()
	if c.inMonthLocked(*event) {
		c.events = append(c.events, *event)
		if c.loaded {
			c.rebuildLocked()
		}
	}
	c.mu.Unlock()

	c.notifier.Notify(notify.Success("Event created"))
	return event, nil
}

// UpdateEvent updates an event on the server and replaces the local copy
func (c *Calendar) UpdateEvent(ctx context.Context, id int64, req ports.UpdateEventRequest) (*entities.CalendarEvent, error) {
	event, err := c.gateway.UpdateEvent(ctx, id, req)
	if err != nil {
		c.notifier.Notify(notify.Failure("Failed to save event", err))
		return nil, err
	}

	c.mu.Lock()
	idx := c.indexLocked(id)
	switch {
	case idx >= 0 && c.inMonthLocked(*event):
		c.events[idx] = *event
	case idx >= 0:
		c.events = append(c.events[:idx:idx], c.events[idx+1:]...)
	case c.inMonthLocked(*event):
		c.events = append(c.events, *event)
	}
	if c.loaded {
		c.rebuildLocked()
	}
	c.mu.Unlock()

	c.notifier.Notify(notify.Success("Event updated"))
	return event, nil
}

// DeleteEvent deletes an event on the server and drops the local copy
func (c *Calendar) DeleteEvent(ctx context.Context, id int64) error {
	if err := c.gateway.DeleteEvent(ctx, id); err != nil {
		c.notifier.Notify(notify.Failure("Failed to delete event", err))
		return err
	}

	c.mu.Lock()
	if idx := c.indexLocked(id); idx >= 0 {
		c.events = append(c.events[:idx:idx], c.events[idx+1:]...)
		if c.loaded {
			c.rebuildLocked()
		}
	}
	c.mu.Unlock()

	c.notifier.Notify(notify.Success("Event deleted"))
	return nil
}

// Events returns the events fetched for the viewed month
func (c *Calendar) Events() []entities.CalendarEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]entities.CalendarEvent(nil), c.events...)
}

func (c *Calendar) indexLocked(id int64) int {
	for i := range c.events {
		if c.events[i].ID == id {
			return i
		}
	}
	return -1
}

// inMonthLocked reports whether the event overlaps the viewed month
func (c *Calendar) inMonthLocked(e entities.CalendarEvent) bool {
	r := ports.MonthRange(c.cursor.Year(), c.cursor.Month(), c.location)
	return !e.StartTime.After(r.End) && !e.EndTime.Before(r.Start)
}
