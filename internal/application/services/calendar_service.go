package services

import (
	"context"
	"strings"
	"time"

	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// CalendarService handles calendar event operations
type CalendarService struct {
	eventRepo ports.EventRepository
	loc       *time.Location
	logger    *logger.Logger
}

// NewCalendarService creates a new calendar service. Month queries are
// bounded in loc.
func NewCalendarService(eventRepo ports.EventRepository, loc *time.Location, logger *logger.Logger) *CalendarService {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarService{
		eventRepo: eventRepo,
		loc:       loc,
		logger:    logger.WithComponent("calendar"),
	}
}

// List returns events ordered by start time. An explicit start/end range
// keeps events contained in it; a month/year pair keeps events overlapping
// that month; otherwise every event is returned.
func (s *CalendarService) List(ctx context.Context, userID int64, q ports.CalendarQuery) ([]entities.CalendarEvent, error) {
	var filter ports.EventFilter
	switch {
	case q.Start != nil && q.End != nil:
		filter.Within = &ports.TimeRange{Start: *q.Start, End: *q.End}
	case q.Month != 0 && q.Year != 0:
		if q.Month < 1 || q.Month > 12 {
			return nil, entities.Validation("Invalid month")
		}
		month := ports.MonthRange(q.Year, time.Month(q.Month), s.loc)
		filter.Overlapping = &month
	}
	return s.eventRepo.List(ctx, userID, filter)
}

// Get returns one event
func (s *CalendarService) Get(ctx context.Context, userID, id int64) (*entities.CalendarEvent, error) {
	return s.eventRepo.GetByID(ctx, userID, id)
}

// Create stores a new event
func (s *CalendarService) Create(ctx context.Context, userID int64, req ports.CreateEventRequest) (*entities.CalendarEvent, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || req.StartTime == nil || req.EndTime == nil {
		return nil, entities.ErrEventFieldsRequired
	}

	color := req.Color
	if color == "" {
		color = entities.DefaultEventColor
	}

	event := &entities.CalendarEvent{
		UserID:      userID,
		Title:       title,
		Description: req.Description,
		StartTime:   req.StartTime.Time,
		EndTime:     req.EndTime.Time,
		Color:       color,
		AllDay:      req.AllDay,
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(userID, "event_created", map[string]interface{}{"event_id": event.ID})
	return event, nil
}

// Update applies a partial edit, checking the merged times
func (s *CalendarService) Update(ctx context.Context, userID, id int64, req ports.UpdateEventRequest) (*entities.CalendarEvent, error) {
	if req.IsEmpty() {
		return nil, entities.ErrNothingToUpdate
	}

	event, err := s.eventRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(event)
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" {
		return nil, entities.ErrTitleRequired
	}
	if event.Color == "" {
		event.Color = entities.DefaultEventColor
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Delete removes an event
func (s *CalendarService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.eventRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.LogUserAction(userID, "event_deleted", map[string]interface{}{"event_id": id})
	return nil
}
