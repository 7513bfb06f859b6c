package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/ports"
)

const eventColumns = `id, user_id, title, description, start_time, end_time, color, all_day, created_at, updated_at`

// EventRepositoryImpl implements the EventRepository interface
type EventRepositoryImpl struct {
	db *sqlx.DB
}

// NewEventRepository creates a new calendar event repository
func NewEventRepository(db *sqlx.DB) ports.EventRepository {
	return &EventRepositoryImpl{db: db}
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *entities.CalendarEvent) error {
	query := r.db.Rebind(`
		INSERT INTO calendar_events (user_id, title, description, start_time, end_time, color, all_day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	now := time.Now().UTC()
	event.CreatedAt, event.UpdatedAt = now, now

	err := r.db.QueryRowContext(ctx, query,
		event.UserID, event.Title, event.Description, event.StartTime.UTC(), event.EndTime.UTC(),
		event.Color, event.AllDay, event.CreatedAt, event.UpdatedAt,
	).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	return nil
}

func (r *EventRepositoryImpl) GetByID(ctx context.Context, userID, id int64) (*entities.CalendarEvent, error) {
	query := r.db.Rebind(`SELECT ` + eventColumns + ` FROM calendar_events WHERE id = ? AND user_id = ?`)

	var event entities.CalendarEvent
	if err := r.db.GetContext(ctx, &event, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event by id: %w", err)
	}

	return &event, nil
}

func (r *EventRepositoryImpl) Update(ctx context.Context, event *entities.CalendarEvent) error {
	query := r.db.Rebind(`
		UPDATE calendar_events
		SET title = ?, description = ?, start_time = ?, end_time = ?, color = ?, all_day = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)

	event.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		event.Title, event.Description, event.StartTime.UTC(), event.EndTime.UTC(),
		event.Color, event.AllDay, event.UpdatedAt, event.ID, event.UserID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	return expectRow(result, entities.ErrEventNotFound)
}

func (r *EventRepositoryImpl) Delete(ctx context.Context, userID, id int64) error {
	query := r.db.Rebind(`DELETE FROM calendar_events WHERE id = ? AND user_id = ?`)

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	return expectRow(result, entities.ErrEventNotFound)
}

func (r *EventRepositoryImpl) List(ctx context.Context, userID int64, filter ports.EventFilter) ([]entities.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE user_id = ?`
	args := []interface{}{userID}

	switch {
	case filter.Within != nil:
		query += ` AND start_time >= ? AND end_time <= ?`
		args = append(args, filter.Within.Start.UTC(), filter.Within.End.UTC())
	case filter.Overlapping != nil:
		query += ` AND start_time <= ? AND end_time >= ?`
		args = append(args, filter.Overlapping.End.UTC(), filter.Overlapping.Start.UTC())
	}
	query += ` ORDER BY start_time, id`

	events := []entities.CalendarEvent{}
	if err := r.db.SelectContext(ctx, &events, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return events, nil
}
