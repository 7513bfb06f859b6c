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

const noteColumns = `id, user_id, title, content, color, is_pinned, created_at, updated_at`

// NoteRepositoryImpl implements the NoteRepository interface
type NoteRepositoryImpl struct {
	db *sqlx.DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *sqlx.DB) ports.NoteRepository {
	return &NoteRepositoryImpl{db: db}
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entities.Note) error {
	query := r.db.Rebind(`
		INSERT INTO notes (user_id, title, content, color, is_pinned, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	now := time.Now().UTC()
	note.CreatedAt, note.UpdatedAt = now, now

	err := r.db.QueryRowContext(ctx, query,
		note.UserID, note.Title, note.Content, note.Color, note.IsPinned, note.CreatedAt, note.UpdatedAt,
	).Scan(&note.ID)
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}

	return nil
}

func (r *NoteRepositoryImpl) GetByID(ctx context.Context, userID, id int64) (*entities.Note, error) {
	query := r.db.Rebind(`SELECT ` + noteColumns + ` FROM notes WHERE id = ? AND user_id = ?`)

	var note entities.Note
	if err := r.db.GetContext(ctx, &note, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrNoteNotFound
		}
		return nil, fmt.Errorf("get note by id: %w", err)
	}

	return &note, nil
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entities.Note) error {
	query := r.db.Rebind(`
		UPDATE notes
		SET title = ?, content = ?, color = ?, is_pinned = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)

	note.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		note.Title, note.Content, note.Color, note.IsPinned, note.UpdatedAt, note.ID, note.UserID,
	)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}

	return expectRow(result, entities.ErrNoteNotFound)
}

func (r *NoteRepositoryImpl) TogglePin(ctx context.Context, userID, id int64) (bool, error) {
	query := r.db.Rebind(`
		UPDATE notes
		SET is_pinned = NOT is_pinned, updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING is_pinned`)

	var pinned bool
	if err := r.db.QueryRowContext(ctx, query, time.Now().UTC(), id, userID).Scan(&pinned); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, entities.ErrNoteNotFound
		}
		return false, fmt.Errorf("toggle note pin: %w", err)
	}

	return pinned, nil
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, userID, id int64) error {
	query := r.db.Rebind(`DELETE FROM notes WHERE id = ? AND user_id = ?`)

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	return expectRow(result, entities.ErrNoteNotFound)
}

func (r *NoteRepositoryImpl) List(ctx context.Context, userID int64) ([]entities.Note, error) {
	query := r.db.Rebind(`
		SELECT ` + noteColumns + `
		FROM notes
		WHERE user_id = ?
		ORDER BY is_pinned DESC, updated_at DESC, id DESC`)

	notes := []entities.Note{}
	if err := r.db.SelectContext(ctx, &notes, query, userID); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	return notes, nil
}
