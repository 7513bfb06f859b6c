package services

import (
	"context"
	"strings"

	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// NoteService handles note operations
type NoteService struct {
	noteRepo ports.NoteRepository
	logger   *logger.Logger
}

// NewNoteService creates a new note service
func NewNoteService(noteRepo ports.NoteRepository, logger *logger.Logger) *NoteService {
	return &NoteService{
		noteRepo: noteRepo,
		logger:   logger.WithComponent("notes"),
	}
}

// List returns pinned notes first, then the most recently updated
func (s *NoteService) List(ctx context.Context, userID int64) ([]entities.Note, error) {
	return s.noteRepo.List(ctx, userID)
}

// Get returns one note
func (s *NoteService) Get(ctx context.Context, userID, id int64) (*entities.Note, error) {
	return s.noteRepo.GetByID(ctx, userID, id)
}

// Create stores a new unpinned note
func (s *NoteService) Create(ctx context.Context, userID int64, req ports.CreateNoteRequest) (*entities.Note, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, entities.ErrTitleRequired
	}

	color := req.Color
	if color == "" {
		color = entities.NoteColorDefault
	}

	note := &entities.Note{
		UserID:  userID,
		Title:   title,
		Content: req.Content,
		Color:   color,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(userID, "note_created", map[string]interface{}{"note_id": note.ID})
	return note, nil
}

// Update applies a partial edit
func (s *NoteService) Update(ctx context.Context, userID, id int64, req ports.UpdateNoteRequest) (*entities.Note, error) {
	if req.IsEmpty() {
		return nil, entities.ErrNothingToUpdate
	}

	note, err := s.noteRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(note)
	note.Title = strings.TrimSpace(note.Title)
	if note.Title == "" {
		return nil, entities.ErrTitleRequired
	}
	if note.Color == "" {
		note.Color = entities.NoteColorDefault
	}

	if err := s.noteRepo.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// TogglePin flips the pinned flag and returns its new value
func (s *NoteService) TogglePin(ctx context.Context, userID, id int64) (bool, error) {
	return s.noteRepo.TogglePin(ctx, userID, id)
}

// Delete removes a note
func (s *NoteService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.noteRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.LogUserAction(userID, "note_deleted", map[string]interface{}{"note_id": id})
	return nil
}
