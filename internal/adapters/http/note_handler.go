package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arrangemylist/planner/internal/application/services"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// NoteHandler handles note requests
type NoteHandler struct {
	noteService *services.NoteService
	logger      *logger.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService *services.NoteService, logger *logger.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		logger:      logger,
	}
}

func (h *NoteHandler) ListNotes(c echo.Context) error {
	notes, err := h.noteService.List(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notes)
}

func (h *NoteHandler) GetNote(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	note, err := h.noteService.Get(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

func (h *NoteHandler) CreateNote(c echo.Context) error {
	var req ports.CreateNoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	note, err := h.noteService.Create(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, note)
}

func (h *NoteHandler) UpdateNote(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req ports.UpdateNoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	note, err := h.noteService.Update(c.Request().Context(), getUserIDFromContext(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, note)
}

// TogglePin flips the pinned flag
func (h *NoteHandler) TogglePin(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	pinned, err := h.noteService.TogglePin(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports.PinResponse{IsPinned: pinned})
}

func (h *NoteHandler) DeleteNote(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.noteService.Delete(c.Request().Context(), getUserIDFromContext(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Note deleted successfully"})
}
