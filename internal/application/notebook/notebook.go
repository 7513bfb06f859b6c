// Package notebook is the client-side notes collection, kept pinned first
// and most recently updated next.
package notebook

import (
	"context"
	"sync"

	"github.com/arrangemylist/planner/internal/application/notify"
	"github.com/arrangemylist/planner/internal/application/optimistic"
	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// Notebook is safe for concurrent use
type Notebook struct {
	mu    sync.RWMutex
	notes []entities.Note

	gateway    ports.NoteGateway
	controller *optimistic.Controller
	notifier   notify.Notifier
	logger     *logger.Logger
}

func New(gateway ports.NoteGateway, controller *optimistic.Controller, notifier notify.Notifier, logger *logger.Logger) *Notebook {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Notebook{
		notes:      []entities.Note{},
		gateway:    gateway,
		controller: controller,
		notifier:   notifier,
		logger:     logger.WithComponent("notebook"),
	}
}

// Load replaces the local notes with the server's. On failure the previous
// notes are kept.
func (n *Notebook) Load(ctx context.Context) ([]entities.Note, error) {
	if err := n.reload(ctx); err != nil {
		n.notifier.Notify(notify.Failure("Failed to load notes", err))
		return n.Notes(), err
	}
	return n.Notes(), nil
}

func (n *Notebook) reload(ctx context.Context) error {
	notes, err := n.gateway.ListNotes(ctx)
	if err != nil {
		return err
	}
	notes = append([]entities.Note{}, notes...)
	entities.SortNotes(notes)

	n.mu.Lock()
	n.notes = notes
	n.mu.Unlock()
	return nil
}

// Notes returns a copy of the collection in display order
func (n *Notebook) Notes() []entities.Note {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]entities.Note{}, n.notes...)
}

// Find returns the note with the given id
func (n *Notebook) Find(id int64) (entities.Note, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if idx := indexOf(n.notes, id); idx >= 0 {
		return n.notes[idx], true
	}
	return entities.Note{}, false
}

// Create saves a note on the server and inserts the result
func (n *Notebook) Create(ctx context.Context, req ports.CreateNoteRequest) (*entities.Note, error) {
	note, err := n.gateway.CreateNote(ctx, req)
	if err != nil {
		n.notifier.Notify(notify.Failure("Failed to save note", err))
		return nil, err
	}

	n.mu.Lock()
	n.notes = append(n.notes, *note)
	entities.SortNotes(n.notes)
	n.mu.Unlock()

	n.notifier.Notify(notify.Success("Note created"))
	return note, nil
}

// Edit applies req locally, then reconciles with the server's copy. A
// rejected edit is reverted.
func (n *Notebook) Edit(ctx context.Context, id int64, req ports.UpdateNoteRequest) (*entities.Note, error) {
	var original entities.Note

	note, err := optimistic.Execute(ctx, n.controller, optimistic.Mutation[*entities.Note]{
		Key:  optimistic.Key("note", id),
		Kind: optimistic.FieldEdit,
		Apply: func() error {
			n.mu.Lock()
			defer n.mu.Unlock()
			idx := indexOf(n.notes, id)
			if idx < 0 {
				return entities.ErrNoteNotFound
			}
			original = n.notes[idx]
			req.ApplyTo(&n.notes[idx])
			entities.SortNotes(n.notes)
			return nil
		},
		Commit: func(ctx context.Context) (*entities.Note, error) {
			return n.gateway.UpdateNote(ctx, id, req)
		},
		Reconcile: func(note *entities.Note) { n.replace(*note) },
		Revert:    func() { n.replace(original) },
		Reload:    n.reload,
	})
	if err != nil {
		n.notifier.Notify(notify.Failure("Failed to save note", err))
		return nil, err
	}

	n.notifier.Notify(notify.Success("Note updated"))
	return note, nil
}

// TogglePin flips the pin locally, then adopts the server's answer
func (n *Notebook) TogglePin(ctx context.Context, id int64) (bool, error) {
	var was bool

	pinned, err := optimistic.Execute(ctx, n.controller, optimistic.Mutation[bool]{
		Key:  optimistic.Key("note", id),
		Kind: optimistic.FieldEdit,
		Apply: func() error {
			n.mu.Lock()
			defer n.mu.Unlock()
			idx := indexOf(n.notes, id)
			if idx < 0 {
				return entities.ErrNoteNotFound
			}
			was = n.notes[idx].IsPinned
			n.notes[idx].IsPinned = !was
			entities.SortNotes(n.notes)
			return nil
		},
		Commit: func(ctx context.Context) (bool, error) {
			return n.gateway.TogglePin(ctx, id)
		},
		Reconcile: func(pinned bool) { n.setPinned(id, pinned) },
		Revert:    func() { n.setPinned(id, was) },
		Reload:    n.reload,
	})
	if err != nil {
		n.notifier.Notify(notify.Failure("Failed to toggle pin", err))
		return was, err
	}

	if pinned {
		n.notifier.Notify(notify.Success("Note pinned"))
	} else {
		n.notifier.Notify(notify.Success("Note unpinned"))
	}
	return pinned, nil
}

// Delete removes a note locally, then on the server
func (n *Notebook) Delete(ctx context.Context, id int64) error {
	var before []entities.Note

	_, err := optimistic.Execute(ctx, n.controller, optimistic.Mutation[struct{}]{
		Key:  optimistic.Key("note", id),
		Kind: optimistic.Structural,
		Apply: func() error {
			n.mu.Lock()
			defer n.mu.Unlock()
			idx := indexOf(n.notes, id)
			if idx < 0 {
				return entities.ErrNoteNotFound
			}
			before = append([]entities.Note{}, n.notes...)
			n.notes = append(n.notes[:idx:idx], n.notes[idx+1:]...)
			return nil
		},
		Commit: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, n.gateway.DeleteNote(ctx, id)
		},
		Revert: func() {
			n.mu.Lock()
			n.notes = before
			n.mu.Unlock()
		},
		Reload: n.reload,
	})
	if err != nil {
		n.notifier.Notify(notify.Failure("Failed to delete note", err))
		return err
	}

	n.notifier.Notify(notify.Success("Note deleted"))
	return nil
}

func (n *Notebook) replace(note entities.Note) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if idx := indexOf(n.notes, note.ID); idx >= 0 {
		n.notes[idx] = note
	} else {
		n.notes = append(n.notes, note)
	}
	entities.SortNotes(n.notes)
}

func (n *Notebook) setPinned(id int64, pinned bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if idx := indexOf(n.notes, id); idx >= 0 {
		n.notes[idx].IsPinned = pinned
		entities.SortNotes(n.notes)
	}
}

func indexOf(notes []entities.Note, id int64) int {
	for i := range notes {
		if notes[i].ID == id {
			return i
		}
	}
	return -1
}
