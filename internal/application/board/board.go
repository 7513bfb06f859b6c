// Package board holds the kanban columns of the signed-in user and keeps them
// in step with the server through optimistic mutations.
package board

import (
	"context"
	"fmt"
	"sync"

	"github.com/arrangemylist/planner/internal/application/notify"
	"github.com/arrangemylist/planner/internal/application/optimistic"
	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// FetchError reports a failed Load. The board keeps its previous state.
type FetchError struct {
	Err error
}

// Error implements error
func (e *FetchError) Error() string { return fmt.Sprintf("failed to load tasks: %v", e.Err) }

// Unwrap returns the gateway error
func (e *FetchError) Unwrap() error { return e.Err }

// origin is where a task sat before an unconfirmed MoveTask
type origin struct {
	index int
	task  entities.Task
}

// Counts holds the number of tasks per column
type Counts map[entities.TaskStatus]int

// Board is the client-side task store. It is safe for concurrent use; its
// lock is never held across a gateway call.
type Board struct {
	mu     sync.RWMutex
	groups entities.TaskGroups
	subs   map[int]func(entities.TaskGroups)
	nextID int
	moves  map[int64]origin

	gateway    ports.TaskGateway
	controller *optimistic.Controller
	notifier   notify.Notifier
	logger     *logger.Logger
}

// New creates an empty board
func New(gateway ports.TaskGateway, controller *optimistic.Controller, notifier notify.Notifier, logger *logger.Logger) *Board {
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Board{
		groups:     entities.NewTaskGroups(),
		subs:       make(map[int]func(entities.TaskGroups)),
		moves:      make(map[int64]origin),
		gateway:    gateway,
		controller: controller,
		notifier:   notifier,
		logger:     logger.WithComponent("board"),
	}
}

// Load replaces the local state with the server's grouping
func (b *Board) Load(ctx context.Context) (entities.TaskGroups, error) {
	groups, err := b.reload(ctx)
	if err != nil {
		b.notifier.Notify(notify.Failure("Failed to load tasks", err))
		return b.Snapshot(), err
	}
	return groups, nil
}

func (b *Board) reload(ctx context.Context) (entities.TaskGroups, error) {
	fetched, err := b.gateway.ListTasks(ctx)
	if err != nil {
		return entities.TaskGroups{}, &FetchError{Err: err}
	}

	groups := entities.NewTaskGroups()
	for _, status := range entities.Statuses {
		column := append([]entities.Task{}, fetched.Column(status)...)
		entities.SortColumn(column)
		groups.SetColumn(status, column)
	}

	b.mu.Lock()
	b.groups = groups
	snapshot := b.groups.Clone()
	b.mu.Unlock()

	b.publish(snapshot)
	return snapshot, nil
}

// MoveTask moves a task between columns locally, before any server call.
// The task takes the destination's next position, which is at least
// targetPosition. Moving within one column is a no-op.
func (b *Board) MoveTask(taskID int64, from, to entities.TaskStatus, targetPosition int) (entities.TaskGroups, error) {
	if !from.IsValid() || !to.IsValid() {
		return b.Snapshot(), entities.Validation("Invalid status")
	}
	if from == to {
		return b.Snapshot(), nil
	}

	b.mu.Lock()
	source := b.groups.Column(from)
	idx := indexOf(source, taskID)
	var before origin
	if idx >= 0 {
		before = origin{index: idx, task: source[idx]}
	}
	_, err := b.moveLocked(taskID, from, to, targetPosition)
	if _, pending := b.moves[taskID]; err == nil && !pending {
		b.moves[taskID] = before
	}
	snapshot := b.groups.Clone()
	b.mu.Unlock()
	if err != nil {
		return snapshot, err
	}

	b.publish(snapshot)
	return snapshot, nil
}

func (b *Board) moveLocked(taskID int64, from, to entities.TaskStatus, targetPosition int) (int, error) {
	source := b.groups.Column(from)
	idx := indexOf(source, taskID)
	if idx < 0 {
		return 0, entities.ErrTaskNotFound
	}

	task := source[idx]
	b.groups.SetColumn(from, remove(source, idx))

	dest := b.groups.Column(to)
	position := targetPosition
	if len(dest) > 0 {
		position = max(dest[len(dest)-1].Position+1, targetPosition)
	}
	task.Status = to
	task.Position = position
	b.groups.SetColumn(to, append(dest, task))
	return position, nil
}

// ConfirmMove persists a move. On failure the board is resynchronized with
// a full reload; when that fails too, the task goes back to where it was
// before MoveTask. The reorder error is returned.
func (b *Board) ConfirmMove(ctx context.Context, taskID int64, to entities.TaskStatus, position int) error {
	err := b.gateway.ReorderTask(ctx, taskID, to, position)

	b.mu.Lock()
	before, pending := b.moves[taskID]
	delete(b.moves, taskID)
	b.mu.Unlock()

	if err == nil {
		return nil
	}

	if _, reloadErr := b.reload(ctx); reloadErr != nil {
		b.logger.Warnw("Reload after failed move also failed", "task_id", taskID, "error", reloadErr.Error())
		if pending {
			b.putBack(before)
		}
	}
	b.notifier.Notify(notify.Failure("Failed to move task", err))
	return err
}

// putBack returns a task to its pre-move column and index
func (b *Board) putBack(o origin) {
	b.mu.Lock()
	if status, idx := b.locateLocked(o.task.ID); idx >= 0 {
		b.groups.SetColumn(status, remove(b.groups.Column(status), idx))
	}
	b.groups.SetColumn(o.task.Status, insert(b.groups.Column(o.task.Status), o.index, o.task))
	snapshot := b.groups.Clone()
	b.mu.Unlock()
	b.publish(snapshot)
}

// Drop is the drag-and-drop gesture: an optimistic move confirmed by the
// server, rolled back by a reload when it is rejected.
func (b *Board) Drop(ctx context.Context, taskID int64, from, to entities.TaskStatus, targetPosition int) (entities.TaskGroups, error) {
	if from == to {
		return b.Snapshot(), nil
	}

	var before entities.TaskGroups
	var position int
	_, err := optimistic.Execute(ctx, b.controller, optimistic.Mutation[struct{}]{
		Key:  optimistic.Key("task", taskID),
		Kind: optimistic.Structural,
		Apply: func() error {
			if !from.IsValid() || !to.IsValid() {
				return entities.Validation("Invalid status")
			}
			b.mu.Lock()
			before = b.groups.Clone()
			pos, err := b.moveLocked(taskID, from, to, targetPosition)
			snapshot := b.groups.Clone()
			b.mu.Unlock()
			if err != nil {
				return err
			}
			position = pos
			b.publish(snapshot)
			return nil
		},
		Commit: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, b.gateway.ReorderTask(ctx, taskID, to, position)
		},
		Revert: func() { b.restore(before) },
		Reload: func(ctx context.Context) error {
			_, err := b.reload(ctx)
			return err
		},
	})
	if err != nil {
		b.notifier.Notify(notify.Failure("Failed to move task", err))
		return b.Snapshot(), err
	}

	b.notifier.Notify(notify.Success("Task moved successfully"))
	return b.Snapshot(), nil
}

// CreateTask creates a task on the server and appends the result to its column
func (b *Board) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	task, err := b.gateway.CreateTask(ctx, req)
	if err != nil {
		b.notifier.Notify(notify.Failure("Failed to save task", err))
		return nil, err
	}

	b.mu.Lock()
	b.groups.SetColumn(task.Status, append(b.groups.Column(task.Status), *task))
	snapshot := b.groups.Clone()
	b.mu.Unlock()

	b.publish(snapshot)
	b.notifier.Notify(notify.Success("Task created"))
	return task, nil
}

// EditTask applies req locally, sends it, and takes the server's copy as
// canonical. A rejected edit is reverted from the pre-edit copy.
func (b *Board) EditTask(ctx context.Context, taskID int64, req ports.UpdateTaskRequest) (*entities.Task, error) {
	var original entities.Task
	var originalIdx int

	updated, err := optimistic.Execute(ctx, b.controller, optimistic.Mutation[*entities.Task]{
		Key:  optimistic.Key("task", taskID),
		Kind: optimistic.FieldEdit,
		Apply: func() error {
			b.mu.Lock()
			status, idx := b.locateLocked(taskID)
			if idx < 0 {
				b.mu.Unlock()
				return entities.ErrTaskNotFound
			}
			original, originalIdx = b.groups.Column(status)[idx], idx

			edited := original
			req.ApplyTo(&edited)
			b.placeLocked(edited)
			snapshot := b.groups.Clone()
			b.mu.Unlock()

			b.publish(snapshot)
			return nil
		},
		Commit: func(ctx context.Context) (*entities.Task, error) {
			return b.gateway.UpdateTask(ctx, taskID, req)
		},
		Reconcile: func(task *entities.Task) {
			b.mu.Lock()
			b.placeLocked(*task)
			snapshot := b.groups.Clone()
			b.mu.Unlock()
			b.publish(snapshot)
		},
		Revert: func() {
			b.mu.Lock()
			if status, idx := b.locateLocked(taskID); idx >= 0 {
				b.groups.SetColumn(status, remove(b.groups.Column(status), idx))
			}
			b.groups.SetColumn(original.Status, insert(b.groups.Column(original.Status), originalIdx, original))
			snapshot := b.groups.Clone()
			b.mu.Unlock()
			b.publish(snapshot)
		},
		Reload: func(ctx context.Context) error {
			_, err := b.reload(ctx)
			return err
		},
	})
	if err != nil {
		b.notifier.Notify(notify.Failure("Failed to save task", err))
		return nil, err
	}

	b.notifier.Notify(notify.Success("Task updated"))
	return updated, nil
}

// DeleteTask removes a task locally, then on the server
func (b *Board) DeleteTask(ctx context.Context, taskID int64) error {
	var before entities.TaskGroups

	_, err := optimistic.Execute(ctx, b.controller, optimistic.Mutation[struct{}]{
		Key:  optimistic.Key("task", taskID),
		Kind: optimistic.Structural,
		Apply: func() error {
			b.mu.Lock()
			status, idx := b.locateLocked(taskID)
			if idx < 0 {
				b.mu.Unlock()
				return entities.ErrTaskNotFound
			}
			before = b.groups.Clone()
			b.groups.SetColumn(status, remove(b.groups.Column(status), idx))
			snapshot := b.groups.Clone()
			b.mu.Unlock()

			b.publish(snapshot)
			return nil
		},
		Commit: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, b.gateway.DeleteTask(ctx, taskID)
		},
		Revert: func() { b.restore(before) },
		Reload: func(ctx context.Context) error {
			_, err := b.reload(ctx)
			return err
		},
	})
	if err != nil {
		b.notifier.Notify(notify.Failure("Failed to delete task", err))
		return err
	}

	b.notifier.Notify(notify.Success("Task deleted"))
	return nil
}

// Counts derives column sizes from the columns themselves
func (b *Board) Counts() Counts {
	b.mu.RLock()
	defer b.mu.RUnlock()

	counts := make(Counts, len(entities.Statuses))
	for _, status := range entities.Statuses {
		counts[status] = len(b.groups.Column(status))
	}
	return counts
}

// Snapshot returns a deep copy of the columns
func (b *Board) Snapshot() entities.TaskGroups {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.groups.Clone()
}

// Find returns the task with the given id
func (b *Board) Find(taskID int64) (entities.Task, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	status, idx := b.locateLocked(taskID)
	if idx < 0 {
		return entities.Task{}, false
	}
	return b.groups.Column(status)[idx], true
}

// Subscribe registers fn to receive a copy of the columns after every
// change. The returned function removes the subscription.
func (b *Board) Subscribe(fn func(entities.TaskGroups)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *Board) publish(groups entities.TaskGroups) {
	b.mu.RLock()
	subs := make([]func(entities.TaskGroups), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(groups.Clone())
	}
}

func (b *Board) restore(groups entities.TaskGroups) {
	b.mu.Lock()
	b.groups = groups.Clone()
	snapshot := b.groups.Clone()
	b.mu.Unlock()
	b.publish(snapshot)
}

// locateLocked finds a task in any column; idx is -1 when absent
func (b *Board) locateLocked(taskID int64) (entities.TaskStatus, int) {
	for _, status := range entities.Statuses {
		if idx := indexOf(b.groups.Column(status), taskID); idx >= 0 {
			return status, idx
		}
	}
	return "", -1
}

// placeLocked replaces a task in place, or moves it into its new column at
// the place its position sorts to when its status changed.
func (b *Board) placeLocked(task entities.Task) {
	status, idx := b.locateLocked(task.ID)
	if idx >= 0 && status == task.Status {
		b.groups.Column(status)[idx] = task
		return
	}
	if idx >= 0 {
		b.groups.SetColumn(status, remove(b.groups.Column(status), idx))
	}
	column := append(b.groups.Column(task.Status), task)
	entities.SortColumn(column)
	b.groups.SetColumn(task.Status, column)
}

func indexOf(tasks []entities.Task, id int64) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func remove(tasks []entities.Task, idx int) []entities.Task {
	out := make([]entities.Task, 0, len(tasks)-1)
	out = append(out, tasks[:idx]...)
	return append(out, tasks[idx+1:]...)
}

func insert(tasks []entities.Task, idx int, task entities.Task) []entities.Task {
	if idx > len(tasks) {
		idx = len(tasks)
	}
	out := make([]entities.Task, 0, len(tasks)+1)
	out = append(out, tasks[:idx]...)
	out = append(out, task)
	return append(out, tasks[idx:]...)
}
