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

const taskColumns = `id, user_id, title, description, status, priority, due_date, position, created_at, updated_at`

// TaskRepositoryImpl implements the TaskRepository interface
type TaskRepositoryImpl struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sqlx.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *entities.Task) error {
	query := r.db.Rebind(`
		INSERT INTO tasks (user_id, title, description, status, priority, due_date, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	now := time.Now().UTC()
	task.CreatedAt, task.UpdatedAt = now, now

	err := r.db.QueryRowContext(ctx, query,
		task.UserID, task.Title, task.Description, task.Status, task.Priority,
		utcPtr(task.DueDate), task.Position, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, userID, id int64) (*entities.Task, error) {
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`)

	var task entities.Task
	if err := r.db.GetContext(ctx, &task, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	return &task, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *entities.Task) error {
	query := r.db.Rebind(`
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, position = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)

	task.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.Status, task.Priority, utcPtr(task.DueDate),
		task.Position, task.UpdatedAt, task.ID, task.UserID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	return expectRow(result, entities.ErrTaskNotFound)
}

func (r *TaskRepositoryImpl) Reorder(ctx context.Context, userID, id int64, status entities.TaskStatus, position int) error {
	query := r.db.Rebind(`UPDATE tasks SET status = ?, position = ?, updated_at = ? WHERE id = ? AND user_id = ?`)

	result, err := r.db.ExecContext(ctx, query, status, position, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("reorder task: %w", err)
	}

	return expectRow(result, entities.ErrTaskNotFound)
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, userID, id int64) error {
	query := r.db.Rebind(`DELETE FROM tasks WHERE id = ? AND user_id = ?`)

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return expectRow(result, entities.ErrTaskNotFound)
}

func (r *TaskRepositoryImpl) List(ctx context.Context, userID int64) ([]entities.Task, error) {
	query := r.db.Rebind(`
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = ?
		ORDER BY status, position, created_at DESC, id DESC`)

	tasks := []entities.Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, userID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (r *TaskRepositoryImpl) MaxPosition(ctx context.Context, userID int64, status entities.TaskStatus) (int, error) {
	query := r.db.Rebind(`SELECT COALESCE(MAX(position), 0) FROM tasks WHERE user_id = ? AND status = ?`)

	var position int
	if err := r.db.GetContext(ctx, &position, query, userID, status); err != nil {
		return 0, fmt.Errorf("get max task position: %w", err)
	}

	return position, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
