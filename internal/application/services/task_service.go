package services

import (
	"context"
	"strings"

	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

var (
	errInvalidStatus   = entities.Validation("Invalid status")
	errInvalidPriority = entities.Validation("Invalid priority")
)

// TaskService handles kanban task operations
type TaskService struct {
	taskRepo ports.TaskRepository
	logger   *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		logger:   logger.WithComponent("tasks"),
	}
}

// List returns the user's tasks grouped into the three board columns
func (s *TaskService) List(ctx context.Context, userID int64) (entities.TaskGroups, error) {
	tasks, err := s.taskRepo.List(ctx, userID)
	if err != nil {
		return entities.TaskGroups{}, err
	}
	groups := entities.GroupTasks(tasks)
	for _, status := range entities.Statuses {
		entities.SortColumn(groups.Column(status))
	}
	return groups, nil
}

// Get returns one task
func (s *TaskService) Get(ctx context.Context, userID, id int64) (*entities.Task, error) {
	return s.taskRepo.GetByID(ctx, userID, id)
}

// Create appends a task at the tail of its column
func (s *TaskService) Create(ctx context.Context, userID int64, req ports.CreateTaskRequest) (*entities.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, entities.ErrTitleRequired
	}

	status := req.Status
	if status == "" {
		status = entities.TaskStatusTodo
	}
	if !status.IsValid() {
		return nil, errInvalidStatus
	}
	priority := req.Priority
	if priority == "" {
		priority = entities.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, errInvalidPriority
	}

	top, err := s.taskRepo.MaxPosition(ctx, userID, status)
	if err != nil {
		return nil, err
	}

	task := &entities.Task{
		UserID:      userID,
		Title:       title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
		Position:    top + 1,
	}
	if req.DueDate != nil {
		due := req.DueDate.Time
		task.DueDate = &due
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(userID, "task_created", map[string]interface{}{"task_id": task.ID, "status": task.Status})
	return task, nil
}

// Update applies a partial edit
func (s *TaskService) Update(ctx context.Context, userID, id int64, req ports.UpdateTaskRequest) (*entities.Task, error) {
	if req.IsEmpty() {
		return nil, entities.ErrNothingToUpdate
	}

	task, err := s.taskRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(task)
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return nil, entities.ErrTitleRequired
	}
	if !task.Status.IsValid() {
		return nil, errInvalidStatus
	}
	if !task.Priority.IsValid() {
		return nil, errInvalidPriority
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Reorder moves a task to a column and position
func (s *TaskService) Reorder(ctx context.Context, userID, id int64, req ports.ReorderTaskRequest) error {
	if !req.Status.IsValid() {
		return errInvalidStatus
	}
	if req.Position < 0 {
		return entities.Validation("Position must not be negative")
	}

	if err := s.taskRepo.Reorder(ctx, userID, id, req.Status, req.Position); err != nil {
		return err
	}

	s.logger.LogUserAction(userID, "task_reordered", map[string]interface{}{"task_id": id, "status": req.Status, "position": req.Position})
	return nil
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.taskRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.LogUserAction(userID, "task_deleted", map[string]interface{}{"task_id": id})
	return nil
}
