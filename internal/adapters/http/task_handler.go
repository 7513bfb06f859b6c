package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arrangemylist/planner/internal/application/services"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// TaskHandler handles kanban task requests
type TaskHandler struct {
	taskService *services.TaskService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// ListTasks returns the board grouped by status
func (h *TaskHandler) ListTasks(c echo.Context) error {
	groups, err := h.taskService.List(c.Request().Context(), getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, groups)
}

// GetTask returns one task
func (h *TaskHandler) GetTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	task, err := h.taskService.Get(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// CreateTask appends a task to its column
func (h *TaskHandler) CreateTask(c echo.Context) error {
	var req ports.CreateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.Create(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// UpdateTask applies a partial edit
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req ports.UpdateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.taskService.Update(c.Request().Context(), getUserIDFromContext(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// ReorderTask moves a task to a column and position
func (h *TaskHandler) ReorderTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req ports.ReorderTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.taskService.Reorder(c.Request().Context(), getUserIDFromContext(c), id, req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Task reordered successfully"})
}

// DeleteTask removes a task
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.taskService.Delete(c.Request().Context(), getUserIDFromContext(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Task deleted successfully"})
}
