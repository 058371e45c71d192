package handlers

import (
	"errors"
	"strconv"

	"taskly/internal/config"
	"taskly/internal/forms"
	"taskly/internal/middleware"
	"taskly/internal/models"
	"taskly/internal/repository"
	"taskly/internal/websocket"
	"taskly/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func caller(c *fiber.Ctx) (int64, string) {
	userID, _ := c.Locals(middleware.UserIDLocal).(int64)
	role, _ := c.Locals(middleware.RoleLocal).(string)
	return userID, role
}

// ListTasks returns the caller's tasks, or every task for admins.
func ListTasks(c *fiber.Ctx) error {
	userID, role := caller(c)

	var (
		tasks []models.Task
		err   error
	)
	if role == models.RoleAdmin {
		tasks, err = config.Tasks.ListAll(c.UserContext())
	} else {
		tasks, err = config.Tasks.ListByUser(c.UserContext(), userID)
	}
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Error fetching tasks")
	}

	views := make([]models.TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, task.View())
	}
	return ok(c, "Tasks fetched successfully", views)
}

// loadTask resolves :id for the caller. Unknown ids, and foreign tasks when ownership is
// enforced for non-admins, both answer 404.
func loadTask(c *fiber.Ctx) (*models.Task, error) {
	userID, role := caller(c)

	taskID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || taskID <= 0 {
		return nil, fail(c, fiber.StatusNotFound, "Task not found")
	}

	task, err := config.Tasks.Get(c.UserContext(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(c, fiber.StatusNotFound, "Task not found")
		}
		logger.ErrorLogger.Error("Error fetching task", zap.Int64("task_id", taskID), zap.Error(err))
		return nil, fail(c, fiber.StatusInternalServerError, "Error fetching task")
	}

	// admin bebas akses, selain itu ikut aturan kepemilikan
	if config.Settings.EnforceOwnership && role != models.RoleAdmin && task.UserID != userID {
		logger.SecurityLogger.Warn("Access to foreign task",
			zap.Int64("user_id", userID), zap.Int64("task_id", taskID))
		return nil, fail(c, fiber.StatusNotFound, "Task not found")
	}
	return task, nil
}

func GetTask(c *fiber.Ctx) error {
	task, err := loadTask(c)
	if task == nil {
		return err
	}
	return ok(c, "Task found", task.View())
}

// bindTask parses and validates a task body. On failure the response is already written and
// the returned form is nil.
func bindTask(c *fiber.Ctx) (*forms.TaskForm, error) {
	var req forms.TaskForm
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in task body", zap.Error(err))
		return nil, fail(c, fiber.StatusBadRequest, "Bad request")
	}
	if errs := req.Validate(config.Validate); errs.Any() {
		logger.AuditLogger.Warn("Validation error in task body", zap.Any("errors", errs))
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  errs,
			"success": false,
			"status":  fiber.StatusBadRequest,
		})
	}
	return &req, nil
}

// CreateTask stores a task owned by the token's user. Owner fields in the body are ignored.
func CreateTask(c *fiber.Ctx) error {
	userID, _ := caller(c)
	req, err := bindTask(c)
	if req == nil {
		return err
	}

	task := &models.Task{UserID: userID}
	if err := req.Apply(task); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid due date")
	}
	if err := config.Tasks.Create(c.UserContext(), task); err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Error creating task")
	}

	logger.AuditLogger.Info("Task created successfully",
		zap.Int64("task_id", task.ID), zap.Int64("user_id", userID))
	config.Hub.Publish(task.UserID, websocket.Event{Event: websocket.EventTaskCreated, TaskID: task.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Task created successfully",
		"success": true,
		"status":  fiber.StatusCreated,
		"data":    task.View(),
	})
}

// UpdateTask replaces title, content and due date. Id and owner never change.
func UpdateTask(c *fiber.Ctx) error {
	task, err := loadTask(c)
	if task == nil {
		return err
	}
	req, err := bindTask(c)
	if req == nil {
		return err
	}

	if err := req.Apply(task); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid due date")
	}
	if err := config.Tasks.Update(c.UserContext(), task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Task not found")
		}
		logger.ErrorLogger.Error("Error updating task", zap.Int64("task_id", task.ID), zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Error updating task")
	}

	logger.AuditLogger.Info("Task updated successfully", zap.Int64("task_id", task.ID))
	config.Hub.Publish(task.UserID, websocket.Event{Event: websocket.EventTaskUpdated, TaskID: task.ID})
	return ok(c, "Task updated successfully", task.View())
}

func DeleteTask(c *fiber.Ctx) error {
	task, err := loadTask(c)
	if task == nil {
		return err
	}
	if err := config.Tasks.Delete(c.UserContext(), task.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "Task not found")
		}
		logger.ErrorLogger.Error("Error deleting task", zap.Int64("task_id", task.ID), zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Error deleting task")
	}

	logger.AuditLogger.Info("Task deleted successfully", zap.Int64("task_id", task.ID))
	config.Hub.Publish(task.UserID, websocket.Event{Event: websocket.EventTaskDeleted, TaskID: task.ID})
	return ok(c, "Task deleted successfully", fiber.Map{"id": task.ID})
}
