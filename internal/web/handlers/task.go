package handlers

import (
	"fmt"

	"taskly/internal/auth"
	"taskly/internal/config"
	"taskly/internal/forms"
	"taskly/internal/middleware"
	"taskly/internal/models"
	"taskly/internal/websocket"
	"taskly/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Dashboard lists the current user's tasks in id order.
func Dashboard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	tasks, err := config.Tasks.ListByUser(c.UserContext(), user.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}
	return render(c, "index", fiber.Map{"Title": "Dashboard", "Tasks": tasks})
}

// CreateTask shows an empty task form and stores a new task owned by the current user.
// Any owner field in the body is ignored.
func CreateTask(c *fiber.Ctx) error {
	var form forms.TaskForm
	if c.Method() != fiber.MethodPost {
		return render(c, "create_task", fiber.Map{"Title": "Create task", "Form": form})
	}
	if err := c.BodyParser(&form); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return fiber.ErrBadRequest
	}

	errs := form.Validate(config.Validate)
	if errs.Any() {
		return render(c, "create_task", fiber.Map{"Title": "Create task", "Form": form, "Errors": errs})
	}

	user := middleware.CurrentUser(c)
	task := &models.Task{UserID: user.ID}
	if err := form.Apply(task); err != nil {
		return fiber.ErrBadRequest
	}
	if err := config.Tasks.Create(c.UserContext(), task); err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return err
	}

	logger.AuditLogger.Info("Task created successfully",
		zap.Int64("task_id", task.ID), zap.Int64("user_id", user.ID))
	publish(task.UserID, websocket.EventTaskCreated, task.ID)
	flash(c, auth.LevelSuccess, "Task created.")
	return c.Redirect("/")
}

func ViewTask(c *fiber.Ctx) error {
	task, err := loadTask(c)
	if err != nil {
		return err
	}
	return render(c, "view_task", fiber.Map{"Title": task.Title, "Task": task})
}

// UpdateTask edits title, content and due date. The id and owner are never changed.
func UpdateTask(c *fiber.Ctx) error {
	task, err := loadTask(c)
	if err != nil {
		return err
	}
	if c.Method() != fiber.MethodPost {
		form := forms.TaskFormFrom(task)
		return render(c, "update_task", fiber.Map{"Title": "Edit task", "Task": task, "Form": form})
	}

	var form forms.TaskForm
	if err := c.BodyParser(&form); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return fiber.ErrBadRequest
	}
	errs := form.Validate(config.Validate)
	if errs.Any() {
		return render(c, "update_task", fiber.Map{"Title": "Edit task", "Task": task, "Form": form, "Errors": errs})
	}
	if err := form.Apply(task); err != nil {
		return fiber.ErrBadRequest
	}
	if err := config.Tasks.Update(c.UserContext(), task); err != nil {
		logger.ErrorLogger.Error("Error updating task", zap.Int64("task_id", task.ID), zap.Error(err))
		return err
	}

	logger.AuditLogger.Info("Task updated successfully", zap.Int64("task_id", task.ID))
	publish(task.UserID, websocket.EventTaskUpdated, task.ID)
	flash(c, auth.LevelSuccess, "Task updated.")
	return c.Redirect(fmt.Sprintf("/view_task/%d/", task.ID))
}

// DeleteTask asks for confirmation on GET and deletes on POST.
func DeleteTask(c *fiber.Ctx) error {
	task, err := loadTask(c)
	if err != nil {
		return err
	}
	if c.Method() != fiber.MethodPost {
		return render(c, "delete_task", fiber.Map{"Title": "Delete task", "Task": task})
	}
	if err := config.Tasks.Delete(c.UserContext(), task.ID); err != nil {
		logger.ErrorLogger.Error("Error deleting task", zap.Int64("task_id", task.ID), zap.Error(err))
		return err
	}

	logger.AuditLogger.Info("Task deleted successfully", zap.Int64("task_id", task.ID))
	publish(task.UserID, websocket.EventTaskDeleted, task.ID)
	flash(c, auth.LevelSuccess, "Task deleted.")
	return c.Redirect("/")
}
