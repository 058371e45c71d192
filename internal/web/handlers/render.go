// Package handlers serves the HTML pages: registration, login and the task pages.
package handlers

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"taskly/internal/auth"
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

// render fills in what every page needs (user, CSRF token, pending messages) and renders name
// inside the base layout. Messages already in data belong to this response only and are shown
// after the ones carried over in the session.
func render(c *fiber.Ctx, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = forms.Errors{}
	}
	if user := middleware.CurrentUser(c); user != nil {
		data["User"] = user
	}
	data["CSRF"] = middleware.CSRFToken(c)
	now, _ := data["Messages"].([]auth.Message)
	data["Messages"] = append(auth.PopMessages(c), now...)
	data["Debug"] = config.Settings.Debug
	return c.Render(name, data)
}

// flash queues a message for the page after a redirect. Pages rendered in the same request pass
// their messages to render instead, so an anonymous visitor never gets a session just for a notice. Failing to store it never fails the request.
func flash(c *fiber.Ctx, level, text string) {
	if err := auth.AddMessage(c, level, text); err != nil {
		logger.ErrorLogger.Error("Error storing message", zap.Error(err))
	}
}

// safeNext only allows local absolute paths as post-login targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return next
}

// loadTask resolves the :id parameter. Malformed and unknown ids are both 404, and so is a
// foreign task when ownership is enforced.
func loadTask(c *fiber.Ctx) (*models.Task, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return nil, fiber.ErrNotFound
	}
	task, err := config.Tasks.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fiber.ErrNotFound
		}
		return nil, err
	}
	user := middleware.CurrentUser(c)
	if config.Settings.EnforceOwnership && user != nil && task.UserID != user.ID {
		logger.SecurityLogger.Warn("Access to foreign task",
			zap.Int64("user_id", user.ID), zap.Int64("task_id", task.ID))
		return nil, fiber.ErrNotFound
	}
	return task, nil
}

// publish tells the owner's open dashboards that a task changed.
func publish(ownerID int64, event string, taskID int64) {
	config.Hub.Publish(ownerID, websocket.Event{Event: event, TaskID: taskID})
}
