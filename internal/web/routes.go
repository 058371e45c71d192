package web

import (
	"taskly/internal/config"
	"taskly/internal/middleware"
	"taskly/internal/web/handlers"
	"taskly/internal/websocket"

	"github.com/gofiber/fiber/v2"
)

// form registers h for both showing (GET) and submitting (POST) a page.
func form(r fiber.Router, path string, h ...fiber.Handler) {
	r.Get(path, h...)
	r.Post(path, h...)
}

// RegisterRoutes mounts the HTML pages and the live-update socket. Session and CSRF middleware
// must already be installed.
func RegisterRoutes(app *fiber.App) {
	// Auth
	form(app, "/register/", handlers.Register)
	form(app, "/login/", handlers.Login)
	app.Get("/logout/", handlers.Logout)

	// Task
	app.Get("/", middleware.RequireLogin, handlers.Dashboard)
	form(app, "/create_task", middleware.RequireLogin, handlers.CreateTask)
	app.Get("/view_task/:id/", middleware.RequireLogin, handlers.ViewTask)
	form(app, "/update_task/:id/", middleware.RequireLogin, handlers.UpdateTask)
	form(app, "/delete/:id/", middleware.RequireLogin, handlers.DeleteTask)

	// Live dashboard updates
	if config.Hub != nil {
		app.Get("/ws", middleware.RequireLogin, websocket.Upgrade, config.Hub.Handler())
	}
}
