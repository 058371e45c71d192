// Package server assembles the Fiber application from the process-wide dependencies.
package server

import (
	"time"

	v1 "taskly/internal/api/v1"
	"taskly/internal/auth"
	"taskly/internal/config"
	"taskly/internal/middleware"
	"taskly/internal/web"
	"taskly/internal/web/handlers"
	"taskly/pkg/database"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	SessionCookie = "sessionid"
	AppName       = "taskly"
)

// storage returns a Redis-backed store under prefix, or nil so the middleware falls back to
// its in-memory default.
func storage(prefix string) fiber.Storage {
	if config.RedisClient == nil {
		return nil
	}
	return database.NewStorage(config.RedisClient, prefix)
}

// New builds the app. config.Settings, config.Users and config.Tasks must be set; config.Hub
// is optional and enables /ws.
func New() *fiber.App {
	cfg := config.Settings

	app := fiber.New(fiber.Config{
		AppName:      AppName,
		Views:        web.Engine(),
		ViewsLayout:  web.Layout,
		ErrorHandler: handlers.ErrorPage,
	})

	// Middleware
	app.Use(middleware.ErrorHandler())
	if cfg.RateLimitMax > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitMax,
			Expiration: 1 * time.Minute,
			Storage:    storage("limiter:"),
		}))
	}
	if cfg.Debug {
		app.Static("/static", cfg.StaticDir)
	}

	// The API authenticates with bearer tokens, so it is mounted ahead of sessions and CSRF.
	v1.RegisterRoutes(app)

	store := session.New(session.Config{
		Expiration:     cfg.SessionTTL,
		Storage:        storage("session:"),
		KeyLookup:      "cookie:" + SessionCookie,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
		CookieSecure:   cfg.SecureCookies,
	})
	app.Use(auth.Sessions(store))
	app.Use(middleware.CSRF(storage("csrf:"), cfg.SessionTTL, cfg.SecureCookies))

	web.RegisterRoutes(app)
	return app
}
