package middleware

import (
	"errors"
	"net/url"
	"strings"

	"taskly/internal/auth"
	"taskly/internal/config"
	"taskly/internal/models"
	"taskly/internal/repository"
	"taskly/internal/websocket"
	"taskly/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	LoginURL    = "/login/"
	UserLocal   = "user"
	UserIDLocal = websocket.UserIDLocal
	RoleLocal   = "role"
)

// RequireLogin redirects anonymous requests to the login page, remembering where they were going.
func RequireLogin(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return redirectToLogin(c)
	}
	user, err := config.Users.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.SecurityLogger.Warn("Session for unknown user", zap.Int64("user_id", userID))
			if err := auth.Logout(c); err != nil {
				return err
			}
			return redirectToLogin(c)
		}
		return err
	}
	c.Locals(UserLocal, user)
	c.Locals(UserIDLocal, user.ID)
	return c.Next()
}

func redirectToLogin(c *fiber.Ctx) error {
	return c.Redirect(LoginURL + "?next=" + url.QueryEscape(c.OriginalURL()))
}

// CurrentUser is set by RequireLogin.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(UserLocal).(*models.User)
	return user
}

// UseToken authenticates API requests with a Bearer JWT.
func UseToken(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "No token provided"})
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token format"})
	}
	claims, err := auth.ParseToken(parts[1], []byte(config.Settings.SecretKey))
	if err != nil {
		logger.SecurityLogger.Warn("Rejected token", zap.Error(err), zap.String("ip", c.IP()))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}
	c.Locals(UserIDLocal, claims.UserID)
	c.Locals(RoleLocal, claims.Role)
	return c.Next()
}
