package handlers

import (
	"errors"

	"taskly/internal/auth"
	"taskly/internal/config"
	"taskly/internal/forms"
	"taskly/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Token exchanges username and password for a bearer JWT.
func Token(c *fiber.Ctx) error {
	var req forms.LoginForm
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in token", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "Bad request")
	}
	if errs := req.Validate(config.Validate); errs.Any() {
		logger.AuditLogger.Warn("Validation error during token request", zap.Any("errors", errs))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  errs,
			"success": false,
			"status":  fiber.StatusBadRequest,
		})
	}

	user, err := auth.Authenticate(c.UserContext(), config.Users, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.SecurityLogger.Warn("Invalid API credentials",
				zap.String("username", req.Username), zap.String("ip", c.IP()))
			return fail(c, fiber.StatusUnauthorized, "Invalid credentials")
		}
		logger.ErrorLogger.Error("Error authenticating", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Error authenticating")
	}

	token, err := auth.IssueToken(user, []byte(config.Settings.SecretKey), config.Settings.TokenTTL)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return fail(c, fiber.StatusInternalServerError, "Error generating token")
	}

	logger.AuditLogger.Info("Token issued", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return ok(c, "Login success", fiber.Map{
		"user_id": user.ID,
		"role":    user.Role,
		"token":   token,
	})
}
