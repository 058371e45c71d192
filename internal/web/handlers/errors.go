package handlers

import (
	"errors"
	"strings"

	"taskly/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorPage is the app's fiber error handler. API paths get the JSON envelope, everything
// else the error page. Internal details never reach the client.
func ErrorPage(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		logger.ErrorLogger.Error("Unhandled error",
			zap.String("method", c.Method()), zap.String("url", c.OriginalURL()), zap.Error(err))
		message = "Internal Server Error"
	}

	if strings.HasPrefix(c.Path(), "/api/") {
		return c.Status(code).JSON(fiber.Map{
			"message": message,
			"success": false,
			"status":  code,
		})
	}

	c.Status(code)
	if rerr := c.Render("error", fiber.Map{"Title": message, "Code": code, "Message": message}); rerr != nil {
		logger.ErrorLogger.Error("Error rendering error page", zap.Error(rerr))
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(code).SendString(message)
	}
	return nil
}
