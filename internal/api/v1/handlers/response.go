package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// fail writes the error envelope used by every API endpoint.
func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"success": false,
		"status":  status,
	})
}

func ok(c *fiber.Ctx, message string, data any) error {
	return c.JSON(fiber.Map{
		"message": message,
		"success": true,
		"status":  fiber.StatusOK,
		"data":    data,
	})
}
