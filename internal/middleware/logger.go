package middleware

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"taskly/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler recovers panics into a 500 for the app's error handler and logs every request.
func ErrorHandler() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				errMsg := fmt.Sprintf("Recovered from panic: %v", r)
				stack := string(debug.Stack())
				logger.ErrorLogger.Error(errMsg, zap.String("stack", stack))
				err = fiber.ErrInternalServerError
			}
			fields := []zap.Field{
				zap.String("method", c.Method()),
				zap.String("url", c.OriginalURL()),
				zap.Int("status", statusOf(c, err)),
				zap.Duration("latency", time.Since(start)),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			logger.RequestLogger.Info("Incoming request", fields...)
		}()
		return c.Next()
	}
}

// statusOf is the status the app's error handler will send. It runs after this middleware, so
// the response still carries the default code when err is set.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
