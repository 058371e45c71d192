package middleware

import (
	"strings"
	"time"

	"taskly/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"go.uber.org/zap"
)

const (
	CSRFField  = "csrfmiddlewaretoken"
	CSRFCookie = "csrftoken"
	CSRFLocal  = "csrf"
)

// CSRF protects every unsafe method with a double-submit token read from the form body.
// The bearer-token API under /api/ is exempt.
// storage may be nil, in which case tokens live in process memory.
func CSRF(storage fiber.Storage, ttl time.Duration, secure bool) fiber.Handler {
	return csrf.New(csrf.Config{
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
		KeyLookup:      "form:" + CSRFField,
		CookieName:     CSRFCookie,
		CookieSameSite: "Lax",
		CookieSecure:   secure,
		CookieHTTPOnly: true,
		Expiration:     ttl,
		ContextKey:     CSRFLocal,
		Storage:        storage,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.SecurityLogger.Warn("CSRF check failed",
				zap.Error(err), zap.String("path", c.Path()), zap.String("ip", c.IP()))
			return fiber.ErrForbidden
		},
	})
}

// CSRFToken returns the token to embed in forms rendered for this request.
func CSRFToken(c *fiber.Ctx) string {
	token, _ := c.Locals(CSRFLocal).(string)
	return token
}
