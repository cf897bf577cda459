// Package middleware holds Fiber middleware shared by the HTTP handlers.
package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/sirupsen/logrus"
)

const logKey = "log"

// RequestLogger stores a log entry tagged with the request id and path in the
// request locals. It must run after the requestid middleware.
func RequestLogger(base *logrus.Entry) fiber.Handler {
	return func(c fiber.Ctx) error {
		entry := base.WithFields(logrus.Fields{
			"request_id": requestid.FromContext(c),
			"path":       c.Path(),
		})
		c.Locals(logKey, entry)
		return c.Next()
	}
}

// Log returns the request's log entry, or fallback when RequestLogger did not run.
func Log(c fiber.Ctx, fallback *logrus.Entry) *logrus.Entry {
	if entry, ok := c.Locals(logKey).(*logrus.Entry); ok {
		return entry
	}
	return fallback
}
