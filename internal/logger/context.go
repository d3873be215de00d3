package logger

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// WithRequest tạo log entry kèm thông tin request để trace.
func WithRequest(c fiber.Ctx) *logrus.Entry {
	fields := logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	}
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		fields["requestId"] = requestID
	}
	if userID, ok := c.Locals("user_id").(string); ok && userID != "" {
		fields["userId"] = userID
	}
	return GetAppLogger().WithFields(fields)
}
