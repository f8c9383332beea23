package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	// RequestIDLocal is the fiber.Ctx locals key holding the request id.
	RequestIDLocal = "request_id"
)

// RequestID ensures each request carries an identifier that is echoed back
// and attached to audit logs.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Locals(RequestIDLocal, reqID)
		return c.Next()
	}
}
