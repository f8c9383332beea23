package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// DeviceIDHeader identifies the installation whose auth state is addressed.
	DeviceIDHeader = "X-Device-ID"
	// DeviceIDLocal is the fiber.Ctx locals key holding the device id.
	DeviceIDLocal = "device_id"

	maxDeviceIDLength = 128
)

// DeviceID requires a well-formed X-Device-ID header and stores it in locals.
func DeviceID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(DeviceIDHeader))
		if id == "" {
			return fiber.NewError(http.StatusBadRequest, "missing X-Device-ID header")
		}
		if len(id) > maxDeviceIDLength || strings.ContainsAny(id, ": \t") {
			return fiber.NewError(http.StatusBadRequest, "invalid X-Device-ID header")
		}
		c.Locals(DeviceIDLocal, id)
		return c.Next()
	}
}
