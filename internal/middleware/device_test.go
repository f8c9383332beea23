package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestDeviceIDHeader(t *testing.T) {
	app := fiber.New()
	app.Use(DeviceID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(DeviceIDLocal).(string))
	})

	cases := map[string]int{
		"":            fiber.StatusBadRequest,
		"a:b":         fiber.StatusBadRequest,
		"device-1234": fiber.StatusOK,
	}
	for header, want := range cases {
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(DeviceIDHeader, header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != want {
			t.Fatalf("header %q: expected %d got %d", header, want, resp.StatusCode)
		}
	}
}
