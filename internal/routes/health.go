package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/authstate/internal/kv"
)

// RegisterHealthRoutes adds liveness/readiness style endpoints.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		storeStatus := "ok"

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := kv.Ping(ctx, d.Store); err != nil {
			storeStatus = err.Error()
		}

		status := http.StatusOK
		if storeStatus != "ok" {
			status = http.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    fiber.Map{d.Cfg.StoreBackend: storeStatus},
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}
