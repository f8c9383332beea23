package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/authstate/internal/authstate"
	"github.com/congo-pay/authstate/internal/config"
	"github.com/congo-pay/authstate/internal/kv"
	"github.com/congo-pay/authstate/internal/middleware"
	"github.com/congo-pay/authstate/internal/notification"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	Store  kv.Store
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Store == nil {
		return fmt.Errorf("a key-value store is required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if d.Cfg.IsDev() {
		// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.RequestIDLocal).(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	handler := authstate.NewHandler(authstate.HandlerConfig{
		Store:        d.Store,
		KeyPrefix:    d.Cfg.KeyPrefix,
		StoreTimeout: d.Cfg.StoreTimeout,
		Notifier:     notification.NewLoggerNotifier(d.Logger),
		Logger:       d.Logger,
	})

	var groupMiddleware []fiber.Handler
	if d.Cache != nil {
		groupMiddleware = append(groupMiddleware, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterAuthStateRoutes(api, handler, middleware.PINRateLimit(d.Cache, d.Cfg.PINVerifyPerMin), groupMiddleware...)

	return nil
}
