package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/authstate/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, *int64, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	var calls int64
	app.Use(DeviceID())
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/reset", func(c *fiber.Ctx) error {
		n := atomic.AddInt64(&calls, 1)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"call": n})
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}

	return app, &calls, cleanup
}

func post(t *testing.T, app *fiber.App, device, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/reset", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(DeviceIDHeader, device)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestIdempotencyWithoutHeaderPassesThrough(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	post(t, app, "device-1", "")
	post(t, app, "device-1", "")
	if *calls != 2 {
		t.Fatalf("expected handler to run twice, ran %d", *calls)
	}
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	status, first := post(t, app, "device-1", "abc123")
	if status != fiber.StatusOK {
		t.Fatalf("expected status %d got %d", fiber.StatusOK, status)
	}

	// Second request should return the cached response without invoking handler again.
	status, second := post(t, app, "device-1", "abc123")
	if status != fiber.StatusOK {
		t.Fatalf("expected cached status %d got %d", fiber.StatusOK, status)
	}
	if first != second {
		t.Fatalf("expected cached payload %s got %s", first, second)
	}
	if *calls != 1 {
		t.Fatalf("expected one handler call, got %d", *calls)
	}
}

func TestIdempotencyKeysAreScopedPerDevice(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	post(t, app, "device-1", "same-key")
	post(t, app, "device-2", "same-key")
	if *calls != 2 {
		t.Fatalf("expected each device to run the handler, got %d calls", *calls)
	}
}
