package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/authstate/internal/config"
	"github.com/congo-pay/authstate/internal/kv"
	"github.com/congo-pay/authstate/internal/logging"
)

type brokenStore struct{}

var errBroken = errors.New("backend offline")

func (brokenStore) Get(context.Context, string) (string, bool, error) { return "", false, errBroken }
func (brokenStore) Set(context.Context, string, string) error         { return errBroken }
func (brokenStore) RemoveMany(context.Context, ...string) error       { return errBroken }
func (brokenStore) Ping(context.Context) error                        { return errBroken }

func newTestApp(t *testing.T, store kv.Store, cache *redis.Client) *fiber.App {
	t.Helper()
	app := fiber.New()
	cfg := config.Config{
		AppEnv:          "test",
		StoreBackend:    config.BackendMemory,
		KeyPrefix:       "authstate:",
		StoreTimeout:    time.Second,
		IdempotencyTTL:  time.Minute,
		PINVerifyPerMin: 3,
	}
	if err := Setup(app, Deps{Cfg: cfg, Store: store, Cache: cache, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func call(t *testing.T, app *fiber.App, method, path, device, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if device != "" {
		req.Header.Set("X-Device-ID", device)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, payload
}

func decodeValue(t *testing.T, payload []byte) bool {
	t.Helper()
	var out struct {
		Value bool `json:"value"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		t.Fatalf("decode %s: %v", payload, err)
	}
	return out.Value
}

func TestAuthStateRequiresDeviceHeader(t *testing.T) {
	app := newTestApp(t, kv.NewMemory(), nil)
	status, _ := call(t, app, fiber.MethodGet, "/api/v1/auth-state", "", "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 without device header, got %d", status)
	}

	status, _ = call(t, app, fiber.MethodGet, "/api/v1/ping", "", "")
	if status != fiber.StatusOK {
		t.Fatalf("ping must not need a device header, got %d", status)
	}
}

func TestAuthStateLifecycle(t *testing.T) {
	store := kv.NewMemory()
	app := newTestApp(t, store, nil)
	const device = "device-1"

	status, body := call(t, app, fiber.MethodGet, "/api/v1/auth-state/returning", device, "")
	if status != fiber.StatusOK || decodeValue(t, body) {
		t.Fatalf("fresh device must not be returning: %d %s", status, body)
	}

	if status, _ := call(t, app, fiber.MethodPut, "/api/v1/auth-state/onboarding", device, ""); status != fiber.StatusNoContent {
		t.Fatalf("complete onboarding: %d", status)
	}
	if status, body := call(t, app, fiber.MethodGet, "/api/v1/auth-state/onboarding", device, ""); !decodeValue(t, body) {
		t.Fatalf("expected onboarding completed: %d %s", status, body)
	}

	if status, body := call(t, app, fiber.MethodPut, "/api/v1/auth-state/pin", device, `{"pin":"12"}`); status != fiber.StatusBadRequest {
		t.Fatalf("short pin must be rejected: %d %s", status, body)
	}
	if status, _ := call(t, app, fiber.MethodPut, "/api/v1/auth-state/pin", device, `{"pin":"2468"}`); status != fiber.StatusNoContent {
		t.Fatalf("set pin: %d", status)
	}

	stored, found, err := store.Get(context.Background(), "authstate:device-1:@user_login_pin")
	if err != nil || !found {
		t.Fatalf("pin not stored under device namespace: found=%v err=%v", found, err)
	}
	if stored == "2468" || !strings.HasPrefix(stored, "$2") {
		t.Fatalf("expected bcrypt hash to be stored, got %q", stored)
	}

	if status, _ := call(t, app, fiber.MethodPost, "/api/v1/auth-state/pin/verify", device, `{"pin":"2468"}`); status != fiber.StatusOK {
		t.Fatalf("verify correct pin: %d", status)
	}
	if status, _ := call(t, app, fiber.MethodPost, "/api/v1/auth-state/pin/verify", device, `{"pin":"0000"}`); status != fiber.StatusUnauthorized {
		t.Fatalf("verify wrong pin: %d", status)
	}

	if status, _ := call(t, app, fiber.MethodPut, "/api/v1/auth-state/profile", device, `[1,2]`); status != fiber.StatusBadRequest {
		t.Fatalf("non-object profile must be rejected: %d", status)
	}
	profile := `{"name":"Ada","email":"ada@example.com","setupDate":"2024-05-01T12:00:00Z"}`
	if status, _ := call(t, app, fiber.MethodPut, "/api/v1/auth-state/profile", device, profile); status != fiber.StatusNoContent {
		t.Fatalf("set profile: %d", status)
	}
	status, body = call(t, app, fiber.MethodGet, "/api/v1/auth-state/profile", device, "")
	if status != fiber.StatusOK || string(body) != profile {
		t.Fatalf("expected profile %s, got %d %s", profile, status, body)
	}

	status, body = call(t, app, fiber.MethodGet, "/api/v1/auth-state", device, "")
	var st struct {
		OnboardingCompleted bool `json:"onboarding_completed"`
		HasLoginPIN         bool `json:"has_login_pin"`
		HasUserData         bool `json:"has_user_data"`
		ReturningUser       bool `json:"returning_user"`
	}
	if err := json.Unmarshal(body, &st); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if status != fiber.StatusOK || !st.OnboardingCompleted || !st.HasLoginPIN || !st.HasUserData || !st.ReturningUser {
		t.Fatalf("unexpected snapshot %d %+v", status, st)
	}

	// Another device shares the backend but not the state.
	if _, body := call(t, app, fiber.MethodGet, "/api/v1/auth-state/returning", "device-2", ""); decodeValue(t, body) {
		t.Fatalf("device-2 must not see device-1 state")
	}

	if status, _ := call(t, app, fiber.MethodDelete, "/api/v1/auth-state", device, ""); status != fiber.StatusNoContent {
		t.Fatalf("reset: %d", status)
	}
	for _, path := range []string{"/onboarding", "/pin", "/returning"} {
		if _, body := call(t, app, fiber.MethodGet, "/api/v1/auth-state"+path, device, ""); decodeValue(t, body) {
			t.Fatalf("%s still true after reset", path)
		}
	}
	if status, _ := call(t, app, fiber.MethodGet, "/api/v1/auth-state/profile", device, ""); status != fiber.StatusNotFound {
		t.Fatalf("profile must be gone after reset: %d", status)
	}
	if status, _ := call(t, app, fiber.MethodPost, "/api/v1/auth-state/pin/verify", device, `{"pin":"2468"}`); status != fiber.StatusNotFound {
		t.Fatalf("verify without pin: %d", status)
	}
}

func TestDemoSetupMakesReturningUser(t *testing.T) {
	app := newTestApp(t, kv.NewMemory(), nil)

	status, body := call(t, app, fiber.MethodPost, "/api/v1/auth-state/demo", "device-9", "")
	if status != fiber.StatusCreated {
		t.Fatalf("demo setup: %d %s", status, body)
	}
	if _, body := call(t, app, fiber.MethodGet, "/api/v1/auth-state/returning", "device-9", ""); !decodeValue(t, body) {
		t.Fatalf("expected returning user after demo setup")
	}
}

func TestStorageFailureReturnsSafeDefault(t *testing.T) {
	app := newTestApp(t, brokenStore{}, nil)

	for _, path := range []string{"/onboarding", "/pin", "/returning"} {
		status, body := call(t, app, fiber.MethodGet, "/api/v1/auth-state"+path, "device-1", "")
		if status != fiber.StatusServiceUnavailable {
			t.Fatalf("%s: expected 503, got %d", path, status)
		}
		if decodeValue(t, body) {
			t.Fatalf("%s: expected safe default false", path)
		}
	}

	if status, _ := call(t, app, fiber.MethodDelete, "/api/v1/auth-state", "device-1", ""); status != fiber.StatusServiceUnavailable {
		t.Fatalf("reset on broken store: expected 503, got %d", status)
	}

	if status, _ := call(t, app, fiber.MethodGet, "/healthz", "", ""); status != fiber.StatusServiceUnavailable {
		t.Fatalf("health on broken store: expected 503, got %d", status)
	}
}

func TestPINVerificationIsRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })
	app := newTestApp(t, kv.NewRedis(cache), cache)

	if status, _ := call(t, app, fiber.MethodPut, "/api/v1/auth-state/pin", "device-1", `{"pin":"1357"}`); status != fiber.StatusNoContent {
		t.Fatalf("set pin: %d", status)
	}
	if v, err := mr.Get("authstate:device-1:@user_login_pin"); err != nil || v == "" {
		t.Fatalf("expected pin hash in redis, got %q err=%v", v, err)
	}

	var last int
	for i := 0; i < 4; i++ {
		last, _ = call(t, app, fiber.MethodPost, "/api/v1/auth-state/pin/verify", "device-1", `{"pin":"0000"}`)
	}
	if last != fiber.StatusTooManyRequests {
		t.Fatalf("expected rate limit after 3 attempts, got %d", last)
	}
}
