package authstate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/authstate/internal/kv"
	"github.com/congo-pay/authstate/internal/middleware"
	"github.com/congo-pay/authstate/internal/notification"
	"github.com/congo-pay/authstate/internal/pin"
)

// Handler exposes a device's auth state over HTTP. Each request is served
// by a Service scoped to the caller's X-Device-ID.
type Handler struct {
	store    kv.Store
	prefix   string
	timeout  time.Duration
	notifier notification.Notifier
	logger   *slog.Logger
}

// HandlerConfig groups the Handler dependencies.
type HandlerConfig struct {
	Store        kv.Store
	KeyPrefix    string
	StoreTimeout time.Duration
	Notifier     notification.Notifier
	Logger       *slog.Logger
}

// NewHandler constructs an auth state HTTP handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{
		store:    cfg.Store,
		prefix:   cfg.KeyPrefix,
		timeout:  cfg.StoreTimeout,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
	}
}

type pinRequest struct {
	PIN string `json:"pin"`
}

type valueResponse struct {
	Value bool   `json:"value"`
	Error string `json:"error,omitempty"`
}

// DeviceService returns the Service bound to deviceID's namespace.
func (h *Handler) DeviceService(deviceID string) *Service {
	return NewService(kv.Prefixed(h.store, h.prefix+deviceID+":"), h.logger.With(slog.String("device_id", deviceID)))
}

// Snapshot returns all presence flags and the derived returning flag.
func (h *Handler) Snapshot(c *fiber.Ctx) error {
	svc, ctx, cancel := h.scope(c)
	defer cancel()
	st, err := svc.Snapshot(ctx)
	if err != nil {
		return storageUnavailable(c, State{})
	}
	return c.Status(http.StatusOK).JSON(st)
}

// CompleteOnboarding marks onboarding as finished.
func (h *Handler) CompleteOnboarding(c *fiber.Ctx) error {
	svc, ctx, cancel := h.scope(c)
	defer cancel()
	if err := svc.SetOnboardingCompleted(ctx); err != nil {
		return storageUnavailable(c, fiber.Map{})
	}
	h.notify(ctx, c, notification.KindOnboardingCompleted, "onboarding completed")
	return c.SendStatus(http.StatusNoContent)
}

// OnboardingStatus reports whether onboarding is completed.
func (h *Handler) OnboardingStatus(c *fiber.Ctx) error {
	svc, ctx, cancel := h.scope(c)
	defer cancel()
	return respondValue(c, ctx, svc.IsOnboardingCompleted)
}

// SetPIN hashes the submitted PIN and stores the hash.
func (h *Handler) SetPIN(c *fiber.Ctx) error {
	var req pinRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	hash, err := pin.Hash(req.PIN)
	if err != nil {
		if errors.Is(err, pin.ErrInvalidPIN) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "hash PIN")
	}

	svc, ctx, cancel := h.scope(c)
	defer cancel()
	if err := svc.SetLoginPin(ctx, hash); err != nil {
		return storageUnavailable(c, fiber.Map{})
	}
	return c.SendStatus(http.StatusNoContent)
}

// PINStatus reports whether a PIN is configured.
func (h *Handler) PINStatus(c *fiber.Ctx) error {
	svc, ctx, cancel := h.scope(c)
	defer cancel()
	return respondValue(c, ctx, svc.HasLoginPin)
}

// VerifyPIN checks a submitted PIN against the stored hash.
func (h *Handler) VerifyPIN(c *fiber.Ctx) error {
	var req pinRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	svc, ctx, cancel := h.scope(c)
	defer cancel()
	hash, found, err := svc.LoginPIN(ctx)
	if err != nil {
		return storageUnavailable(c, fiber.Map{"verified": false})
	}
	if !found {
		return fiber.NewError(http.StatusNotFound, "no PIN configured")
	}
	if err := pin.Verify(hash, req.PIN); err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"verified": true})
}

// SetProfile stores the request body, which must be a JSON object, as the
// user profile.
func (h *Handler) SetProfile(c *fiber.Ctx) error {
	body := c.Body()
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil || probe == nil {
		return fiber.NewError(http.StatusBadRequest, "profile must be a JSON object")
	}

	svc, ctx, cancel := h.scope(c)
	defer cancel()
	if err := svc.SetUserData(ctx, json.RawMessage(body)); err != nil {
		return storageUnavailable(c, fiber.Map{})
	}
	return c.SendStatus(http.StatusNoContent)
}

// Profile returns the stored profile verbatim.
func (h *Handler) Profile(c *fiber.Ctx) error {
	svc, ctx, cancel := h.scope(c)
	defer cancel()
	var raw json.RawMessage
	found, err := svc.UserData(ctx, &raw)
	if err != nil {
		return storageUnavailable(c, fiber.Map{})
	}
	if !found {
		return fiber.NewError(http.StatusNotFound, "no profile stored")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(http.StatusOK).Send(raw)
}

// ReturningUser reports the derived returning-user flag.
func (h *Handler) ReturningUser(c *fiber.Ctx) error {
	svc, ctx, cancel := h.scope(c)
	defer cancel()
	return respondValue(c, ctx, svc.IsReturningUser)
}

// Reset removes the device's auth records.
func (h *Handler) Reset(c *fiber.Ctx) error {
	svc, ctx, cancel := h.scope(c)
	defer cancel()
	if err := svc.ResetAuthData(ctx); err != nil {
		return storageUnavailable(c, fiber.Map{})
	}
	h.notify(ctx, c, notification.KindAuthStateReset, "auth state cleared")
	return c.SendStatus(http.StatusNoContent)
}

// DemoSetup writes placeholder records so the device counts as returning.
func (h *Handler) DemoSetup(c *fiber.Ctx) error {
	svc, ctx, cancel := h.scope(c)
	defer cancel()
	if err := svc.MarkUserAsSetUp(ctx); err != nil {
		return storageUnavailable(c, State{})
	}
	h.notify(ctx, c, notification.KindDemoSetup, "placeholder auth state written")
	st, err := svc.Snapshot(ctx)
	if err != nil {
		return storageUnavailable(c, State{})
	}
	return c.Status(http.StatusCreated).JSON(st)
}

func (h *Handler) scope(c *fiber.Ctx) (*Service, context.Context, context.CancelFunc) {
	deviceID, _ := c.Locals(middleware.DeviceIDLocal).(string)
	ctx, cancel := c.UserContext(), context.CancelFunc(func() {})
	if h.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
	}
	return h.DeviceService(deviceID), ctx, cancel
}

func (h *Handler) notify(ctx context.Context, c *fiber.Ctx, kind, body string) {
	if h.notifier == nil {
		return
	}
	deviceID, _ := c.Locals(middleware.DeviceIDLocal).(string)
	if err := h.notifier.Send(ctx, notification.Message{Kind: kind, DeviceID: deviceID, Body: body}); err != nil {
		h.logger.Warn("notification failed", slog.String("kind", kind), slog.Any("error", err))
	}
}

func respondValue(c *fiber.Ctx, ctx context.Context, query func(context.Context) (bool, error)) error {
	value, err := query(ctx)
	if err != nil {
		return c.Status(http.StatusServiceUnavailable).JSON(valueResponse{Value: false, Error: ErrStorage.Error()})
	}
	return c.Status(http.StatusOK).JSON(valueResponse{Value: value})
}

// storageUnavailable answers 503 with the safe default body plus an error field.
func storageUnavailable(c *fiber.Ctx, defaults any) error {
	payload := fiber.Map{"error": ErrStorage.Error()}
	switch d := defaults.(type) {
	case State:
		payload["state"] = d
	case fiber.Map:
		for k, v := range d {
			payload[k] = v
		}
	}
	return c.Status(http.StatusServiceUnavailable).JSON(payload)
}
