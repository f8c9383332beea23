package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/authstate/internal/authstate"
	"github.com/congo-pay/authstate/internal/middleware"
)

// RegisterAuthStateRoutes wires the per-device auth state endpoints behind
// the device header check and any extra group middleware.
func RegisterAuthStateRoutes(r fiber.Router, h *authstate.Handler, pinLimiter fiber.Handler, mws ...fiber.Handler) {
	group := r.Group("/auth-state", append([]fiber.Handler{middleware.DeviceID()}, mws...)...)
	group.Get("/", h.Snapshot)
	group.Delete("/", h.Reset)
	group.Post("/demo", h.DemoSetup)

	group.Get("/onboarding", h.OnboardingStatus)
	group.Put("/onboarding", h.CompleteOnboarding)

	group.Get("/pin", h.PINStatus)
	group.Put("/pin", h.SetPIN)
	if pinLimiter != nil {
		group.Post("/pin/verify", pinLimiter, h.VerifyPIN)
	} else {
		group.Post("/pin/verify", h.VerifyPIN)
	}

	group.Get("/profile", h.Profile)
	group.Put("/profile", h.SetProfile)

	group.Get("/returning", h.ReturningUser)
}
