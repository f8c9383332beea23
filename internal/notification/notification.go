package notification

import (
	"context"
	"log/slog"
)

const (
	// KindOnboardingCompleted is sent when a device finishes onboarding.
	KindOnboardingCompleted = "onboarding_completed"
	// KindAuthStateReset is sent after a device's auth records are wiped.
	KindAuthStateReset = "auth_state_reset"
	// KindDemoSetup is sent when placeholder records are written for a device.
	KindDemoSetup = "demo_setup"
)

// Message describes a notification payload.
type Message struct {
	Kind     string
	DeviceID string
	Body     string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		slog.String("kind", message.Kind),
		slog.String("device_id", message.DeviceID),
		slog.String("body", message.Body),
	)
	return nil
}
