package authstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/congo-pay/authstate/internal/kv"
)

// ErrStorage wraps every failure of the backing store, including
// serialisation failures, so callers can tell "absent" apart from
// "store unreachable".
var ErrStorage = errors.New("auth state storage failure")

// Service reads and writes the auth bootstrap records. Every operation logs
// a failure, yields its safe default (false for queries) and returns the
// failure wrapped in ErrStorage. Callers that treat failure as absence can
// ignore the error.
type Service struct {
	store  kv.Store
	logger *slog.Logger
	now    func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source used for placeholder profiles.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a Service over store.
func NewService(store kv.Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: store, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetOnboardingCompleted records that the onboarding flow finished.
func (s *Service) SetOnboardingCompleted(ctx context.Context) error {
	return s.set(ctx, "set onboarding completed", KeyOnboardingCompleted, onboardingSentinel)
}

// IsOnboardingCompleted reports true only when the stored value is exactly "true".
func (s *Service) IsOnboardingCompleted(ctx context.Context) (bool, error) {
	value, found, err := s.get(ctx, "read onboarding status", KeyOnboardingCompleted)
	if err != nil {
		return false, err
	}
	return found && value == onboardingSentinel, nil
}

// SetLoginPin stores hashedPIN verbatim. Hashing is the caller's job.
func (s *Service) SetLoginPin(ctx context.Context, hashedPIN string) error {
	return s.set(ctx, "set login pin", KeyLoginPIN, hashedPIN)
}

// HasLoginPin reports whether a PIN entry exists, whatever its value.
func (s *Service) HasLoginPin(ctx context.Context) (bool, error) {
	return s.has(ctx, "check login pin", KeyLoginPIN)
}

// LoginPIN returns the stored PIN hash.
func (s *Service) LoginPIN(ctx context.Context) (string, bool, error) {
	return s.get(ctx, "read login pin", KeyLoginPIN)
}

// SetUserData stores data as JSON.
func (s *Service) SetUserData(ctx context.Context, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return s.fail("encode user data", KeyUserData, err)
	}
	return s.set(ctx, "set user data", KeyUserData, string(payload))
}

// HasUserData reports whether a profile entry exists.
func (s *Service) HasUserData(ctx context.Context) (bool, error) {
	return s.has(ctx, "check user data", KeyUserData)
}

// UserData decodes the stored profile into out. It reports false when no
// profile is stored.
func (s *Service) UserData(ctx context.Context, out any) (bool, error) {
	value, found, err := s.get(ctx, "read user data", KeyUserData)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(value), out); err != nil {
		return false, s.fail("decode user data", KeyUserData, err)
	}
	return true, nil
}

// IsReturningUser reports onboarding completed AND (PIN OR profile present).
// The reads run one after another with no atomicity between them; any
// failed read yields false.
func (s *Service) IsReturningUser(ctx context.Context) (bool, error) {
	onboarded, err := s.IsOnboardingCompleted(ctx)
	if err != nil || !onboarded {
		return false, err
	}
	hasPIN, err := s.HasLoginPin(ctx)
	if err != nil {
		return false, err
	}
	if hasPIN {
		return true, nil
	}
	return s.HasUserData(ctx)
}

// Snapshot reads all three records and derives the returning flag from
// the same reads.
func (s *Service) Snapshot(ctx context.Context) (State, error) {
	var (
		st  State
		err error
	)
	if st.OnboardingCompleted, err = s.IsOnboardingCompleted(ctx); err != nil {
		return State{}, err
	}
	if st.HasLoginPIN, err = s.HasLoginPin(ctx); err != nil {
		return State{}, err
	}
	if st.HasUserData, err = s.HasUserData(ctx); err != nil {
		return State{}, err
	}
	st.ReturningUser = st.OnboardingCompleted && (st.HasLoginPIN || st.HasUserData)
	return st, nil
}

// ResetAuthData removes all three records with one store request. The
// result is as atomic as the backend makes a multi-key delete.
func (s *Service) ResetAuthData(ctx context.Context) error {
	if err := s.store.RemoveMany(ctx, KeyOnboardingCompleted, KeyLoginPIN, KeyUserData); err != nil {
		return s.fail("reset auth data", "", err)
	}
	return nil
}

// MarkUserAsSetUp writes placeholder onboarding, PIN and profile records
// for demos and tests. It stops at the first failed write.
func (s *Service) MarkUserAsSetUp(ctx context.Context) error {
	if err := s.SetOnboardingCompleted(ctx); err != nil {
		return err
	}
	if err := s.SetLoginPin(ctx, DemoPINHash); err != nil {
		return err
	}
	return s.SetUserData(ctx, UserProfile{
		Name:      DemoUserName,
		Email:     DemoEmail,
		SetupDate: s.now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Service) get(ctx context.Context, op, key string) (string, bool, error) {
	value, found, err := s.store.Get(ctx, key)
	if err != nil {
		return "", false, s.fail(op, key, err)
	}
	return value, found, nil
}

func (s *Service) has(ctx context.Context, op, key string) (bool, error) {
	_, found, err := s.get(ctx, op, key)
	return found, err
}

func (s *Service) set(ctx context.Context, op, key, value string) error {
	if err := s.store.Set(ctx, key, value); err != nil {
		return s.fail(op, key, err)
	}
	return nil
}

func (s *Service) fail(op, key string, err error) error {
	attrs := []any{slog.String("op", op), slog.Any("error", err)}
	if key != "" {
		attrs = append(attrs, slog.String("key", key))
	}
	s.logger.Error("auth state storage failed", attrs...)
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
