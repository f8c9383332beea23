package authstate

// Keys under which the auth bootstrap state lives. They are shared with
// existing installs and must not change.
const (
	KeyOnboardingCompleted = "@onboarding_completed"
	KeyLoginPIN            = "@user_login_pin"
	KeyUserData            = "@user_data"
)

// onboardingSentinel is the only value that marks onboarding as completed.
const onboardingSentinel = "true"

// Placeholders written by MarkUserAsSetUp. The PIN value is not a hash.
const (
	DemoPINHash  = "demo_hash"
	DemoUserName = "Demo User"
	DemoEmail    = "demo@example.com"
)

// UserProfile is the profile shape clients store under KeyUserData. Any
// JSON value is accepted by SetUserData; this type documents the common one.
type UserProfile struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	SetupDate string `json:"setupDate"`
}

// State is a point-in-time view of the three records plus the derived flag.
// The reads behind it are not atomic.
type State struct {
	OnboardingCompleted bool `json:"onboarding_completed"`
	HasLoginPIN         bool `json:"has_login_pin"`
	HasUserData         bool `json:"has_user_data"`
	ReturningUser       bool `json:"returning_user"`
}
