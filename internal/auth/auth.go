package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"finlet/internal/lib/validate"
	"finlet/internal/lib/verification"
	"finlet/internal/models"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"
)

// CredentialProvider is the provider id of email/password accounts.
const CredentialProvider = "credential"

var tracer = otel.Tracer("finlet/internal/auth")

type UserSaver interface {
	CreateUserWithAccount(ctx context.Context, user models.User, account models.Account, session models.Session) error
	SetEmailVerified(ctx context.Context, userID string) error
	DeleteUser(ctx context.Context, id string) error
}

type UserProvider interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
	AccountByProvider(ctx context.Context, userID, providerID string) (models.Account, error)
	AccountsByUser(ctx context.Context, userID string) ([]models.Account, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, s models.Session) error
	SessionByToken(ctx context.Context, token string) (models.Session, error)
	SessionsByUser(ctx context.Context, userID string) ([]models.Session, error)
	ExtendSession(ctx context.Context, id string, expiresAt, updatedAt time.Time) error
	DeleteSession(ctx context.Context, token string) error
	DeleteUserSession(ctx context.Context, userID, token string) error
	DeleteUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type VerificationStore interface {
	CreateVerification(ctx context.Context, v models.Verification) error
	VerificationByValue(ctx context.Context, value string) (models.Verification, error)
	DeleteVerification(ctx context.Context, id string) error
	DeleteExpiredVerifications(ctx context.Context, now time.Time) (int64, error)
}

// Recorder receives authentication counters.
type Recorder interface {
	SignUp()
	SignIn(result string)
	HookFailed(hook string)
	SessionsSwept(n int64)
}

type nopRecorder struct{}

func (nopRecorder) SignUp()             {}
func (nopRecorder) SignIn(string)       {}
func (nopRecorder) HookFailed(string)   {}
func (nopRecorder) SessionsSwept(int64) {}

type Config struct {
	BaseURL           string
	Secret            string
	SessionTTL        time.Duration
	UpdateAge         time.Duration
	VerificationTTL   time.Duration
	CookieSecure      bool
	MinPasswordLength int
	BcryptCost        int
	HookTimeout       time.Duration
}

type Auth struct {
	log           *slog.Logger
	usrSaver      UserSaver
	usrProvider   UserProvider
	sessions      SessionStore
	verifications VerificationStore
	publisher     verification.Publisher
	metrics       Recorder
	validate      *validator.Validate
	cfg           Config
	now           func() time.Time

	hooksMu sync.RWMutex
	hooks   []namedHook
	pending sync.WaitGroup
}

type Option func(*Auth)

func WithPublisher(p verification.Publisher) Option {
	return func(a *Auth) { a.publisher = p }
}

func WithRecorder(r Recorder) Option {
	return func(a *Auth) { a.metrics = r }
}

func WithClock(now func() time.Time) Option {
	return func(a *Auth) { a.now = now }
}

// WithHook registers an after sign-up hook at construction time.
func WithHook(name string, hook AfterSignUpHook) Option {
	return func(a *Auth) { a.hooks = append(a.hooks, namedHook{name: name, fn: hook}) }
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	sessions SessionStore,
	verifications VerificationStore,
	cfg Config,
	opts ...Option,
) *Auth {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = time.Hour
	}
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = 1
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.HookTimeout <= 0 {
		cfg.HookTimeout = 30 * time.Second
	}

	a := &Auth{
		log:           log,
		usrSaver:      userSaver,
		usrProvider:   userProvider,
		sessions:      sessions,
		verifications: verifications,
		metrics:       nopRecorder{},
		validate:      validate.New(),
		cfg:           cfg,
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}
