package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/kirinyoku/railgo/internal/repository"
	"github.com/kirinyoku/railgo/internal/store"
	"github.com/kirinyoku/railgo/internal/validate"
)

const (
	DemoEmail    = "demo@egypt-railways.com"
	DemoPassword = "demo123"
)

// Limiter is satisfied by the redis sliding-window limiter. A successful
// login resets the caller's window.
type Limiter interface {
	Allow(ctx context.Context, suffix string) (allowed bool, current int64, retryAfter time.Duration, err error)
	Reset(ctx context.Context, suffix string) error
}

type Config struct {
	// Latency simulates a remote identity provider on register and login.
	Latency time.Duration
	Clock   func() time.Time
}

// Session is what a client holds after signing in.
type Session struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type Service struct {
	users    *store.UserStore
	sessions *store.SessionStore
	limiter  Limiter
	log      *slog.Logger
	cfg      Config
}

// New builds the service. limiter may be nil, which disables login throttling.
func New(
	users *store.UserStore,
	sessions *store.SessionStore,
	limiter Limiter,
	log *slog.Logger,
	cfg Config,
) *Service {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Service{
		users:    users,
		sessions: sessions,
		limiter:  limiter,
		log:      log,
		cfg:      cfg,
	}
}

// SeedDemoUser stores the demo account when no users exist yet.
func (s *Service) SeedDemoUser(ctx context.Context) error {
	const op = "service.auth.SeedDemoUser"

	hash, err := store.HashPassword(DemoPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	demo := store.UserRecord{
		User: domain.User{
			ID:        "user-1",
			Email:     DemoEmail,
			FirstName: "أحمد",
			LastName:  "محمد",
			Phone:     "01012345678",
		},
		PasswordHash: hash,
	}

	if err := s.users.Seed(ctx, []store.UserRecord{demo}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Register creates an account and signs it in.
//
// Returns:
//   - Session: token and profile of the new user.
//   - error: *validate.FieldError for invalid input.
//   - error: ErrEmailTaken if the email is already registered.
func (s *Service) Register(ctx context.Context, data domain.Registration) (Session, error) {
	const op = "service.auth.Register"

	if err := validate.Registration(data).Err(); err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := wait(ctx, s.cfg.Latency); err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := store.HashPassword(data.Password)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	user := domain.User{
		ID:        "user-" + strconv.FormatInt(s.cfg.Clock().UnixMilli(), 10),
		Email:     data.Email,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Phone:     data.Phone,
	}

	err = s.users.Create(ctx, store.UserRecord{User: user, PasswordHash: hash})
	if errors.Is(err, repository.ErrConflict) {
		return Session{}, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))

	return s.startSession(ctx, op, user)
}

// Login checks credentials and opens a session.
//
// Parameters:
//   - ctx: request-scoped context.
//   - creds: email and password.
//   - clientKey: identifies the caller for throttling, e.g. the client IP; empty skips the limiter.
//
// Returns:
//   - Session: token and profile.
//   - error: *validate.FieldError, ErrInvalidCredentials or RateLimitedError.
func (s *Service) Login(ctx context.Context, creds domain.Credentials, clientKey string) (Session, error) {
	const op = "service.auth.Login"

	if s.limiter != nil && clientKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, clientKey)
		if err != nil {
			s.log.WarnContext(ctx, "login limiter unavailable", slog.Any("err", err))
		} else if !ok {
			return Session{}, fmt.Errorf("%s: %w", op, RateLimitedError{RetryAfter: retry})
		}
	}

	if err := validate.Login(creds).Err(); err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := wait(ctx, s.cfg.Latency); err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	rec, err := s.users.FindByEmail(ctx, creds.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if !rec.CheckPassword(creds.Password) {
		return Session{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if s.limiter != nil && clientKey != "" {
		if err := s.limiter.Reset(ctx, clientKey); err != nil {
			s.log.WarnContext(ctx, "login limiter reset failed", slog.Any("err", err))
		}
	}

	return s.startSession(ctx, op, rec.User)
}

func (s *Service) startSession(ctx context.Context, op string, user domain.User) (Session, error) {
	token := uuid.NewString()

	if err := s.sessions.Put(ctx, token, user); err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return Session{Token: token, User: user}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("service.auth.Logout: %w", err)
	}
	return nil
}

// Current returns the user signed in with token, or ErrUnauthorized.
func (s *Service) Current(ctx context.Context, token string) (domain.User, error) {
	const op = "service.auth.Current"

	if token == "" {
		return domain.User{}, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	u, err := s.sessions.Get(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return u, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
