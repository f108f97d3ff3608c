package service

import (
	"log/slog"
	"time"

	"github.com/kirinyoku/railgo/internal/events"
	redisrepo "github.com/kirinyoku/railgo/internal/repository/redis"
	"github.com/kirinyoku/railgo/internal/schedule"
	"github.com/kirinyoku/railgo/internal/service/auth"
	"github.com/kirinyoku/railgo/internal/service/booking"
	"github.com/kirinyoku/railgo/internal/service/prefs"
	"github.com/kirinyoku/railgo/internal/service/search"
	"github.com/kirinyoku/railgo/internal/store"
)

type Services struct {
	Auth    *auth.Service
	Search  *search.Service
	Booking *booking.Service
	Drafts  *booking.Sessions
	Prefs   *prefs.Service
}

type Config struct {
	Auth    auth.Config
	Search  search.Config
	Booking booking.Config
	// Clock drives validation windows, refunds and draft expiry. Nil means time.Now.
	Clock func() time.Time
}

// Deps are the backends shared by the services. Cache and Limiter may be nil
// when redis is not configured; Publisher may be nil to drop booking events.
type Deps struct {
	Blob      store.Blob
	Cache     *redisrepo.Cache
	Limiter   auth.Limiter
	Publisher events.Publisher
	Generator *schedule.Generator
}

func NewServices(deps Deps, logger *slog.Logger, cfg Config) *Services {
	if cfg.Clock != nil {
		if cfg.Auth.Clock == nil {
			cfg.Auth.Clock = cfg.Clock
		}
		if cfg.Search.Clock == nil {
			cfg.Search.Clock = cfg.Clock
		}
		if cfg.Booking.Clock == nil {
			cfg.Booking.Clock = cfg.Clock
		}
	}

	gen := deps.Generator
	if gen == nil {
		gen = schedule.NewGenerator(nil)
	}

	return &Services{
		Auth: auth.New(
			store.NewUserStore(deps.Blob),
			store.NewSessionStore(deps.Blob),
			deps.Limiter,
			logger.With(slog.String("service", "auth")),
			cfg.Auth,
		),
		Search: search.New(gen, deps.Cache, logger.With(slog.String("service", "search")), cfg.Search),
		Booking: booking.New(
			store.NewBookingStore(deps.Blob),
			deps.Publisher,
			logger.With(slog.String("service", "booking")),
			cfg.Booking,
		),
		Drafts: booking.NewSessions(cfg.Clock),
		Prefs:  prefs.New(store.NewPrefsStore(deps.Blob)),
	}
}
