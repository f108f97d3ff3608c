package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirinyoku/railgo/internal/domain"
	redisx "github.com/kirinyoku/railgo/internal/redis"
	redisrepo "github.com/kirinyoku/railgo/internal/repository/redis"
	"github.com/kirinyoku/railgo/internal/schedule"
	"github.com/kirinyoku/railgo/internal/validate"
)

type Config struct {
	// Latency simulates the timetable backend.
	Latency     time.Duration
	StationsTTL time.Duration
	Clock       func() time.Time
}

type Service struct {
	gen   *schedule.Generator
	cache *redisrepo.Cache
	log   *slog.Logger
	cfg   Config
}

// New builds the service. cache may be nil, in which case stations are served
// straight from the catalogue.
func New(gen *schedule.Generator, cache *redisrepo.Cache, log *slog.Logger, cfg Config) *Service {
	if cfg.StationsTTL <= 0 {
		cfg.StationsTTL = time.Hour
	}

	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Service{
		gen:   gen,
		cache: cache,
		log:   log,
		cfg:   cfg,
	}
}

func (s *Service) Stations(ctx context.Context) ([]domain.Station, error) {
	const op = "service.search.Stations"

	if s.cache == nil {
		return schedule.Stations(), nil
	}

	list, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisx.KeyStations(),
		s.cfg.StationsTTL,
		func(context.Context) ([]domain.Station, error) {
			return schedule.Stations(), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

// Trains validates the search form and returns generated trains for it.
//
// Returns:
//   - []domain.Train: trains sorted by departure, empty when no route exists.
//   - error: *validate.FieldError for an invalid form, or ctx.Err().
func (s *Service) Trains(ctx context.Context, p domain.SearchParams) ([]domain.Train, error) {
	const op = "service.search.Trains"

	if err := validate.SearchParams(p, s.cfg.Clock()).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cfg.Latency > 0 {
		t := time.NewTimer(s.cfg.Latency)
		defer t.Stop()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-t.C:
		}
	}

	trains := s.gen.Search(p.Origin, p.Destination, p.Date)

	s.log.DebugContext(ctx, "trains generated",
		slog.String("origin", p.Origin),
		slog.String("destination", p.Destination),
		slog.Int("count", len(trains)),
	)

	return trains, nil
}
