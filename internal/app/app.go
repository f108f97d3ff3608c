package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/railgo/internal/config"
	"github.com/kirinyoku/railgo/internal/events"
	"github.com/kirinyoku/railgo/internal/kafka"
	"github.com/kirinyoku/railgo/internal/postgres"
	"github.com/kirinyoku/railgo/internal/redis"
	"github.com/kirinyoku/railgo/internal/repository/memory"
	postgresrepo "github.com/kirinyoku/railgo/internal/repository/postgres"
	redisrepo "github.com/kirinyoku/railgo/internal/repository/redis"
	"github.com/kirinyoku/railgo/internal/service"
	"github.com/kirinyoku/railgo/internal/service/auth"
	"github.com/kirinyoku/railgo/internal/service/booking"
	"github.com/kirinyoku/railgo/internal/service/search"
	"github.com/kirinyoku/railgo/internal/store"
	httpgin "github.com/kirinyoku/railgo/internal/transport/http/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 5 * time.Second
	sweepInterval   = time.Minute
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	services   *service.Services
	subscriber events.Subscriber
	closers    []func()
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		var err error
		rdb, err = redis.New(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
	}

	blob, err := a.openBlob(ctx, rdb)
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := service.Deps{Blob: blob}
	var routerOpts httpgin.Options

	if rdb != nil {
		deps.Cache = redisrepo.NewCache(rdb)
		if err := deps.Cache.InvalidateStations(ctx); err != nil {
			logger.Warn("failed to drop cached stations", slog.Any("err", err))
		}
		deps.Limiter = redisrepo.NewSlidingWindowLimiter(rdb, redis.KeyRateLimit("login"), 10, time.Minute)
		routerOpts.CheckoutLimiter = redisrepo.NewSlidingWindowLimiter(rdb, redis.KeyRateLimit("checkout"), 20, time.Minute)
		routerOpts.Idempotency = redisrepo.NewIdempotencyStore(rdb, 24*time.Hour)
	}

	switch cfg.Events.Sink {
	case config.EventsRedis:
		ps := redis.NewBookingsPubSub(rdb)
		deps.Publisher = ps
		a.subscriber = ps
	case config.EventsKafka:
		kcfg := kafka.Config{
			Brokers: cfg.Events.KafkaBrokers,
			Topic:   cfg.Events.KafkaTopic,
			GroupID: cfg.Events.KafkaGroupID,
		}
		w := kafka.NewBookingsWriter(kcfg)
		a.closers = append(a.closers, func() { _ = w.Close() })
		deps.Publisher = w
		a.subscriber = kafka.NewBookingsReader(kcfg, logger)
	}

	a.services = service.NewServices(deps, logger, service.Config{
		Auth:    auth.Config{Latency: cfg.Latency.Auth},
		Search:  search.Config{Latency: cfg.Latency.Search},
		Booking: booking.Config{PaymentLatency: cfg.Latency.Payment},
	})

	if err := a.services.Auth.SeedDemoUser(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           httpgin.NewRouter(a.services, routerOpts, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// openBlob picks the storage backend named by STORAGE_DRIVER.
func (a *App) openBlob(ctx context.Context, rdb *goredis.Client) (store.Blob, error) {
	switch a.cfg.Storage {
	case config.StoragePostgres:
		pool, err := postgres.New(ctx, postgres.Config{DSN: a.cfg.Postgres.DSN()})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		return postgresBlob(ctx, pool)
	case config.StorageRedis:
		return redis.NewBlob(rdb), nil
	default:
		return memory.NewBlob(), nil
	}
}

func postgresBlob(ctx context.Context, pool *pgxpool.Pool) (store.Blob, error) {
	blobs := postgresrepo.NewStore(pool).Blobs()
	if err := blobs.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare schema: %w", err)
	}
	return blobs, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	defer a.Close()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	g.Go(func() error {
		t := time.NewTicker(sweepInterval)
		defer t.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-t.C:
				if n := a.services.Drafts.Sweep(a.cfg.DraftTTL); n > 0 {
					a.logger.Debug("expired drafts removed", slog.Int("count", n))
				}
			}
		}
	})

	if a.subscriber != nil {
		g.Go(func() error {
			err := a.subscriber.Subscribe(gCtx, events.LogHandler(a.logger))
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("booking events subscriber: %w", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// Close releases backend connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
