package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"

	EventsNone  = "none"
	EventsRedis = "redis"
	EventsKafka = "kafka"
)

type Config struct {
	Server   ServerConfig
	Storage  string
	Postgres PostgresConfig
	Redis    RedisConfig
	Events   EventsConfig
	Latency  LatencyConfig
	LogLevel slog.Level
	// DraftTTL is how long an untouched booking draft is kept.
	DraftTTL time.Duration
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	// Addr empty means redis is not used at all.
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Name, p.SSLMode,
	)
}

type EventsConfig struct {
	Sink         string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string
}

type LatencyConfig struct {
	Search  time.Duration
	Auth    time.Duration
	Payment time.Duration
}

// New reads .env (if present) and the process environment.
func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	cfg := &Config{
		Storage: getenv("STORAGE_DRIVER", StorageMemory),
		Server:  ServerConfig{Host: getenv("SERVER_HOST", "localhost")},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Events: EventsConfig{
			Sink:         getenv("EVENTS_SINK", EventsNone),
			KafkaTopic:   getenv("KAFKA_TOPIC", "railgo.bookings"),
			KafkaGroupID: getenv("KAFKA_GROUP_ID", "railgo"),
		},
	}

	var err error
	if cfg.Server.Port, err = intEnv("SERVER_PORT", 8080); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cfg.Redis.DB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if cfg.Latency.Search, err = durationEnv("SEARCH_LATENCY", 800*time.Millisecond); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cfg.Latency.Auth, err = durationEnv("AUTH_LATENCY", 500*time.Millisecond); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cfg.Latency.Payment, err = durationEnv("PAYMENT_LATENCY", 2*time.Second); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cfg.DraftTTL, err = durationEnv("DRAFT_TTL", 30*time.Minute); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getenv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("%s: invalid LOG_LEVEL: %w", op, err)
	}

	switch cfg.Storage {
	case StorageMemory:
	case StoragePostgres:
		if cfg.Postgres, err = postgresFromEnv(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	case StorageRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("%s: STORAGE_DRIVER=redis requires REDIS_ADDR", op)
		}
	default:
		return nil, fmt.Errorf("%s: invalid STORAGE_DRIVER %q", op, cfg.Storage)
	}

	switch cfg.Events.Sink {
	case EventsNone:
	case EventsRedis:
		if cfg.Redis.Addr == "" {
			return nil, fmt.Errorf("%s: EVENTS_SINK=redis requires REDIS_ADDR", op)
		}
	case EventsKafka:
		for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Events.KafkaBrokers = append(cfg.Events.KafkaBrokers, b)
			}
		}
		if len(cfg.Events.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("%s: EVENTS_SINK=kafka requires KAFKA_BROKERS", op)
		}
	default:
		return nil, fmt.Errorf("%s: invalid EVENTS_SINK %q", op, cfg.Events.Sink)
	}

	return cfg, nil
}

func postgresFromEnv() (PostgresConfig, error) {
	port, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return PostgresConfig{}, err
	}

	p := PostgresConfig{
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Name:     os.Getenv("POSTGRES_DB"),
		Host:     getenv("POSTGRES_HOST", "localhost"),
		Port:     port,
		SSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
	}

	switch {
	case p.User == "":
		return PostgresConfig{}, fmt.Errorf("missing POSTGRES_USER")
	case p.Password == "":
		return PostgresConfig{}, fmt.Errorf("missing POSTGRES_PASSWORD")
	case p.Name == "":
		return PostgresConfig{}, fmt.Errorf("missing POSTGRES_DB")
	}

	return p, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// durationEnv accepts Go durations ("800ms") or bare milliseconds ("800").
func durationEnv(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	if ms, err := strconv.Atoi(s); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("invalid %s: negative", key)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}
