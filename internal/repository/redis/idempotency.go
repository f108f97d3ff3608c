package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockValue    = "LOCK"
	resultPrefix = "RES:"
)

// StoredResponse is a replayable HTTP response for an idempotency key.
type StoredResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// IdempotencyStore guards one-shot operations such as checkout. A key is
// either absent, locked by an in-flight request, or holds the stored result.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *IdempotencyStore) AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, lockValue, lockTTL).Result()
}

func (s *IdempotencyStore) SaveResult(ctx context.Context, key string, resp StoredResponse) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, resultPrefix+string(b), s.ttl).Err()
}

func (s *IdempotencyStore) GetResult(ctx context.Context, key string) (StoredResponse, bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return StoredResponse{}, false, nil
	}
	if err != nil {
		return StoredResponse{}, false, err
	}

	payload, ok := strings.CutPrefix(v, resultPrefix)
	if !ok {
		return StoredResponse{}, false, nil
	}

	var resp StoredResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return StoredResponse{}, false, err
	}

	return resp, true, nil
}

func (s *IdempotencyStore) IsLocked(ctx context.Context, key string) (bool, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == lockValue, nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
