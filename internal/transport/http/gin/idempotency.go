package httpgin

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	redisrepo "github.com/kirinyoku/railgo/internal/repository/redis"
)

const idempotencyLockTTL = 60 * time.Second

// Idempotency is satisfied by redisrepo.IdempotencyStore.
type Idempotency interface {
	AcquireLock(ctx context.Context, key string, lockTTL time.Duration) (bool, error)
	SaveResult(ctx context.Context, key string, resp redisrepo.StoredResponse) error
	GetResult(ctx context.Context, key string) (redisrepo.StoredResponse, bool, error)
	Release(ctx context.Context, key string) error
}

// replay writes a stored response for key if there is one.
func replay(c *gin.Context, idem Idempotency, key, idemKey string) bool {
	resp, ok, err := idem.GetResult(c.Request.Context(), key)
	if err != nil || !ok {
		return false
	}

	c.Header("Idempotency-Key", idemKey)
	c.Header("Idempotent-Replayed", "true")
	c.Data(resp.Status, "application/json; charset=utf-8", resp.Body)
	return true
}
