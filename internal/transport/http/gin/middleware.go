package httpgin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	headerRequestID = "X-Request-ID"
	headerClientID  = "X-Client-ID"
	ctxRequestID    = "request_id"
)

// Limiter is satisfied by the redis sliding-window limiter.
type Limiter interface {
	Allow(ctx context.Context, suffix string) (allowed bool, current int64, retryAfter time.Duration, err error)
}

func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(headerRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		c.Writer.Header().Set(headerRequestID, reqID)
		c.Set(ctxRequestID, reqID)

		c.Next()
	}
}

func CORS() gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			"GET", "POST", "PUT", "DELETE", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			headerRequestID,
			headerClientID,
			"Idempotency-Key",
			"If-None-Match",
		},
		ExposeHeaders: []string{
			headerRequestID,
			"ETag",
			"Cache-Control",
			"Retry-After",
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	return cors.New(cfg)
}

// LoggingMiddleware writes one access line per request with attributes grouped under "http".
func LoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		reqID, _ := c.Get(ctxRequestID)
		attrs := []any{
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("ip", c.ClientIP()),
			slog.Any("request_id", reqID),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
			logger.Error("http", slog.Group("http", attrs...))
			return
		}

		logger.Info("http", slog.Group("http", attrs...))
	}
}

// RateLimit rejects callers over the limiter's budget with 429. Limiter
// failures let the request through.
func RateLimit(l Limiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, _, retry, err := l.Allow(c.Request.Context(), "ip:"+c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable", slog.Any("err", err))
			c.Next()
			return
		}
		if !ok {
			c.Header("Retry-After", retryAfterSeconds(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
			return
		}
		c.Next()
	}
}

func retryAfterSeconds(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// clientToken identifies a browser for preferences: the session token when
// signed in, otherwise the X-Client-ID header.
func clientToken(c *gin.Context) string {
	if t := bearerToken(c); t != "" {
		return t
	}
	return strings.TrimSpace(c.GetHeader(headerClientID))
}
