package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("not signed in")
	ErrRateLimited        = errors.New("too many attempts")
)

// RateLimitedError reports when the caller may try again.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("too many attempts, retry in %s", e.RetryAfter)
}

func (e RateLimitedError) Unwrap() error {
	return ErrRateLimited
}
