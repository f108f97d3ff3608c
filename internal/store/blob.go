// Package store keeps versioned JSON records on top of a key-value blob backend.
package store

import (
	"context"
)

// Blob is the key-value backend every record store is built on.
// A missing key loads as nil data with a nil error.
type Blob interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	// Update atomically replaces the value of key with fn(current). If fn
	// returns an error nothing is written and the error is returned as is.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}

const (
	KeyUsers    = "users"
	KeyBookings = "bookings"
)

func SessionKey(token string) string { return "session:" + token }

func PrefsKey(token string) string { return "prefs:" + token }
