package booking

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBookingState = errors.New("invalid booking state")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrDraftNotFound       = errors.New("draft not found")
	ErrPNRExhausted        = errors.New("could not allocate a unique pnr")

	ErrNoSearch        = errors.New("search parameters not set")
	ErrTrainNotFound   = errors.New("train not found in search results")
	ErrNoTrain         = errors.New("no train selected")
	ErrSeatLimit       = errors.New("seat limit reached")
	ErrPassengerCount  = errors.New("passenger count does not match search")
	ErrSeatUnavailable = errors.New("seat is unavailable")
	ErrSeatSelected    = errors.New("seat already selected")
	ErrSeatNotFound    = errors.New("seat not found")
)

// SeatError names the seat a selection failed on. It unwraps to one of the
// seat sentinels above.
type SeatError struct {
	CoachID string
	SeatID  string
	Err     error
}

func (e SeatError) Error() string {
	return fmt.Sprintf("seat %s in %s: %v", e.SeatID, e.CoachID, e.Err)
}

func (e SeatError) Unwrap() error {
	return e.Err
}
