package store

import (
	"context"
	"fmt"

	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/kirinyoku/railgo/internal/ident"
	"github.com/kirinyoku/railgo/internal/repository"
)

// BookingStore persists the booking list under a single key. Every write is
// an atomic read-modify-write on the blob.
type BookingStore struct {
	blob Blob
}

func NewBookingStore(blob Blob) *BookingStore {
	return &BookingStore{blob: blob}
}

// ValidateBooking reports the first structural problem with a booking.
func ValidateBooking(b domain.Booking) error {
	switch {
	case b.ID == "":
		return fmt.Errorf("%w: booking without id", repository.ErrCorruptRecord)
	case !ident.IsPNR(b.PNR):
		return fmt.Errorf("%w: booking %s has malformed pnr %q", repository.ErrCorruptRecord, b.ID, b.PNR)
	case !b.Status.Valid():
		return fmt.Errorf("%w: booking %s has unknown status %q", repository.ErrCorruptRecord, b.ID, b.Status)
	case b.TotalAmount != domain.SeatsTotal(b.Seats):
		return fmt.Errorf("%w: booking %s total %d does not match seats", repository.ErrCorruptRecord, b.ID, b.TotalAmount)
	}
	return nil
}

func decodeBookings(raw []byte) ([]domain.Booking, error) {
	list, _, err := decodeList[domain.Booking](raw)
	if err != nil {
		return nil, err
	}

	for _, b := range list {
		if err := ValidateBooking(b); err != nil {
			return nil, err
		}
	}

	return list, nil
}

func (s *BookingStore) GetAll(ctx context.Context) ([]domain.Booking, error) {
	const op = "store.bookings.GetAll"

	raw, err := s.blob.Load(ctx, KeyBookings)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	list, err := decodeBookings(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return list, nil
}

func (s *BookingStore) Get(ctx context.Context, id string) (domain.Booking, error) {
	list, err := s.GetAll(ctx)
	if err != nil {
		return domain.Booking{}, err
	}

	for _, b := range list {
		if b.ID == id {
			return b, nil
		}
	}

	return domain.Booking{}, fmt.Errorf("store.bookings.Get: %w", repository.ErrNotFound)
}

func (s *BookingStore) Append(ctx context.Context, b domain.Booking) error {
	_, err := s.Insert(ctx, func([]domain.Booking) (domain.Booking, error) {
		return b, nil
	})
	return err
}

// Insert builds a booking from the current list and appends it in the same
// atomic update, so build can check the new booking against existing ones.
func (s *BookingStore) Insert(
	ctx context.Context,
	build func(existing []domain.Booking) (domain.Booking, error),
) (domain.Booking, error) {
	const op = "store.bookings.Insert"

	var created domain.Booking

	err := s.blob.Update(ctx, KeyBookings, func(raw []byte) ([]byte, error) {
		list, err := decodeBookings(raw)
		if err != nil {
			return nil, err
		}

		b, err := build(list)
		if err != nil {
			return nil, err
		}
		if err := ValidateBooking(b); err != nil {
			return nil, err
		}
		for _, existing := range list {
			if existing.ID == b.ID {
				return nil, fmt.Errorf("booking %s: %w", b.ID, repository.ErrConflict)
			}
		}

		created = b
		return encodeList(append(list, b))
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

// Update applies fn to the booking with the given id and stores the result.
// If fn returns an error the list is left untouched.
func (s *BookingStore) Update(
	ctx context.Context,
	id string,
	fn func(b *domain.Booking) error,
) (domain.Booking, error) {
	const op = "store.bookings.Update"

	var updated domain.Booking

	err := s.blob.Update(ctx, KeyBookings, func(raw []byte) ([]byte, error) {
		list, err := decodeBookings(raw)
		if err != nil {
			return nil, err
		}

		idx := -1
		for i := range list {
			if list[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, repository.ErrNotFound
		}

		if err := fn(&list[idx]); err != nil {
			return nil, err
		}
		if err := ValidateBooking(list[idx]); err != nil {
			return nil, err
		}

		updated = list[idx]
		return encodeList(list)
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}
