package booking

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_Lifecycle(t *testing.T) {
	s := NewSessions(nil)

	id := s.Create()
	assert.Equal(t, 1, s.Len())

	err := s.With(id, func(d *Draft) error {
		assert.Equal(t, id, d.ID())
		d.SetSearchParams(domain.SearchParams{Origin: "CAI", Destination: "ALX", Passengers: 1})
		return nil
	})
	require.NoError(t, err)

	_ = s.With(id, func(d *Draft) error {
		assert.Equal(t, StepSearchSet, d.Step())
		return nil
	})

	boom := errors.New("boom")
	assert.ErrorIs(t, s.With(id, func(*Draft) error { return boom }), boom)

	assert.True(t, s.Delete(id))
	assert.False(t, s.Delete(id))
	assert.ErrorIs(t, s.With(id, func(*Draft) error { return nil }), ErrDraftNotFound)
}

func TestSessions_SerializesPerDraft(t *testing.T) {
	s := NewSessions(nil)
	id := s.Create()

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.With(id, func(d *Draft) error {
				d.AddSeat(domain.SelectedSeat{SeatID: "x", Price: 1})
				return nil
			})
		}()
	}
	wg.Wait()

	_ = s.With(id, func(d *Draft) error {
		assert.Equal(t, int64(100), d.TotalAmount())
		return nil
	})
}

func TestSessions_Sweep(t *testing.T) {
	now := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
	s := NewSessions(func() time.Time { return now })

	stale := s.Create()
	now = now.Add(2 * time.Hour)
	fresh := s.Create()

	assert.Equal(t, 1, s.Sweep(time.Hour))
	assert.ErrorIs(t, s.With(stale, func(*Draft) error { return nil }), ErrDraftNotFound)
	assert.NoError(t, s.With(fresh, func(*Draft) error { return nil }))
}
