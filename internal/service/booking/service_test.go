package booking

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/kirinyoku/railgo/internal/events"
	"github.com/kirinyoku/railgo/internal/ident"
	"github.com/kirinyoku/railgo/internal/refund"
	"github.com/kirinyoku/railgo/internal/repository/memory"
	"github.com/kirinyoku/railgo/internal/schedule"
	"github.com/kirinyoku/railgo/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allAvailable struct{}

func (allAvailable) IntN(int) int     { return 805 }
func (allAvailable) Float64() float64 { return 0.99 }

type recorder struct {
	mu  sync.Mutex
	evs []events.BookingEvent
}

func (r *recorder) PublishBooking(_ context.Context, ev events.BookingEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, ev)
	return nil
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.evs))
	for _, ev := range r.evs {
		out = append(out, ev.Type)
	}
	return out
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type fixture struct {
	svc    *Service
	store  *store.BookingStore
	events *recorder
	clock  *clock
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	c := &clock{t: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)}
	rec := &recorder{}
	bs := store.NewBookingStore(memory.NewBlob())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return fixture{
		svc:    New(bs, rec, log, Config{Clock: c.Now}),
		store:  bs,
		events: rec,
		clock:  c,
	}
}

func TestCompleteBooking_CairoToAlexandria(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := NewDraft("d1")
	d.SetSearchParams(domain.SearchParams{Origin: "CAI", Destination: "ALX", Date: "2025-03-10", Passengers: 2})
	d.SetResults(schedule.NewGenerator(allAvailable{}).Search("CAI", "ALX", "2025-03-10"))

	var hs domain.Train
	for _, tr := range d.Results() {
		if tr.Type == domain.TrainHighSpeed {
			hs = tr
			break
		}
	}
	require.NoError(t, SelectTrain(d, hs.ID))

	econ := hs.Coaches[3]
	require.Equal(t, domain.ClassEconomy, econ.Class)
	for _, s := range econ.Seats[:2] {
		_, err := SelectSeat(d, econ.ID, s.ID)
		require.NoError(t, err)
	}
	require.NoError(t, AssignPassengers(d, PrefillPassengers(&domain.User{FirstName: "Ahmed"}, 2)))

	b, err := f.svc.CompleteBooking(ctx, d, "2025-03-10")
	require.NoError(t, err)

	assert.Equal(t, int64(300), b.TotalAmount)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Len(t, b.Seats, 2)
	assert.Len(t, b.Passengers, 2)
	assert.True(t, ident.IsPNR(b.PNR))
	assert.Equal(t, "2025-03-10", b.TravelDate)
	assert.Equal(t, f.clock.Now(), b.CreatedAt)

	current, ok := d.CurrentBooking()
	require.True(t, ok)
	assert.Equal(t, b.ID, current.ID)
	assert.Equal(t, StepCompleted, d.Step())

	stored, err := f.store.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.PNR, stored.PNR)

	assert.Equal(t, []events.Type{events.BookingConfirmed}, f.events.types())
}

func TestCompleteBooking_SnapshotIsIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := readyDraft(1)
	require.NoError(t, SelectTrain(d, "train-1"))
	_, err := SelectSeat(d, "coach-4", "coach-4-seat-1")
	require.NoError(t, err)

	b, err := f.svc.CompleteBooking(ctx, d, "2025-03-10")
	require.NoError(t, err)

	d.Reset()

	stored, err := f.svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "905", stored.Train.Number)
	assert.Len(t, stored.Seats, 1)
}

func TestCompleteBooking_InvalidState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CompleteBooking(ctx, NewDraft("d1"), "2025-03-10")
	assert.ErrorIs(t, err, ErrInvalidBookingState)

	d := readyDraft(1)
	require.NoError(t, SelectTrain(d, "train-1"))
	_, err = f.svc.CompleteBooking(ctx, d, "2025-03-10")
	assert.ErrorIs(t, err, ErrInvalidBookingState)

	all, err := f.store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.events.types())
}

func TestCompleteBooking_PassengerMismatchAllowed(t *testing.T) {
	f := newFixture(t)

	d := readyDraft(3)
	require.NoError(t, SelectTrain(d, "train-1"))
	_, err := SelectSeat(d, "coach-4", "coach-4-seat-1")
	require.NoError(t, err)

	b, err := f.svc.CompleteBooking(context.Background(), d, "2025-03-10")
	require.NoError(t, err)
	assert.Empty(t, b.Passengers)
	assert.Len(t, b.Seats, 1)
}

func TestCompleteBooking_PNRExhausted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.svc.pnr = func() string { return "EGR-AAAAAA" }

	book := func() error {
		d := readyDraft(1)
		require.NoError(t, SelectTrain(d, "train-1"))
		_, err := SelectSeat(d, "coach-4", "coach-4-seat-1")
		require.NoError(t, err)
		_, err = f.svc.CompleteBooking(ctx, d, "2025-03-10")
		return err
	}

	require.NoError(t, book())
	assert.ErrorIs(t, book(), ErrPNRExhausted)
}

func TestCompleteBooking_ContextCancelledDuringPayment(t *testing.T) {
	f := newFixture(t)
	f.svc.cfg.PaymentLatency = time.Hour

	d := readyDraft(1)
	require.NoError(t, SelectTrain(d, "train-1"))
	_, err := SelectSeat(d, "coach-4", "coach-4-seat-1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.svc.CompleteBooking(ctx, d, "2025-03-10")
	assert.ErrorIs(t, err, context.Canceled)

	_, ok := d.CurrentBooking()
	assert.False(t, ok)
}

func bookOne(t *testing.T, f fixture, travelDate string) domain.Booking {
	t.Helper()

	d := readyDraft(2)
	require.NoError(t, SelectTrain(d, "train-1"))
	for _, id := range []string{"coach-4-seat-1", "coach-4-seat-2"} {
		_, err := SelectSeat(d, "coach-4", id)
		require.NoError(t, err)
	}

	b, err := f.svc.CompleteBooking(context.Background(), d, travelDate)
	require.NoError(t, err)
	return b
}

func TestCancelBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := bookOne(t, f, "2025-03-10")

	// 72 hours before midnight of the travel date
	preview, err := f.svc.PreviewRefund(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, preview.RefundPercentage)

	res, err := f.svc.CancelBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, res.RefundPercentage)
	assert.Equal(t, int64(270), res.RefundAmount)
	assert.Equal(t, 3, res.EstimatedDays)
	assert.Equal(t, refund.ReasonOver48h, res.Reason)
	assert.False(t, res.AlreadyCancelled)

	stored, err := f.svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, stored.Status)
	require.NotNil(t, stored.Refund)
	assert.Equal(t, domain.RefundProcessing, stored.Refund.Status)
	assert.Equal(t, f.clock.Now(), stored.Refund.RequestedAt)

	assert.Equal(t, []events.Type{events.BookingConfirmed, events.BookingCancelled}, f.events.types())
}

func TestCancelBooking_Twice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := bookOne(t, f, "2025-03-10")

	first, err := f.svc.CancelBooking(ctx, b.ID)
	require.NoError(t, err)

	// a later cancel would fall into a lower bracket if recomputed
	f.clock.Set(time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC))

	second, err := f.svc.CancelBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, second.AlreadyCancelled)
	assert.Equal(t, first.RefundAmount, second.RefundAmount)
	assert.Equal(t, first.RefundPercentage, second.RefundPercentage)

	preview, err := f.svc.PreviewRefund(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, first.RefundAmount, preview.RefundAmount)

	assert.Len(t, f.events.types(), 2)
}

func TestCancelBooking_AfterDeparture(t *testing.T) {
	f := newFixture(t)
	b := bookOne(t, f, "2025-03-01")

	res, err := f.svc.CancelBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.RefundPercentage)

	stored, _ := f.svc.Get(context.Background(), b.ID)
	assert.Equal(t, domain.RefundCompleted, stored.Refund.Status)
}

func TestCancelBooking_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CancelBooking(context.Background(), "booking-0")
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.svc.PreviewRefund(context.Background(), "booking-0")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	f := newFixture(t)

	first := bookOne(t, f, "2025-03-10")
	f.clock.Set(f.clock.Now().Add(time.Hour))
	second := bookOne(t, f, "2025-03-11")

	list, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestCompleteBooking_Concurrent(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bookOne(t, f, "2025-03-10")
		}()
	}
	wg.Wait()

	list, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 10)

	pnrs := map[string]bool{}
	for _, b := range list {
		assert.False(t, pnrs[b.PNR])
		pnrs[b.PNR] = true
	}
}
