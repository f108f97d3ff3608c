package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/kirinyoku/railgo/internal/events"
	"github.com/kirinyoku/railgo/internal/ident"
	"github.com/kirinyoku/railgo/internal/refund"
	"github.com/kirinyoku/railgo/internal/repository"
	"github.com/kirinyoku/railgo/internal/store"
	"github.com/kirinyoku/railgo/internal/uow"
)

type Config struct {
	// PaymentLatency simulates the payment gateway before a booking commits.
	PaymentLatency time.Duration
	MaxPNRAttempts int
	Clock          func() time.Time
}

type Service struct {
	bookings *store.BookingStore
	events   events.Publisher
	policy   *refund.Policy
	uow      *uow.UoW
	log      *slog.Logger
	cfg      Config
	pnr      func() string
}

func New(
	bookings *store.BookingStore,
	publisher events.Publisher,
	log *slog.Logger,
	cfg Config,
) *Service {
	if cfg.MaxPNRAttempts <= 0 {
		cfg.MaxPNRAttempts = 5
	}

	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	if publisher == nil {
		publisher = events.Nop{}
	}

	return &Service{
		bookings: bookings,
		events:   publisher,
		policy:   refund.NewPolicy(cfg.Clock),
		uow:      uow.NewUoW(),
		log:      log,
		cfg:      cfg,
		pnr:      ident.PNR,
	}
}

// CompleteBooking turns the draft into a confirmed booking and stores it.
//
// Parameters:
//   - ctx: request-scoped context; cancelling it during the simulated payment aborts the booking.
//   - d: the draft, which the caller must hold exclusively (see Sessions.With).
//   - travelDate: the travel date as YYYY-MM-DD.
//
// Returns:
//   - domain.Booking: the stored booking, also recorded as the draft's current booking.
//   - error: ErrInvalidBookingState if no train or no seat is selected.
//   - error: ErrPNRExhausted if no unique PNR could be generated.
func (s *Service) CompleteBooking(
	ctx context.Context,
	d *Draft,
	travelDate string,
) (domain.Booking, error) {
	const op = "service.booking.CompleteBooking"

	train, ok := d.SelectedTrain()
	if !ok || len(d.selectedSeats) == 0 {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, ErrInvalidBookingState)
	}

	if err := wait(ctx, s.cfg.PaymentLatency); err != nil {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.cfg.Clock()
	seats := d.SelectedSeats()

	var created domain.Booking

	err := s.uow.Do(ctx, func(ctx context.Context, after func(uow.AfterCommit)) error {
		b, err := s.bookings.Insert(ctx, func(existing []domain.Booking) (domain.Booking, error) {
			pnr, err := s.uniquePNR(existing)
			if err != nil {
				return domain.Booking{}, err
			}

			return domain.Booking{
				ID:          ident.BookingID(now),
				PNR:         pnr,
				Train:       train,
				Passengers:  d.Passengers(),
				Seats:       seats,
				TravelDate:  travelDate,
				TotalAmount: domain.SeatsTotal(seats),
				Status:      domain.BookingConfirmed,
				CreatedAt:   now,
			}, nil
		})
		if err != nil {
			return err
		}

		created = b

		after(func(ctx context.Context) {
			s.publish(ctx, events.BookingEvent{
				Type:        events.BookingConfirmed,
				BookingID:   b.ID,
				PNR:         b.PNR,
				TotalAmount: b.TotalAmount,
				TsUnix:      now.Unix(),
			})
		})

		return nil
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	d.currentBooking = &created

	s.log.InfoContext(ctx, "booking confirmed",
		slog.String("booking_id", created.ID),
		slog.String("pnr", created.PNR),
		slog.Int("seats", len(created.Seats)),
		slog.Int64("total", created.TotalAmount),
	)

	return created, nil
}

func (s *Service) uniquePNR(existing []domain.Booking) (string, error) {
	taken := make(map[string]struct{}, len(existing))
	for _, b := range existing {
		taken[b.PNR] = struct{}{}
	}

	for range s.cfg.MaxPNRAttempts {
		pnr := s.pnr()
		if _, dup := taken[pnr]; !dup {
			return pnr, nil
		}
	}

	return "", ErrPNRExhausted
}

// errAlreadyCancelled stops the store update without writing.
var errAlreadyCancelled = errors.New("already cancelled")

// CancelBooking cancels a booking and records its refund.
//
// Parameters:
//   - ctx: request-scoped context.
//   - id: booking id.
//
// Returns:
//   - refund.Result: the refund granted. For a booking cancelled earlier this is
//     the recorded refund with AlreadyCancelled set; nothing is recomputed or written.
//   - error: ErrBookingNotFound if no booking has the id.
func (s *Service) CancelBooking(ctx context.Context, id string) (refund.Result, error) {
	const op = "service.booking.CancelBooking"

	var res refund.Result

	err := s.uow.Do(ctx, func(ctx context.Context, after func(uow.AfterCommit)) error {
		now := s.policy.Now()

		b, err := s.bookings.Update(ctx, id, func(b *domain.Booking) error {
			if b.Status == domain.BookingCancelled {
				res = recordedResult(*b)
				return errAlreadyCancelled
			}

			res = refund.Calculate(*b, now)
			rec := refund.Record(res, now)

			b.Status = domain.BookingCancelled
			b.Refund = &rec

			return nil
		})
		if err != nil {
			return err
		}

		after(func(ctx context.Context) {
			s.publish(ctx, events.BookingEvent{
				Type:         events.BookingCancelled,
				BookingID:    b.ID,
				PNR:          b.PNR,
				TotalAmount:  b.TotalAmount,
				RefundAmount: res.RefundAmount,
				TsUnix:       now.Unix(),
			})
		})

		return nil
	})

	switch {
	case err == nil:
	case errors.Is(err, errAlreadyCancelled):
		return res, nil
	case errors.Is(err, repository.ErrNotFound):
		return refund.Result{}, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	default:
		return refund.Result{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.InfoContext(ctx, "booking cancelled",
		slog.String("booking_id", id),
		slog.Int("refund_percentage", res.RefundPercentage),
		slog.Int64("refund_amount", res.RefundAmount),
	)

	return res, nil
}

func recordedResult(b domain.Booking) refund.Result {
	if b.Refund == nil {
		return refund.Result{Reason: refund.ReasonDeparted, AlreadyCancelled: true}
	}
	return refund.FromRecorded(*b.Refund)
}

// PreviewRefund reports what cancelling the booking now would refund.
func (s *Service) PreviewRefund(ctx context.Context, id string) (refund.Result, error) {
	const op = "service.booking.PreviewRefund"

	b, err := s.Get(ctx, id)
	if err != nil {
		return refund.Result{}, fmt.Errorf("%s: %w", op, err)
	}

	if b.Status == domain.BookingCancelled {
		return recordedResult(b), nil
	}

	return s.policy.Preview(b), nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Booking, error) {
	const op = "service.booking.Get"

	b, err := s.bookings.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
	}
	if err != nil {
		return domain.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// List returns every booking, newest first.
func (s *Service) List(ctx context.Context) ([]domain.Booking, error) {
	const op = "service.booking.List"

	list, err := s.bookings.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slices.SortStableFunc(list, func(a, b domain.Booking) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return list, nil
}

func (s *Service) publish(ctx context.Context, ev events.BookingEvent) {
	if err := s.events.PublishBooking(ctx, ev); err != nil {
		s.log.WarnContext(ctx, "publish booking event",
			slog.String("type", string(ev.Type)),
			slog.String("booking_id", ev.BookingID),
			slog.Any("err", err),
		)
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
