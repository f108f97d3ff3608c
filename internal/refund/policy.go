// Package refund computes cancellation refunds from the time left before travel.
package refund

import (
	"math"
	"time"

	"github.com/kirinyoku/railgo/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	ReasonOver48h    = "Cancelled more than 48 hours before departure"
	Reason24To48h    = "Cancelled 24-48 hours before departure"
	Reason6To24h     = "Cancelled 6-24 hours before departure"
	ReasonUnder6h    = "Cancelled less than 6 hours before departure"
	ReasonDeparted   = "Cancellation after scheduled departure - no refund applicable"
	travelDateLayout = "2006-01-02"
)

type Result struct {
	RefundAmount     int64  `json:"refundAmount"`
	RefundPercentage int    `json:"refundPercentage"`
	Reason           string `json:"reason"`
	EstimatedDays    int    `json:"estimatedDays"`
	// AlreadyCancelled is set when the result echoes a refund recorded earlier.
	AlreadyCancelled bool   `json:"alreadyCancelled,omitempty"`
}

type bracket struct {
	hoursAbove float64
	percentage int
	days       int
	reason     string
}

// brackets are checked in order; the first whose threshold is strictly exceeded wins.
var brackets = []bracket{
	{48, 90, 3, ReasonOver48h},
	{24, 75, 5, Reason24To48h},
	{6, 50, 7, Reason6To24h},
	{0, 25, 7, ReasonUnder6h},
}

// HoursUntilTravel measures from now to midnight UTC of the travel date.
// An unparseable date yields NaN.
func HoursUntilTravel(travelDate string, now time.Time) float64 {
	d, err := time.Parse(travelDateLayout, travelDate)
	if err != nil {
		if d, err = time.Parse(time.RFC3339, travelDate); err != nil {
			return math.NaN()
		}
	}
	return d.Sub(now).Hours()
}

// Calculate is pure: it never touches the booking's status or stored refund.
func Calculate(b domain.Booking, now time.Time) Result {
	hours := HoursUntilTravel(b.TravelDate, now)

	res := Result{Reason: ReasonDeparted}
	for _, br := range brackets {
		// NaN fails every comparison and falls through to the no-refund case.
		if hours > br.hoursAbove {
			res.RefundPercentage = br.percentage
			res.EstimatedDays = br.days
			res.Reason = br.reason
			break
		}
	}

	res.RefundAmount = Amount(b.TotalAmount, res.RefundPercentage)

	return res
}

// Amount returns round(total*pct/100), halves away from zero.
func Amount(total int64, pct int) int64 {
	return decimal.NewFromInt(total).
		Mul(decimal.NewFromInt(int64(pct))).
		DivRound(decimal.NewFromInt(100), 0).
		IntPart()
}

// FromRecorded turns a refund stored on a cancelled booking back into a Result.
func FromRecorded(r domain.Refund) Result {
	return Result{
		RefundAmount:     r.Amount,
		RefundPercentage: r.Percentage,
		Reason:           r.Reason,
		EstimatedDays:    r.EstimatedDays,
		AlreadyCancelled: true,
	}
}

// Record builds the refund entry attached to a booking on cancellation.
func Record(res Result, requestedAt time.Time) domain.Refund {
	status := domain.RefundCompleted
	if res.RefundPercentage > 0 {
		status = domain.RefundProcessing
	}

	return domain.Refund{
		Amount:        res.RefundAmount,
		Percentage:    res.RefundPercentage,
		Status:        status,
		Reason:        res.Reason,
		RequestedAt:   requestedAt,
		EstimatedDays: res.EstimatedDays,
	}
}

// Policy binds Calculate to a clock.
type Policy struct {
	now func() time.Time
}

func NewPolicy(now func() time.Time) *Policy {
	if now == nil {
		now = time.Now
	}
	return &Policy{now: now}
}

func (p *Policy) Now() time.Time {
	return p.now()
}

// Preview reports the refund a cancellation would yield right now. Cancelled
// bookings report their recorded refund instead of a fresh computation.
func (p *Policy) Preview(b domain.Booking) Result {
	if b.Status == domain.BookingCancelled && b.Refund != nil {
		return FromRecorded(*b.Refund)
	}
	return Calculate(b, p.now())
}
