// Package events describes booking lifecycle notifications and the sinks that carry them.
package events

import (
	"context"
	"log/slog"
)

type Type string

const (
	BookingConfirmed Type = "booking_confirmed"
	BookingCancelled Type = "booking_cancelled"
)

type BookingEvent struct {
	Type         Type   `json:"type"`
	BookingID    string `json:"booking_id"`
	PNR          string `json:"pnr"`
	TotalAmount  int64  `json:"total_amount"`
	RefundAmount int64  `json:"refund_amount,omitempty"`
	TsUnix       int64  `json:"ts_unix"`
}

type Publisher interface {
	PublishBooking(ctx context.Context, ev BookingEvent) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, handler func(ctx context.Context, ev BookingEvent)) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) PublishBooking(context.Context, BookingEvent) error { return nil }

// LogHandler returns a subscriber handler that writes each event to the log.
func LogHandler(log *slog.Logger) func(ctx context.Context, ev BookingEvent) {
	return func(ctx context.Context, ev BookingEvent) {
		log.InfoContext(ctx, "booking event",
			slog.String("type", string(ev.Type)),
			slog.String("booking_id", ev.BookingID),
			slog.String("pnr", ev.PNR),
			slog.Int64("total_amount", ev.TotalAmount),
			slog.Int64("refund_amount", ev.RefundAmount),
		)
	}
}
