package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kirinyoku/railgo/internal/events"
	"github.com/redis/go-redis/v9"
)

// BookingsPubSub fans booking events out over a redis channel.
type BookingsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewBookingsPubSub(rdb *redis.Client) *BookingsPubSub {
	return &BookingsPubSub{
		rdb:     rdb,
		channel: ChannelBookings(),
	}
}

func (p *BookingsPubSub) PublishBooking(ctx context.Context, ev events.BookingEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis.PublishBooking: %w", err)
	}

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *BookingsPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, ev events.BookingEvent)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev events.BookingEvent
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.BookingID != "" {
				handler(ctx, ev)
			}
		}
	}
}
