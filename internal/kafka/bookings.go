package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kirinyoku/railgo/internal/events"
	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// BookingsWriter publishes booking events keyed by booking id, so all events
// of one booking land on the same partition.
type BookingsWriter struct {
	writer *kafka.Writer
}

func NewBookingsWriter(cfg Config) *BookingsWriter {
	return &BookingsWriter{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (w *BookingsWriter) PublishBooking(ctx context.Context, ev events.BookingEvent) error {
	const op = "kafka.BookingsWriter.PublishBooking"

	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := w.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.BookingID),
		Value: b,
		Time:  time.Unix(ev.TsUnix, 0),
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (w *BookingsWriter) Close() error {
	return w.writer.Close()
}

// BookingsReader consumes booking events as part of a consumer group.
type BookingsReader struct {
	cfg Config
	log *slog.Logger
}

func NewBookingsReader(cfg Config, log *slog.Logger) *BookingsReader {
	return &BookingsReader{cfg: cfg, log: log}
}

func (r *BookingsReader) Subscribe(ctx context.Context, handler func(ctx context.Context, ev events.BookingEvent)) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        r.cfg.Brokers,
		Topic:          r.cfg.Topic,
		GroupID:        r.cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})
	defer reader.Close()

	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("kafka.BookingsReader.Subscribe: %w", err)
		}

		var ev events.BookingEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil || ev.BookingID == "" {
			r.log.Warn("skipping malformed booking event",
				slog.Int64("offset", m.Offset),
				slog.Int("partition", m.Partition),
			)
			continue
		}

		handler(ctx, ev)
	}
}
