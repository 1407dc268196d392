package events

import (
	"context"

	"github.com/eventra/service-event-creation/internal/platform/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventCancelledData is the payload of an event.cancelled event.
type EventCancelledData struct {
	EventID uuid.UUID `json:"event_id"`
	Reason  string    `json:"reason,omitempty"`
}

// BookingReleaser frees the venue slot held by an event.
type BookingReleaser interface {
	ReleaseVenueBooking(ctx context.Context, eventID uuid.UUID) error
}

// CancellationConsumer listens to event lifecycle events and releases the venue bookings of
// cancelled events, so later availability checks see the slot as free.
type CancellationConsumer struct {
	consumer *kafka.Consumer
	releaser BookingReleaser
	logger   *zap.Logger
}

// NewCancellationConsumer creates a new CancellationConsumer.
func NewCancellationConsumer(
	brokers []string,
	groupID string,
	releaser BookingReleaser,
	logger *zap.Logger,
) *CancellationConsumer {
	return &CancellationConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicEventLifecycle, logger),
		releaser: releaser,
		logger:   logger,
	}
}

// Start begins consuming lifecycle events. This blocks until the context is cancelled.
func (c *CancellationConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CancellationConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CancellationConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ce, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("dropping malformed lifecycle message",
			zap.Error(err),
			zap.Int64("offset", msg.Offset),
		)
		return nil
	}

	if ce.Type != TypeEventCancelled {
		c.logger.Debug("ignoring lifecycle event", zap.String("type", ce.Type))
		return nil
	}

	var data EventCancelledData
	if err := ce.ParseData(&data); err != nil || data.EventID == uuid.Nil {
		c.logger.Error("dropping event.cancelled without an event ID",
			zap.String("id", ce.ID),
			zap.Error(err),
		)
		return nil
	}

	if err := c.releaser.ReleaseVenueBooking(ctx, data.EventID); err != nil {
		c.logger.Error("failed to release venue booking of cancelled event",
			zap.String("event_id", data.EventID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}
