package events

import (
	"context"
	"fmt"

	"github.com/eventra/service-event-creation/internal/application"
	"github.com/eventra/service-event-creation/internal/platform/kafka"
)

// EventPublisher writes a CloudEvent to a topic. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// KafkaNavigator announces wizard progress on Kafka so the presentation layer can follow
// stage changes and redirect to created events.
type KafkaNavigator struct {
	publisher EventPublisher
}

// NewKafkaNavigator creates a new KafkaNavigator.
func NewKafkaNavigator(publisher EventPublisher) *KafkaNavigator {
	return &KafkaNavigator{publisher: publisher}
}

// StageChanged publishes a wizard.stage_changed event keyed by session.
func (n *KafkaNavigator) StageChanged(ctx context.Context, change application.StageChange) error {
	return n.publish(ctx, TypeStageChanged, change.SessionID.String(), change)
}

// EventCreated publishes an event.created event keyed by session.
func (n *KafkaNavigator) EventCreated(ctx context.Context, created application.EventCreated) error {
	return n.publish(ctx, TypeEventCreated, created.SessionID.String(), created)
}

func (n *KafkaNavigator) publish(ctx context.Context, eventType, subject string, data interface{}) error {
	ce, err := kafka.NewCloudEvent(Source, eventType, data)
	if err != nil {
		return err
	}
	ce.Subject = subject
	if err := n.publisher.PublishEvent(ctx, TopicEventCreation, ce); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}
