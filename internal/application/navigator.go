package application

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StageChange is announced whenever a wizard session moves between stages.
type StageChange struct {
	SessionID   uuid.UUID `json:"session_id"`
	OrganizerID uuid.UUID `json:"organizer_id"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EventCreated is announced once a submitted draft has been persisted.
type EventCreated struct {
	EventID     uuid.UUID `json:"event_id"`
	SessionID   uuid.UUID `json:"session_id"`
	OrganizerID uuid.UUID `json:"organizer_id"`
	VenueID     uuid.UUID `json:"venue_id"`
	Title       string    `json:"title"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Navigator is told about stage changes and created events so the presentation layer can
// follow along. Its failures never affect the workflow.
type Navigator interface {
	StageChanged(ctx context.Context, change StageChange) error
	EventCreated(ctx context.Context, created EventCreated) error
}

// NopNavigator discards every notification.
type NopNavigator struct{}

func (NopNavigator) StageChanged(context.Context, StageChange) error { return nil }

func (NopNavigator) EventCreated(context.Context, EventCreated) error { return nil }
