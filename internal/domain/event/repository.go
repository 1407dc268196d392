package event

import (
	"context"

	"github.com/eventra/service-event-creation/internal/domain/draft"
	"github.com/google/uuid"
)

// EventRepository defines the persistence contract for events.
type EventRepository interface {
	// Create stores the event, its poster image and its venue booking as one unit.
	Create(ctx context.Context, event *Event, image draft.Image) error

	// FindByID retrieves an event by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Event, error)

	// FindByOrganizer retrieves an organizer's events, newest first, with pagination.
	FindByOrganizer(ctx context.Context, organizerID uuid.UUID, page, limit int) ([]*Event, int64, error)
}

// ImageStore holds event poster blobs.
type ImageStore interface {
	Put(ctx context.Context, key string, image draft.Image) error
	Delete(ctx context.Context, key string) error
}
