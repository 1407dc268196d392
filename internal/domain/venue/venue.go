package venue

import (
	"context"

	"github.com/eventra/service-event-creation/internal/domain/availability"
	"github.com/eventra/service-event-creation/internal/domain/draft"
	"github.com/google/uuid"
)

// Venue is a bookable location. Venues are managed elsewhere and read-only here.
type Venue struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	State      string    `json:"state"`
	City       string    `json:"city"`
	PriceCents int64     `json:"price_cents"`
	Currency   string    `json:"currency"`
	Capacity   int       `json:"capacity"`
}

// Ref returns the view of the venue that a draft keeps.
func (v Venue) Ref() draft.VenueRef {
	return draft.VenueRef{
		ID:         v.ID,
		Name:       v.Name,
		State:      v.State,
		City:       v.City,
		PriceCents: v.PriceCents,
		Currency:   v.Currency,
	}
}

// Filter narrows a venue listing. Empty fields match everything.
type Filter struct {
	State string
	City  string
}

// VenueRepository resolves venues and their existing bookings.
type VenueRepository interface {
	// FindByID retrieves a venue by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Venue, error)

	// List retrieves venues matching filter with pagination.
	List(ctx context.Context, filter Filter, page, limit int) ([]*Venue, int64, error)

	// ResolveBookings returns every confirmed booking of the venue with its interval.
	// A booking reference that cannot be resolved is an error, never skipped.
	ResolveBookings(ctx context.Context, venueID uuid.UUID) ([]availability.Booking, error)

	// ReleaseBooking drops the venue booking held by eventID. It reports whether one existed.
	ReleaseBooking(ctx context.Context, eventID uuid.UUID) (bool, error)
}
