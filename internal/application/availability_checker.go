package application

import (
	"context"

	"github.com/eventra/service-event-creation/internal/domain/availability"
	"github.com/eventra/service-event-creation/internal/domain/venue"
	"github.com/eventra/service-event-creation/internal/platform/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityChecker resolves a venue's bookings and runs the overlap check against them.
// Resolution always happens fresh; nothing is cached between checks.
type AvailabilityChecker struct {
	venues venue.VenueRepository
	logger *zap.Logger
}

// NewAvailabilityChecker creates a new AvailabilityChecker.
func NewAvailabilityChecker(venues venue.VenueRepository, logger *zap.Logger) *AvailabilityChecker {
	return &AvailabilityChecker{venues: venues, logger: logger}
}

// Check returns nil if proposed is free at venueID, an *availability.ConflictError if it
// overlaps an existing booking, or a *domain.FetchError if the bookings could not be resolved.
func (c *AvailabilityChecker) Check(ctx context.Context, venueID uuid.UUID, proposed availability.Interval) error {
	bookings, err := c.venues.ResolveBookings(ctx, venueID)
	if err != nil {
		c.logger.Error("failed to resolve venue bookings",
			zap.String("venue_id", venueID.String()),
			zap.Error(err),
		)
		return domain.NewFetchError("venue bookings", err)
	}

	if err := availability.CheckAvailability(bookings, proposed); err != nil {
		c.logger.Info("venue slot conflicts with an existing booking",
			zap.String("venue_id", venueID.String()),
			zap.String("proposed", proposed.String()),
		)
		return err
	}
	return nil
}
