package application

import (
	"context"

	eventDomain "github.com/eventra/service-event-creation/internal/domain/event"
	"github.com/eventra/service-event-creation/internal/domain/venue"
	"github.com/eventra/service-event-creation/internal/platform/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventService serves persisted events and the venue catalogue.
type EventService struct {
	events eventDomain.EventRepository
	venues venue.VenueRepository
	logger *zap.Logger
}

// NewEventService creates a new EventService.
func NewEventService(events eventDomain.EventRepository, venues venue.VenueRepository, logger *zap.Logger) *EventService {
	return &EventService{events: events, venues: venues, logger: logger}
}

// GetEvent retrieves a single event.
func (s *EventService) GetEvent(ctx context.Context, eventID uuid.UUID) (*EventDTO, error) {
	ev, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	dto := toEventDTO(ev)
	return &dto, nil
}

// ListOrganizerEvents retrieves the events an organizer has created, newest first.
func (s *EventService) ListOrganizerEvents(ctx context.Context, organizerID uuid.UUID, page, limit int) (*domain.PaginatedResult[EventDTO], error) {
	events, total, err := s.events.FindByOrganizer(ctx, organizerID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]EventDTO, len(events))
	for i, ev := range events {
		dtos[i] = toEventDTO(ev)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetVenue retrieves a single venue.
func (s *EventService) GetVenue(ctx context.Context, venueID uuid.UUID) (*VenueDTO, error) {
	v, err := s.venues.FindByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	dto := toVenueDTO(v)
	return &dto, nil
}

// ListVenues retrieves venues for the venue picker.
func (s *EventService) ListVenues(ctx context.Context, filter venue.Filter, page, limit int) (*domain.PaginatedResult[VenueDTO], error) {
	venues, total, err := s.venues.List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]VenueDTO, len(venues))
	for i, v := range venues {
		dtos[i] = toVenueDTO(v)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ReleaseVenueBooking frees the venue slot held by a cancelled event.
func (s *EventService) ReleaseVenueBooking(ctx context.Context, eventID uuid.UUID) error {
	released, err := s.venues.ReleaseBooking(ctx, eventID)
	if err != nil {
		return err
	}
	if !released {
		s.logger.Debug("no venue booking held by cancelled event",
			zap.String("event_id", eventID.String()),
		)
		return nil
	}
	s.logger.Info("venue booking released",
		zap.String("event_id", eventID.String()),
	)
	return nil
}
