package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventra/service-event-creation/internal/domain/availability"
	"github.com/eventra/service-event-creation/internal/domain/venue"
	"github.com/eventra/service-event-creation/internal/platform/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVenueRepository is the GORM-based implementation of VenueRepository.
type GormVenueRepository struct {
	db *gorm.DB
}

// NewGormVenueRepository creates a new GormVenueRepository.
func NewGormVenueRepository(db *gorm.DB) *GormVenueRepository {
	return &GormVenueRepository{db: db}
}

// FindByID retrieves a venue by its unique identifier.
func (r *GormVenueRepository) FindByID(ctx context.Context, id uuid.UUID) (*venue.Venue, error) {
	var model VenueModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Venue", id.String())
		}
		return nil, fmt.Errorf("failed to find venue by ID: %w", err)
	}
	return toDomainVenue(&model), nil
}

// List retrieves venues matching filter, ordered by name, with pagination.
func (r *GormVenueRepository) List(ctx context.Context, filter venue.Filter, page, limit int) ([]*venue.Venue, int64, error) {
	query := r.db.WithContext(ctx).Model(&VenueModel{})
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count venues: %w", err)
	}

	var models []VenueModel
	offset := (page - 1) * limit
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list venues: %w", err)
	}

	venues := make([]*venue.Venue, len(models))
	for i := range models {
		venues[i] = toDomainVenue(&models[i])
	}
	return venues, total, nil
}

// ResolveBookings returns every booking of the venue with its interval.
func (r *GormVenueRepository) ResolveBookings(ctx context.Context, venueID uuid.UUID) ([]availability.Booking, error) {
	return resolveBookings(r.db.WithContext(ctx), venueID)
}

// ReleaseBooking drops the venue booking held by eventID.
func (r *GormVenueRepository) ReleaseBooking(ctx context.Context, eventID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&VenueBookingModel{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to release venue booking: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Save inserts or updates a venue. Venues are owned by the venue catalogue; this is used
// for seeding.
func (r *GormVenueRepository) Save(ctx context.Context, v *venue.Venue) error {
	model := &VenueModel{
		ID:         v.ID,
		Name:       v.Name,
		State:      v.State,
		City:       v.City,
		PriceCents: v.PriceCents,
		Currency:   v.Currency,
		Capacity:   v.Capacity,
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save venue: %w", err)
	}
	return nil
}

func toDomainVenue(m *VenueModel) *venue.Venue {
	return &venue.Venue{
		ID:         m.ID,
		Name:       m.Name,
		State:      m.State,
		City:       m.City,
		PriceCents: m.PriceCents,
		Currency:   m.Currency,
		Capacity:   m.Capacity,
	}
}
