package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventra/service-event-creation/internal/domain/availability"
	"github.com/eventra/service-event-creation/internal/domain/draft"
	eventDomain "github.com/eventra/service-event-creation/internal/domain/event"
	"github.com/eventra/service-event-creation/internal/platform/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEventRepository is the GORM-based implementation of EventRepository. Posters are
// written to the image store before the rows, and removed again if the rows cannot be written.
type GormEventRepository struct {
	db     *gorm.DB
	images eventDomain.ImageStore
	logger *zap.Logger
}

// NewGormEventRepository creates a new GormEventRepository.
func NewGormEventRepository(db *gorm.DB, images eventDomain.ImageStore, logger *zap.Logger) *GormEventRepository {
	return &GormEventRepository{db: db, images: images, logger: logger}
}

// Create stores the poster, the event row and its venue booking reference.
//
// The venue row is locked for the duration of the transaction and the overlap check is
// repeated against committed bookings, so two sessions racing for the same slot cannot
// both be persisted.
func (r *GormEventRepository) Create(ctx context.Context, ev *eventDomain.Event, image draft.Image) error {
	if err := r.images.Put(ctx, ev.ImageKey(), image); err != nil {
		return fmt.Errorf("failed to store event image: %w", err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var venue VenueModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", ev.VenueID()).
			First(&venue).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewFieldValidationError(map[string]string{
					draft.FieldVenue: "The selected venue no longer exists",
				})
			}
			return fmt.Errorf("failed to lock venue: %w", err)
		}

		existing, err := resolveBookings(tx, ev.VenueID())
		if err != nil {
			return err
		}
		if err := availability.CheckAvailability(existing, ev.Schedule()); err != nil {
			return err
		}

		if err := tx.Create(toEventModel(ev)).Error; err != nil {
			return fmt.Errorf("failed to save event: %w", err)
		}
		booking := &VenueBookingModel{
			EventID:   ev.ID(),
			VenueID:   ev.VenueID(),
			CreatedAt: ev.CreatedAt(),
		}
		if err := tx.Create(booking).Error; err != nil {
			return fmt.Errorf("failed to save venue booking: %w", err)
		}
		return nil
	})
	if err != nil {
		if delErr := r.images.Delete(ctx, ev.ImageKey()); delErr != nil {
			r.logger.Warn("failed to remove orphaned event image",
				zap.String("event_id", ev.ID().String()),
				zap.String("image_key", ev.ImageKey()),
				zap.Error(delErr),
			)
		}
		return err
	}
	return nil
}

// FindByID retrieves an event by its unique identifier.
func (r *GormEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*eventDomain.Event, error) {
	var model EventModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Event", id.String())
		}
		return nil, fmt.Errorf("failed to find event by ID: %w", err)
	}
	return toDomainEvent(&model), nil
}

// FindByOrganizer retrieves an organizer's events, newest first, with pagination.
func (r *GormEventRepository) FindByOrganizer(ctx context.Context, organizerID uuid.UUID, page, limit int) ([]*eventDomain.Event, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&EventModel{}).Where("organizer_id = ?", organizerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count organizer events: %w", err)
	}

	var models []EventModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find organizer events: %w", err)
	}

	events := make([]*eventDomain.Event, len(models))
	for i := range models {
		events[i] = toDomainEvent(&models[i])
	}
	return events, total, nil
}

// --- Conversion Helpers ---

func toEventModel(ev *eventDomain.Event) *EventModel {
	return &EventModel{
		ID:                   ev.ID(),
		OrganizerID:          ev.OrganizerID(),
		Title:                ev.Title(),
		Description:          ev.Description(),
		Genre:                ev.Genre(),
		ContactNo:            ev.ContactNo(),
		State:                ev.State(),
		City:                 ev.City(),
		VenueID:              ev.VenueID(),
		StartsAt:             ev.Schedule().Start.UTC(),
		EndsAt:               ev.Schedule().End.UTC(),
		TicketPriceCents:     ev.TicketPriceCents(),
		Currency:             ev.Currency(),
		ImageKey:             ev.ImageKey(),
		PaymentTransactionID: ev.PaymentTransactionID(),
		CreatedAt:            ev.CreatedAt(),
		UpdatedAt:            ev.UpdatedAt(),
	}
}

func toDomainEvent(m *EventModel) *eventDomain.Event {
	return eventDomain.ReconstructEvent(
		m.ID,
		m.OrganizerID,
		m.Title,
		m.Description,
		m.Genre,
		m.ContactNo,
		m.State,
		m.City,
		m.VenueID,
		availability.Interval{Start: m.StartsAt.UTC(), End: m.EndsAt.UTC()},
		m.TicketPriceCents,
		m.Currency,
		m.ImageKey,
		m.PaymentTransactionID,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

type bookingRow struct {
	EventID  uuid.UUID
	StartsAt *time.Time
	EndsAt   *time.Time
}

// resolveBookings loads a venue's booking references and the interval of each referenced
// event. A reference to a missing event fails the whole resolution.
func resolveBookings(db *gorm.DB, venueID uuid.UUID) ([]availability.Booking, error) {
	var rows []bookingRow
	if err := db.Table("venue_bookings").
		Select("venue_bookings.event_id, events.starts_at, events.ends_at").
		Joins("LEFT JOIN events ON events.id = venue_bookings.event_id").
		Where("venue_bookings.venue_id = ?", venueID).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load venue bookings: %w", err)
	}

	bookings := make([]availability.Booking, 0, len(rows))
	for _, row := range rows {
		if row.StartsAt == nil || row.EndsAt == nil {
			return nil, fmt.Errorf("booking %s of venue %s cannot be resolved", row.EventID, venueID)
		}
		bookings = append(bookings, availability.Booking{
			EventID: row.EventID,
			Window:  availability.Interval{Start: row.StartsAt.UTC(), End: row.EndsAt.UTC()},
		})
	}
	return bookings, nil
}
