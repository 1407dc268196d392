package event

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/eventra/service-event-creation/internal/domain/availability"
	"github.com/eventra/service-event-creation/internal/domain/draft"
	"github.com/eventra/service-event-creation/internal/platform/domain"
	"github.com/google/uuid"
)

// Event is the aggregate root for a published event.
type Event struct {
	id          uuid.UUID
	organizerID uuid.UUID
	title       string
	description string
	genre       string
	contactNo   string
	state       string
	city        string
	venueID     uuid.UUID
	schedule    availability.Interval

	ticketPriceCents int64
	currency         string
	imageKey         string
	paymentTxnID     string

	createdAt time.Time
	updatedAt time.Time
}

// NewEventFromDraft converts a fully validated draft into an Event. The draft is checked
// again here so an Event can never be built from an incomplete draft.
func NewEventFromDraft(
	organizerID uuid.UUID,
	d draft.EventDraft,
	loc *time.Location,
	paymentTxnID string,
	currency string,
) (*Event, error) {
	if organizerID == uuid.Nil {
		return nil, domain.NewValidationError("organizer ID is required")
	}
	if err := draft.Validate(d, loc).Err(); err != nil {
		return nil, err
	}
	if paymentTxnID == "" {
		return nil, domain.ErrPaymentRequired
	}
	window, err := draft.Schedule(d, loc)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	now := time.Now().UTC()
	return &Event{
		id:               id,
		organizerID:      organizerID,
		title:            strings.TrimSpace(d.Title),
		description:      strings.TrimSpace(d.Description),
		genre:            d.Genre,
		contactNo:        d.ContactNo,
		state:            d.State,
		city:             d.City,
		venueID:          d.Venue.ID,
		schedule:         window,
		ticketPriceCents: *d.TicketPriceCents,
		currency:         currency,
		imageKey:         ImageKey(id, d.Image.Filename),
		paymentTxnID:     paymentTxnID,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructEvent rebuilds an Event from persistence data (no validation).
func ReconstructEvent(
	id uuid.UUID,
	organizerID uuid.UUID,
	title, description, genre, contactNo, state, city string,
	venueID uuid.UUID,
	schedule availability.Interval,
	ticketPriceCents int64,
	currency string,
	imageKey string,
	paymentTxnID string,
	createdAt time.Time,
	updatedAt time.Time,
) *Event {
	return &Event{
		id:               id,
		organizerID:      organizerID,
		title:            title,
		description:      description,
		genre:            genre,
		contactNo:        contactNo,
		state:            state,
		city:             city,
		venueID:          venueID,
		schedule:         schedule,
		ticketPriceCents: ticketPriceCents,
		currency:         currency,
		imageKey:         imageKey,
		paymentTxnID:     paymentTxnID,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// ImageKey returns the object key an event's poster is stored under.
func ImageKey(eventID uuid.UUID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	return fmt.Sprintf("events/%s/%s", eventID, name)
}

// --- Getters ---

func (e *Event) ID() uuid.UUID                   { return e.id }
func (e *Event) OrganizerID() uuid.UUID          { return e.organizerID }
func (e *Event) Title() string                   { return e.title }
func (e *Event) Description() string             { return e.description }
func (e *Event) Genre() string                   { return e.genre }
func (e *Event) ContactNo() string               { return e.contactNo }
func (e *Event) State() string                   { return e.state }
func (e *Event) City() string                    { return e.city }
func (e *Event) VenueID() uuid.UUID              { return e.venueID }
func (e *Event) Schedule() availability.Interval { return e.schedule }
func (e *Event) TicketPriceCents() int64         { return e.ticketPriceCents }
func (e *Event) Currency() string                { return e.currency }
func (e *Event) ImageKey() string                { return e.imageKey }
func (e *Event) PaymentTransactionID() string    { return e.paymentTxnID }
func (e *Event) CreatedAt() time.Time            { return e.createdAt }
func (e *Event) UpdatedAt() time.Time            { return e.updatedAt }

// Booking returns the venue reservation this event holds.
func (e *Event) Booking() availability.Booking {
	return availability.Booking{EventID: e.id, Window: e.schedule}
}
