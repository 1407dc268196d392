package application

import (
	"time"

	"github.com/eventra/service-event-creation/internal/domain/draft"
	eventDomain "github.com/eventra/service-event-creation/internal/domain/event"
	"github.com/eventra/service-event-creation/internal/domain/venue"
	"github.com/eventra/service-event-creation/internal/domain/wizard"
	"github.com/google/uuid"
)

// UpdateDraftRequest is a partial draft update. VenueID selects a venue, which is resolved
// before it is attached to the draft.
type UpdateDraftRequest struct {
	draft.Patch
	VenueID *uuid.UUID `json:"venue_id"`
}

// ImageDTO describes an attached poster without its bytes.
type ImageDTO struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// DraftDTO is the response representation of an event draft.
type DraftDTO struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Genre            string          `json:"genre"`
	ContactNo        string          `json:"contact_no"`
	State            string          `json:"state"`
	City             string          `json:"city"`
	Venue            *draft.VenueRef `json:"venue,omitempty"`
	StartDate        string          `json:"start_date"`
	StartTime        string          `json:"start_time"`
	EndDate          string          `json:"end_date"`
	EndTime          string          `json:"end_time"`
	TicketPriceCents *int64          `json:"ticket_price_cents,omitempty"`
	Image            *ImageDTO       `json:"image,omitempty"`
	AgreedToTerms    bool            `json:"agreed_to_terms"`
}

// ActionsDTO tells the presentation layer which wizard affordances are enabled.
type ActionsDTO struct {
	CanAdvance           bool `json:"can_advance"`
	CanGoBack            bool `json:"can_go_back"`
	CanCheckAvailability bool `json:"can_check_availability"`
	CanPay               bool `json:"can_pay"`
	CanSubmit            bool `json:"can_submit"`
}

// SessionDTO is the response representation of a wizard session.
type SessionDTO struct {
	ID                   uuid.UUID         `json:"id"`
	OrganizerID          uuid.UUID         `json:"organizer_id"`
	Stage                string            `json:"stage"`
	StageNumber          int               `json:"stage_number"`
	Progress             int               `json:"progress"`
	Draft                DraftDTO          `json:"draft"`
	FieldErrors          map[string]string `json:"field_errors"`
	AvailabilityChecked  bool              `json:"availability_checked"`
	PaymentConfirmed     bool              `json:"payment_confirmed"`
	PaymentTransactionID string            `json:"payment_transaction_id,omitempty"`
	InFlight             string            `json:"in_flight,omitempty"`
	EventID              *uuid.UUID        `json:"event_id,omitempty"`
	Actions              ActionsDTO        `json:"actions"`
	Version              int64             `json:"version"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// AvailabilityDTO is the result of a successful availability check.
type AvailabilityDTO struct {
	Available bool       `json:"available"`
	Message   string     `json:"message"`
	Session   SessionDTO `json:"session"`
}

// SubmitResultDTO is the result of a successful submission.
type SubmitResultDTO struct {
	EventID uuid.UUID  `json:"event_id"`
	Session SessionDTO `json:"session"`
}

// EventDTO is the response representation of a persisted event.
type EventDTO struct {
	ID               uuid.UUID `json:"id"`
	OrganizerID      uuid.UUID `json:"organizer_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Genre            string    `json:"genre"`
	ContactNo        string    `json:"contact_no"`
	State            string    `json:"state"`
	City             string    `json:"city"`
	VenueID          uuid.UUID `json:"venue_id"`
	StartsAt         time.Time `json:"starts_at"`
	EndsAt           time.Time `json:"ends_at"`
	TicketPriceCents int64     `json:"ticket_price_cents"`
	Currency         string    `json:"currency"`
	ImageKey         string    `json:"image_key"`
	CreatedAt        time.Time `json:"created_at"`
}

// VenueDTO is the response representation of a venue in the venue picker.
type VenueDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	State      string    `json:"state"`
	City       string    `json:"city"`
	Location   string    `json:"location"`
	PriceCents int64     `json:"price_cents"`
	Currency   string    `json:"currency"`
	Free       bool      `json:"free"`
	Capacity   int       `json:"capacity"`
}

func toSessionDTO(sess *wizard.Session, loc *time.Location, now time.Time) SessionDTO {
	d := sess.Draft()
	dto := SessionDTO{
		ID:                   sess.ID(),
		OrganizerID:          sess.OrganizerID(),
		Stage:                sess.Stage().String(),
		StageNumber:          sess.Stage().Number(),
		Progress:             draft.Progress(d),
		Draft:                toDraftDTO(d),
		FieldErrors:          sess.FieldErrors(loc),
		AvailabilityChecked:  sess.AvailabilityChecked(),
		PaymentConfirmed:     sess.PaymentConfirmed(),
		PaymentTransactionID: sess.PaymentTransactionID(),
		EventID:              sess.EventID(),
		Version:              sess.Version(),
		CreatedAt:            sess.CreatedAt(),
		UpdatedAt:            sess.UpdatedAt(),
	}
	if dto.FieldErrors == nil {
		dto.FieldErrors = map[string]string{}
	}

	busy := sess.Busy(now)
	if busy {
		dto.InFlight = string(sess.InFlight())
	}
	if busy || sess.Stage().IsTerminal() {
		return dto
	}

	dto.Actions.CanGoBack = sess.Stage() != wizard.StageBasicInfo
	dto.Actions.CanAdvance = sess.Stage() != wizard.StagePaymentSubmit && len(dto.FieldErrors) == 0
	if sess.Stage() == wizard.StagePaymentSubmit {
		_, err := sess.CanCheckAvailability(loc)
		dto.Actions.CanCheckAvailability = err == nil && !sess.PaymentConfirmed()
		dto.Actions.CanPay = sess.CanPay() == nil
		dto.Actions.CanSubmit = sess.CanSubmit() == nil
	}
	return dto
}

func toDraftDTO(d draft.EventDraft) DraftDTO {
	dto := DraftDTO{
		Title:            d.Title,
		Description:      d.Description,
		Genre:            d.Genre,
		ContactNo:        d.ContactNo,
		State:            d.State,
		City:             d.City,
		Venue:            d.Venue,
		StartDate:        d.StartDate,
		StartTime:        d.StartTime,
		EndDate:          d.EndDate,
		EndTime:          d.EndTime,
		TicketPriceCents: d.TicketPriceCents,
		AgreedToTerms:    d.AgreedToTerms,
	}
	if d.Image != nil {
		dto.Image = &ImageDTO{
			Filename:    d.Image.Filename,
			ContentType: d.Image.ContentType,
			Size:        d.Image.Size(),
		}
	}
	return dto
}

func toEventDTO(ev *eventDomain.Event) EventDTO {
	return EventDTO{
		ID:               ev.ID(),
		OrganizerID:      ev.OrganizerID(),
		Title:            ev.Title(),
		Description:      ev.Description(),
		Genre:            ev.Genre(),
		ContactNo:        ev.ContactNo(),
		State:            ev.State(),
		City:             ev.City(),
		VenueID:          ev.VenueID(),
		StartsAt:         ev.Schedule().Start,
		EndsAt:           ev.Schedule().End,
		TicketPriceCents: ev.TicketPriceCents(),
		Currency:         ev.Currency(),
		ImageKey:         ev.ImageKey(),
		CreatedAt:        ev.CreatedAt(),
	}
}

func toVenueDTO(v *venue.Venue) VenueDTO {
	location := v.City
	if v.State != "" {
		if location != "" {
			location += ", "
		}
		location += v.State
	}
	return VenueDTO{
		ID:         v.ID,
		Name:       v.Name,
		State:      v.State,
		City:       v.City,
		Location:   location,
		PriceCents: v.PriceCents,
		Currency:   v.Currency,
		Free:       v.PriceCents <= 0,
		Capacity:   v.Capacity,
	}
}
