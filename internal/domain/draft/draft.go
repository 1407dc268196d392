package draft

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// Field names, as used in per-field error maps and JSON payloads.
const (
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldGenre         = "genre"
	FieldContactNo     = "contact_no"
	FieldState         = "state"
	FieldCity          = "city"
	FieldVenue         = "venue"
	FieldStartDate     = "start_date"
	FieldStartTime     = "start_time"
	FieldEndDate       = "end_date"
	FieldEndTime       = "end_time"
	FieldSchedule      = "schedule"
	FieldTicketPrice   = "ticket_price_cents"
	FieldImage         = "image"
	FieldAgreedToTerms = "agreed_to_terms"
)

// Image is an uploaded event poster. Data is opaque to the workflow.
type Image struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Size returns the image size in bytes.
func (i *Image) Size() int { return len(i.Data) }

// VenueRef is the read-only view of the venue an organizer picked.
type VenueRef struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	State      string    `json:"state"`
	City       string    `json:"city"`
	PriceCents int64     `json:"price_cents"`
	Currency   string    `json:"currency"`
}

// EventDraft is the event under construction. Dates are YYYY-MM-DD and times HH:MM, both
// interpreted in the wizard's configured time zone.
type EventDraft struct {
	Title            string    `json:"title" validate:"notblank"`
	Description      string    `json:"description" validate:"trimmed_min=10"`
	Genre            string    `json:"genre" validate:"required,genre"`
	ContactNo        string    `json:"contact_no" validate:"required,len=10,number"`
	State            string    `json:"state" validate:"required,state"`
	City             string    `json:"city" validate:"required"`
	Venue            *VenueRef `json:"venue,omitempty" validate:"required"`
	StartDate        string    `json:"start_date" validate:"required,datetime=2006-01-02"`
	StartTime        string    `json:"start_time" validate:"required,datetime=15:04"`
	EndDate          string    `json:"end_date" validate:"required,datetime=2006-01-02"`
	EndTime          string    `json:"end_time" validate:"required,datetime=15:04"`
	TicketPriceCents *int64    `json:"ticket_price_cents,omitempty" validate:"required,min=0"`
	Image            *Image    `json:"image,omitempty" validate:"required"`
	AgreedToTerms    bool      `json:"agreed_to_terms" validate:"required"`
}

// Patch is a partial update. Nil fields are left unchanged. The venue is selected
// separately because it has to be resolved first.
type Patch struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Genre            *string `json:"genre"`
	ContactNo        *string `json:"contact_no"`
	State            *string `json:"state"`
	City             *string `json:"city"`
	StartDate        *string `json:"start_date"`
	StartTime        *string `json:"start_time"`
	EndDate          *string `json:"end_date"`
	EndTime          *string `json:"end_time"`
	TicketPriceCents *int64  `json:"ticket_price_cents"`
	AgreedToTerms    *bool   `json:"agreed_to_terms"`
}

// ChangesSchedule reports whether applying p to d would move the booked time slot.
// Re-sending the current values is not a change.
func (p Patch) ChangesSchedule(d EventDraft) bool {
	return differs(d.StartDate, p.StartDate) ||
		differs(d.StartTime, p.StartTime) ||
		differs(d.EndDate, p.EndDate) ||
		differs(d.EndTime, p.EndTime)
}

func differs(cur string, v *string) bool {
	return v != nil && *v != cur
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Progress returns the percentage of the six basic-info fields that have been filled.
func Progress(d EventDraft) int {
	filled := 0
	for _, v := range []string{d.Title, d.Description, d.Genre, d.ContactNo, d.State, d.City} {
		if strings.TrimSpace(v) != "" {
			filled++
		}
	}
	return int(math.Round(float64(filled) / 6 * 100))
}
