package availability

import (
	"fmt"
	"time"

	"github.com/eventra/service-event-creation/internal/platform/domain"
	"github.com/google/uuid"
)

// ConflictMessage is shown to organizers when their schedule collides with an existing booking.
const ConflictMessage = "Another event already exists at this time. Check Prior Booking"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval returns an interval, rejecting empty or inverted ranges.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, domain.NewValidationError("event end must be after its start")
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether the two intervals share any instant. Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}

// Booking is a confirmed reservation of a venue by an event.
type Booking struct {
	EventID uuid.UUID `json:"event_id"`
	Window  Interval  `json:"window"`
}

// ConflictError reports the first existing booking that overlaps a proposal.
type ConflictError struct {
	Booking Booking
}

func (e *ConflictError) Error() string { return ConflictMessage }

func (e *ConflictError) Is(target error) bool { return target == domain.ErrConflict }

// CheckAvailability returns nil when proposed overlaps none of existing, or a *ConflictError
// naming the first booking that does.
func CheckAvailability(existing []Booking, proposed Interval) error {
	for _, b := range existing {
		if b.Window.Overlaps(proposed) {
			return &ConflictError{Booking: b}
		}
	}
	return nil
}
