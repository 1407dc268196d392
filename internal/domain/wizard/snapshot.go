package wizard

import (
	"time"

	"github.com/eventra/service-event-creation/internal/domain/draft"
	"github.com/google/uuid"
)

// Snapshot is the serialisable form of a Session used by session stores.
type Snapshot struct {
	ID                  uuid.UUID        `json:"id"`
	OrganizerID         uuid.UUID        `json:"organizer_id"`
	Stage               Stage            `json:"stage"`
	Draft               draft.EventDraft `json:"draft"`
	AvailabilityChecked bool             `json:"availability_checked"`
	PaymentConfirmed    bool             `json:"payment_confirmed"`
	PaymentTxnID        string           `json:"payment_txn_id,omitempty"`
	InFlight            Operation        `json:"in_flight,omitempty"`
	InFlightSince       *time.Time       `json:"in_flight_since,omitempty"`
	InFlightToken       uuid.UUID        `json:"in_flight_token"`
	EventID             *uuid.UUID       `json:"event_id,omitempty"`
	Version             int64            `json:"version"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// Snapshot captures the session's state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:                  s.id,
		OrganizerID:         s.organizerID,
		Stage:               s.stage,
		Draft:               s.draft,
		AvailabilityChecked: s.availabilityChecked,
		PaymentConfirmed:    s.paymentConfirmed,
		PaymentTxnID:        s.paymentTxnID,
		InFlight:            s.inFlight,
		InFlightSince:       s.inFlightSince,
		InFlightToken:       s.inFlightToken,
		EventID:             s.eventID,
		Version:             s.version,
		CreatedAt:           s.createdAt,
		UpdatedAt:           s.updatedAt,
	}
}

// ReconstructSession rebuilds a Session from a snapshot (no validation).
func ReconstructSession(snap Snapshot) *Session {
	return &Session{
		id:                  snap.ID,
		organizerID:         snap.OrganizerID,
		stage:               snap.Stage,
		draft:               snap.Draft,
		availabilityChecked: snap.AvailabilityChecked,
		paymentConfirmed:    snap.PaymentConfirmed,
		paymentTxnID:        snap.PaymentTxnID,
		inFlight:            snap.InFlight,
		inFlightSince:       snap.InFlightSince,
		inFlightToken:       snap.InFlightToken,
		eventID:             snap.EventID,
		version:             snap.Version,
		createdAt:           snap.CreatedAt,
		updatedAt:           snap.UpdatedAt,
	}
}
