package wizard

import (
	"time"

	"github.com/eventra/service-event-creation/internal/domain/availability"
	"github.com/eventra/service-event-creation/internal/domain/draft"
	"github.com/eventra/service-event-creation/internal/platform/domain"
	"github.com/google/uuid"
)

// Operation names a collaborator call that is running on behalf of a session.
type Operation string

const (
	OperationNone         Operation = ""
	OperationAvailability Operation = "availability_check"
	OperationPayment      Operation = "payment"
	OperationSubmission   Operation = "submission"
)

// OperationLease bounds how long an in-flight marker blocks a session. A marker older than
// this is treated as left behind by a crashed request.
const OperationLease = 2 * time.Minute

// Session is the aggregate root for one organizer's event-creation wizard.
type Session struct {
	id          uuid.UUID
	organizerID uuid.UUID
	stage       Stage
	draft       draft.EventDraft

	availabilityChecked bool
	paymentConfirmed    bool
	paymentTxnID        string

	inFlight      Operation
	inFlightSince *time.Time
	inFlightToken uuid.UUID
	eventID       *uuid.UUID

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewSession opens a wizard at the basic-info stage with an empty draft.
func NewSession(organizerID uuid.UUID) (*Session, error) {
	if organizerID == uuid.Nil {
		return nil, domain.NewValidationError("organizer ID is required")
	}
	now := time.Now().UTC()
	return &Session{
		id:          uuid.New(),
		organizerID: organizerID,
		stage:       StageBasicInfo,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// --- Getters ---

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// OrganizerID returns the user who owns the session.
func (s *Session) OrganizerID() uuid.UUID { return s.organizerID }

// Stage returns the current wizard stage.
func (s *Session) Stage() Stage { return s.stage }

// Draft returns a copy of the event draft.
func (s *Session) Draft() draft.EventDraft { return s.draft }

// AvailabilityChecked reports whether the current venue and schedule passed the overlap check.
func (s *Session) AvailabilityChecked() bool { return s.availabilityChecked }

// PaymentConfirmed reports whether the venue fee has been collected.
func (s *Session) PaymentConfirmed() bool { return s.paymentConfirmed }

// PaymentTransactionID returns the gateway reference of the confirmed payment.
func (s *Session) PaymentTransactionID() string { return s.paymentTxnID }

// InFlight returns the collaborator call currently running, if any.
func (s *Session) InFlight() Operation { return s.inFlight }

// InFlightToken identifies the lease taken by the running operation.
func (s *Session) InFlightToken() uuid.UUID { return s.inFlightToken }

// Holds reports whether op is still running under the lease identified by token.
func (s *Session) Holds(op Operation, token uuid.UUID) bool {
	return op != OperationNone && s.inFlight == op && s.inFlightToken == token
}

// EventID returns the persisted event's ID once submitted.
func (s *Session) EventID() *uuid.UUID { return s.eventID }

// Version returns the entity version for optimistic locking.
func (s *Session) Version() int64 { return s.version }

// CreatedAt returns the creation timestamp.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

// Busy reports whether an unexpired operation holds the session at now.
func (s *Session) Busy(now time.Time) bool {
	if s.inFlight == OperationNone || s.inFlightSince == nil {
		return false
	}
	return now.Sub(*s.inFlightSince) < OperationLease
}

// --- Editing ---

func (s *Session) guardEditable() error {
	if s.stage.IsTerminal() {
		return domain.NewInvalidOperationError(s.stage.String(), "the wizard is closed")
	}
	if s.Busy(time.Now().UTC()) {
		return domain.NewInvalidOperationError(s.stage.String(), "another operation is in progress: "+string(s.inFlight))
	}
	return nil
}

func (s *Session) guardSlotUnlocked() error {
	if s.paymentConfirmed {
		return domain.NewInvalidOperationError(s.stage.String(), "venue and schedule cannot change after payment")
	}
	return nil
}

// ApplyPatch updates the draft. Changing the state clears the city; changing any schedule
// field invalidates a previous availability check.
func (s *Session) ApplyPatch(p draft.Patch) error {
	if err := s.guardEditable(); err != nil {
		return err
	}
	if p.ChangesSchedule(s.draft) {
		if err := s.guardSlotUnlocked(); err != nil {
			return err
		}
	}

	d := &s.draft
	setString(&d.Title, p.Title)
	setString(&d.Description, p.Description)
	setString(&d.Genre, p.Genre)
	setString(&d.ContactNo, p.ContactNo)
	if p.State != nil && *p.State != d.State {
		d.State = *p.State
		d.City = ""
	}
	setString(&d.City, p.City)

	scheduleChanged := setString(&d.StartDate, p.StartDate)
	scheduleChanged = setString(&d.StartTime, p.StartTime) || scheduleChanged
	scheduleChanged = setString(&d.EndDate, p.EndDate) || scheduleChanged
	scheduleChanged = setString(&d.EndTime, p.EndTime) || scheduleChanged
	if scheduleChanged {
		s.availabilityChecked = false
	}

	if p.TicketPriceCents != nil {
		price := *p.TicketPriceCents
		d.TicketPriceCents = &price
	}
	if p.AgreedToTerms != nil {
		d.AgreedToTerms = *p.AgreedToTerms
	}

	s.touch()
	return nil
}

// SelectVenue sets the venue. Picking a different venue invalidates a previous availability check.
func (s *Session) SelectVenue(ref draft.VenueRef) error {
	if err := s.guardEditable(); err != nil {
		return err
	}
	if s.draft.Venue != nil && s.draft.Venue.ID == ref.ID {
		s.draft.Venue = &ref
		s.touch()
		return nil
	}
	if err := s.guardSlotUnlocked(); err != nil {
		return err
	}
	s.draft.Venue = &ref
	s.availabilityChecked = false
	s.touch()
	return nil
}

// SetImage attaches the event poster, replacing any previous one.
func (s *Session) SetImage(img draft.Image) error {
	if err := s.guardEditable(); err != nil {
		return err
	}
	s.draft.Image = &img
	s.touch()
	return nil
}

// FieldErrors returns the validation errors relevant to the current stage.
func (s *Session) FieldErrors(loc *time.Location) draft.FieldErrors {
	switch s.stage {
	case StageBasicInfo:
		return draft.ValidateBasicInfo(s.draft)
	case StageVenueSchedule:
		return draft.ValidateVenueSchedule(s.draft)
	case StagePaymentSubmit:
		return draft.Validate(s.draft, loc)
	}
	return draft.FieldErrors{}
}

// --- Navigation ---

// Advance moves to the next stage if the current stage's fields are valid.
func (s *Session) Advance() error {
	if err := s.guardEditable(); err != nil {
		return err
	}
	to, ok := next[s.stage]
	if !ok {
		return domain.NewInvalidOperationError(s.stage.String(), "there is no next stage")
	}

	var errs draft.FieldErrors
	switch s.stage {
	case StageBasicInfo:
		errs = draft.ValidateBasicInfo(s.draft)
	case StageVenueSchedule:
		errs = draft.ValidateVenueSchedule(s.draft)
	}
	if err := errs.Err(); err != nil {
		return err
	}
	return s.transition(to)
}

// Back returns to the previous working stage. Gate flags are kept.
func (s *Session) Back() error {
	if err := s.guardEditable(); err != nil {
		return err
	}
	to, ok := previous[s.stage]
	if !ok {
		return domain.NewInvalidOperationError(s.stage.String(), "there is no previous stage")
	}
	return s.transition(to)
}

func (s *Session) transition(to Stage) error {
	if !s.stage.CanTransitionTo(to) {
		return domain.NewInvalidStateError(s.stage.String(), to.String())
	}
	s.stage = to
	s.touch()
	return nil
}

// --- Gates ---

// BeginOperation marks op as running under a fresh lease. It fails if the session is closed
// or already busy.
func (s *Session) BeginOperation(op Operation) error {
	if err := s.guardEditable(); err != nil {
		return err
	}
	now := time.Now().UTC()
	s.inFlight = op
	s.inFlightSince = &now
	s.inFlightToken = uuid.New()
	s.touch()
	return nil
}

// EndOperation clears the in-flight marker.
func (s *Session) EndOperation() {
	s.clearOperation()
	s.touch()
}

// CanCheckAvailability returns the proposed booking slot once every stage-three field is filled.
func (s *Session) CanCheckAvailability(loc *time.Location) (availability.Interval, error) {
	if s.stage != StagePaymentSubmit {
		return availability.Interval{}, domain.NewInvalidOperationError(s.stage.String(), "availability is checked at the payment stage")
	}
	if err := draft.ValidateCompletion(s.draft).Err(); err != nil {
		return availability.Interval{}, err
	}
	if s.draft.Venue == nil {
		return availability.Interval{}, domain.NewFieldValidationError(map[string]string{draft.FieldVenue: "Please select a venue"})
	}
	return draft.Schedule(s.draft, loc)
}

// MarkAvailable records a passed overlap check.
func (s *Session) MarkAvailable() {
	s.availabilityChecked = true
	s.touch()
}

// MarkUnavailable records a failed overlap check.
func (s *Session) MarkUnavailable() {
	s.availabilityChecked = false
	s.touch()
}

// CanPay returns nil if the venue fee may be collected now.
func (s *Session) CanPay() error {
	if s.stage != StagePaymentSubmit {
		return domain.NewInvalidOperationError(s.stage.String(), "payment is collected at the payment stage")
	}
	if s.paymentConfirmed {
		return domain.NewInvalidOperationError(s.stage.String(), "payment is already confirmed")
	}
	if !s.availabilityChecked {
		return domain.NewInvalidOperationError(s.stage.String(), "check venue availability before paying")
	}
	if s.draft.Venue == nil {
		return domain.NewFieldValidationError(map[string]string{draft.FieldVenue: "Please select a venue"})
	}
	return nil
}

// ConfirmPayment records a successful charge.
func (s *Session) ConfirmPayment(transactionID string) error {
	if err := s.CanPay(); err != nil {
		return err
	}
	s.paymentConfirmed = true
	s.paymentTxnID = transactionID
	s.touch()
	return nil
}

// CanSubmit returns nil if the submission pipeline may run. An unpaid session fails with
// ErrPaymentRequired regardless of draft validity.
func (s *Session) CanSubmit() error {
	if s.stage != StagePaymentSubmit {
		return domain.NewInvalidOperationError(s.stage.String(), "the event can only be submitted from the payment stage")
	}
	if !s.paymentConfirmed {
		return domain.ErrPaymentRequired
	}
	return nil
}

// MarkSubmitted closes the session with the persisted event's ID.
func (s *Session) MarkSubmitted(eventID uuid.UUID) error {
	if err := s.CanSubmit(); err != nil {
		return err
	}
	if err := s.transition(StageSubmitted); err != nil {
		return err
	}
	s.eventID = &eventID
	s.clearOperation()
	return nil
}

// Abandon closes the session without persisting anything. It is allowed while an
// operation is in flight; that operation's result is then discarded.
func (s *Session) Abandon() error {
	if err := s.transition(StageAbandoned); err != nil {
		return err
	}
	s.clearOperation()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (s *Session) IncrementVersion() {
	s.version++
}

func (s *Session) clearOperation() {
	s.inFlight = OperationNone
	s.inFlightSince = nil
	s.inFlightToken = uuid.Nil
}

func (s *Session) touch() {
	s.updatedAt = time.Now().UTC()
}

func setString(dst *string, src *string) bool {
	if src == nil || *src == *dst {
		return false
	}
	*dst = *src
	return true
}
