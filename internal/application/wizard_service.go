package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/eventra/service-event-creation/internal/domain/availability"
	"github.com/eventra/service-event-creation/internal/domain/draft"
	"github.com/eventra/service-event-creation/internal/domain/venue"
	"github.com/eventra/service-event-creation/internal/domain/wizard"
	"github.com/eventra/service-event-creation/internal/payment"
	"github.com/eventra/service-event-creation/internal/platform/domain"
	"github.com/eventra/service-event-creation/internal/platform/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AvailableMessage is shown to organizers when their slot is free.
const AvailableMessage = "Great news! The venue is available for your selected time."

// finishAttempts bounds how often recording an operation's result is retried after losing
// a compare-and-set race (only Abandon can cause one while an operation holds the session).
const finishAttempts = 3

// chargeTimeout bounds a gateway call so it returns before the payment lease can expire
// and let a second charge begin.
const chargeTimeout = wizard.OperationLease - 30*time.Second

// WizardOptions holds the workflow settings of a WizardService.
type WizardOptions struct {
	Location      *time.Location
	Currency      string
	MaxImageBytes int64
}

// WizardService is the application service hosting event-creation wizard sessions.
type WizardService struct {
	sessions  wizard.SessionStore
	venues    venue.VenueRepository
	checker   *AvailabilityChecker
	pipeline  *SubmissionPipeline
	gateway   payment.Gateway
	navigator Navigator
	opts      WizardOptions
	tracer    trace.Tracer
	logger    *zap.Logger
	now       func() time.Time
}

// NewWizardService creates a new WizardService.
func NewWizardService(
	sessions wizard.SessionStore,
	venues venue.VenueRepository,
	checker *AvailabilityChecker,
	pipeline *SubmissionPipeline,
	gateway payment.Gateway,
	navigator Navigator,
	opts WizardOptions,
	logger *zap.Logger,
) *WizardService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Currency == "" {
		opts.Currency = domain.CurrencyINR
	}
	if navigator == nil {
		navigator = NopNavigator{}
	}
	return &WizardService{
		sessions:  sessions,
		venues:    venues,
		checker:   checker,
		pipeline:  pipeline,
		gateway:   gateway,
		navigator: navigator,
		opts:      opts,
		tracer:    telemetry.Tracer("wizard"),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// OpenSession starts a wizard with an empty draft at the basic-info stage.
func (s *WizardService) OpenSession(ctx context.Context, organizerID uuid.UUID) (*SessionDTO, error) {
	sess, err := wizard.NewSession(organizerID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create wizard session: %w", err)
	}

	s.logger.Info("wizard session opened",
		zap.String("session_id", sess.ID().String()),
		zap.String("organizer_id", organizerID.String()),
	)
	s.notifyStageChanged(ctx, sess, "")
	return s.dto(sess), nil
}

// GetSession returns a session owned by organizerID.
func (s *WizardService) GetSession(ctx context.Context, sessionID, organizerID uuid.UUID) (*SessionDTO, error) {
	sess, err := s.load(ctx, sessionID, organizerID)
	if err != nil {
		return nil, err
	}
	return s.dto(sess), nil
}

// UpdateDraft applies a partial update and returns the session with recomputed field errors.
func (s *WizardService) UpdateDraft(ctx context.Context, sessionID, organizerID uuid.UUID, req UpdateDraftRequest) (*SessionDTO, error) {
	var ref *draft.VenueRef
	if req.VenueID != nil {
		v, err := s.venues.FindByID(ctx, *req.VenueID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewFieldValidationError(map[string]string{draft.FieldVenue: "Please select a valid venue"})
			}
			return nil, domain.NewFetchError("venue", err)
		}
		r := v.Ref()
		ref = &r
	}

	sess, err := s.mutate(ctx, sessionID, organizerID, func(sess *wizard.Session) error {
		if !req.Patch.Empty() {
			if err := sess.ApplyPatch(req.Patch); err != nil {
				return err
			}
		}
		if ref != nil {
			return sess.SelectVenue(*ref)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.dto(sess), nil
}

// SetImage attaches the event poster. Only image content up to the configured size is accepted.
func (s *WizardService) SetImage(ctx context.Context, sessionID, organizerID uuid.UUID, img draft.Image) (*SessionDTO, error) {
	if err := s.checkImage(&img); err != nil {
		return nil, err
	}
	sess, err := s.mutate(ctx, sessionID, organizerID, func(sess *wizard.Session) error {
		return sess.SetImage(img)
	})
	if err != nil {
		return nil, err
	}
	return s.dto(sess), nil
}

// Advance moves the session to its next stage.
func (s *WizardService) Advance(ctx context.Context, sessionID, organizerID uuid.UUID) (*SessionDTO, error) {
	return s.move(ctx, sessionID, organizerID, (*wizard.Session).Advance)
}

// Back moves the session to its previous stage.
func (s *WizardService) Back(ctx context.Context, sessionID, organizerID uuid.UUID) (*SessionDTO, error) {
	return s.move(ctx, sessionID, organizerID, (*wizard.Session).Back)
}

// Abandon closes the session. Nothing is persisted, and the result of any operation still
// in flight is discarded when it arrives.
func (s *WizardService) Abandon(ctx context.Context, sessionID, organizerID uuid.UUID) (*SessionDTO, error) {
	return s.move(ctx, sessionID, organizerID, (*wizard.Session).Abandon)
}

// CheckAvailability runs the overlap check for the session's venue and schedule.
func (s *WizardService) CheckAvailability(ctx context.Context, sessionID, organizerID uuid.UUID) (result *AvailabilityDTO, err error) {
	ctx, span := s.tracer.Start(ctx, "wizard.CheckAvailability",
		trace.WithAttributes(attribute.String("session.id", sessionID.String())))
	defer func() { telemetry.EndSpan(span, err) }()

	var window availability.Interval
	sess, err := s.begin(ctx, sessionID, organizerID, wizard.OperationAvailability, func(sess *wizard.Session) error {
		w, err := sess.CanCheckAvailability(s.opts.Location)
		window = w
		return err
	})
	if err != nil {
		return nil, err
	}

	lease := sess.InFlightToken()
	venueID := sess.Draft().Venue.ID
	span.SetAttributes(attribute.String("venue.id", venueID.String()))
	checkErr := s.checker.Check(ctx, venueID, window)

	// Any failure, including an unresolved booking set, withdraws an earlier approval.
	sess, err = s.finish(ctx, sessionID, wizard.OperationAvailability, lease, func(sess *wizard.Session) error {
		sess.EndOperation()
		if checkErr == nil {
			sess.MarkAvailable()
		} else {
			sess.MarkUnavailable()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if checkErr != nil {
		return nil, checkErr
	}

	s.logger.Info("venue availability confirmed",
		zap.String("session_id", sessionID.String()),
		zap.String("venue_id", venueID.String()),
		zap.String("window", window.String()),
	)
	return &AvailabilityDTO{Available: true, Message: AvailableMessage, Session: *s.dto(sess)}, nil
}

// Pay collects the venue fee. Each attempt is a single charge; failures are not retried.
func (s *WizardService) Pay(ctx context.Context, sessionID, organizerID uuid.UUID) (result *SessionDTO, err error) {
	ctx, span := s.tracer.Start(ctx, "wizard.Pay",
		trace.WithAttributes(attribute.String("session.id", sessionID.String())))
	defer func() { telemetry.EndSpan(span, err) }()

	sess, err := s.begin(ctx, sessionID, organizerID, wizard.OperationPayment, (*wizard.Session).CanPay)
	if err != nil {
		return nil, err
	}

	lease := sess.InFlightToken()
	ref := sess.Draft().Venue
	resp, payErr := s.charge(ctx, sess, ref)

	sess, err = s.finish(ctx, sessionID, wizard.OperationPayment, lease, func(sess *wizard.Session) error {
		sess.EndOperation()
		if payErr != nil {
			return nil
		}
		return sess.ConfirmPayment(resp.TransactionID)
	})
	if err != nil {
		if payErr == nil {
			s.logger.Error("payment collected but not recorded on the session, refund required",
				zap.String("session_id", sessionID.String()),
				zap.String("transaction_id", resp.TransactionID),
				zap.Int64("amount_cents", ref.PriceCents),
				zap.Error(err),
			)
		}
		return nil, err
	}
	if payErr != nil {
		return nil, payErr
	}

	s.logger.Info("venue fee collected",
		zap.String("session_id", sessionID.String()),
		zap.String("venue_id", ref.ID.String()),
		zap.String("transaction_id", resp.TransactionID),
		zap.Int64("amount_cents", ref.PriceCents),
	)
	return s.dto(sess), nil
}

// Submit persists the event through the submission pipeline and closes the session.
func (s *WizardService) Submit(ctx context.Context, sessionID, organizerID uuid.UUID) (result *SubmitResultDTO, err error) {
	ctx, span := s.tracer.Start(ctx, "wizard.Submit",
		trace.WithAttributes(attribute.String("session.id", sessionID.String())))
	defer func() { telemetry.EndSpan(span, err) }()

	sess, err := s.begin(ctx, sessionID, organizerID, wizard.OperationSubmission, (*wizard.Session).CanSubmit)
	if err != nil {
		return nil, err
	}

	lease := sess.InFlightToken()
	ev, submitErr := s.pipeline.Submit(ctx, sess)

	sess, err = s.finish(ctx, sessionID, wizard.OperationSubmission, lease, func(sess *wizard.Session) error {
		if submitErr != nil {
			sess.EndOperation()
			return nil
		}
		return sess.MarkSubmitted(ev.ID())
	})
	if err != nil {
		if submitErr == nil {
			s.logger.Warn("event persisted but not recorded on the session",
				zap.String("session_id", sessionID.String()),
				zap.String("event_id", ev.ID().String()),
				zap.Error(err),
			)
		}
		return nil, err
	}
	if submitErr != nil {
		return nil, submitErr
	}

	span.SetAttributes(attribute.String("event.id", ev.ID().String()))
	s.notifyStageChanged(ctx, sess, wizard.StagePaymentSubmit)
	s.notifyEventCreated(ctx, sess, ev.ID(), ev.Schedule())
	return &SubmitResultDTO{EventID: ev.ID(), Session: *s.dto(sess)}, nil
}

// --- Helpers ---

func (s *WizardService) dto(sess *wizard.Session) *SessionDTO {
	dto := toSessionDTO(sess, s.opts.Location, s.now())
	return &dto
}

func (s *WizardService) load(ctx context.Context, sessionID, organizerID uuid.UUID) (*wizard.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.OrganizerID() != organizerID {
		return nil, domain.NewForbiddenError("this wizard session belongs to another organizer")
	}
	return sess, nil
}

func (s *WizardService) save(ctx context.Context, sess *wizard.Session) error {
	sess.IncrementVersion()
	return s.sessions.Update(ctx, sess)
}

// mutate loads the session, applies fn and stores the result with compare-and-set.
func (s *WizardService) mutate(ctx context.Context, sessionID, organizerID uuid.UUID, fn func(*wizard.Session) error) (*wizard.Session, error) {
	sess, err := s.load(ctx, sessionID, organizerID)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *WizardService) move(ctx context.Context, sessionID, organizerID uuid.UUID, fn func(*wizard.Session) error) (*SessionDTO, error) {
	var from wizard.Stage
	sess, err := s.mutate(ctx, sessionID, organizerID, func(sess *wizard.Session) error {
		from = sess.Stage()
		return fn(sess)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wizard stage changed",
		zap.String("session_id", sessionID.String()),
		zap.String("from", from.String()),
		zap.String("to", sess.Stage().String()),
	)
	s.notifyStageChanged(ctx, sess, from)
	return s.dto(sess), nil
}

// begin checks the gate for op and marks the session busy before any collaborator is called.
// Losing the compare-and-set means another request got there first.
func (s *WizardService) begin(ctx context.Context, sessionID, organizerID uuid.UUID, op wizard.Operation, gate func(*wizard.Session) error) (*wizard.Session, error) {
	sess, err := s.mutate(ctx, sessionID, organizerID, func(sess *wizard.Session) error {
		if err := gate(sess); err != nil {
			return err
		}
		return sess.BeginOperation(op)
	})
	if errors.Is(err, domain.ErrConflict) {
		return nil, domain.NewInvalidOperationError(string(op), "another request is updating this session")
	}
	return sess, err
}

// finish reloads the session after a collaborator call and records the outcome with apply,
// provided the lease taken by begin is still the one held. It runs detached from ctx so a
// disconnected client does not leave the session busy.
func (s *WizardService) finish(ctx context.Context, sessionID uuid.UUID, op wizard.Operation, lease uuid.UUID, apply func(*wizard.Session) error) (*wizard.Session, error) {
	ctx = context.WithoutCancel(ctx)

	for attempt := 0; attempt < finishAttempts; attempt++ {
		sess, err := s.sessions.Get(ctx, sessionID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, s.discarded(sessionID, op)
			}
			return nil, err
		}
		if sess.Stage() == wizard.StageAbandoned {
			return nil, s.discarded(sessionID, op)
		}
		if !sess.Holds(op, lease) {
			return nil, domain.NewInvalidOperationError(sess.Stage().String(), "the operation took too long and was released, please retry")
		}

		if err := apply(sess); err != nil {
			return nil, err
		}
		err = s.save(ctx, sess)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return sess, nil
	}
	return nil, domain.NewConflictError("wizard session is being modified concurrently, please retry")
}

func (s *WizardService) discarded(sessionID uuid.UUID, op wizard.Operation) error {
	s.logger.Info("discarding result for abandoned wizard session",
		zap.String("session_id", sessionID.String()),
		zap.String("operation", string(op)),
	)
	return domain.ErrSessionAbandoned
}

// charge collects the venue fee. Transport failures are logged and reported as a
// retryable PaymentError so gateway details never reach the organizer.
func (s *WizardService) charge(ctx context.Context, sess *wizard.Session, ref *draft.VenueRef) (*payment.ChargeResponse, error) {
	if ref.PriceCents <= 0 {
		return &payment.ChargeResponse{Success: true, TransactionID: "free:" + sess.ID().String(), Status: "waived"}, nil
	}

	currency := ref.Currency
	if currency == "" {
		currency = s.opts.Currency
	}
	ctx, cancel := context.WithTimeout(ctx, chargeTimeout)
	defer cancel()
	resp, err := s.gateway.Charge(ctx, &payment.ChargeRequest{
		IdempotencyKey: fmt.Sprintf("%s:%d", sess.ID(), sess.Version()),
		AmountCents:    ref.PriceCents,
		Currency:       currency,
		Description:    "Venue booking: " + ref.Name,
		Metadata: map[string]string{
			"session_id":   sess.ID().String(),
			"organizer_id": sess.OrganizerID().String(),
			"venue_id":     ref.ID.String(),
		},
	})
	if err != nil {
		s.logger.Error("payment gateway error",
			zap.String("session_id", sess.ID().String()),
			zap.String("gateway", s.gateway.Name()),
			zap.Error(err),
		)
		return nil, domain.NewPaymentError("gateway_unavailable", "the payment could not be processed, please retry")
	}
	if !resp.Success {
		s.logger.Info("payment declined",
			zap.String("session_id", sess.ID().String()),
			zap.String("failure_code", resp.FailureCode),
		)
		return nil, domain.NewPaymentError(resp.FailureCode, resp.FailureReason)
	}
	return resp, nil
}

func (s *WizardService) checkImage(img *draft.Image) error {
	if img.Size() == 0 {
		return domain.NewFieldValidationError(map[string]string{draft.FieldImage: "Please upload an event image"})
	}
	if s.opts.MaxImageBytes > 0 && int64(img.Size()) > s.opts.MaxImageBytes {
		return domain.NewFieldValidationError(map[string]string{
			draft.FieldImage: fmt.Sprintf("Image must be at most %d KB", s.opts.MaxImageBytes/1024),
		})
	}
	detected := http.DetectContentType(img.Data)
	if !strings.HasPrefix(detected, "image/") {
		return domain.NewFieldValidationError(map[string]string{draft.FieldImage: "Please upload an image file"})
	}
	img.ContentType = detected
	return nil
}

func (s *WizardService) notifyStageChanged(ctx context.Context, sess *wizard.Session, from wizard.Stage) {
	change := StageChange{
		SessionID:   sess.ID(),
		OrganizerID: sess.OrganizerID(),
		From:        from.String(),
		To:          sess.Stage().String(),
		OccurredAt:  s.now(),
	}
	if err := s.navigator.StageChanged(ctx, change); err != nil {
		s.logger.Warn("failed to announce stage change",
			zap.String("session_id", sess.ID().String()),
			zap.Error(err),
		)
	}
}

func (s *WizardService) notifyEventCreated(ctx context.Context, sess *wizard.Session, eventID uuid.UUID, window availability.Interval) {
	d := sess.Draft()
	created := EventCreated{
		EventID:     eventID,
		SessionID:   sess.ID(),
		OrganizerID: sess.OrganizerID(),
		VenueID:     d.Venue.ID,
		Title:       strings.TrimSpace(d.Title),
		StartsAt:    window.Start,
		EndsAt:      window.End,
		OccurredAt:  s.now(),
	}
	if err := s.navigator.EventCreated(ctx, created); err != nil {
		s.logger.Warn("failed to announce created event",
			zap.String("event_id", eventID.String()),
			zap.Error(err),
		)
	}
}
