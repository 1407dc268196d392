package application

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/eventra/service-event-creation/internal/domain/draft"
	eventDomain "github.com/eventra/service-event-creation/internal/domain/event"
	"github.com/eventra/service-event-creation/internal/domain/wizard"
	"github.com/eventra/service-event-creation/internal/platform/domain"
	"go.uber.org/zap"
)

const submissionFailedMessage = "Failed to create event. Please try again."

// SubmissionPipeline turns a paid, fully valid draft into a persisted event. Each step is a
// hard precondition for the next.
type SubmissionPipeline struct {
	events   eventDomain.EventRepository
	checker  *AvailabilityChecker
	loc      *time.Location
	currency string
	logger   *zap.Logger
}

// NewSubmissionPipeline creates a new SubmissionPipeline.
func NewSubmissionPipeline(
	events eventDomain.EventRepository,
	checker *AvailabilityChecker,
	loc *time.Location,
	currency string,
	logger *zap.Logger,
) *SubmissionPipeline {
	return &SubmissionPipeline{
		events:   events,
		checker:  checker,
		loc:      loc,
		currency: currency,
		logger:   logger,
	}
}

// Submit validates the session's draft again, confirms payment, repeats the overlap check
// and persists the event. The session itself is not modified.
func (p *SubmissionPipeline) Submit(ctx context.Context, sess *wizard.Session) (*eventDomain.Event, error) {
	d := sess.Draft()

	if err := draft.Validate(d, p.loc).Err(); err != nil {
		return nil, err
	}
	if !sess.PaymentConfirmed() {
		return nil, domain.ErrPaymentRequired
	}

	window, err := draft.Schedule(d, p.loc)
	if err != nil {
		return nil, err
	}
	if err := p.checker.Check(ctx, d.Venue.ID, window); err != nil {
		return nil, err
	}

	ev, err := eventDomain.NewEventFromDraft(sess.OrganizerID(), d, p.loc, sess.PaymentTransactionID(), p.currency)
	if err != nil {
		return nil, err
	}

	if err := p.events.Create(ctx, ev, *d.Image); err != nil {
		return nil, p.mapPersistenceError(sess, err)
	}

	p.logger.Info("event persisted",
		zap.String("session_id", sess.ID().String()),
		zap.String("event_id", ev.ID().String()),
		zap.String("venue_id", ev.VenueID().String()),
	)
	return ev, nil
}

// mapPersistenceError converts a create-event failure into the submission taxonomy.
// Rejections keep the collaborator's message; everything else gets a generic one.
func (p *SubmissionPipeline) mapPersistenceError(sess *wizard.Session, err error) error {
	switch {
	case errors.Is(err, domain.ErrConflict):
		return err
	case errors.Is(err, domain.ErrValidation):
		return domain.NewSubmissionError(domain.SubmissionValidation, rejectionMessage(err), err)
	default:
		p.logger.Error("failed to persist event",
			zap.String("session_id", sess.ID().String()),
			zap.Error(err),
		)
		return domain.NewSubmissionError(domain.SubmissionServer, submissionFailedMessage, err)
	}
}

func rejectionMessage(err error) string {
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) || len(validationErr.Fields) == 0 {
		return err.Error()
	}
	fields := make([]string, 0, len(validationErr.Fields))
	for f := range validationErr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return validationErr.Fields[fields[0]]
}
