//go:build integration

package main_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/eventra/service-event-creation/internal/application"
	"github.com/eventra/service-event-creation/internal/events"
	"github.com/eventra/service-event-creation/internal/platform/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWizard_SubmitPersistsEventAndBooking drives a session from open to submit against real
// Postgres and Kafka and checks the event, its venue booking and the event.created message.
func TestWizard_SubmitPersistsEventAndBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupCreationStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx := context.Background()
	v := seedVenue(t, stack.Venues)
	organizerID := uuid.New()

	id := paidSession(t, stack, organizerID, v, "2030-11-20", "18:00", "22:00")
	result, err := stack.Wizard.Submit(ctx, id, organizerID)
	require.NoError(t, err)
	assert.Equal(t, "submitted", result.Session.Stage)

	ev, err := stack.Events.GetEvent(ctx, result.EventID)
	require.NoError(t, err)
	assert.Equal(t, "Sunburn Warmup", ev.Title)
	assert.Equal(t, v.ID, ev.VenueID)
	assert.Equal(t, int64(1), countBookings(t, infra.DB, result.EventID))
	assert.Equal(t, 1, stack.Images.Len())

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicEventCreation, events.TypeEventCreated, 15*time.Second)
	var created application.EventCreated
	require.NoError(t, ce.ParseData(&created))
	assert.Equal(t, result.EventID, created.EventID)
	assert.Equal(t, id, created.SessionID)
}

// TestWizard_ConcurrentSubmitsForSameSlot verifies that only one of two sessions that both
// passed the availability check can claim an overlapping slot.
func TestWizard_ConcurrentSubmitsForSameSlot(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupCreationStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	v := seedVenue(t, stack.Venues)
	first, second := uuid.New(), uuid.New()
	firstSession := paidSession(t, stack, first, v, "2030-12-31", "19:00", "23:00")
	secondSession := paidSession(t, stack, second, v, "2030-12-31", "21:00", "23:30")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, run := range []struct {
		session   uuid.UUID
		organizer uuid.UUID
	}{{firstSession, first}, {secondSession, second}} {
		wg.Add(1)
		go func(i int, sessionID, organizerID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = stack.Wizard.Submit(context.Background(), sessionID, organizerID)
		}(i, run.session, run.organizer)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrConflict):
			conflicted++
		default:
			t.Errorf("unexpected submit error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	bookings, err := stack.Venues.ResolveBookings(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
	assert.Equal(t, 1, stack.Images.Len(), "losing submission must not leave its poster behind")
}

// TestEventCancelled_ReleasesVenueBooking verifies that an event.cancelled message frees the
// slot so a new session can book it.
func TestEventCancelled_ReleasesVenueBooking(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupCreationStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	v := seedVenue(t, stack.Venues)
	organizerID := uuid.New()
	id := paidSession(t, stack, organizerID, v, "2031-01-15", "10:00", "12:00")
	result, err := stack.Wizard.Submit(ctx, id, organizerID)
	require.NoError(t, err)
	require.Equal(t, int64(1), countBookings(t, infra.DB, result.EventID))

	publishTestEvent(t, infra.KafkaBrokers, events.TopicEventLifecycle,
		"service-events", events.TypeEventCancelled, events.EventCancelledData{EventID: result.EventID, Reason: "monsoon"})

	require.Eventually(t, func() bool {
		return countBookings(t, infra.DB, result.EventID) == 0
	}, 15*time.Second, 200*time.Millisecond, "venue booking was not released")

	// The freed slot can be booked again.
	again := paidSession(t, stack, uuid.New(), v, "2031-01-15", "10:00", "12:00")
	assert.NotEqual(t, id, again)
}
