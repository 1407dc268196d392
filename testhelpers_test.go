//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/eventra/service-event-creation/internal/application"
	"github.com/eventra/service-event-creation/internal/domain/draft"
	"github.com/eventra/service-event-creation/internal/domain/venue"
	"github.com/eventra/service-event-creation/internal/events"
	"github.com/eventra/service-event-creation/internal/payment"
	"github.com/eventra/service-event-creation/internal/platform/kafka"
	"github.com/eventra/service-event-creation/internal/repository"
	"github.com/eventra/service-event-creation/internal/session"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// creationStack holds the wired-up event creation components.
type creationStack struct {
	Wizard          *application.WizardService
	Events          *application.EventService
	Venues          *repository.GormVenueRepository
	Images          *memoryImageStore
	Consumer        *events.CancellationConsumer
	CleanupProducer func()
}

// memoryImageStore keeps posters in memory so the suite does not need an S3 container.
type memoryImageStore struct {
	mu     sync.Mutex
	images map[string]draft.Image
}

func (s *memoryImageStore) Put(_ context.Context, key string, image draft.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[key] = image
	return nil
}

func (s *memoryImageStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.images, key)
	return nil
}

func (s *memoryImageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_event_creation",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_event_creation sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, repository.AutoMigrate(db))

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicEventCreation, events.TopicEventLifecycle)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupCreationStack wires the services the way cmd/server does, minus S3 and Redis.
func setupCreationStack(t *testing.T, db *gorm.DB, brokers []string) *creationStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	images := &memoryImageStore{images: make(map[string]draft.Image)}
	eventRepo := repository.NewGormEventRepository(db, images, logger)
	venueRepo := repository.NewGormVenueRepository(db)
	producer := kafka.NewProducer(brokers, logger)

	checker := application.NewAvailabilityChecker(venueRepo, logger)
	pipeline := application.NewSubmissionPipeline(eventRepo, checker, time.UTC, "INR", logger)
	gateway := payment.NewMockGateway(&payment.MockGatewayConfig{SuccessRate: 1})
	wizardSvc := application.NewWizardService(
		session.NewMemoryStore(time.Hour),
		venueRepo,
		checker,
		pipeline,
		gateway,
		events.NewKafkaNavigator(producer),
		application.WizardOptions{Location: time.UTC, Currency: "INR", MaxImageBytes: 1 << 20},
		logger,
	)
	eventSvc := application.NewEventService(eventRepo, venueRepo, logger)

	groupID := fmt.Sprintf("test-event-creation-%s", uuid.New().String()[:8])
	consumer := events.NewCancellationConsumer(brokers, groupID, eventSvc, logger)

	return &creationStack{
		Wizard:          wizardSvc,
		Events:          eventSvc,
		Venues:          venueRepo,
		Images:          images,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedVenue inserts a venue in Goa.
func seedVenue(t *testing.T, venues *repository.GormVenueRepository) *venue.Venue {
	t.Helper()
	v := &venue.Venue{
		ID:         uuid.New(),
		Name:       fmt.Sprintf("Kala Academy %s", uuid.New().String()[:4]),
		State:      "Goa",
		City:       "Panaji",
		PriceCents: 150000,
		Currency:   "INR",
		Capacity:   400,
	}
	require.NoError(t, venues.Save(context.Background(), v), "failed to seed venue")
	return v
}

var pngPoster = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

func strPtr(s string) *string { return &s }
func int64Ptr(n int64) *int64 { return &n }
func boolPtr(b bool) *bool    { return &b }

// paidSession drives a new session through every stage and pays for the slot.
func paidSession(t *testing.T, stack *creationStack, organizerID uuid.UUID, v *venue.Venue, date, start, end string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	sess, err := stack.Wizard.OpenSession(ctx, organizerID)
	require.NoError(t, err)
	id := sess.ID

	_, err = stack.Wizard.UpdateDraft(ctx, id, organizerID, application.UpdateDraftRequest{Patch: draft.Patch{
		Title:       strPtr("Sunburn Warmup"),
		Description: strPtr("Local DJs ahead of the festival weekend."),
		Genre:       strPtr("Musical Concerts"),
		ContactNo:   strPtr("9822012345"),
		State:       strPtr("Goa"),
		City:        strPtr("Panaji"),
	}})
	require.NoError(t, err)
	_, err = stack.Wizard.Advance(ctx, id, organizerID)
	require.NoError(t, err)

	_, err = stack.Wizard.UpdateDraft(ctx, id, organizerID, application.UpdateDraftRequest{
		VenueID: &v.ID,
		Patch: draft.Patch{
			StartDate: strPtr(date), StartTime: strPtr(start),
			EndDate: strPtr(date), EndTime: strPtr(end),
		},
	})
	require.NoError(t, err)
	_, err = stack.Wizard.Advance(ctx, id, organizerID)
	require.NoError(t, err)

	_, err = stack.Wizard.UpdateDraft(ctx, id, organizerID, application.UpdateDraftRequest{Patch: draft.Patch{
		TicketPriceCents: int64Ptr(49900),
		AgreedToTerms:    boolPtr(true),
	}})
	require.NoError(t, err)
	_, err = stack.Wizard.SetImage(ctx, id, organizerID, draft.Image{Filename: "poster.png", Data: pngPoster})
	require.NoError(t, err)

	avail, err := stack.Wizard.CheckAvailability(ctx, id, organizerID)
	require.NoError(t, err)
	require.True(t, avail.Available)

	paid, err := stack.Wizard.Pay(ctx, id, organizerID)
	require.NoError(t, err)
	require.True(t, paid.PaymentConfirmed)
	return id
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// countBookings returns how many venue_bookings rows reference eventID.
func countBookings(t *testing.T, db *gorm.DB, eventID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&repository.VenueBookingModel{}).Where("event_id = ?", eventID).Count(&n).Error)
	return n
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	time.Sleep(1 * time.Second)
}
