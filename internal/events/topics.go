package events

// Topics and CloudEvent types produced and consumed by this service.
const (
	Source = "service-event-creation"

	TopicEventCreation  = "event-creation.events"
	TopicEventLifecycle = "event.lifecycle"

	TypeStageChanged   = "wizard.stage_changed"
	TypeEventCreated   = "event.created"
	TypeEventCancelled = "event.cancelled"
)
