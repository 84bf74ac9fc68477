package infrastructure

import (
	"fmt"

	"dicehall/domain/events"
)

// DomainEventStream is the JetStream stream carrying every published domain event
const DomainEventStream = "dicehall_events"

var eventSubjects = map[events.EventType]string{
	events.EventTypeBalanceChange:  "users.balance_changed",
	events.EventTypeUserCreated:    "users.created",
	events.EventTypeSessionStarted: "sessions.started",
	events.EventTypeSessionStopped: "sessions.stopped",
	events.EventTypeRoundResolved:  "sessions.round_resolved",
	events.EventTypeTopupPaid:      "topups.paid",
	events.EventTypeMarriage:       "social.marriage",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct {
	prefix string
}

// NewEventSubjectMapper creates a mapper whose subjects all start with "dicehall."
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{prefix: "dicehall."}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := eventSubjects[event.Type()]; ok {
		return m.prefix + subject
	}
	return fmt.Sprintf("%sunknown.%s", m.prefix, event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range eventSubjects {
		if m.prefix+s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		m.prefix + "users.>",
		m.prefix + "sessions.>",
		m.prefix + "topups.>",
		m.prefix + "social.>",
		m.prefix + "unknown.>",
	}
}
