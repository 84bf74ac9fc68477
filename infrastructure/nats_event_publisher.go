package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"dicehall/domain/events"
	"dicehall/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const sourceService = "dicehall"

// PublishRecorder counts messages that reached the bus
type PublishRecorder interface {
	RecordNATSMessagePublished(eventType string)
}

// NATSEventPublisher runs local handlers and then publishes the event to NATS
type NATSEventPublisher struct {
	localHandlers
	bus           MessagePublisher
	subjectMapper *EventSubjectMapper
	recorder      PublishRecorder
}

var _ interfaces.EventPublisher = (*NATSEventPublisher)(nil)

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(bus MessagePublisher, subjectMapper *EventSubjectMapper, recorder PublishRecorder) *NATSEventPublisher {
	return &NATSEventPublisher{
		bus:           bus,
		subjectMapper: subjectMapper,
		recorder:      recorder,
	}
}

// Publish publishes an event to NATS using the appropriate subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()
	p.dispatch(ctx, event)

	subject := p.subjectMapper.MapEventToSubject(event)
	eventID := uuid.New().String()
	data, err := EncodeEnvelope(eventID, event, timestamppb.Now())
	if err != nil {
		return err
	}

	if err := p.bus.Publish(ctx, subject, data); err != nil {
		// no stream bound to the subject, nobody is listening
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}
	if p.recorder != nil {
		p.recorder.RecordNATSMessagePublished(string(event.Type()))
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   eventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")
	return nil
}

// EncodeEnvelope wraps the event payload with its metadata as protobuf JSON
func EncodeEnvelope(eventID string, event events.Event, ts *timestamppb.Timestamp) ([]byte, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode event payload: %w", err)
	}

	envelope, err := structpb.NewStruct(map[string]any{
		"event_id":       eventID,
		"event_type":     string(event.Type()),
		"timestamp":      ts.AsTime().UTC().Format(time.RFC3339Nano),
		"source_service": sourceService,
		"payload":        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build event envelope: %w", err)
	}

	data, err := protojson.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return data, nil
}

// EnsureDomainEventStream ensures the domain event stream exists with the correct subjects
func EnsureDomainEventStream(client *NATSClient, mapper *EventSubjectMapper) error {
	return client.EnsureStream(DomainEventStream, "Dice hall domain events", mapper.GetAllSubjects(), 24*time.Hour)
}

// LocalEventPublisher only runs local handlers. It stands in when NATS is disabled.
type LocalEventPublisher struct {
	localHandlers
}

// NewLocalEventPublisher creates a publisher that never leaves the process
func NewLocalEventPublisher() *LocalEventPublisher {
	return &LocalEventPublisher{}
}

func (p *LocalEventPublisher) Publish(event events.Event) error {
	p.dispatch(context.Background(), event)
	return nil
}
