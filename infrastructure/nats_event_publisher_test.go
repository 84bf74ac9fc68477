package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"dicehall/domain/entities"
	"dicehall/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type publishedMessage struct {
	subject string
	data    []byte
}

type fakeBus struct {
	mu       sync.Mutex
	messages []publishedMessage
	err      error
}

func (b *fakeBus) Publish(ctx context.Context, subject string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.messages = append(b.messages, publishedMessage{subject: subject, data: data})
	return nil
}

type countingRecorder struct {
	mu        sync.Mutex
	published map[string]int
}

func (r *countingRecorder) RecordNATSMessagePublished(eventType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.published == nil {
		r.published = make(map[string]int)
	}
	r.published[eventType]++
}

func TestEncodeEnvelope(t *testing.T) {
	t.Parallel()

	ts := timestamppb.New(time.Date(2026, 10, 1, 8, 30, 0, 0, time.UTC))
	event := events.BalanceChangeEvent{
		UserID:          11,
		GuildID:         22,
		OldBalance:      1000,
		NewBalance:      1800,
		TransactionType: entities.TransactionTypeSessionPayout,
		ChangeAmount:    800,
	}

	data, err := EncodeEnvelope("evt-1", event, ts)
	require.NoError(t, err)

	var envelope struct {
		EventID       string         `json:"event_id"`
		EventType     string         `json:"event_type"`
		Timestamp     string         `json:"timestamp"`
		SourceService string         `json:"source_service"`
		Payload       map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &envelope))

	assert.Equal(t, "evt-1", envelope.EventID)
	assert.Equal(t, "balance_change", envelope.EventType)
	assert.Equal(t, "2026-10-01T08:30:00Z", envelope.Timestamp)
	assert.Equal(t, "dicehall", envelope.SourceService)
	assert.Equal(t, float64(1800), envelope.Payload["new_balance"])
	assert.Equal(t, "session_payout", envelope.Payload["transaction_type"])
}

func TestNATSEventPublisher_Publish(t *testing.T) {
	t.Parallel()

	bus := &fakeBus{}
	recorder := &countingRecorder{}
	publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper(), recorder)

	var handled []events.Event
	publisher.RegisterLocalHandler(events.EventTypeTopupPaid, func(ctx context.Context, event events.Event) error {
		handled = append(handled, event)
		return errors.New("discord unavailable")
	})

	paid := events.TopupPaidEvent{TopupID: 3, GuildID: 9, UserID: 4, Amount: 50000}
	require.NoError(t, publisher.Publish(paid))
	require.NoError(t, publisher.Publish(events.UserCreatedEvent{UserID: 4, GuildID: 9}))

	assert.Equal(t, []events.Event{paid}, handled, "local handler failures do not stop publishing")
	require.Len(t, bus.messages, 2)
	assert.Equal(t, "dicehall.topups.paid", bus.messages[0].subject)
	assert.Equal(t, "dicehall.users.created", bus.messages[1].subject)
	assert.Equal(t, 1, recorder.published["topup_paid"])
	assert.Equal(t, 1, recorder.published["user_created"])
}

func TestNATSEventPublisher_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing stream is ignored", func(t *testing.T) {
		t.Parallel()
		bus := &fakeBus{err: errors.New("nats: no response from stream")}
		publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper(), nil)
		assert.NoError(t, publisher.Publish(events.UserCreatedEvent{UserID: 1}))
	})

	t.Run("other failures are returned", func(t *testing.T) {
		t.Parallel()
		bus := &fakeBus{err: errors.New("nats: connection closed")}
		publisher := NewNATSEventPublisher(bus, NewEventSubjectMapper(), nil)
		assert.Error(t, publisher.Publish(events.UserCreatedEvent{UserID: 1}))
	})
}

func TestLocalEventPublisher(t *testing.T) {
	t.Parallel()

	publisher := NewLocalEventPublisher()
	calls := 0
	publisher.RegisterLocalHandler(events.EventTypeMarriage, func(ctx context.Context, event events.Event) error {
		calls++
		return nil
	})

	require.NoError(t, publisher.Publish(events.MarriageEvent{Action: "married"}))
	require.NoError(t, publisher.Publish(events.UserCreatedEvent{}))
	assert.Equal(t, 1, calls)
}

func TestEventSubjectMapper(t *testing.T) {
	t.Parallel()

	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.BalanceChangeEvent{}, "dicehall.users.balance_changed"},
		{events.UserCreatedEvent{}, "dicehall.users.created"},
		{events.SessionStartedEvent{}, "dicehall.sessions.started"},
		{events.SessionStoppedEvent{}, "dicehall.sessions.stopped"},
		{events.RoundResolvedEvent{}, "dicehall.sessions.round_resolved"},
		{events.TopupPaidEvent{}, "dicehall.topups.paid"},
		{events.MarriageEvent{}, "dicehall.social.marriage"},
	}
	for _, tt := range tests {
		subject := mapper.MapEventToSubject(tt.event)
		assert.Equal(t, tt.subject, subject)
		assert.Equal(t, tt.event.Type(), mapper.MapSubjectToEventType(subject))
	}

	assert.Equal(t, "dicehall.unknown.mystery", mapper.MapEventToSubject(unknownEvent{}))
}

type unknownEvent struct{}

func (unknownEvent) Type() events.EventType { return "mystery" }

func TestConsumerName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dicehall-payments_bank_transactions", ConsumerName("payments.bank.transactions"))
	assert.Equal(t, "dicehall-payments_wildcard", ConsumerName("payments.*"))
}
