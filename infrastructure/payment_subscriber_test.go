package infrastructure

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubscriber struct {
	subject string
	handler MessageHandler
	err     error
}

func (s *fakeSubscriber) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	if s.err != nil {
		return s.err
	}
	s.subject = subject
	s.handler = handler
	return nil
}

type receiveCounter struct{ count int }

func (r *receiveCounter) RecordNATSMessageReceived(string) { r.count++ }

func TestPaymentSubscriber(t *testing.T) {
	t.Parallel()

	subscriber := &fakeSubscriber{}
	counter := &receiveCounter{}
	var got [][]byte
	handler := func(ctx context.Context, data []byte) error {
		got = append(got, data)
		if string(data) == "bad" {
			return errors.New("db down")
		}
		return nil
	}

	payments := NewPaymentSubscriber(subscriber, "payments.bank.transactions", handler, counter)
	require.NoError(t, payments.Start(context.Background()))
	assert.Equal(t, "payments.bank.transactions", subscriber.subject)

	require.NoError(t, subscriber.handler(context.Background(), []byte("ok")))
	assert.Error(t, subscriber.handler(context.Background(), []byte("bad")), "errors propagate so the message is redelivered")
	assert.Len(t, got, 2)
	assert.Equal(t, 2, counter.count)
}

func TestPaymentSubscriber_SubscribeFailure(t *testing.T) {
	t.Parallel()

	subscriber := &fakeSubscriber{err: errors.New("not connected")}
	payments := NewPaymentSubscriber(subscriber, "payments", func(context.Context, []byte) error { return nil }, nil)
	assert.Error(t, payments.Start(context.Background()))
}
