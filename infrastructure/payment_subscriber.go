package infrastructure

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// PaymentStream is the JetStream stream holding the bank transaction feed
const PaymentStream = "dicehall_payments"

// MessageSubscriber registers durable message handlers
type MessageSubscriber interface {
	Subscribe(ctx context.Context, subject string, handler MessageHandler) error
}

// MessageReceiveRecorder counts messages taken off the bus
type MessageReceiveRecorder interface {
	RecordNATSMessageReceived(eventType string)
}

// PaymentSubscriber feeds bank transactions from NATS into the payment handler
type PaymentSubscriber struct {
	subscriber MessageSubscriber
	subject    string
	handler    MessageHandler
	recorder   MessageReceiveRecorder
}

// NewPaymentSubscriber creates a payment subscriber for the subject
func NewPaymentSubscriber(subscriber MessageSubscriber, subject string, handler MessageHandler, recorder MessageReceiveRecorder) *PaymentSubscriber {
	return &PaymentSubscriber{
		subscriber: subscriber,
		subject:    subject,
		handler:    handler,
		recorder:   recorder,
	}
}

// Start subscribes to the payment subject
func (s *PaymentSubscriber) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, s.subject, s.handle); err != nil {
		return fmt.Errorf("failed to subscribe to payments: %w", err)
	}
	log.WithField("subject", s.subject).Info("Payment subscriber started")
	return nil
}

func (s *PaymentSubscriber) handle(ctx context.Context, data []byte) error {
	if s.recorder != nil {
		s.recorder.RecordNATSMessageReceived("bank_transaction")
	}
	return s.handler(ctx, data)
}

// EnsurePaymentStream ensures the payment stream exists for the subject
func EnsurePaymentStream(client *NATSClient, subject string) error {
	return client.EnsureStream(PaymentStream, "Bank transactions for topup reconciliation", []string{subject}, 7*24*time.Hour)
}
