package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	log "github.com/sirupsen/logrus"
)

const (
	natsClientName     = "dicehall"
	consumerMaxDeliver = 5
	consumerAckWait    = 30 * time.Second
	redeliveryDelay    = 5 * time.Second
	streamMaxMsgs      = 1_000_000
)

var errNotConnected = errors.New("not connected to NATS JetStream")

// MessageHandler processes one message body. A returned error asks for redelivery.
type MessageHandler func(ctx context.Context, data []byte) error

// NATSClient owns the NATS connection, the JetStream streams the bot relies on
// and the durable consumers it reads from
type NATSClient struct {
	servers string

	mu        sync.RWMutex
	nc        *nats.Conn
	js        jetstream.JetStream
	consumers map[string]jetstream.ConsumeContext
}

// NewNATSClient creates a client for a comma separated server list
func NewNATSClient(servers string) *NATSClient {
	return &NATSClient{
		servers:   servers,
		consumers: make(map[string]jetstream.ConsumeContext),
	}
}

// Connect dials NATS and opens a JetStream handle
func (c *NATSClient) Connect(ctx context.Context) error {
	nc, err := nats.Connect(c.servers,
		nats.Name(natsClientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create JetStream handle: %w", err)
	}
	if _, err := js.AccountInfo(ctx); err != nil {
		nc.Close()
		return fmt.Errorf("JetStream is not available: %w", err)
	}

	c.mu.Lock()
	c.nc = nc
	c.js = js
	c.mu.Unlock()

	log.WithField("servers", c.servers).Info("Connected to NATS with JetStream")
	return nil
}

func (c *NATSClient) jetStream() (jetstream.JetStream, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.js == nil {
		return nil, errNotConnected
	}
	return c.js, nil
}

// ConsumerName derives the durable consumer name for a subject
func ConsumerName(subject string) string {
	replacer := strings.NewReplacer(".", "_", "*", "wildcard", ">", "all")
	return natsClientName + "-" + replacer.Replace(subject)
}

// Subscribe attaches a durable consumer to the stream holding subject.
// A failed message is redelivered after a delay and terminated once it has
// used up its deliveries, so one bad bank transaction cannot block the feed.
func (c *NATSClient) Subscribe(ctx context.Context, subject string, handler MessageHandler) error {
	js, err := c.jetStream()
	if err != nil {
		return err
	}

	stream, err := js.StreamNameBySubject(ctx, subject)
	if err != nil {
		return fmt.Errorf("no stream holds subject %s: %w", subject, err)
	}

	consumer, err := js.CreateOrUpdateConsumer(ctx, stream, jetstream.ConsumerConfig{
		Durable:       ConsumerName(subject),
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		MaxDeliver:    consumerMaxDeliver,
		AckWait:       consumerAckWait,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer for %s: %w", subject, err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		handleDelivery(ctx, subject, msg, handler)
	})
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", subject, err)
	}

	c.mu.Lock()
	if previous, ok := c.consumers[subject]; ok {
		previous.Stop()
	}
	c.consumers[subject] = consumeCtx
	c.mu.Unlock()

	log.WithFields(log.Fields{
		"subject":  subject,
		"stream":   stream,
		"consumer": ConsumerName(subject),
	}).Info("Subscribed to NATS subject")
	return nil
}

func handleDelivery(ctx context.Context, subject string, msg jetstream.Msg, handler MessageHandler) {
	err := handler(ctx, msg.Data())
	if err == nil {
		if ackErr := msg.Ack(); ackErr != nil {
			log.WithError(ackErr).WithField("subject", subject).Error("Failed to ack message")
		}
		return
	}

	var delivered uint64
	if meta, metaErr := msg.Metadata(); metaErr == nil {
		delivered = meta.NumDelivered
	}
	fields := log.Fields{
		"subject":   subject,
		"delivered": delivered,
	}

	if delivered >= consumerMaxDeliver {
		log.WithError(err).WithFields(fields).Error("Dropping message after final delivery")
		if termErr := msg.Term(); termErr != nil {
			log.WithError(termErr).WithFields(fields).Error("Failed to terminate message")
		}
		return
	}

	log.WithError(err).WithFields(fields).Warn("Failed to process message, scheduling redelivery")
	if nakErr := msg.NakWithDelay(redeliveryDelay); nakErr != nil {
		log.WithError(nakErr).WithFields(fields).Error("Failed to nak message")
	}
}

// EnsureStream creates the stream or updates its subjects and retention
func (c *NATSClient) EnsureStream(streamName, description string, subjects []string, maxAge time.Duration) error {
	js, err := c.jetStream()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        streamName,
		Description: description,
		Subjects:    subjects,
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      maxAge,
		MaxMsgs:     streamMaxMsgs,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure stream %s: %w", streamName, err)
	}

	log.WithFields(log.Fields{
		"stream":   streamName,
		"subjects": subjects,
	}).Info("JetStream stream ready")
	return nil
}

// Publish writes data to subject and waits for the stream to store it
func (c *NATSClient) Publish(ctx context.Context, subject string, data []byte) error {
	js, err := c.jetStream()
	if err != nil {
		return err
	}

	ack, err := js.Publish(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	log.WithFields(log.Fields{
		"subject":  subject,
		"stream":   ack.Stream,
		"sequence": ack.Sequence,
	}).Debug("Published message to NATS")
	return nil
}

// Close stops every consumer and drains the connection
func (c *NATSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, consumeCtx := range c.consumers {
		consumeCtx.Stop()
		log.WithField("subject", subject).Debug("Stopped NATS consumer")
	}
	c.consumers = make(map[string]jetstream.ConsumeContext)

	if c.nc == nil {
		return nil
	}
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	log.Info("NATS connection closed")
	return nil
}
