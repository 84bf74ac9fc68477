package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dicehall/config"
	"dicehall/domain/entities"
	"dicehall/domain/game"
	"dicehall/domain/session"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// MetricsProvider manages OpenTelemetry metrics and observes the session engine
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	sessionsActive       metric.Int64UpDownCounter
	roundsResolved       metric.Int64Counter
	betsCommitted        metric.Int64Counter
	betsStaked           metric.Int64Counter
	jackpotPaid          metric.Int64Counter
	topupsPaid           metric.Int64Counter
	natsMessagesReceived metric.Int64Counter
	natsMessagesSent     metric.Int64Counter
}

var _ session.Observer = (*MetricsProvider)(nil)

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry metrics provider
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Info("Metrics provider already initialized")
		return nil
	}

	if !mp.config.OTelEnabled {
		log.Info("OpenTelemetry metrics disabled")
		mp.initialized = true
		return nil
	}

	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch mp.config.OTelExporterType {
	case "console":
		exporter, err = stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("failed to create console exporter: %w", err)
		}
		log.Info("Using console metric exporter")

	case "otlp":
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		exporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(mp.config.OTelOTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.Infof("Using OTLP metric exporter: %s", mp.config.OTelOTLPEndpoint)

	case "none":
		log.Info("Metrics export disabled (exporter_type='none')")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown exporter type: %s", mp.config.OTelExporterType)
	}

	reader := sdkmetric.NewPeriodicReader(
		exporter,
		sdkmetric.WithInterval(time.Duration(mp.config.OTelExportIntervalMillis)*time.Millisecond),
	)
	if err := mp.start(reader); err != nil {
		return err
	}
	otel.SetMeterProvider(mp.meterProvider)

	log.Info("Metrics provider initialized successfully")
	return nil
}

// InitializeWithReader wires the provider to a caller supplied reader
func (mp *MetricsProvider) InitializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.start(reader)
}

func (mp *MetricsProvider) start(reader sdkmetric.Reader) error {
	serviceName := "dicehall"
	environment := "development"
	if mp.config != nil {
		serviceName = mp.config.OTelServiceName
		environment = mp.config.Environment
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			attribute.String("environment", environment),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	mp.meter = mp.meterProvider.Meter("dicehall")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	// UpDownCounter for gauge-like behavior
	mp.sessionsActive, err = mp.meter.Int64UpDownCounter(
		SessionsActive,
		metric.WithDescription("Current number of running channel sessions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("failed to create sessions active gauge: %w", err)
	}

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&mp.roundsResolved, RoundsResolvedTotal, "Total number of settled rounds", "1"},
		{&mp.betsCommitted, BetsCommittedTotal, "Total number of committed bets", "1"},
		{&mp.betsStaked, BetsStakedAmount, "Total currency staked on committed bets", "{coin}"},
		{&mp.jackpotPaid, JackpotPaidTotal, "Total currency paid out of jackpots", "{coin}"},
		{&mp.topupsPaid, TopupsPaidTotal, "Total number of paid topups", "1"},
		{&mp.natsMessagesReceived, NATSMessagesReceivedTotal, "Total number of NATS messages received", "1"},
		{&mp.natsMessagesSent, NATSMessagesPublishedTotal, "Total number of NATS messages published", "1"},
	}
	for _, c := range counters {
		*c.target, err = mp.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s counter: %w", c.name, err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

func kindAttr(kind entities.GameKind) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String(LabelGameKind, string(kind)))
}

func (mp *MetricsProvider) SessionStarted(kind entities.GameKind) {
	if !mp.isEnabled() {
		return
	}
	mp.sessionsActive.Add(context.Background(), 1, kindAttr(kind))
}

func (mp *MetricsProvider) SessionStopped(kind entities.GameKind) {
	if !mp.isEnabled() {
		return
	}
	mp.sessionsActive.Add(context.Background(), -1, kindAttr(kind))
}

func (mp *MetricsProvider) BetCommitted(kind entities.GameKind, amount int64) {
	if !mp.isEnabled() {
		return
	}
	ctx := context.Background()
	mp.betsCommitted.Add(ctx, 1, kindAttr(kind))
	mp.betsStaked.Add(ctx, amount, kindAttr(kind))
}

func (mp *MetricsProvider) RoundResolved(kind entities.GameKind, settlement game.Settlement) {
	if !mp.isEnabled() {
		return
	}
	ctx := context.Background()
	mp.roundsResolved.Add(ctx, 1, metric.WithAttributes(
		attribute.String(LabelGameKind, string(kind)),
		attribute.Bool(LabelJackpot, settlement.Outcome.Triple),
	))
	if settlement.JackpotPaid > 0 {
		mp.jackpotPaid.Add(ctx, settlement.JackpotPaid, kindAttr(kind))
	}
}

// RecordTopupPaid records a topup credited from a bank transfer
func (mp *MetricsProvider) RecordTopupPaid() {
	if !mp.isEnabled() {
		return
	}
	mp.topupsPaid.Add(context.Background(), 1)
}

// RecordNATSMessageReceived records a NATS message being received
func (mp *MetricsProvider) RecordNATSMessageReceived(eventType string) {
	if !mp.isEnabled() {
		return
	}
	mp.natsMessagesReceived.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// RecordNATSMessagePublished records a NATS message being published
func (mp *MetricsProvider) RecordNATSMessagePublished(eventType string) {
	if !mp.isEnabled() {
		return
	}
	mp.natsMessagesSent.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String(LabelEventType, eventType)),
	)
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}
