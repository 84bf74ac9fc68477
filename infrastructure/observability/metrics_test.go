package observability

import (
	"context"
	"testing"

	"dicehall/config"
	"dicehall/domain/entities"
	"dicehall/domain/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func sumOf(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestMetricsProvider_ObservesEngine(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(config.NewTestConfig())
	require.NoError(t, mp.InitializeWithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	mp.SessionStarted(entities.GameKindDiceSum)
	mp.SessionStarted(entities.GameKindAnimalDice)
	mp.SessionStopped(entities.GameKindAnimalDice)
	mp.BetCommitted(entities.GameKindDiceSum, 1000)
	mp.BetCommitted(entities.GameKindDiceSum, 500)
	mp.RoundResolved(entities.GameKindDiceSum, game.Settlement{
		Outcome:     entities.Outcome{Triple: true},
		JackpotPaid: 750,
	})
	mp.RecordTopupPaid()
	mp.RecordNATSMessagePublished("topup_paid")
	mp.RecordNATSMessageReceived("bank_transaction")

	rm := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(rm, SessionsActive))
	assert.Equal(t, int64(2), sumOf(rm, BetsCommittedTotal))
	assert.Equal(t, int64(1500), sumOf(rm, BetsStakedAmount))
	assert.Equal(t, int64(1), sumOf(rm, RoundsResolvedTotal))
	assert.Equal(t, int64(750), sumOf(rm, JackpotPaidTotal))
	assert.Equal(t, int64(1), sumOf(rm, TopupsPaidTotal))
	assert.Equal(t, int64(1), sumOf(rm, NATSMessagesPublishedTotal))
	assert.Equal(t, int64(1), sumOf(rm, NATSMessagesReceivedTotal))
}

func TestMetricsProvider_DisabledIsSilent(t *testing.T) {
	t.Parallel()

	mp := NewMetricsProvider(config.NewTestConfig())
	require.NoError(t, mp.Initialize(context.Background()))

	// instruments were never created, recording must not panic
	mp.SessionStarted(entities.GameKindDiceSum)
	mp.BetCommitted(entities.GameKindDiceSum, 100)
	mp.RoundResolved(entities.GameKindDiceSum, game.Settlement{})
	mp.RecordTopupPaid()
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestMetricsProvider_InitializesConsoleExporter(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTelEnabled = true
	cfg.OTelExporterType = "console"
	cfg.OTelServiceName = "dicehall-test"
	cfg.OTelExportIntervalMillis = 60000

	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	assert.True(t, mp.isEnabled())
	mp.SessionStarted(entities.GameKindDiceSum)
	mp.BetCommitted(entities.GameKindDiceSum, 1000)
}

func TestMetricsProvider_ResourceCarriesServiceName(t *testing.T) {
	t.Parallel()

	cfg := config.NewTestConfig()
	cfg.OTelServiceName = "dicehall-test"

	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.InitializeWithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	mp.RecordTopupPaid()
	rm := collect(t, reader)
	require.NotNil(t, rm.Resource)
	name, ok := rm.Resource.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "dicehall-test", name.AsString())
}
