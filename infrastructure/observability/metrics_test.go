package observability

import (
	"context"
	"testing"
	"time"

	"dailybet/config"
	"dailybet/domain/entities"
	"dailybet/domain/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newManualProvider(t *testing.T) (*MetricsProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := NewMetricsProvider(config.NewTestConfig())
	require.NoError(t, mp.InitializeWithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func intSum(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetricsProvider_HandleEvent(t *testing.T) {
	mp, reader := newManualProvider(t)
	ctx := context.Background()

	require.NoError(t, mp.HandleEvent(ctx, events.BalanceChangeEvent{TransactionType: entities.TransactionTypeBetPlaced}))
	require.NoError(t, mp.HandleEvent(ctx, events.BalanceChangeEvent{TransactionType: entities.TransactionTypeDeposit}))
	require.NoError(t, mp.HandleEvent(ctx, events.BetPlacedEvent{Choice: entities.SideYes, Amount: decimal.RequireFromString("1.5")}))
	require.NoError(t, mp.HandleEvent(ctx, events.LineResolvedEvent{
		WinningSide:     entities.SideYes,
		WinnersCredited: 2,
		FailedCredits:   1,
		TotalPaid:       decimal.RequireFromString("7.5"),
	}))
	require.NoError(t, mp.HandleEvent(ctx, events.WithdrawalUpdatedEvent{Status: entities.WithdrawalStatusPending}))

	metrics := collect(t, reader)

	assert.Equal(t, int64(2), intSum(t, metrics[LedgerOperationsTotal]))
	assert.Equal(t, int64(1), intSum(t, metrics[BetsPlacedTotal]))
	assert.Equal(t, int64(1), intSum(t, metrics[SettlementsTotal]))
	assert.Equal(t, int64(3), intSum(t, metrics[SettlementCredits]))
	assert.Equal(t, int64(1), intSum(t, metrics[WithdrawalUpdatesTotal]))

	paid, ok := metrics[SettlementPaid].(metricdata.Sum[float64])
	require.True(t, ok)
	require.Len(t, paid.DataPoints, 1)
	assert.InDelta(t, 7.5, paid.DataPoints[0].Value, 1e-9)
}

func TestMetricsProvider_RecordHTTPRequest(t *testing.T) {
	mp, reader := newManualProvider(t)

	mp.RecordHTTPRequest("GET", "/health", 200, 3*time.Millisecond)
	mp.RecordHTTPRequest("POST", "/api/login", 401, 10*time.Millisecond)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), intSum(t, metrics[HTTPRequestsTotal]))

	hist, ok := metrics[HTTPRequestDuration].(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2)
}

func TestMetricsProvider_DisabledIsNoop(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.MetricsExporter = "none"
	mp := NewMetricsProvider(cfg)
	require.NoError(t, mp.Initialize(context.Background()))

	assert.NoError(t, mp.HandleEvent(context.Background(), events.BetPlacedEvent{Amount: decimal.NewFromInt(1)}))
	mp.RecordHTTPRequest("GET", "/health", 200, time.Millisecond)

	var nilProvider *MetricsProvider
	assert.NoError(t, nilProvider.HandleEvent(context.Background(), events.DepositVerifiedEvent{}))
}

func TestMetricsProvider_UnknownExporter(t *testing.T) {
	cfg := config.NewTestConfig()
	cfg.MetricsExporter = "prometheus"
	assert.Error(t, NewMetricsProvider(cfg).Initialize(context.Background()))
}
