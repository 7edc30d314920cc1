// Package observability exports OpenTelemetry metrics for ledger, betting and HTTP activity.
package observability

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"dailybet/config"
	"dailybet/domain/events"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const exportInterval = 30 * time.Second

// MetricsProvider manages OpenTelemetry metrics for the dailybet service
type MetricsProvider struct {
	config        *config.Config
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	initialized   bool
	enabled       bool
	mu            sync.RWMutex

	// Metric instruments
	ledgerOperationsCounter  metric.Int64Counter
	betsPlacedCounter        metric.Int64Counter
	betsStakedCounter        metric.Float64Counter
	lineUpdatesCounter       metric.Int64Counter
	settlementsCounter       metric.Int64Counter
	settlementCreditsCounter metric.Int64Counter
	settlementPaidCounter    metric.Float64Counter
	withdrawalUpdatesCounter metric.Int64Counter
	depositsVerifiedCounter  metric.Int64Counter
	httpRequestsCounter      metric.Int64Counter
	httpRequestDurationHist  metric.Float64Histogram
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(cfg *config.Config) *MetricsProvider {
	return &MetricsProvider{
		config: cfg,
	}
}

// Initialize sets up the OpenTelemetry meter provider for the configured exporter
func (mp *MetricsProvider) Initialize(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.initialized {
		log.Debug("Metrics provider already initialized")
		return nil
	}

	var exporter sdkmetric.Exporter
	var err error
	switch mp.config.MetricsExporter {
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
			otlpmetricgrpc.WithEndpoint(mp.config.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		log.WithField("endpoint", mp.config.OTLPEndpoint).Info("Using OTLP metric exporter")

	case "none", "":
		log.Info("Metrics export disabled")
		mp.initialized = true
		return nil

	default:
		return fmt.Errorf("unknown metrics exporter: %s", mp.config.MetricsExporter)
	}

	return mp.start(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval)))
}

// InitializeWithReader sets up the provider on an explicit reader, such as a manual reader in tests
func (mp *MetricsProvider) InitializeWithReader(reader sdkmetric.Reader) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.start(reader)
}

// start must be called with mu held
func (mp *MetricsProvider) start(reader sdkmetric.Reader) error {
	res := resource.NewSchemaless(
		semconv.ServiceName("dailybet"),
		attribute.String("environment", mp.config.Environment),
	)

	mp.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp.meterProvider)
	mp.meter = mp.meterProvider.Meter("dailybet")

	if err := mp.createInstruments(); err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	mp.initialized = true
	mp.enabled = true
	log.Info("Metrics provider initialized successfully")
	return nil
}

// createInstruments creates all metric instruments
func (mp *MetricsProvider) createInstruments() error {
	var err error

	if mp.ledgerOperationsCounter, err = mp.meter.Int64Counter(
		LedgerOperationsTotal,
		metric.WithDescription("Total number of ledger balance mutations"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create ledger operations counter: %w", err)
	}

	if mp.betsPlacedCounter, err = mp.meter.Int64Counter(
		BetsPlacedTotal,
		metric.WithDescription("Total number of bets placed"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create bets placed counter: %w", err)
	}

	if mp.betsStakedCounter, err = mp.meter.Float64Counter(
		BetsStakedAmount,
		metric.WithDescription("Total ETH staked on bets"),
		metric.WithUnit("ETH"),
	); err != nil {
		return fmt.Errorf("failed to create bets staked counter: %w", err)
	}

	if mp.lineUpdatesCounter, err = mp.meter.Int64Counter(
		LineUpdatesTotal,
		metric.WithDescription("Total number of daily line updates"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create line updates counter: %w", err)
	}

	if mp.settlementsCounter, err = mp.meter.Int64Counter(
		SettlementsTotal,
		metric.WithDescription("Total number of resolved lines"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create settlements counter: %w", err)
	}

	if mp.settlementCreditsCounter, err = mp.meter.Int64Counter(
		SettlementCredits,
		metric.WithDescription("Settlement credits by outcome"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create settlement credits counter: %w", err)
	}

	if mp.settlementPaidCounter, err = mp.meter.Float64Counter(
		SettlementPaid,
		metric.WithDescription("Total ETH paid to winners"),
		metric.WithUnit("ETH"),
	); err != nil {
		return fmt.Errorf("failed to create settlement paid counter: %w", err)
	}

	if mp.withdrawalUpdatesCounter, err = mp.meter.Int64Counter(
		WithdrawalUpdatesTotal,
		metric.WithDescription("Withdrawal status changes"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create withdrawal updates counter: %w", err)
	}

	if mp.depositsVerifiedCounter, err = mp.meter.Int64Counter(
		DepositsVerifiedTotal,
		metric.WithDescription("Total number of verified deposits"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create deposits verified counter: %w", err)
	}

	if mp.httpRequestsCounter, err = mp.meter.Int64Counter(
		HTTPRequestsTotal,
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	); err != nil {
		return fmt.Errorf("failed to create HTTP requests counter: %w", err)
	}

	mp.httpRequestDurationHist, err = mp.meter.Float64Histogram(
		HTTPRequestDuration,
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request duration histogram: %w", err)
	}

	return nil
}

// Shutdown flushes and stops the meter provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}

// HandleEvent records metrics for a published domain event
func (mp *MetricsProvider) HandleEvent(ctx context.Context, event events.Event) error {
	if !mp.isEnabled() {
		return nil
	}

	switch e := event.(type) {
	case events.BalanceChangeEvent:
		mp.ledgerOperationsCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelType, string(e.TransactionType)),
		))

	case events.BetPlacedEvent:
		attrs := metric.WithAttributes(attribute.String(LabelChoice, string(e.Choice)))
		mp.betsPlacedCounter.Add(ctx, 1, attrs)
		mp.betsStakedCounter.Add(ctx, e.Amount.InexactFloat64(), attrs)

	case events.DailyLineUpdatedEvent:
		mp.lineUpdatesCounter.Add(ctx, 1)

	case events.LineResolvedEvent:
		mp.settlementsCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelOutcome, string(e.WinningSide)),
		))
		mp.settlementCreditsCounter.Add(ctx, int64(e.WinnersCredited), metric.WithAttributes(
			attribute.String(LabelOutcome, OutcomeCredited),
		))
		mp.settlementCreditsCounter.Add(ctx, int64(e.FailedCredits), metric.WithAttributes(
			attribute.String(LabelOutcome, OutcomeFailed),
		))
		mp.settlementPaidCounter.Add(ctx, e.TotalPaid.InexactFloat64())

	case events.WithdrawalUpdatedEvent:
		mp.withdrawalUpdatesCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String(LabelStatus, string(e.Status)),
		))

	case events.DepositVerifiedEvent:
		mp.depositsVerifiedCounter.Add(ctx, 1)
	}
	return nil
}

// RecordHTTPRequest records one served request
func (mp *MetricsProvider) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !mp.isEnabled() {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String(LabelMethod, method),
		attribute.String(LabelRoute, route),
		attribute.String(LabelCode, strconv.Itoa(status)),
	)
	mp.httpRequestsCounter.Add(context.Background(), 1, attrs)
	mp.httpRequestDurationHist.Record(context.Background(), duration.Seconds(), attrs)
}

// isEnabled checks if metrics are enabled and initialized
func (mp *MetricsProvider) isEnabled() bool {
	if mp == nil {
		return false
	}
	mp.mu.RLock()
	defer mp.mu.RUnlock()
	return mp.initialized && mp.enabled
}
