package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"github.com/sandeepkv93/storefront-session-gateway/internal/config"
)

const meterName = "storefront-session-gateway"

type AppMetrics struct {
	loginCounter   metric.Int64Counter
	refreshCounter metric.Int64Counter
	logoutCounter  metric.Int64Counter
	guardCounter   metric.Int64Counter
	cacheCounter   metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics

	repoMetricsOnce sync.Once
	repoCounter     metric.Int64Counter
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter(meterName)
	loginCounter, err := meter.Int64Counter("session.login.attempts")
	if err != nil {
		return nil, err
	}
	refreshCounter, err := meter.Int64Counter("session.refresh.attempts")
	if err != nil {
		return nil, err
	}
	logoutCounter, err := meter.Int64Counter("session.logout.attempts")
	if err != nil {
		return nil, err
	}
	guardCounter, err := meter.Int64Counter("guard.decisions")
	if err != nil {
		return nil, err
	}
	cacheCounter, err := meter.Int64Counter("inventory.cache.events")
	if err != nil {
		return nil, err
	}

	metricsMu.Lock()
	appMetrics = &AppMetrics{
		loginCounter:   loginCounter,
		refreshCounter: refreshCounter,
		logoutCounter:  logoutCounter,
		guardCounter:   guardCounter,
		cacheCounter:   cacheCounter,
	}
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func RecordSessionLogin(status string) {
	record(func(m *AppMetrics) metric.Int64Counter { return m.loginCounter },
		attribute.String("status", status))
}

func RecordSessionRefresh(status string) {
	record(func(m *AppMetrics) metric.Int64Counter { return m.refreshCounter },
		attribute.String("status", status))
}

func RecordSessionLogout(status string) {
	record(func(m *AppMetrics) metric.Int64Counter { return m.logoutCounter },
		attribute.String("status", status))
}

func RecordGuardDecision(decision string) {
	record(func(m *AppMetrics) metric.Int64Counter { return m.guardCounter },
		attribute.String("decision", decision))
}

func RecordInventoryCacheEvent(event string) {
	record(func(m *AppMetrics) metric.Int64Counter { return m.cacheCounter },
		attribute.String("event", event))
}

func record(pick func(*AppMetrics) metric.Int64Counter, attrs ...attribute.KeyValue) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	pick(m).Add(context.Background(), 1, metric.WithAttributes(attrs...))
}

// RecordRepositoryOperation is safe before InitMetrics: it registers its
// counter lazily against whatever meter provider is installed.
func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	repoMetricsOnce.Do(func() {
		counter, err := otel.Meter(meterName).Int64Counter("repository.operations")
		if err == nil {
			repoCounter = counter
		}
	})
	if repoCounter == nil {
		return
	}
	repoCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}
