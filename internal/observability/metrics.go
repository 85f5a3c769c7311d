// Package observability wires OpenTelemetry metrics with a Prometheus
// exporter. The collector is optional everywhere it is consumed; a nil or
// disabled collector turns every record call into a no-op.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsCollector manages the service metrics.
type MetricsCollector struct {
	meter metric.Meter

	providerRequests     metric.Int64Counter
	providerTokensInput  metric.Int64Counter
	providerTokensOutput metric.Int64Counter
	providerLatency      metric.Float64Histogram

	readingsFormatted metric.Int64Counter
	imageCacheLookups metric.Int64Counter

	sessionsActive metric.Int64UpDownCounter
}

// MetricsConfig configures the metrics collector.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// NewMetricsCollector builds the collector and registers the global meter
// provider. With Enabled false it returns an inert collector.
func NewMetricsCollector(config MetricsConfig) (*MetricsCollector, error) {
	if !config.Enabled {
		return &MetricsCollector{}, nil
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)

	meter := provider.Meter("mystique")

	providerRequests, err := meter.Int64Counter(
		"mystique.provider.requests.total",
		metric.WithDescription("Total number of completion provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider_requests counter: %w", err)
	}

	providerTokensInput, err := meter.Int64Counter(
		"mystique.provider.tokens.input",
		metric.WithDescription("Total input tokens sent to the provider"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider_tokens_input counter: %w", err)
	}

	providerTokensOutput, err := meter.Int64Counter(
		"mystique.provider.tokens.output",
		metric.WithDescription("Total output tokens from the provider"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider_tokens_output counter: %w", err)
	}

	providerLatency, err := meter.Float64Histogram(
		"mystique.provider.latency",
		metric.WithDescription("Completion provider request latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider_latency histogram: %w", err)
	}

	readingsFormatted, err := meter.Int64Counter(
		"mystique.readings.formatted.total",
		metric.WithDescription("Total number of card-style readings reformatted"),
		metric.WithUnit("{reading}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create readings_formatted counter: %w", err)
	}

	imageCacheLookups, err := meter.Int64Counter(
		"mystique.image.cache.lookups.total",
		metric.WithDescription("Image analysis cache lookups, labeled by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create image_cache_lookups counter: %w", err)
	}

	sessionsActive, err := meter.Int64UpDownCounter(
		"mystique.sessions.active",
		metric.WithDescription("Number of live chat sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions_active gauge: %w", err)
	}

	return &MetricsCollector{
		meter:                meter,
		providerRequests:     providerRequests,
		providerTokensInput:  providerTokensInput,
		providerTokensOutput: providerTokensOutput,
		providerLatency:      providerLatency,
		readingsFormatted:    readingsFormatted,
		imageCacheLookups:    imageCacheLookups,
		sessionsActive:       sessionsActive,
	}, nil
}

// Handler exposes the Prometheus scrape endpoint. The HTTP server mounts it
// at /metrics.
func (m *MetricsCollector) Handler() http.Handler {
	return promclient.Handler()
}

// RecordProviderRequest records one completion call.
func (m *MetricsCollector) RecordProviderRequest(ctx context.Context, model, status string, latency time.Duration, inputTokens, outputTokens int) {
	if m == nil || m.providerRequests == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("model", model),
		attribute.String("status", status),
	}

	m.providerRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.providerTokensInput.Add(ctx, int64(inputTokens), metric.WithAttributes(attribute.String("model", model)))
	m.providerTokensOutput.Add(ctx, int64(outputTokens), metric.WithAttributes(attribute.String("model", model)))
	m.providerLatency.Record(ctx, latency.Seconds(), metric.WithAttributes(attrs...))
}

// RecordFormattedReading counts one reading reshaped by the formatter.
func (m *MetricsCollector) RecordFormattedReading(ctx context.Context, spread string) {
	if m == nil || m.readingsFormatted == nil {
		return
	}
	m.readingsFormatted.Add(ctx, 1, metric.WithAttributes(attribute.String("spread", spread)))
}

// RecordImageCacheLookup counts a cache hit or miss on image analysis.
func (m *MetricsCollector) RecordImageCacheLookup(ctx context.Context, hit bool) {
	if m == nil || m.imageCacheLookups == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.imageCacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// IncrementActiveSessions bumps the live session gauge.
func (m *MetricsCollector) IncrementActiveSessions(ctx context.Context) {
	if m == nil || m.sessionsActive == nil {
		return
	}
	m.sessionsActive.Add(ctx, 1)
}

// DecrementActiveSessions drops the live session gauge, used on sweep.
func (m *MetricsCollector) DecrementActiveSessions(ctx context.Context, count int) {
	if m == nil || m.sessionsActive == nil || count <= 0 {
		return
	}
	m.sessionsActive.Add(ctx, -int64(count))
}
