package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCollectorIsInert(t *testing.T) {
	t.Parallel()

	collector, err := NewMetricsCollector(MetricsConfig{Enabled: false})
	require.NoError(t, err)

	ctx := context.Background()
	collector.RecordProviderRequest(ctx, "m", "ok", time.Second, 10, 5)
	collector.RecordFormattedReading(ctx, "single_card")
	collector.RecordImageCacheLookup(ctx, true)
	collector.IncrementActiveSessions(ctx)
	collector.DecrementActiveSessions(ctx, 3)
}

func TestNilCollectorIsSafe(t *testing.T) {
	t.Parallel()

	var collector *MetricsCollector
	ctx := context.Background()
	collector.RecordProviderRequest(ctx, "m", "error", time.Second, 0, 0)
	collector.IncrementActiveSessions(ctx)
}

func TestEnabledCollectorRegistersInstruments(t *testing.T) {
	collector, err := NewMetricsCollector(MetricsConfig{Enabled: true})
	require.NoError(t, err)
	assert.NotNil(t, collector.Handler())

	ctx := context.Background()
	collector.RecordProviderRequest(ctx, "test-model", "ok", 250*time.Millisecond, 100, 40)
	collector.RecordFormattedReading(ctx, "single_card")
	collector.IncrementActiveSessions(ctx)
	collector.DecrementActiveSessions(ctx, 1)
}
