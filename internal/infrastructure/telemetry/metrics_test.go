package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/organicmart/storefront/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// collect gathers everything recorded on reader, keyed by instrument name
func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func newManualProvider(t *testing.T) (*telemetry.MeterProvider, *sdkmetric.ManualReader) {
	reader := sdkmetric.NewManualReader()
	mp, err := telemetry.NewMeterProviderWithReader(telemetry.MetricsConfig{ServiceName: "storefront-test"}, reader, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "storefront-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestMeterProviderWithReader(t *testing.T) {
	mp, reader := newManualProvider(t)
	assert.True(t, mp.IsEnabled())

	counter, err := telemetry.NewCounter(mp.Meter("test"), "test_total", "test counter", "{events}")
	require.NoError(t, err)

	counter.Inc(context.Background(), telemetry.AttrOperation.String("add"))
	counter.Add(context.Background(), 4, telemetry.AttrOperation.String("add"))

	got := collect(t, reader)
	sum, ok := got["test_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(5), sum.DataPoints[0].Value)
}

func TestHistogram_RecordDuration(t *testing.T) {
	mp, reader := newManualProvider(t)

	h, err := telemetry.NewHistogram(mp.Meter("test"), telemetry.HistogramOpts{
		Name:        "test_duration_seconds",
		Description: "test histogram",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	require.NoError(t, err)

	h.RecordDuration(context.Background(), 30*time.Millisecond)

	hist, ok := collect(t, reader)["test_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.Equal(t, telemetry.HTTPDurationBuckets, hist.DataPoints[0].Bounds)
}

func TestGauge_Record(t *testing.T) {
	mp, reader := newManualProvider(t)

	g, err := telemetry.NewGauge(mp.Meter("test"), "test_gauge", "test gauge", "{items}")
	require.NoError(t, err)

	g.Record(context.Background(), 7)
	g.Record(context.Background(), 3)

	gauge, ok := collect(t, reader)["test_gauge"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(3), gauge.DataPoints[0].Value)
}

func TestHelpers_WithNoopMeter(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	ctx := context.Background()

	c, err := telemetry.NewCounter(meter, "c", "", "")
	require.NoError(t, err)
	g, err := telemetry.NewGauge(meter, "g", "", "")
	require.NoError(t, err)
	h, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{Name: "h"})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		c.Inc(ctx)
		g.Record(ctx, 1)
		h.RecordDuration(ctx, time.Second)
	})
}
