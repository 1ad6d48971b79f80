package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// SessionCounter reports how many carts are currently held in memory.
type SessionCounter interface {
	Len() int
}

// CartMetrics records cart engine activity. It satisfies the metrics port of
// the cart application layer.
type CartMetrics struct {
	logger *zap.Logger

	mutationsTotal       *Counter
	persistFailuresTotal *Counter
	restoreTotal         *Counter
	activeSessions       *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// CartMetricsConfig holds configuration for cart metrics.
type CartMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewCartMetrics creates the cart instruments on the given meter.
func NewCartMetrics(cfg CartMetricsConfig) (*CartMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &CartMetrics{
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	var err error
	cm.mutationsTotal, err = NewCounter(cfg.Meter,
		"storefront_cart_mutations_total",
		"Cart mutations that changed cart contents",
		"{mutations}",
	)
	if err != nil {
		return nil, err
	}

	cm.persistFailuresTotal, err = NewCounter(cfg.Meter,
		"storefront_cart_persist_failures_total",
		"Write-through saves that failed; the in-memory cart was kept",
		"{failures}",
	)
	if err != nil {
		return nil, err
	}

	cm.restoreTotal, err = NewCounter(cfg.Meter,
		"storefront_cart_restore_total",
		"Cart restores from storage by outcome",
		"{restores}",
	)
	if err != nil {
		return nil, err
	}

	cm.activeSessions, err = NewGauge(cfg.Meter,
		"storefront_cart_active_sessions",
		"Carts currently held in memory",
		"{sessions}",
	)
	if err != nil {
		return nil, err
	}

	return cm, nil
}

// RecordMutation counts one state-changing cart operation.
func (cm *CartMetrics) RecordMutation(ctx context.Context, operation string) {
	cm.mutationsTotal.Inc(ctx, AttrOperation.String(operation))
}

// RecordPersistFailure counts one failed write-through.
func (cm *CartMetrics) RecordPersistFailure(ctx context.Context) {
	cm.persistFailuresTotal.Inc(ctx)
}

// RecordRestore counts one restore attempt.
func (cm *CartMetrics) RecordRestore(ctx context.Context, outcome string) {
	cm.restoreTotal.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordActiveSessions sets the in-memory session gauge.
func (cm *CartMetrics) RecordActiveSessions(ctx context.Context, n int) {
	cm.activeSessions.Record(ctx, int64(n))
}

// StartPeriodicCollection samples the session count every interval until
// ctx is done or Stop is called. Only the first call starts a collector.
func (cm *CartMetrics) StartPeriodicCollection(ctx context.Context, sessions SessionCounter, interval time.Duration) {
	cm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}
		go cm.runPeriodicCollection(ctx, sessions, interval)
	})
}

func (cm *CartMetrics) runPeriodicCollection(ctx context.Context, sessions SessionCounter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cm.RecordActiveSessions(ctx, sessions.Len())

	for {
		select {
		case <-cm.stopChan:
			cm.logger.Info("Stopping periodic cart metrics collection")
			return
		case <-ctx.Done():
			cm.logger.Info("Context cancelled, stopping periodic cart metrics collection")
			return
		case <-ticker.C:
			cm.RecordActiveSessions(ctx, sessions.Len())
		}
	}
}

// Stop stops the periodic collection.
func (cm *CartMetrics) Stop() {
	cm.stopOnce.Do(func() {
		close(cm.stopChan)
	})
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewCartMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
