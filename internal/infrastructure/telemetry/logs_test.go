package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// recordingProcessor keeps every emitted record
type recordingProcessor struct {
	records []sdklog.Record
}

func (p *recordingProcessor) OnEmit(_ context.Context, r *sdklog.Record) error {
	p.records = append(p.records, r.Clone())
	return nil
}
func (p *recordingProcessor) Shutdown(context.Context) error   { return nil }
func (p *recordingProcessor) ForceFlush(context.Context) error { return nil }

func TestNewLoggerProvider_Disabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), LogsConfig{ServiceName: "storefront-test"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(context.Background()))

	base := zap.NewNop()
	assert.Same(t, base, lp.Bridge(base, zapcore.InfoLevel))
	assert.False(t, NewZapOTELCore(lp, zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
}

func TestLoggerProvider_Bridge(t *testing.T) {
	processor := &recordingProcessor{}
	lp, err := NewLoggerProviderWithProcessor(LogsConfig{ServiceName: "storefront-test"}, processor, zap.NewNop())
	require.NoError(t, err)
	defer lp.Shutdown(context.Background())

	core, logs := observer.New(zapcore.DebugLevel)
	logger := lp.Bridge(zap.New(core), zapcore.WarnLevel)

	logger.Info("cart restored")
	logger.Warn("cart persist failed", zap.String("cart_key", "cart:1"))

	assert.Equal(t, 2, logs.Len(), "base core keeps every entry")
	require.Len(t, processor.records, 1, "otel core only gets warn and above")
	assert.Equal(t, "cart persist failed", processor.records[0].Body().AsString())
}

func TestLevelFilterCore_With(t *testing.T) {
	core, _ := observer.New(zapcore.DebugLevel)
	filtered := &levelFilterCore{Core: core, minLevel: zapcore.ErrorLevel}

	child := filtered.With([]zapcore.Field{zap.String("k", "v")})
	assert.False(t, child.Enabled(zapcore.WarnLevel))
	assert.True(t, child.Enabled(zapcore.ErrorLevel))
}
