package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestExtractFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &ZapLogger{logger: zap.New(core)}

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithAppID(ctx, "app-1")
	ctx = WithJob(ctx, "duplicate-detection")

	l.Infof(ctx, "scanned %d lookups", 3)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "scanned 3 lookups", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "app-1", fields["app_id"])
	assert.Equal(t, "duplicate-detection", fields["job"])
}

func TestNewZapLoggerLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		l, err := NewZapLogger(level)
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}
