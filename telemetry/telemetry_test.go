package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rpcpool/boolidx/telemetry"
)

func TestStartSpan(t *testing.T) {
	ctx := context.Background()
	_, span := telemetry.StartSpan(ctx, "TestSpan")
	span.SetAttributes(attribute.String("test", "value"))
	span.End()
}

func TestStartDiskIOSpan(t *testing.T) {
	ctx := context.Background()
	_, span := telemetry.StartDiskIOSpan(ctx, "read", map[string]string{
		"path":   "/tmp/test",
		"offset": "0",
		"size":   "1024",
	})
	span.End()
}

func TestTraceExecutionTimePropagatesResult(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, telemetry.TraceExecutionTime(ctx, "SlowOperation", func() error {
		time.Sleep(time.Millisecond)
		return nil
	}))

	wantErr := errors.New("boom")
	err := telemetry.TraceExecutionTime(ctx, "FailingOperation", func() error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestTraceFunctionExecutionDoneEndsSpan(t *testing.T) {
	ctx := context.Background()
	_, span, done := telemetry.TraceFunctionExecution(ctx, "ImportantFunction")
	time.Sleep(time.Millisecond)
	done()
	assert.False(t, span.IsRecording(), "done() must end the span")
}

func TestTraceChunkIOStartsSpan(t *testing.T) {
	ctx := context.Background()
	_, span := telemetry.TraceChunkIO(ctx, "read", 42)
	span.End()
}

func TestTraceBuildReturnsWrappedResult(t *testing.T) {
	ctx := context.Background()
	n, err := telemetry.TraceBuild(ctx, func() (uint64, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)

	wantErr := errors.New("build failed")
	_, err = telemetry.TraceBuild(ctx, func() (uint64, error) {
		return 0, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestTracePersistPropagatesError(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, telemetry.TracePersist(ctx, "/tmp/idx", func() error { return nil }))

	wantErr := errors.New("disk full")
	err := telemetry.TracePersist(ctx, "/tmp/idx", func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)
}

func TestTraceLoadReturnsTermCount(t *testing.T) {
	ctx := context.Background()
	terms, err := telemetry.TraceLoad(ctx, "/tmp/idx", func() (uint64, error) {
		return 123, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(123), terms)
}

func TestTraceQueryStartsSpan(t *testing.T) {
	ctx := context.Background()
	_, span := telemetry.TraceQuery(ctx, "and")
	span.End()
}

func TestRecordErrorOnOpenSpan(t *testing.T) {
	ctx := context.Background()
	_, span := telemetry.StartSpan(ctx, "TestRecordError")
	defer span.End()
	telemetry.RecordError(span, errors.New("bad"), "operation failed")
}
