package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := Logger
	InitWithWriter("storefront-test", buf)
	t.Cleanup(func() { Logger = prev })
	return buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestInfo_CarriesServiceName(t *testing.T) {
	buf := captureLogs(t)

	Info(context.Background()).Str("key", "cart-store").Msg("saved")

	line := decodeLine(t, buf)
	assert.Equal(t, "storefront-test", line["service"])
	assert.Equal(t, "cart-store", line["key"])
	assert.Equal(t, "saved", line["message"])
	assert.NotContains(t, line, "trace_id")
}

func TestWithContext_AddsTraceIDs(t *testing.T) {
	buf := captureLogs(t)
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	Warn(ctx).Msg("malformed snapshot")

	line := decodeLine(t, buf)
	assert.Equal(t, span.SpanContext().TraceID().String(), line["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), line["span_id"])
}

func TestComponent(t *testing.T) {
	buf := captureLogs(t)

	l := Component("storage")
	l.Error().Msg("write failed")

	line := decodeLine(t, buf)
	assert.Equal(t, "storage", line["component"])
	assert.Equal(t, "error", line["level"])
}
