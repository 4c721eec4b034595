package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitTracer_Disabled(t *testing.T) {
	tp, err := InitTracer(Config{ServiceName: "storefront-test"})
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, Shutdown(context.Background(), tp))
}

func TestShutdown_SDKProvider(t *testing.T) {
	tp := sdktrace.NewTracerProvider()

	assert.NoError(t, Shutdown(context.Background(), tp))
}
