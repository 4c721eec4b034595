package storage

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("storefront-storage")

// TracingStore wraps a Store with a span per call.
type TracingStore struct {
	inner   Store
	backend string
}

// NewTracingStore decorates s. backend names the span attribute, e.g. "redis".
func NewTracingStore(s Store, backend string) *TracingStore {
	return &TracingStore{inner: s, backend: backend}
}

func (t *TracingStore) start(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "storage."+op,
		trace.WithAttributes(
			attribute.String("storage.backend", t.backend),
			attribute.String("storage.key", key),
		),
	)
}

func (t *TracingStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := t.start(ctx, "Get", key)
	defer span.End()

	v, err := t.inner.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		span.SetAttributes(attribute.Bool("storage.hit", false))
	case err != nil:
		recordError(span, err)
	default:
		span.SetAttributes(
			attribute.Bool("storage.hit", true),
			attribute.Int("storage.bytes", len(v)),
		)
	}
	return v, err
}

func (t *TracingStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, span := t.start(ctx, "Set", key)
	defer span.End()

	span.SetAttributes(attribute.Int("storage.bytes", len(value)))
	err := t.inner.Set(ctx, key, value)
	recordError(span, err)
	return err
}

func (t *TracingStore) Delete(ctx context.Context, key string) error {
	ctx, span := t.start(ctx, "Delete", key)
	defer span.End()

	err := t.inner.Delete(ctx, key)
	recordError(span, err)
	return err
}

func (t *TracingStore) Ping(ctx context.Context) error {
	return Ping(ctx, t.inner)
}

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
