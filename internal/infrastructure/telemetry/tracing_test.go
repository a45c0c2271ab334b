package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// useRecorder installs a recording tracer provider globally for the test
func useRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return tp, recorder
}

func attrMap(attrs []attribute.KeyValue) map[string]attribute.Value {
	out := make(map[string]attribute.Value, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value
	}
	return out
}

func TestStartSpan(t *testing.T) {
	_, recorder := useRecorder(t)

	ctx, span := StartSpan(context.Background(), "backfill.run",
		WithAttribute("batch", 50),
		WithAttribute("dry_run", false),
	)
	assert.NotEmpty(t, GetTraceID(ctx))
	SetOK(span)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "backfill.run", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, int64(50), attrs["batch"].AsInt64())
	assert.False(t, attrs["dry_run"].AsBool())
}

func TestStartServiceSpan(t *testing.T) {
	_, recorder := useRecorder(t)

	_, span := StartServiceSpan(context.Background(), "fulfillment", "place_order")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "fulfillment.place_order", spans[0].Name())
	assert.Equal(t, "place_order", attrMap(spans[0].Attributes())["service.method"].AsString())
}

func TestRecordError(t *testing.T) {
	_, recorder := useRecorder(t)

	_, span := StartSpan(context.Background(), "op")
	RecordError(span, nil)
	RecordError(span, errors.New("boom"))
	AddEvent(span, "retry", "attempt", 2, 7, "ignored")
	span.End()

	s := recorder.Ended()[0]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "boom", s.Status().Description)

	var names []string
	for _, ev := range s.Events() {
		names = append(names, ev.Name)
	}
	assert.Contains(t, names, "exception")
	assert.Contains(t, names, "retry")
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestToAttribute(t *testing.T) {
	assert.Equal(t, attribute.String("k", "v"), toAttribute("k", "v"))
	assert.Equal(t, attribute.Int64("k", 3), toAttribute("k", int64(3)))
	assert.Equal(t, attribute.Float64("k", 1.5), toAttribute("k", 1.5))
	assert.Equal(t, attribute.StringSlice("k", []string{"a"}), toAttribute("k", []string{"a"}))
	assert.Equal(t, attribute.String("k", "[1 2]"), toAttribute("k", []int{1, 2}))
}
