package otelhelper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordingTracer(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider, err := NewTracerProvider("autoflow-test", sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)

	return recorder, provider
}

func TestStartSpanAndSetError(t *testing.T) {
	recorder, provider := recordingTracer(t)

	_, span := StartSpan(t.Context(), provider.Tracer("test"), "trigger.handle",
		attribute.String(EventTypeKey, "order_created"))
	SetError(span, errors.New("payload rejected"), attribute.String(AutomationIDKey, "aut_001"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	ended := spans[0]
	assert.Equal(t, "trigger.handle", ended.Name())
	assert.Equal(t, codes.Error, ended.Status().Code)
	assert.Equal(t, "payload rejected", ended.Status().Description)
	assert.Contains(t, ended.Attributes(), attribute.String(EventTypeKey, "order_created"))
	assert.Equal(t, "autoflow-test", serviceName(ended))

	require.Len(t, ended.Events(), 1)
	assert.Equal(t, "exception", ended.Events()[0].Name)
	assert.Contains(t, ended.Events()[0].Attributes, attribute.String(AutomationIDKey, "aut_001"))
}

func TestSetErrorNil(t *testing.T) {
	recorder, provider := recordingTracer(t)

	_, span := StartSpan(t.Context(), provider.Tracer("test"), "noop")
	SetError(span, nil)
	span.End()

	ended := recorder.Ended()[0]
	assert.Equal(t, codes.Unset, ended.Status().Code)
	assert.Empty(t, ended.Events())
}

func TestSetOutcome(t *testing.T) {
	recorder, provider := recordingTracer(t)
	tracer := provider.Tracer("test")

	_, ok := StartSpan(t.Context(), tracer, "automation.execute")
	SetOutcome(ok, "success", "")
	ok.End()

	_, failed := StartSpan(t.Context(), tracer, "automation.execute")
	SetOutcome(failed, "failed", "slack webhook returned 403")
	failed.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String(ExecutionStatusKey, "success"))

	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "slack webhook returned 403", spans[1].Status().Description)
	assert.Contains(t, spans[1].Attributes(), attribute.String(ExecutionStatusKey, "failed"))
}

func TestNoopTracer(t *testing.T) {
	_, span := StartSpan(t.Context(), NoopTracer(), "noop")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
}

func serviceName(span sdktrace.ReadOnlySpan) string {
	for _, kv := range span.Resource().Attributes() {
		if kv.Key == "service.name" {
			return kv.Value.AsString()
		}
	}

	return ""
}
