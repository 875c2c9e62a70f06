package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetError marks span as failed. attrs are attached to the recorded exception
// event. A nil err leaves the span untouched.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if err == nil {
		return
	}

	span.RecordError(err, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, err.Error())
}

// SetOutcome tags span with the terminal status of an execution. Failures
// also set the span status so they show up as errors in the trace view.
func SetOutcome(span trace.Span, status, message string) {
	span.SetAttributes(attribute.String(ExecutionStatusKey, status))

	if message != "" {
		span.SetStatus(codes.Error, message)
	}
}
