// Package otelhelper provides distributed tracing for the trigger pipeline.
package otelhelper

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otlptracehttp "go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span attribute keys.
const (
	AutomationIDKey    = "autoflow.automation.id"
	EventTypeKey       = "autoflow.event.type"
	EventIDKey         = "autoflow.event.id"
	ActionTypeKey      = "autoflow.action.type"
	ExecutionIDKey     = "autoflow.execution.id"
	ExecutionStatusKey = "autoflow.execution.status"
	ExecutionCountKey  = "autoflow.execution.count"
)

// NewTracer exports spans over OTLP/HTTP and installs the provider globally.
// The exporter reads the standard OTEL_EXPORTER_OTLP_* environment variables.
// The returned func flushes and stops the exporter.
// nolint:ireturn
func NewTracer(ctx context.Context, serviceName string) (trace.Tracer, func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, nil, err
	}

	provider, err := NewTracerProvider(serviceName, sdktrace.WithBatcher(exporter))
	if err != nil {
		return nil, nil, err
	}

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}))

	return provider.Tracer(serviceName), provider.Shutdown, nil
}

// NoopTracer returns a tracer that records nothing.
// nolint:ireturn
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("autoflow")
}

// nolint:ireturn,spancheck
func StartSpan(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// NewTracerProvider builds an always-sampling provider tagged with
// serviceName. Span processors or exporters come in through opts.
func NewTracerProvider(serviceName string, opts ...sdktrace.TracerProviderOption) (*sdktrace.TracerProvider, error) {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	opts = append(opts, sdktrace.WithResource(r), sdktrace.WithSampler(sdktrace.AlwaysSample()))

	return sdktrace.NewTracerProvider(opts...), nil
}
