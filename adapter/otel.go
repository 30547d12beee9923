// Package adapter provides adapters for arena-coder integration with external systems.
package adapter

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/srediag/arena-coder"

// OTel traces plugin calls and measures project generation.
type OTel struct {
	tracer    trace.Tracer
	generated metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewOTel builds the adapter on the given providers; nil providers are
// replaced by no-op ones.
func NewOTel(tp trace.TracerProvider, mp metric.MeterProvider) (*OTel, error) {
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}
	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}
	meter := mp.Meter(instrumentationName)
	generated, err := meter.Int64Counter("arena_coder.projects",
		metric.WithDescription("Projects generation attempts."))
	if err != nil {
		return nil, fmt.Errorf("adapter: projects counter: %w", err)
	}
	duration, err := meter.Float64Histogram("arena_coder.generation.duration",
		metric.WithDescription("Time spent generating a project."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("adapter: generation histogram: %w", err)
	}
	return &OTel{
		tracer:    tp.Tracer(instrumentationName),
		generated: generated,
		duration:  duration,
	}, nil
}

// NopOTel returns an adapter that records nothing.
func NopOTel() *OTel {
	o, err := NewOTel(nil, nil)
	if err != nil {
		panic(err)
	}
	return o
}

// StartSpan starts a span named name.
func (o *OTel) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan marks span failed when err is not nil and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// RecordGeneration counts one generation attempt for language and records its duration.
func (o *OTel) RecordGeneration(ctx context.Context, language string, d time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("language", language),
		attribute.Bool("success", err == nil),
	)
	o.generated.Add(ctx, 1, attrs)
	o.duration.Record(ctx, d.Seconds(), attrs)
}
