// Package otel provides an OpenTelemetry trace handler for trialrun.
//
// A run becomes one span; every checkpoint becomes an event on it.
//
//	runner := trialrun.New(exp, trialrun.WithTrace(otel.New()))
//
// With explicit TracerProvider:
//
//	runner := trialrun.New(exp, trialrun.WithTrace(
//	    otel.New(otel.WithTracerProvider(tp)),
//	))
package otel

import (
	"context"

	"github.com/m-mizutani/trialrun/trace"
	otelAPI "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/m-mizutani/trialrun"
)

// Option is a functional option for configuring the OTel handler.
type Option func(*handler)

// WithTracerProvider sets an explicit TracerProvider.
// If not set, the global TracerProvider is used.
func WithTracerProvider(tp otelTrace.TracerProvider) Option {
	return func(h *handler) {
		h.tracerProvider = tp
	}
}

type handler struct {
	tracerProvider otelTrace.TracerProvider
	tracer         otelTrace.Tracer
}

// New creates a new OTel trace handler.
func New(opts ...Option) trace.Handler {
	h := &handler{}
	for _, opt := range opts {
		opt(h)
	}

	if h.tracerProvider == nil {
		h.tracerProvider = otelAPI.GetTracerProvider()
	}
	h.tracer = h.tracerProvider.Tracer(tracerName)

	return h
}

func (h *handler) StartRun(ctx context.Context, info *trace.RunInfo) context.Context {
	name := "run"
	if info != nil && info.Experiment != "" {
		name = "run:" + info.Experiment
	}
	ctx, span := h.tracer.Start(ctx, name,
		otelTrace.WithSpanKind(otelTrace.SpanKindInternal),
	)
	if info != nil {
		span.SetAttributes(
			experimentAttr(info.Experiment),
			totalTrialsAttr(info.TotalTrials),
			logCadenceAttr(info.LogCadence),
			workersAttr(info.Workers),
			expectedAttr(info.Expected),
		)
	}
	return ctx
}

func (h *handler) Checkpoint(ctx context.Context, cp *trace.Checkpoint) {
	if cp == nil {
		return
	}
	span := otelTrace.SpanFromContext(ctx)
	span.AddEvent("checkpoint", otelTrace.WithAttributes(
		batchAttr(cp.Batch),
		trialsAttr(cp.Trials),
		successesAttr(cp.Successes),
		probabilityAttr(cp.Probability),
	))
}

func (h *handler) EndRun(ctx context.Context, summary *trace.Summary, err error) {
	span := otelTrace.SpanFromContext(ctx)
	if summary != nil {
		span.SetAttributes(
			trialsAttr(summary.Trials),
			successesAttr(summary.Successes),
			probabilityAttr(summary.Probability),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (h *handler) Finish(_ context.Context) error {
	// Spans are exported by the TracerProvider's SpanProcessor.
	return nil
}
