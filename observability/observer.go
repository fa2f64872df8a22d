package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/minject/di"
	"github.com/kbukum/minject/errors"
)

// ResolutionObserver turns resolve events into spans and metrics. Events
// arrive after the provider finished, so each span is recorded with the
// event's own start and end time.
type ResolutionObserver struct {
	tracer  trace.Tracer
	metrics *Metrics
}

var _ di.Observer = (*ResolutionObserver)(nil)

// NewResolutionObserver creates an observer on the given providers. Nil
// providers fall back to the global ones.
func NewResolutionObserver(tp trace.TracerProvider, mp metric.MeterProvider) (*ResolutionObserver, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	metrics, err := NewMetrics(mp.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}
	return &ResolutionObserver{
		tracer:  tp.Tracer(instrumentationName),
		metrics: metrics,
	}, nil
}

// OnResolve records ev.
func (o *ResolutionObserver) OnResolve(ev di.ResolveEvent) {
	ctx := context.Background()
	attrs := []attribute.KeyValue{
		attribute.String(AttrKey, string(ev.Key)),
		attribute.String(AttrKind, string(ev.Kind)),
		attribute.String(AttrScope, ev.Scope),
		attribute.Int(AttrDepth, ev.Depth),
	}

	_, span := o.tracer.Start(ctx, SpanResolve,
		trace.WithTimestamp(ev.Start),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)

	code := errorCode(ev.Err)
	if ev.Err != nil {
		span.RecordError(ev.Err)
		span.SetAttributes(attribute.String(AttrCode, code))
		span.SetStatus(codes.Error, ev.Err.Error())
	}
	span.End(trace.WithTimestamp(ev.Start.Add(ev.Duration)))

	o.metrics.RecordResolution(ctx, string(ev.Key), string(ev.Kind), code, ev.Duration)
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return string(errors.ErrCodeInternal)
}
