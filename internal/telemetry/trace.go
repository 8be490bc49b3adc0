package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of build spans.
const TracerName = "github.com/azle-dev/azle"

// Span attribute keys.
const (
	AttrCanister = attribute.Key("azle.canister")
	AttrStage    = attribute.Key("azle.stage")
	AttrCode     = attribute.Key("azle.error_code")
)

// Tracer returns the build tracer from tp, or from the global provider when
// tp is nil.
func Tracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(TracerName)
}

// StartStage starts the span for one pipeline stage.
func StartStage(ctx context.Context, tracer trace.Tracer, canister, stage string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "azle."+stage,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			AttrCanister.String(canister),
			AttrStage.String(stage),
		),
	)
}

// EndStage records the stage outcome on span and ends it. code is the
// error code when err is a coded error.
func EndStage(span trace.Span, code string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if code != "" {
			span.SetAttributes(AttrCode.String(code))
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
