package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/warptools/devicectl/devapi"
)

type ctxKey struct{}

// TracerFromCtx returns the tracer set for the current context.
// If no tracer is currently set in ctx, a new no-op tracer will be returned.
func TracerFromCtx(ctx context.Context) trace.Tracer {
	tracer, ok := ctx.Value(ctxKey{}).(trace.Tracer)
	// tracer should not be nil here because SetTracer should check for that.
	if !ok {
		return trace.NewNoopTracerProvider().Tracer("")
	}
	return tracer
}

// SetTracer returns a new context with the given tracer associated with it.
// Setting the tracer to nil will create a noop tracer and insert it into the context.
func SetTracer(ctx context.Context, tracer trace.Tracer) context.Context {
	if tracer == nil {
		tracer = trace.NewNoopTracerProvider().Tracer("")
	}
	if existing, ok := ctx.Value(ctxKey{}).(trace.Tracer); ok {
		if existing == tracer {
			// Do not store same object twice.
			return ctx
		}
	}
	return context.WithValue(ctx, ctxKey{}, tracer)
}

// Start is a shortcut for retrieving the context tracer and calling Start.
// Start creates a span and a context.Context containing the newly-created span.
//
// If the current context does not contain a tracer then a new no-op tracer will be created for the new context.
// See go.opentelemetry.io/otel/trace.Tracer.Start for more information on the Start function.
func Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return TracerFromCtx(ctx).Start(ctx, spanName, opts...)
}

// EndWithStatus records err on span (if any) and ends it.
// Meant to be deferred with a named error return.
func EndWithStatus(span trace.Span, err error) {
	if err != nil {
		setError(span, err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// SetSpanError is a helper function to set the span error based on a serum error code
func SetSpanError(ctx context.Context, err error) {
	setError(trace.SpanFromContext(ctx), err)
}

func setError(span trace.Span, err error) {
	code := devapi.Code(err)
	if code == "" {
		code = devapi.ECodeUnknown
	}
	span.SetAttributes(
		attribute.String(AttrKeyDevicectlErrorCode, code),
	)
	span.SetStatus(codes.Error, err.Error())
}
