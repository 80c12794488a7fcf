package tracing

import (
	"context"
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/warptools/devicectl/devapi"
)

func recorder() (*tracetest.SpanRecorder, context.Context) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	return sr, SetTracer(context.Background(), tp.Tracer("test"))
}

func TestEndWithStatus(t *testing.T) {
	sr, ctx := recorder()

	_, span := Start(ctx, "ok")
	EndWithStatus(span, nil)

	_, span = Start(ctx, "failed")
	EndWithStatus(span, devapi.ErrorDeviceTimeout("10.0.0.2", "miIO.info"))

	_, span = Start(ctx, "plain")
	EndWithStatus(span, errors.New("boom"))

	ended := sr.Ended()
	qt.Assert(t, ended, qt.HasLen, 3)
	qt.Assert(t, ended[0].Status().Code, qt.Equals, codes.Ok)

	qt.Assert(t, ended[1].Status().Code, qt.Equals, codes.Error)
	qt.Assert(t, ended[1].Attributes(), qt.HasLen, 1)
	qt.Assert(t, ended[1].Attributes()[0], qt.Equals, attribute.String(AttrKeyDevicectlErrorCode, devapi.ECodeDeviceTimeout))
	qt.Assert(t, ended[2].Attributes(), qt.HasLen, 1)
	qt.Assert(t, ended[2].Attributes()[0], qt.Equals, attribute.String(AttrKeyDevicectlErrorCode, devapi.ECodeUnknown))
}

func TestNoTracer(t *testing.T) {
	// Without a tracer in context, spans are no-ops and nothing panics.
	ctx, span := Start(context.Background(), "noop")
	qt.Assert(t, span.SpanContext().IsValid(), qt.IsFalse)
	SetSpanError(ctx, errors.New("ignored"))
	span.End()

	ctx = SetTracer(context.Background(), nil)
	qt.Assert(t, TracerFromCtx(ctx), qt.IsNotNil)
}
