package util

import (
	"context"
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/warptools/devicectl/pkg/tracing"
)

func TestChainCmdMiddleware(t *testing.T) {
	var order []string
	mw := func(tag string) func(cli.ActionFunc) cli.ActionFunc {
		return func(next cli.ActionFunc) cli.ActionFunc {
			return func(c *cli.Context) error {
				order = append(order, tag)
				return next(c)
			}
		}
	}
	action := ChainCmdMiddleware(func(*cli.Context) error {
		order = append(order, "action")
		return nil
	}, mw("outer"), mw("inner"))

	qt.Assert(t, action(&cli.Context{}), qt.IsNil)
	qt.Assert(t, order, qt.DeepEquals, []string{"outer", "inner", "action"})
}

func TestCmdMiddlewareTracingSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	ctx := tracing.SetTracer(context.Background(), tp.Tracer("test"))

	boom := errors.New("boom")
	app := &cli.App{
		Name: "devicectl",
		Commands: []*cli.Command{
			{Name: "ok", Action: CmdMiddlewareTracingSpan(func(*cli.Context) error { return nil })},
			{Name: "fail", Action: CmdMiddlewareTracingSpan(func(*cli.Context) error { return boom })},
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}
	qt.Assert(t, app.RunContext(ctx, []string{"devicectl", "ok"}), qt.IsNil)
	qt.Assert(t, app.RunContext(ctx, []string{"devicectl", "fail"}), qt.Equals, boom)

	ended := sr.Ended()
	qt.Assert(t, ended, qt.HasLen, 2)
	qt.Assert(t, ended[0].Name(), qt.Equals, "devicectl ok")
	qt.Assert(t, ended[0].Status().Code, qt.Equals, codes.Unset)
	qt.Assert(t, ended[1].Name(), qt.Equals, "devicectl fail")
	qt.Assert(t, ended[1].Status().Code, qt.Equals, codes.Error)
}
