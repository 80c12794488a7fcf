package util

import (
	"context"
	"os"

	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/warptools/devicectl/devapi"
	"github.com/warptools/devicectl/pkg/logging"
)

// Module names the tracer and the traced service.
const Module = "github.com/warptools/devicectl"

const logTag = "trace"

// NewTracingProvider builds a tracer provider exporting to every sink enabled by the trace.* flags.
// With no sink enabled it returns nil.
//
// Errors:
//
//   - devicectl-error-initialization -- a sink or the service resource could not be set up
func NewTracingProvider(c *cli.Context) (*sdktrace.TracerProvider, error) {
	var sinks []sdktrace.SpanExporter
	if path := c.String("trace.file"); path != "" {
		exp, err := traceFile(c.Context, path)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, exp)
	}
	if c.Bool("trace.http.enable") {
		exp, err := traceHTTP(c)
		if err != nil {
			shutdownAll(c.Context, sinks)
			return nil, err
		}
		sinks = append(sinks, exp)
	}
	if len(sinks) == 0 {
		return nil, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(c.App.Name),
		semconv.ServiceVersionKey.String(c.App.Version),
		semconv.ServiceNamespaceKey.String(Module),
	))
	if err == nil {
		res, err = resource.Merge(res, resource.Environment())
	}
	if err != nil {
		shutdownAll(c.Context, sinks)
		return nil, devapi.ErrorInitialization("cannot describe devicectl for tracing", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	for _, exp := range sinks {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func shutdownAll(ctx context.Context, sinks []sdktrace.SpanExporter) {
	for _, exp := range sinks {
		_ = exp.Shutdown(ctx)
	}
}

// traceHTTP exports to an OTLP collector.
func traceHTTP(c *cli.Context) (sdktrace.SpanExporter, error) {
	log := logging.Ctx(c.Context)
	var opts []otlptracehttp.Option
	if endpoint := c.String("trace.http.endpoint"); endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}
	if c.Bool("trace.http.insecure") {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	log.Debug(logTag, "otlp endpoint=%q insecure=%t", c.String("trace.http.endpoint"), c.Bool("trace.http.insecure"))
	exp, err := otlptrace.New(c.Context, otlptracehttp.NewClient(opts...))
	if err != nil {
		return nil, devapi.ErrorInitialization("cannot reach trace collector", err)
	}
	return exp, nil
}

// spanFile writes spans as indented JSON and owns the file it writes to.
type spanFile struct {
	*stdouttrace.Exporter
	f *os.File
}

func (s *spanFile) Shutdown(ctx context.Context) error {
	err := s.Exporter.Shutdown(ctx)
	if cerr := s.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// traceFile truncates path and exports spans into it.
func traceFile(ctx context.Context, path string) (sdktrace.SpanExporter, error) {
	logging.Ctx(ctx).Debug(logTag, "writing spans to %s", path)
	f, err := os.Create(path)
	if err != nil {
		return nil, devapi.ErrorInitialization("cannot open trace file", err)
	}
	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(f),
		stdouttrace.WithPrettyPrint(),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		f.Close()
		return nil, devapi.ErrorInitialization("cannot open trace file", err)
	}
	return &spanFile{Exporter: exp, f: f}, nil
}
