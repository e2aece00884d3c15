package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/theoremus-urban-solutions/ais-shipdomain/config"
	"go.opentelemetry.io/otel"
)

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), config.TracingConfig{})
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("noop shutdown: %v", err)
	}

	_, span := otel.Tracer(TracerName).Start(context.Background(), "noop")
	if span.SpanContext().IsValid() {
		t.Error("disabled tracing should yield invalid span contexts")
	}
	span.End()
}

func TestInitTracingStdoutExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	prev := stdoutWriter
	stdoutWriter = &buf
	t.Cleanup(func() {
		stdoutWriter = prev
		_, _ = InitTracing(context.Background(), config.TracingConfig{})
	})

	shutdown, err := InitTracing(context.Background(), config.TracingConfig{
		Enabled:     true,
		Exporter:    "stdout",
		ServiceName: "shipdomain-test",
		SampleRatio: 1,
	})
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}

	_, span := otel.Tracer(TracerName).Start(context.Background(), "ais.report")
	span.End()
	ShutdownWithTimeout(context.Background(), shutdown)

	if !strings.Contains(buf.String(), "ais.report") {
		t.Errorf("exported spans missing ais.report: %q", buf.String())
	}
}

func TestInitTracingUnsupportedExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), config.TracingConfig{Enabled: true, Exporter: "zipkin", SampleRatio: 1})
	if err == nil {
		t.Fatal("expected error for unsupported exporter")
	}
}

func TestShutdownWithTimeoutNil(t *testing.T) {
	ShutdownWithTimeout(context.Background(), nil)
}
