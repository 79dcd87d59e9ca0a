package tracing_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/olgasafonova/dokuwiki-tools/doku"
	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
	"github.com/olgasafonova/dokuwiki-tools/tracing"
	"github.com/olgasafonova/dokuwiki-tools/xmlrpc"
)

const lockedFault = `<?xml version="1.0"?>
<methodResponse><fault><value><struct>
<member><name>faultCode</name><value><int>121</int></value></member>
<member><name>faultString</name><value><string>The page is currently locked</string></value></member>
</struct></value></fault></methodResponse>`

// recordSpans installs an in-memory tracer provider for the test.
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func attr(s sdktrace.ReadOnlySpan, key attribute.Key) string {
	for _, kv := range s.Attributes() {
		if kv.Key == key {
			return kv.Value.Emit()
		}
	}
	return ""
}

// wikiClient returns a client for a wiki that serves "test:start" and
// answers every other page with a lock fault.
func wikiClient(t *testing.T) *doku.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "<string>test:start</string>") {
			_, _ = w.Write([]byte(xmlrpc.Serialize(xmlrpc.Response(xmlrpc.String("====== Start ======")))))
			return
		}
		_, _ = w.Write([]byte(lockedFault))
	}))
	t.Cleanup(server.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return doku.NewClient(doku.Config{ServerRoot: server.URL}, logger)
}

func TestGetPage_Span(t *testing.T) {
	rec := recordSpans(t)

	if _, err := wikiClient(t).GetPage(context.Background(), "test:start"); err != nil {
		t.Fatalf("GetPage: %v", err)
	}

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	s := spans[0]
	if s.Name() != "xmlrpc.wiki.getPage" {
		t.Errorf("span name = %q", s.Name())
	}
	for key, want := range map[attribute.Key]string{
		"rpc.system":      "xmlrpc",
		"rpc.method":      "wiki.getPage",
		"dokuwiki.target": "test:start",
	} {
		if got := attr(s, key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if s.Status().Code == codes.Error {
		t.Errorf("successful call marked failed: %+v", s.Status())
	}
	if len(s.Events()) != 0 {
		t.Errorf("unexpected events: %+v", s.Events())
	}
}

func TestGetPage_FaultRecordedOnSpan(t *testing.T) {
	rec := recordSpans(t)

	_, err := wikiClient(t).GetPage(context.Background(), "test:locked")
	if !apierrors.IsFault(err) {
		t.Fatalf("expected fault, got %v", err)
	}

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	s := spans[0]
	if s.Status().Code != codes.Error || !strings.Contains(s.Status().Description, "currently locked") {
		t.Errorf("status = %+v", s.Status())
	}
	events := s.Events()
	if len(events) != 1 || events[0].Name != "exception" {
		t.Fatalf("events = %+v, want one exception", events)
	}
	var msg string
	for _, kv := range events[0].Attributes {
		if kv.Key == "exception.message" {
			msg = kv.Value.AsString()
		}
	}
	if !strings.Contains(msg, "121") {
		t.Errorf("exception.message = %q, want fault code", msg)
	}
}

func TestRecordError_NilLeavesSpanUnset(t *testing.T) {
	rec := recordSpans(t)

	_, ok := tracing.StartSpan(context.Background(), "ok")
	tracing.RecordError(ok, nil)
	ok.End()

	_, failed := tracing.StartSpan(context.Background(), "failed")
	tracing.RecordError(failed, errors.New("boom"))
	failed.End()

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	if spans[0].Status().Code != codes.Unset || len(spans[0].Events()) != 0 {
		t.Errorf("nil error changed span: %+v", spans[0].Status())
	}
	if spans[1].Status().Code != codes.Error || spans[1].Status().Description != "boom" {
		t.Errorf("status = %+v", spans[1].Status())
	}
}

func TestAttributeHelpers(t *testing.T) {
	rec := recordSpans(t)

	_, span := tracing.StartSpan(context.Background(), "helpers")
	tracing.AddToolAttributes(span, "dokuwiki_get_page", "read")
	tracing.AddRPCAttributes(span, "dokuwiki.login", "")
	tracing.AddArchiveAttributes(span, "a.zip", "")
	tracing.AddConversionAttributes(span, "a/8cf1.md", "8cf1")
	span.End()

	s := rec.Ended()[0]
	want := map[attribute.Key]string{
		"mcp.tool.name":     "dokuwiki_get_page",
		"mcp.tool.category": "read",
		"rpc.method":        "dokuwiki.login",
		"convert.archive":   "a.zip",
		"convert.input":     "a/8cf1.md",
		"convert.output":    "8cf1",
	}
	for key, v := range want {
		if got := attr(s, key); got != v {
			t.Errorf("%s = %q, want %q", key, got, v)
		}
	}
	// empty ids are not recorded
	for _, key := range []attribute.Key{"dokuwiki.target", "convert.document"} {
		if got := attr(s, key); got != "" {
			t.Errorf("%s = %q, want unset", key, got)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		enabled     bool
		service     string
		environment string
	}{
		{"off by default", nil, false, "dokuwiki-tools", "development"},
		{"explicit enable", map[string]string{"OTEL_ENABLED": "true"}, true, "dokuwiki-tools", "development"},
		{"endpoint enables", map[string]string{"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4318"}, true, "dokuwiki-tools", "development"},
		{"named service", map[string]string{"OTEL_SERVICE_NAME": "wikiconv", "OTEL_ENVIRONMENT": "production"}, false, "wikiconv", "production"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_SERVICE_NAME", "OTEL_ENVIRONMENT"} {
				t.Setenv(key, tt.env[key])
			}

			cfg := tracing.DefaultConfig()
			if cfg.Enabled != tt.enabled {
				t.Errorf("Enabled = %v, want %v", cfg.Enabled, tt.enabled)
			}
			if cfg.ServiceName != tt.service {
				t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, tt.service)
			}
			if cfg.Environment != tt.environment {
				t.Errorf("Environment = %q, want %q", cfg.Environment, tt.environment)
			}
			if cfg.OTLPEndpoint != tt.env["OTEL_EXPORTER_OTLP_ENDPOINT"] {
				t.Errorf("OTLPEndpoint = %q", cfg.OTLPEndpoint)
			}
		})
	}
}

func TestSetup_DisabledInstallsNothing(t *testing.T) {
	prev := otel.GetTracerProvider()

	shutdown, err := tracing.Setup(context.Background(), tracing.Config{Enabled: false})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if otel.GetTracerProvider() != prev {
		t.Error("disabled Setup replaced the global provider")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestSetup_SampleRate(t *testing.T) {
	tests := []struct {
		name    string
		rate    float64
		sampled bool
	}{
		{"always", 1.0, true},
		{"above one clamps to always", 1.5, true},
		{"never", 0, false},
		{"below zero clamps to never", -0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := otel.GetTracerProvider()
			t.Cleanup(func() { otel.SetTracerProvider(prev) })

			shutdown, err := tracing.Setup(context.Background(), tracing.Config{
				ServiceName: "test", Enabled: true, SampleRate: tt.rate,
			})
			if err != nil {
				t.Fatalf("Setup: %v", err)
			}

			_, span := tracing.StartSpan(context.Background(), "sampled")
			got := span.SpanContext().IsSampled()
			// End after reading: a sampled span is exported to stdout on shutdown.
			span.End()
			if got != tt.sampled {
				t.Errorf("sampled = %v, want %v", got, tt.sampled)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Errorf("shutdown: %v", err)
			}
		})
	}
}
