package telemetry

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LoggerOptions{Level: zapcore.InfoLevel})

	logger.Debug("hidden")
	logger.Info("compiling", zap.String("canister", "counter"))
	_ = logger.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message written at info level:\n%s", out)
	}
	if !strings.Contains(out, "INFO compiling") {
		t.Errorf("missing info line:\n%s", out)
	}
	if !strings.Contains(out, `"canister": "counter"`) {
		t.Errorf("missing field:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("color codes written with Color off:\n%q", out)
	}
}

func TestNewLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LoggerOptions{Level: zapcore.DebugLevel})

	logger.Debug("running", zap.String("cmd", "cargo build"))
	_ = logger.Sync()

	if !strings.Contains(buf.String(), "DEBUG running") {
		t.Errorf("missing debug line:\n%s", buf.String())
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
	l := zap.NewExample()
	if OrNop(l) != l {
		t.Error("OrNop should return a non-nil logger unchanged")
	}
}

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, trace.Tracer) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, Tracer(tp)
}

func TestStartStage(t *testing.T) {
	sr, tracer := newRecorder(t)

	ctx, span := StartStage(context.Background(), tracer, "counter", "compile")
	if trace.SpanFromContext(ctx) != span {
		t.Error("returned context does not carry the span")
	}
	EndStage(span, "", nil)

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	s := spans[0]
	if s.Name() != "azle.compile" {
		t.Errorf("span name = %q", s.Name())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}

	attrs := map[string]string{}
	for _, kv := range s.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["azle.canister"] != "counter" || attrs["azle.stage"] != "compile" {
		t.Errorf("attributes = %v", attrs)
	}
}

func TestEndStage_Error(t *testing.T) {
	sr, tracer := newRecorder(t)

	_, span := StartStage(context.Background(), tracer, "counter", "optimize")
	EndStage(span, "E141", stderrors.New("optimizer exited 1"))

	s := sr.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", s.Status().Code)
	}
	if s.Status().Description != "optimizer exited 1" {
		t.Errorf("description = %q", s.Status().Description)
	}
	if len(s.Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}

	var code string
	for _, kv := range s.Attributes() {
		if kv.Key == AttrCode {
			code = kv.Value.AsString()
		}
	}
	if code != "E141" {
		t.Errorf("error code attribute = %q, want E141", code)
	}
}

func TestTracer_Global(t *testing.T) {
	// The global provider is a no-op unless one is installed.
	_, span := StartStage(context.Background(), Tracer(nil), "counter", "compile")
	EndStage(span, "", nil)
}

func TestMetrics_Values(t *testing.T) {
	m := NewMetrics()

	m.ObserveStage("counter", "compile", 1500*time.Millisecond)
	m.SetArtifactSize("counter", PhaseUnoptimized, 4096)
	m.SetArtifactSize("counter", PhaseOptimized, 1024)
	m.SetExports("counter", 3)
	m.Finish("counter", nil, time.Unix(1700000000, 0))

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"stage", testutil.ToFloat64(m.stageDuration.WithLabelValues("counter", "compile")), 1.5},
		{"unoptimized", testutil.ToFloat64(m.artifactBytes.WithLabelValues("counter", PhaseUnoptimized)), 4096},
		{"optimized", testutil.ToFloat64(m.artifactBytes.WithLabelValues("counter", PhaseOptimized)), 1024},
		{"exports", testutil.ToFloat64(m.exports.WithLabelValues("counter")), 3},
		{"success", testutil.ToFloat64(m.success.WithLabelValues("counter")), 1},
		{"last run", testutil.ToFloat64(m.lastRun.WithLabelValues("counter")), 1700000000},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestMetrics_FinishFailure(t *testing.T) {
	m := NewMetrics()
	m.Finish("counter", stderrors.New("boom"), time.Now())

	if got := testutil.ToFloat64(m.success.WithLabelValues("counter")); got != 0 {
		t.Errorf("success = %v, want 0", got)
	}
}

func TestMetrics_WriteFile(t *testing.T) {
	m := NewMetrics()
	m.ObserveStage("counter", "compile", time.Second)
	m.Finish("counter", nil, time.Now())

	path := filepath.Join(t.TempDir(), "azle.prom")
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		"# TYPE azle_build_stage_duration_seconds gauge",
		`azle_build_stage_duration_seconds{canister="counter",stage="compile"} 1`,
		`azle_build_success{canister="counter"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics file missing %q:\n%s", want, text)
		}
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	m.ObserveStage("c", "s", time.Second)
	m.SetArtifactSize("c", PhaseOptimized, 1)
	m.SetExports("c", 1)
	m.Finish("c", nil, time.Now())
	if m.Registry() != nil {
		t.Error("nil Metrics should have nil registry")
	}
	if err := m.WriteFile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("WriteFile on nil Metrics = %v", err)
	}
}
