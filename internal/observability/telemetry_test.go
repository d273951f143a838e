package observability_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/lineup-dev/lineup/internal/observability"
)

type testPropagator struct{}

func (testPropagator) Inject(context.Context, propagation.TextMapCarrier) {}

func (testPropagator) Extract(ctx context.Context, _ propagation.TextMapCarrier) context.Context {
	return ctx
}

func (testPropagator) Fields() []string { return nil }

type testErrorHandler struct{}

func (testErrorHandler) Handle(error) {}

func TestSetupTelemetry_Disabled(t *testing.T) {
	origTP := otel.GetTracerProvider()
	origPropagator := otel.GetTextMapPropagator()
	origErrorHandler := otel.GetErrorHandler()

	t.Cleanup(func() {
		otel.SetTracerProvider(origTP)
		otel.SetTextMapPropagator(origPropagator)
		otel.SetErrorHandler(origErrorHandler)
	})

	sentinelTP := sdktrace.NewTracerProvider()

	t.Cleanup(func() {
		_ = sentinelTP.Shutdown(t.Context())
	})

	sentinelPropagator := testPropagator{}
	sentinelErrorHandler := testErrorHandler{}

	otel.SetTracerProvider(sentinelTP)
	otel.SetTextMapPropagator(sentinelPropagator)
	otel.SetErrorHandler(sentinelErrorHandler)

	shutdown, err := observability.SetupTelemetry(t.Context(), &observability.TelemetryConfig{
		Enabled: false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := shutdown(t.Context()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}

	if got := otel.GetTracerProvider(); got != sentinelTP {
		t.Fatalf("tracer provider changed when telemetry disabled")
	}

	if _, ok := otel.GetTextMapPropagator().(testPropagator); !ok {
		t.Fatalf("propagator changed when telemetry disabled")
	}

	if _, ok := otel.GetErrorHandler().(testErrorHandler); !ok {
		t.Fatalf("error handler changed when telemetry disabled")
	}
}

func TestSetupTelemetry_NilConfig(t *testing.T) {
	shutdown, err := observability.SetupTelemetry(t.Context(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if shutdown == nil {
		t.Fatal("shutdown func should never be nil")
	}

	if err := shutdown(t.Context()); err != nil {
		t.Fatalf("noop shutdown error: %v", err)
	}
}

func TestIsTelemetryEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"0", false},
		{"off", false},
		{"1", true},
		{"true", true},
		{"YES", true},
	}

	for _, tt := range tests {
		t.Run("value="+tt.value, func(t *testing.T) {
			t.Setenv("OTEL_ENABLED", tt.value)

			if got := observability.IsTelemetryEnabled(); got != tt.want {
				t.Errorf("IsTelemetryEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}
