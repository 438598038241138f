package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	before := otel.GetTracerProvider()
	for _, cfg := range []Config{
		{},
		{Enabled: true},
		{Endpoint: "http://localhost:4318", Enabled: false},
	} {
		shutdown, err := Setup(context.Background(), "test", cfg)
		require.NoError(t, err)
		require.NoError(t, shutdown(context.Background()))
		assert.Equal(t, before, otel.GetTracerProvider())
	}
}

func TestTracer_UsesGlobalProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	rec := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))

	_, span := Tracer().Start(context.Background(), "collect")
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "collect", ended[0].Name())
	assert.Equal(t, TracerName, ended[0].InstrumentationScope().Name)
}
