package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"bidscout-engine/internal/telemetry"
)

func TestInitTracer_InstallsRecordingProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	// the exporter dials lazily, so no collector is needed
	shutdown, err := telemetry.InitTracer(context.Background(), "bidscout-test", "127.0.0.1:4317")
	require.NoError(t, err)
	defer shutdown()

	_, span := telemetry.GetTracer("test").Start(context.Background(), "op")
	assert.True(t, span.IsRecording())
	assert.True(t, span.SpanContext().IsValid())
}

func TestAttributes(t *testing.T) {
	assert.Equal(t, "workana", telemetry.String("platform", "workana").Value.AsString())
	assert.Equal(t, int64(7), telemetry.Int("jobs.new", 7).Value.AsInt64())
	assert.True(t, telemetry.Bool("ok", true).Value.AsBool())
}
