package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "devhub-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := Tracer
	Tracer = tp.Tracer("test")
	t.Cleanup(func() { Tracer = prev })

	span, ctx := NewSpan(context.Background(), "ledger.add_upvote", attribute.Int64("project.id", 3))
	assert.NotNil(t, ctx)
	span.SetError(errors.New("deadlock detected"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "ledger.add_upvote", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}
