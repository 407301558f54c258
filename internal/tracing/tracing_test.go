package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	require.NoError(t, InitWithExporter("quiz-generator", "test", exporter))

	ctx, parent := StartSpan(context.Background(), "agent.QuizOrchestrator", map[string]string{"session.id": "s-1"})
	_, child := StartSpan(ctx, "agent.MCQGenerator", nil)
	child.SetAttribute("output_key", "mcq_questions")
	child.End(errors.New("model failed"))
	parent.End(nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "agent.MCQGenerator", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Contains(t, spans[0].Attributes, attribute.String("output_key", "mcq_questions"))

	assert.Equal(t, "agent.QuizOrchestrator", spans[1].Name)
	assert.Equal(t, codes.Ok, spans[1].Status.Code)
	assert.Contains(t, spans[1].Attributes, attribute.String("session.id", "s-1"))
}

func TestNilSpanIsSafe(t *testing.T) {
	var s *Span
	s.SetAttribute("k", "v")
	s.End(nil)
}
