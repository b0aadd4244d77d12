package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer(TracerName)

	ctx, parent := tracer.Start(context.Background(), "parent")
	assert.NotEmpty(t, GetTraceID(ctx))
	parent.End()

	assert.Empty(t, GetTraceID(context.Background()))
	assert.Len(t, recorder.Ended(), 1)
}

func TestStartSpans_WithGlobalNoopProvider(t *testing.T) {
	ctx, span := StartToolSpan(context.Background(), "calendar_select", attribute.String(SpanAttrAccount, "work"))
	assert.NotNil(t, ctx)
	SetSpanSuccess(span)
	span.End()

	_, apiSpan := StartGoogleAPISpan(ctx, ServiceCalendar, OperationDelete, attribute.String(SpanAttrEventID, "abc"))
	SetSpanError(apiSpan, errors.New("boom"))
	SetSpanError(apiSpan, nil)
	apiSpan.End()
}
