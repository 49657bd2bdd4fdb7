package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/slackbot-settings/internal/config"
)

const (
	parentTraceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	traceparent   = "00-" + parentTraceID + "-00f067aa0ba902b7-01"
)

func newTracedApp(t *testing.T, logger *zap.Logger) (*fiber.App, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(Tracing(tp, propagation.TraceContext{}))
	app.Use(RequestLogger(logger, nil))
	app.Get("/api/staff/:id", func(c *fiber.Ctx) error {
		if !trace.SpanContextFromContext(c.UserContext()).IsValid() {
			return c.SendStatus(http.StatusTeapot)
		}
		return c.SendString("ok")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusBadGateway)
	})
	return app, sr
}

func attrs(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracingContinuesIncomingTrace(t *testing.T) {
	app, sr := newTracedApp(t, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/staff/42", nil)
	req.Header.Set("traceparent", traceparent)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /api/staff/:id", span.Name())
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())
	assert.Equal(t, parentTraceID, span.SpanContext().TraceID().String())
	assert.True(t, span.Parent().IsRemote())

	got := attrs(span.Attributes())
	assert.Equal(t, "/api/staff/:id", got["http.route"].AsString())
	assert.Equal(t, int64(http.StatusOK), got["http.response.status_code"].AsInt64())
	assert.Equal(t, codes.Unset, span.Status().Code)
}

func TestTracingMarksServerErrors(t *testing.T) {
	app, sr := newTracedApp(t, zap.NewNop())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.False(t, spans[0].Parent().IsValid())
}

func TestRequestLogCarriesTraceID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	app, _ := newTracedApp(t, zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/api/staff/42", nil)
	req.Header.Set("traceparent", traceparent)
	_, err := app.Test(req, -1)
	require.NoError(t, err)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, parentTraceID, entries[0].ContextMap()["trace_id"])
}

func TestInitTracerWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), config.TracingConfig{ServiceName: "test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
