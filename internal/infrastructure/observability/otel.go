package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/zatekoja/feedbackbot"

// Metrics holds all application metrics.
type Metrics struct {
	RequestCount          metric.Int64Counter
	RequestDuration       metric.Float64Histogram
	UpdatesProcessed      metric.Int64Counter
	UpdatesDropped        metric.Int64Counter
	ConversationsFinished metric.Int64Counter
	SinkAppendDuration    metric.Float64Histogram
	SinkAppendFailures    metric.Int64Counter
}

// Setup initializes OpenTelemetry tracing against an OTLP gRPC endpoint.
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tracerProvider.Shutdown, nil
}

// InitMetrics initializes application metrics.
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestCount, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	updatesProcessed, err := meter.Int64Counter(
		"bot.updates.processed",
		metric.WithDescription("Number of Telegram updates handled"),
	)
	if err != nil {
		return nil, err
	}

	updatesDropped, err := meter.Int64Counter(
		"bot.updates.dropped",
		metric.WithDescription("Number of malformed Telegram updates dropped"),
	)
	if err != nil {
		return nil, err
	}

	conversationsFinished, err := meter.Int64Counter(
		"bot.conversations.finalized",
		metric.WithDescription("Number of finalized survey conversations"),
	)
	if err != nil {
		return nil, err
	}

	sinkAppendDuration, err := meter.Float64Histogram(
		"sink.append.duration",
		metric.WithDescription("Delivery sink append duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	sinkAppendFailures, err := meter.Int64Counter(
		"sink.append.failures",
		metric.WithDescription("Number of failed delivery sink appends"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCount:          requestCount,
		RequestDuration:       requestDuration,
		UpdatesProcessed:      updatesProcessed,
		UpdatesDropped:        updatesDropped,
		ConversationsFinished: conversationsFinished,
		SinkAppendDuration:    sinkAppendDuration,
		SinkAppendFailures:    sinkAppendFailures,
	}, nil
}

// StartSpan starts a new trace span.
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer(instrumentationName)
	return tracer.Start(ctx, spanName)
}

// RecordRequestMetric records one handled HTTP request.
func RecordRequestMetric(ctx context.Context, metrics *Metrics, method, path string, statusCode int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	}
	metrics.RequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.RequestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordUpdate records one handled or dropped Telegram update.
func (m *Metrics) RecordUpdate(ctx context.Context, dropped bool) {
	if m == nil {
		return
	}
	if dropped {
		m.UpdatesDropped.Add(ctx, 1)
		return
	}
	m.UpdatesProcessed.Add(ctx, 1)
}

// RecordFinalized records a finalized conversation for the given variant.
func (m *Metrics) RecordFinalized(ctx context.Context, variant string) {
	if m == nil {
		return
	}
	m.ConversationsFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("flow.variant", variant)))
}

// RecordSinkAppend records one delivery sink append outcome.
func (m *Metrics) RecordSinkAppend(ctx context.Context, sink string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("sink.kind", sink))
	m.SinkAppendDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		m.SinkAppendFailures.Add(ctx, 1, attrs)
	}
}
