package observability

import (
	"context"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"devstudio-site/internal/common/logger"
)

type Observability struct {
	serviceName    string
	log            logger.Logger
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer

	submissionCounter otelmetric.Int64Counter
	deliveryDuration  otelmetric.Float64Histogram
}

// Option customizes New.
type Option func(*options)

type options struct {
	registerer promclient.Registerer
}

// WithRegisterer exports OTel metrics into reg instead of the default
// prometheus registry.
func WithRegisterer(reg promclient.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// New wires an OTel meter exported through prometheus. Failure to create
// the exporter degrades to a no-op instance.
func New(serviceName string, log logger.Logger, opts ...Option) *Observability {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	obs := &Observability{
		serviceName: serviceName,
		log:         log,
		tracer:      otel.Tracer(serviceName),
	}

	var exporterOpts []prometheus.Option
	if o.registerer != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(o.registerer))
	}
	exporter, err := prometheus.New(exporterOpts...)
	if err != nil {
		log.Error("Failed to create Prometheus exporter", map[string]interface{}{"error": err})
		return obs
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	submissionCounter, _ := meter.Int64Counter(
		"contact.submissions",
		otelmetric.WithDescription("Number of contact submissions processed"),
	)

	deliveryDuration, _ := meter.Float64Histogram(
		"contact.delivery.duration",
		otelmetric.WithDescription("Time spent forwarding an inquiry"),
		otelmetric.WithUnit("ms"),
	)

	obs.meterProvider = provider
	obs.meter = meter
	obs.submissionCounter = submissionCounter
	obs.deliveryDuration = deliveryDuration
	return obs
}

func (o *Observability) RecordSubmission(ctx context.Context, channel, outcome string) {
	if o == nil || o.submissionCounter == nil {
		return
	}
	o.submissionCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) RecordDeliveryDuration(ctx context.Context, duration time.Duration, channel, status string) {
	if o == nil || o.deliveryDuration == nil {
		return
	}
	o.deliveryDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("status", status),
	))
}

// StartSpan starts a span on the service tracer. Without EnableTracing the
// global no-op tracer is used.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			o.log.Warn("Meter provider shutdown failed", map[string]interface{}{"error": err})
		}
	}
	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			o.log.Warn("Tracer provider shutdown failed", map[string]interface{}{"error": err})
		}
	}
}
