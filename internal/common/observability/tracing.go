package observability

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// EnableTracing exports spans to a Jaeger collector endpoint such as
// http://localhost:14268/api/traces.
func (o *Observability) EnableTracing(endpoint string, sampleRatio float64) error {
	if endpoint == "" {
		return fmt.Errorf("jaeger endpoint is required")
	}

	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	if err != nil {
		return fmt.Errorf("create jaeger exporter: %w", err)
	}

	return o.enableTracing(sdktrace.WithBatcher(exporter), sampleRatio)
}

func (o *Observability) enableTracing(processor sdktrace.TracerProviderOption, sampleRatio float64) error {
	res := resource.NewSchemaless(attribute.String("service.name", o.serviceName))

	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampleRatio))),
	)
	otel.SetTracerProvider(tp)

	o.tracerProvider = tp
	o.tracer = tp.Tracer(o.serviceName)
	o.log.Info("Tracing enabled", map[string]interface{}{
		"service":     o.serviceName,
		"sampleRatio": sampleRatio,
	})
	return nil
}
