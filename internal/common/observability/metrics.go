package observability

import (
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records per-operation call counts and round-trip times
// through an otel meter exported in prometheus format.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	callCounter   otelmetric.Int64Counter
	callDuration  otelmetric.Float64Histogram
}

// New wires the exporter into reg. A nil reg means the default prometheus registerer.
func New(serviceName string, reg promclient.Registerer) (*Observability, error) {
	opts := []prometheus.Option{}
	if reg != nil {
		opts = append(opts, prometheus.WithRegisterer(reg))
	}

	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	callCounter, err := meter.Int64Counter(
		"api.calls",
		otelmetric.WithDescription("Number of recommendation service calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("create call counter: %w", err)
	}

	callDuration, err := meter.Float64Histogram(
		"api.round_trip",
		otelmetric.WithDescription("Recommendation service round-trip time"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create round-trip histogram: %w", err)
	}

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		callCounter:   callCounter,
		callDuration:  callDuration,
	}, nil
}

// NewNoop returns an Observability whose Record methods do nothing.
func NewNoop() *Observability {
	return &Observability{}
}

func (o *Observability) RecordCall(ctx context.Context, operation, outcome string) {
	if o == nil || o.callCounter == nil {
		return
	}
	o.callCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) RecordRoundTrip(ctx context.Context, operation string, d time.Duration) {
	if o == nil || o.callDuration == nil {
		return
	}
	o.callDuration.Record(ctx, float64(d.Microseconds())/1000.0, otelmetric.WithAttributes(
		attribute.String("operation", operation),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
