package metrics

import (
	"context"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type Metrics struct {
	HTTPRequests  metric.Int64Counter
	HTTPDuration  metric.Float64Histogram
	LikeToggles   metric.Int64Counter
	Registrations metric.Int64Counter
}

// Setup builds the meter provider and returns the /metrics handler. Each
// call gets its own Prometheus registry.
func Setup(serviceName string) (*Metrics, http.Handler, error) {
	registry := prom.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	m := &Metrics{}

	m.HTTPRequests, err = meter.Int64Counter(
		"blog_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPDuration, err = meter.Float64Histogram(
		"blog_http_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.LikeToggles, err = meter.Int64Counter(
		"blog_like_toggles_total",
		metric.WithDescription("Like toggles by target and result"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.Registrations, err = meter.Int64Counter(
		"blog_registrations_total",
		metric.WithDescription("Total number of registered users"),
	)
	if err != nil {
		return nil, nil, err
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m, handler, nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	labels := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)

	m.HTTPRequests.Add(ctx, 1, labels)
	m.HTTPDuration.Record(ctx, duration.Seconds(), labels)
}

// RecordLikeToggle counts a toggle on target ("post" or "comment").
func (m *Metrics) RecordLikeToggle(ctx context.Context, target string, created bool) {
	result := "unliked"
	if created {
		result = "liked"
	}
	m.LikeToggles.Add(ctx, 1, metric.WithAttributes(
		attribute.String("target", target),
		attribute.String("result", result),
	))
}

func (m *Metrics) RecordRegistration(ctx context.Context) {
	m.Registrations.Add(ctx, 1)
}
