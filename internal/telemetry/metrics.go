package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/tenancy"
)

// Metrics holds the OpenTelemetry instruments for the tenancy core.
type Metrics struct {
	// Membership
	RegistrationsTotal metric.Int64Counter
	JoinRequestsTotal  metric.Int64Counter
	JoinDecisionsTotal metric.Int64Counter
	AuthzDenialsTotal  metric.Int64Counter
	OrganizationsTotal metric.Int64Counter

	// Quota
	QuotaConsumedTotal metric.Int64Counter
	QuotaDeniedTotal   metric.Int64Counter

	// Store
	StoreOperationsTotal metric.Int64Counter
	StoreThrottlesTotal  metric.Int64Counter
	StoreOperationErrors metric.Int64Counter

	// HTTP
	RequestDuration metric.Float64Histogram
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// Add increments counter by one with the given attributes.
func Add(ctx context.Context, counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.RegistrationsTotal, _ = meter.Int64Counter(
		"tenancy.registrations.total",
		metric.WithDescription("Total number of register-or-join calls by outcome"),
		metric.WithUnit("{registration}"),
	)

	m.JoinRequestsTotal, _ = meter.Int64Counter(
		"tenancy.join_requests.total",
		metric.WithDescription("Total number of join requests submitted"),
		metric.WithUnit("{request}"),
	)

	m.JoinDecisionsTotal, _ = meter.Int64Counter(
		"tenancy.join_requests.decisions.total",
		metric.WithDescription("Total number of join requests approved or rejected"),
		metric.WithUnit("{decision}"),
	)

	m.AuthzDenialsTotal, _ = meter.Int64Counter(
		"tenancy.authz.denials.total",
		metric.WithDescription("Total number of authorization denials by capability"),
		metric.WithUnit("{denial}"),
	)

	m.OrganizationsTotal, _ = meter.Int64Counter(
		"tenancy.organizations.created.total",
		metric.WithDescription("Total number of organizations created"),
		metric.WithUnit("{organization}"),
	)

	m.QuotaConsumedTotal, _ = meter.Int64Counter(
		"tenancy.quota.consumed.total",
		metric.WithDescription("Total number of metered actions granted"),
		metric.WithUnit("{action}"),
	)

	m.QuotaDeniedTotal, _ = meter.Int64Counter(
		"tenancy.quota.denied.total",
		metric.WithDescription("Total number of metered actions denied by a tier limit"),
		metric.WithUnit("{action}"),
	)

	m.StoreOperationsTotal, _ = meter.Int64Counter(
		"tenancy.store.operations.total",
		metric.WithDescription("Total number of storage operations"),
		metric.WithUnit("{operation}"),
	)

	m.StoreThrottlesTotal, _ = meter.Int64Counter(
		"tenancy.store.throttles.total",
		metric.WithDescription("Total number of storage throttling events"),
		metric.WithUnit("{throttle}"),
	)

	m.StoreOperationErrors, _ = meter.Int64Counter(
		"tenancy.store.errors.total",
		metric.WithDescription("Total number of failed storage operations"),
		metric.WithUnit("{error}"),
	)

	m.RequestDuration, _ = meter.Float64Histogram(
		"tenancy.http.request.duration",
		metric.WithDescription("Duration of HTTP API requests"),
		metric.WithUnit("ms"),
	)

	return m
}
