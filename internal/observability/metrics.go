package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for roster operations.
const (
	OutcomeOK                = "ok"
	OutcomeNotFound          = "not_found"
	OutcomeAlreadyRegistered = "already_registered"
	OutcomeNotRegistered     = "not_registered"
	OutcomeFull              = "full"
	OutcomeError             = "error"
)

var (
	rosterOperations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster_service",
		Subsystem: "roster",
		Name:      "operations_total",
		Help:      "Roster operations grouped by operation and outcome.",
	}, []string{"operation", "outcome"})

	participantsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "roster_service",
		Subsystem: "roster",
		Name:      "participants",
		Help:      "Current number of participants per activity.",
	}, []string{"activity"})

	lastMutationGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "roster_service",
		Subsystem: "roster",
		Name:      "last_mutation_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful signup or unregister.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster_service",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests grouped by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "roster_service",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(rosterOperations, participantsGauge, lastMutationGauge, httpRequests, httpDuration)
}

// RecordOperation counts a roster operation outcome.
func RecordOperation(operation, outcome string) {
	rosterOperations.WithLabelValues(operation, outcome).Inc()
}

// OperationCount returns the current counter for operation/outcome.
func OperationCount(operation, outcome string) prometheus.Counter {
	return rosterOperations.WithLabelValues(operation, outcome)
}

// SetParticipants updates the participant gauge for activity.
func SetParticipants(activity string, count int) {
	participantsGauge.WithLabelValues(activity).Set(float64(count))
}

// Participants returns the participant gauge for activity.
func Participants(activity string) prometheus.Gauge {
	return participantsGauge.WithLabelValues(activity)
}

// RecordMutation updates the mutation watermark gauge.
func RecordMutation(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastMutationGauge.Set(float64(ts.Unix()))
}

// RecordHTTPRequest records a served request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// HTTPRequestCount returns the request counter for method/route/status.
func HTTPRequestCount(method, route, status string) prometheus.Counter {
	return httpRequests.WithLabelValues(method, route, status)
}
