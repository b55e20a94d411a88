package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	dlqRequeuedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster_service",
		Subsystem: "dlq",
		Name:      "messages_requeued_total",
		Help:      "Number of dead letters put back on the outbox queue.",
	}, []string{"topic", "event_type"})

	dlqQuarantinedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster_service",
		Subsystem: "dlq",
		Name:      "messages_quarantined_total",
		Help:      "Number of dead letters quarantined after exhausting retries.",
	}, []string{"topic", "event_type"})

	dlqEvictedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "roster_service",
		Subsystem: "dlq",
		Name:      "messages_evicted_total",
		Help:      "Number of dead letters discarded because the store was full.",
	})

	dlqBacklogGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "roster_service",
		Subsystem: "dlq",
		Name:      "queued_messages",
		Help:      "Current number of dead letters awaiting retry.",
	})
)

func init() {
	prometheus.MustRegister(dlqRequeuedCounter, dlqQuarantinedCounter, dlqEvictedCounter, dlqBacklogGauge)
}

func recordDLQRequeued(entry DeadLetter) {
	dlqRequeuedCounter.WithLabelValues(entry.Message.Topic, entry.Message.EventType).Inc()
}

func recordDLQQuarantined(entry DeadLetter) {
	dlqQuarantinedCounter.WithLabelValues(entry.Message.Topic, entry.Message.EventType).Inc()
}
