package outbox

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// DLQManager replays dead letters into the queue and quarantines entries that
// exhausted their retries.
type DLQManager struct {
	dead       *DeadLetters
	queue      *Queue
	maxRetries int
	logger     logrus.FieldLogger
}

// NewDLQManager constructs a DLQManager.
func NewDLQManager(dead *DeadLetters, queue *Queue, maxRetries int, logger logrus.FieldLogger) *DLQManager {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &DLQManager{dead: dead, queue: queue, maxRetries: maxRetries, logger: logger}
}

// RunOnce processes due entries and returns how many were requeued.
func (m *DLQManager) RunOnce(batchSize int) int {
	requeued := 0
	for _, entry := range m.dead.due(batchSize) {
		if entry.RetryCount >= m.maxRetries {
			m.dead.quarantine(entry, "retry limit reached")
			recordDLQQuarantined(entry)
			m.logger.WithFields(logrus.Fields{
				"event_id":   entry.Message.EventID,
				"event_type": entry.Message.EventType,
				"retries":    entry.RetryCount,
			}).Warn("dead letter quarantined")
			continue
		}

		msg := entry.Message
		msg.Attempts++
		m.queue.Requeue(msg)
		recordDLQRequeued(entry)
		requeued++
	}
	return requeued
}

// Start runs RunOnce on every tick until ctx is cancelled.
func (m *DLQManager) Start(ctx context.Context, interval time.Duration, batchSize int) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.WithFields(logrus.Fields{"interval": interval, "max_retries": m.maxRetries}).Info("dlq manager started")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.RunOnce(batchSize); n > 0 {
				m.logger.WithField("requeued", n).Info("dlq manager requeued dead letters")
			}
		}
	}
}
