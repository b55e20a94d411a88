package outbox

import (
	"sync"
	"time"
)

// DeadLetter is a message that failed delivery, with its retry bookkeeping.
type DeadLetter struct {
	ID            int64
	Message       Message
	Reason        string
	RetryCount    int
	CreatedAt     time.Time
	NextRetryAt   time.Time
	QuarantinedAt *time.Time
}

// DeadLetters keeps failed messages in memory for retry or inspection.
type DeadLetters struct {
	mu        sync.Mutex
	entries   []DeadLetter
	nextID    int64
	capacity  int
	baseDelay time.Duration
	now       func() time.Time
}

// NewDeadLetters constructs a store holding at most capacity entries. The
// first retry of a message is immediate, later ones back off from baseDelay.
func NewDeadLetters(capacity int, baseDelay time.Duration) *DeadLetters {
	if capacity <= 0 {
		capacity = 1000
	}
	if baseDelay <= 0 {
		baseDelay = time.Minute
	}
	return &DeadLetters{
		capacity:  capacity,
		baseDelay: baseDelay,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Add records a failed message alongside the supplied reason.
func (d *DeadLetters) Add(msg Message, reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.nextID++
	entry := DeadLetter{
		ID:          d.nextID,
		Message:     msg,
		Reason:      reason,
		RetryCount:  msg.Attempts,
		CreatedAt:   now,
		NextRetryAt: now.Add(backoffDelay(d.baseDelay, msg.Attempts)),
	}
	if len(d.entries) >= d.capacity {
		d.entries = d.entries[1:]
		dlqEvictedCounter.Inc()
	}
	d.entries = append(d.entries, entry)
	dlqBacklogGauge.Set(float64(d.backlogLocked()))
}

// Entries returns a copy of every dead letter, quarantined ones included.
func (d *DeadLetters) Entries() []DeadLetter {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DeadLetter, len(d.entries))
	copy(out, d.entries)
	return out
}

// due removes and returns entries whose retry time has passed.
func (d *DeadLetters) due(limit int) []DeadLetter {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	out := make([]DeadLetter, 0)
	kept := d.entries[:0]
	for _, entry := range d.entries {
		if entry.QuarantinedAt == nil && !entry.NextRetryAt.After(now) && (limit <= 0 || len(out) < limit) {
			out = append(out, entry)
			continue
		}
		kept = append(kept, entry)
	}
	d.entries = kept
	dlqBacklogGauge.Set(float64(d.backlogLocked()))
	return out
}

// quarantine stores entry back with a quarantine marker.
func (d *DeadLetters) quarantine(entry DeadLetter, reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	entry.QuarantinedAt = &now
	entry.Reason = reason
	d.entries = append(d.entries, entry)
}

func (d *DeadLetters) backlogLocked() int {
	count := 0
	for _, entry := range d.entries {
		if entry.QuarantinedAt == nil {
			count++
		}
	}
	return count
}

// backoffDelay doubles baseDelay per prior attempt, capped at one hour.
func backoffDelay(base time.Duration, attempts int) time.Duration {
	if attempts <= 0 {
		return 0
	}
	delay := base
	for i := 1; i < attempts && delay < time.Hour; i++ {
		delay *= 2
	}
	if delay > time.Hour {
		delay = time.Hour
	}
	return delay
}
