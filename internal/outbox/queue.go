package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"example.com/roster/internal/events"
)

// Message is a roster event waiting for delivery.
type Message struct {
	EventID       string
	EventType     string
	Topic         string
	SchemaSubject string
	PartitionKey  string
	Payload       json.RawMessage
	EnqueuedAt    time.Time
	Attempts      int
}

// Queue is a bounded in-memory outbox. When full, the oldest pending message
// is moved to the dead letters to make room.
type Queue struct {
	mu         sync.Mutex
	pending    []Message
	topic      string
	maxPending int
	dead       *DeadLetters
	now        func() time.Time
}

// NewQueue constructs a Queue publishing to topic.
func NewQueue(topic string, maxPending int, dead *DeadLetters) *Queue {
	if maxPending <= 0 {
		maxPending = 1000
	}
	return &Queue{
		topic:      topic,
		maxPending: maxPending,
		dead:       dead,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// PublishSignedUp enqueues a participant.signed_up event.
func (q *Queue) PublishSignedUp(ctx context.Context, event events.ParticipantSignedUp) error {
	return q.enqueue(events.TypeParticipantSignedUp, event.EventID, event.Activity, event)
}

// PublishUnregistered enqueues a participant.unregistered event.
func (q *Queue) PublishUnregistered(ctx context.Context, event events.ParticipantUnregistered) error {
	return q.enqueue(events.TypeParticipantUnregistered, event.EventID, event.Activity, event)
}

func (q *Queue) enqueue(eventType, eventID, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", eventType, err)
	}
	msg := Message{
		EventID:       eventID,
		EventType:     eventType,
		Topic:         q.topic,
		SchemaSubject: q.topic + "-" + eventType,
		PartitionKey:  key,
		Payload:       data,
		EnqueuedAt:    q.now(),
	}
	q.push(msg)
	return nil
}

// Requeue puts messages back at the tail of the queue.
func (q *Queue) Requeue(msgs ...Message) {
	for _, msg := range msgs {
		q.push(msg)
	}
}

func (q *Queue) push(msg Message) {
	q.mu.Lock()
	var evicted *Message
	if len(q.pending) >= q.maxPending {
		oldest := q.pending[0]
		evicted = &oldest
		q.pending = q.pending[1:]
	}
	q.pending = append(q.pending, msg)
	depth := len(q.pending)
	q.mu.Unlock()

	queueDepthGauge.Set(float64(depth))
	if evicted != nil {
		droppedCounter.Inc()
		if q.dead != nil {
			q.dead.Add(*evicted, "outbox queue full")
		}
	}
}

// Claim removes and returns up to max pending messages in FIFO order.
func (q *Queue) Claim(max int) []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	if max <= 0 || max > len(q.pending) {
		max = len(q.pending)
	}
	out := make([]Message, max)
	copy(out, q.pending[:max])
	q.pending = q.pending[max:]
	queueDepthGauge.Set(float64(len(q.pending)))
	return out
}

// Len reports the number of pending messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
