package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"example.com/roster/internal/events"
)

// ActivityAudit summarises the events observed for one activity.
type ActivityAudit struct {
	Activity         string
	SignUps          int
	Unregistrations  int
	ParticipantCount int
	Sequence         uint64
	LastEventAt      time.Time
}

// DefaultDedupeWindow is how many recent event ids an AuditHandler remembers.
const DefaultDedupeWindow = 10000

// AuditOption configures an AuditHandler.
type AuditOption func(*AuditHandler)

// WithDedupeWindow bounds the number of event ids kept for redelivery checks.
func WithDedupeWindow(size int) AuditOption {
	return func(h *AuditHandler) {
		if size > 0 {
			h.window = size
		}
	}
}

// AuditHandler logs roster events and tracks per-activity tallies.
type AuditHandler struct {
	logger logrus.FieldLogger
	window int

	mu       sync.Mutex
	seen     map[string]struct{}
	recent   []string
	next     int
	activity map[string]*ActivityAudit
}

// NewAuditHandler constructs an AuditHandler writing to logger.
func NewAuditHandler(logger logrus.FieldLogger, opts ...AuditOption) *AuditHandler {
	h := &AuditHandler{
		logger:   logger,
		window:   DefaultDedupeWindow,
		activity: make(map[string]*ActivityAudit),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.seen = make(map[string]struct{}, h.window)
	h.recent = make([]string, 0, h.window)
	return h
}

type change struct {
	eventID  string
	activity string
	count    int
	sequence uint64
	at       time.Time
	signup   bool
}

// Handle decodes msg by event type and folds it into the tallies. Events
// whose id is still in the dedupe window are ignored so redelivery does
// not double count. Participant counts follow the highest sequence seen.
func (h *AuditHandler) Handle(_ context.Context, msg Message) error {
	switch msg.EventType {
	case events.TypeParticipantSignedUp:
		var evt events.ParticipantSignedUp
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return fmt.Errorf("decode %s: %w", msg.EventType, err)
		}
		if h.record(change{evt.EventID, evt.Activity, evt.ParticipantCount, evt.Sequence, evt.OccurredAt, true}) {
			h.logger.WithFields(logrus.Fields{
				"event_id":          evt.EventID,
				"activity":          evt.Activity,
				"participant":       evt.Participant,
				"participant_count": evt.ParticipantCount,
				"max_participants":  evt.MaxParticipants,
			}).Info("participant signed up")
		}
	case events.TypeParticipantUnregistered:
		var evt events.ParticipantUnregistered
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return fmt.Errorf("decode %s: %w", msg.EventType, err)
		}
		if h.record(change{evt.EventID, evt.Activity, evt.ParticipantCount, evt.Sequence, evt.OccurredAt, false}) {
			h.logger.WithFields(logrus.Fields{
				"event_id":          evt.EventID,
				"activity":          evt.Activity,
				"participant":       evt.Participant,
				"participant_count": evt.ParticipantCount,
			}).Info("participant unregistered")
		}
	default:
		h.logger.WithFields(logrus.Fields{
			"event_type": msg.EventType,
			"offset":     msg.Offset,
		}).Warn("skipping unknown event type")
	}
	return nil
}

func (h *AuditHandler) record(c change) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.eventID != "" {
		if _, dup := h.seen[c.eventID]; dup {
			return false
		}
		h.remember(c.eventID)
	}

	audit, ok := h.activity[c.activity]
	if !ok {
		audit = &ActivityAudit{Activity: c.activity}
		h.activity[c.activity] = audit
	}
	if c.signup {
		audit.SignUps++
	} else {
		audit.Unregistrations++
	}

	var latest bool
	switch {
	case c.sequence == 0:
		latest = !c.at.Before(audit.LastEventAt)
	case c.sequence > audit.Sequence:
		latest = true
	case c.sequence == 1 && c.at.After(audit.LastEventAt):
		// The producing roster restarted and its sequence began again.
		latest = true
	}
	if latest {
		audit.ParticipantCount = c.count
		audit.Sequence = c.sequence
		audit.LastEventAt = c.at
	}
	return true
}

// remember adds id to the dedupe window, evicting the oldest id when full.
func (h *AuditHandler) remember(id string) {
	if len(h.recent) < h.window {
		h.recent = append(h.recent, id)
	} else {
		delete(h.seen, h.recent[h.next])
		h.recent[h.next] = id
		h.next = (h.next + 1) % h.window
	}
	h.seen[id] = struct{}{}
}

// Snapshot returns the tallies sorted by activity name.
func (h *AuditHandler) Snapshot() []ActivityAudit {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]ActivityAudit, 0, len(h.activity))
	for _, audit := range h.activity {
		out = append(out, *audit)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Activity < out[j].Activity })
	return out
}
