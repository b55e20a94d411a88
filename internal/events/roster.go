// Package events defines the roster change payloads published to Kafka.
package events

import "time"

// Event types carried in the event_type header.
const (
	TypeParticipantSignedUp     = "participant.signed_up"
	TypeParticipantUnregistered = "participant.unregistered"
)

// ParticipantSignedUp is emitted after a participant joins an activity.
type ParticipantSignedUp struct {
	EventID          string    `json:"event_id"`
	Activity         string    `json:"activity"`
	Participant      string    `json:"participant"`
	ParticipantCount int       `json:"participant_count"`
	MaxParticipants  int       `json:"max_participants"`
	Sequence         uint64    `json:"sequence"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// ParticipantUnregistered is emitted after a participant leaves an activity.
type ParticipantUnregistered struct {
	EventID          string    `json:"event_id"`
	Activity         string    `json:"activity"`
	Participant      string    `json:"participant"`
	ParticipantCount int       `json:"participant_count"`
	Sequence         uint64    `json:"sequence"`
	OccurredAt       time.Time `json:"occurred_at"`
}
