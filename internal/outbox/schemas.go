package outbox

import "example.com/roster/internal/events"

const participantSignedUpSchema = `{
  "type": "object",
  "title": "ParticipantSignedUp",
  "properties": {
    "event_id": {"type": "string"},
    "activity": {"type": "string"},
    "participant": {"type": "string"},
    "participant_count": {"type": "integer"},
    "max_participants": {"type": "integer"},
    "sequence": {"type": "integer", "minimum": 1},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["event_id", "activity", "participant", "participant_count", "max_participants", "sequence", "occurred_at"],
  "additionalProperties": false
}`

const participantUnregisteredSchema = `{
  "type": "object",
  "title": "ParticipantUnregistered",
  "properties": {
    "event_id": {"type": "string"},
    "activity": {"type": "string"},
    "participant": {"type": "string"},
    "participant_count": {"type": "integer"},
    "sequence": {"type": "integer", "minimum": 1},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["event_id", "activity", "participant", "participant_count", "sequence", "occurred_at"],
  "additionalProperties": false
}`

// SchemaCatalogEntry maps event type to schema definition.
type SchemaCatalogEntry struct {
	Schema string
}

var schemaCatalog = map[string]SchemaCatalogEntry{
	events.TypeParticipantSignedUp: {
		Schema: participantSignedUpSchema,
	},
	events.TypeParticipantUnregistered: {
		Schema: participantUnregisteredSchema,
	},
}
