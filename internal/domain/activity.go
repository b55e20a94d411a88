package domain

import "slices"

// ActivityName identifies an activity. Lookups use exact string equality, so
// "Chess Club" and "chess club" are different activities.
type ActivityName string

// Activity is a single extracurricular offering and its current participants.
type Activity struct {
	Description     string   `json:"description" yaml:"description"`
	Schedule        string   `json:"schedule" yaml:"schedule"`
	MaxParticipants int      `json:"max_participants" yaml:"max_participants"`
	Participants    []string `json:"participants" yaml:"participants"`
}

// Clone returns a copy that shares no memory with a.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = slices.Clone(a.Participants)
	if out.Participants == nil {
		out.Participants = []string{}
	}
	return out
}

// HasParticipant reports whether participant is already on the activity.
func (a Activity) HasParticipant(participant string) bool {
	return slices.Contains(a.Participants, participant)
}

// Full reports whether the participant count reached the advertised capacity.
func (a Activity) Full() bool {
	return a.MaxParticipants > 0 && len(a.Participants) >= a.MaxParticipants
}

// Confirmation describes a successful signup or unregister.
type Confirmation struct {
	Activity         ActivityName
	Participant      string
	ParticipantCount int
	MaxParticipants  int
	// Sequence increases by one with every change to the activity.
	Sequence uint64
}
