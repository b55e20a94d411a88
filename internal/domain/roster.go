package domain

import (
	"context"
	"slices"
	"sync"
)

// RosterStore captures the roster operations used by Service.
type RosterStore interface {
	ListActivities(ctx context.Context) (map[ActivityName]Activity, error)
	GetActivity(ctx context.Context, name ActivityName) (Activity, error)
	SignUp(ctx context.Context, name ActivityName, participant string) (Confirmation, error)
	Unregister(ctx context.Context, name ActivityName, participant string) (Confirmation, error)
}

// RosterOption configures a MemoryRoster.
type RosterOption func(*MemoryRoster)

// WithCapacityLimit makes SignUp reject participants once an activity holds
// max_participants entries. Capacity is advisory without it.
func WithCapacityLimit(enabled bool) RosterOption {
	return func(r *MemoryRoster) {
		r.enforceCapacity = enabled
	}
}

// MemoryRoster keeps the roster in process memory. The key set is fixed at
// construction; only participant lists change afterwards.
type MemoryRoster struct {
	mu              sync.RWMutex
	activities      map[ActivityName]*Activity
	sequence        map[ActivityName]uint64
	enforceCapacity bool
}

// NewMemoryRoster builds a roster from seed activities. The seed is copied.
func NewMemoryRoster(seed map[ActivityName]Activity, opts ...RosterOption) *MemoryRoster {
	r := &MemoryRoster{
		activities: make(map[ActivityName]*Activity, len(seed)),
		sequence:   make(map[ActivityName]uint64, len(seed)),
	}
	for name, activity := range seed {
		cloned := activity.Clone()
		r.activities[name] = &cloned
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListActivities returns a snapshot of every activity.
func (r *MemoryRoster) ListActivities(ctx context.Context) (map[ActivityName]Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[ActivityName]Activity, len(r.activities))
	for name, activity := range r.activities {
		out[name] = activity.Clone()
	}
	return out, nil
}

// GetActivity returns a snapshot of a single activity.
func (r *MemoryRoster) GetActivity(ctx context.Context, name ActivityName) (Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activity, ok := r.activities[name]
	if !ok {
		return Activity{}, ErrActivityNotFound
	}
	return activity.Clone(), nil
}

// SignUp appends participant to the activity.
func (r *MemoryRoster) SignUp(ctx context.Context, name ActivityName, participant string) (Confirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[name]
	if !ok {
		return Confirmation{}, ErrActivityNotFound
	}
	if activity.HasParticipant(participant) {
		return Confirmation{}, ErrAlreadyRegistered
	}
	if r.enforceCapacity && activity.Full() {
		return Confirmation{}, ErrActivityFull
	}

	activity.Participants = append(activity.Participants, participant)
	return r.confirmLocked(name, participant, activity), nil
}

// Unregister removes participant from the activity, keeping the order of the
// remaining entries.
func (r *MemoryRoster) Unregister(ctx context.Context, name ActivityName, participant string) (Confirmation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	activity, ok := r.activities[name]
	if !ok {
		return Confirmation{}, ErrActivityNotFound
	}
	idx := slices.Index(activity.Participants, participant)
	if idx < 0 {
		return Confirmation{}, ErrNotRegistered
	}

	activity.Participants = slices.Delete(activity.Participants, idx, idx+1)
	return r.confirmLocked(name, participant, activity), nil
}

func (r *MemoryRoster) confirmLocked(name ActivityName, participant string, activity *Activity) Confirmation {
	r.sequence[name]++
	return Confirmation{
		Activity:         name,
		Participant:      participant,
		ParticipantCount: len(activity.Participants),
		MaxParticipants:  activity.MaxParticipants,
		Sequence:         r.sequence[name],
	}
}
