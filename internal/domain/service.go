// Package domain defines the business logic for the roster service.
package domain

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"example.com/roster/internal/events"
	"example.com/roster/internal/observability"
)

var (
	// ErrActivityNotFound is returned when the activity name is not in the roster.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadyRegistered is returned when the participant is already signed up.
	ErrAlreadyRegistered = errors.New("participant already signed up for activity")
	// ErrNotRegistered is returned when removing a participant who is not signed up.
	ErrNotRegistered = errors.New("participant not signed up for activity")
	// ErrActivityFull is returned by SignUp when capacity limits are enforced.
	ErrActivityFull = errors.New("activity is full")
)

const (
	operationSignUp     = "signup"
	operationUnregister = "unregister"
)

// EventPublisher receives roster change events after successful mutations.
type EventPublisher interface {
	PublishSignedUp(ctx context.Context, event events.ParticipantSignedUp) error
	PublishUnregistered(ctx context.Context, event events.ParticipantUnregistered) error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

// PublishSignedUp performs no action.
func (NoopPublisher) PublishSignedUp(context.Context, events.ParticipantSignedUp) error { return nil }

// PublishUnregistered performs no action.
func (NoopPublisher) PublishUnregistered(context.Context, events.ParticipantUnregistered) error {
	return nil
}

// Option configures a Service.
type Option func(*Service)

// WithLogger overrides the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithPublisher sets the event publisher.
func WithPublisher(publisher EventPublisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service orchestrates roster workflows. Mutations and their event
// publication run under one lock so events are queued in roster order.
type Service struct {
	mutations sync.Mutex
	store     RosterStore
	publisher EventPublisher
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(store RosterStore, opts ...Option) *Service {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Service{
		store:     store,
		publisher: NoopPublisher{},
		logger:    discard,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListActivities returns every activity keyed by name.
func (s *Service) ListActivities(ctx context.Context) (map[ActivityName]Activity, error) {
	return s.store.ListActivities(ctx)
}

// GetActivity fetches a single activity.
func (s *Service) GetActivity(ctx context.Context, name ActivityName) (Activity, error) {
	return s.store.GetActivity(ctx, name)
}

// RecordParticipants publishes the current participant count of every
// activity to the participants gauge.
func (s *Service) RecordParticipants(ctx context.Context) error {
	activities, err := s.store.ListActivities(ctx)
	if err != nil {
		return err
	}
	for name, activity := range activities {
		observability.SetParticipants(string(name), len(activity.Participants))
	}
	return nil
}

// SignUp adds participant to the named activity.
func (s *Service) SignUp(ctx context.Context, name ActivityName, participant string) (Confirmation, error) {
	log := s.logger.WithFields(logrus.Fields{"activity": name, "participant": participant})

	s.mutations.Lock()
	defer s.mutations.Unlock()

	conf, err := s.store.SignUp(ctx, name, participant)
	observability.RecordOperation(operationSignUp, outcome(err))
	if err != nil {
		log.WithError(err).Info("signup rejected")
		return Confirmation{}, err
	}

	now := s.now()
	observability.SetParticipants(string(name), conf.ParticipantCount)
	observability.RecordMutation(now)
	if conf.MaxParticipants > 0 && conf.ParticipantCount > conf.MaxParticipants {
		log.WithField("max_participants", conf.MaxParticipants).Warn("activity overbooked")
	}
	log.Info("participant signed up")

	event := events.ParticipantSignedUp{
		EventID:          uuid.NewString(),
		Activity:         string(name),
		Participant:      participant,
		ParticipantCount: conf.ParticipantCount,
		MaxParticipants:  conf.MaxParticipants,
		Sequence:         conf.Sequence,
		OccurredAt:       now,
	}
	if err := s.publisher.PublishSignedUp(ctx, event); err != nil {
		log.WithError(err).Warn("publish signup event failed")
	}
	return conf, nil
}

// Unregister removes participant from the named activity.
func (s *Service) Unregister(ctx context.Context, name ActivityName, participant string) (Confirmation, error) {
	log := s.logger.WithFields(logrus.Fields{"activity": name, "participant": participant})

	s.mutations.Lock()
	defer s.mutations.Unlock()

	conf, err := s.store.Unregister(ctx, name, participant)
	observability.RecordOperation(operationUnregister, outcome(err))
	if err != nil {
		log.WithError(err).Info("unregister rejected")
		return Confirmation{}, err
	}

	now := s.now()
	observability.SetParticipants(string(name), conf.ParticipantCount)
	observability.RecordMutation(now)
	log.Info("participant unregistered")

	event := events.ParticipantUnregistered{
		EventID:          uuid.NewString(),
		Activity:         string(name),
		Participant:      participant,
		ParticipantCount: conf.ParticipantCount,
		Sequence:         conf.Sequence,
		OccurredAt:       now,
	}
	if err := s.publisher.PublishUnregistered(ctx, event); err != nil {
		log.WithError(err).Warn("publish unregister event failed")
	}
	return conf, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case errors.Is(err, ErrActivityNotFound):
		return observability.OutcomeNotFound
	case errors.Is(err, ErrAlreadyRegistered):
		return observability.OutcomeAlreadyRegistered
	case errors.Is(err, ErrNotRegistered):
		return observability.OutcomeNotRegistered
	case errors.Is(err, ErrActivityFull):
		return observability.OutcomeFull
	default:
		return observability.OutcomeError
	}
}
