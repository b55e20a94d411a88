package outbox

import (
	"context"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"example.com/roster/internal/events"
)

func TestQueueClaimIsFIFO(t *testing.T) {
	ctx := context.Background()
	queue := NewQueue("roster_events", 10, nil)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, queue.PublishSignedUp(ctx, events.ParticipantSignedUp{EventID: id, Activity: "Chess Club"}))
	}

	first := queue.Claim(2)
	require.Len(t, first, 2)
	require.Equal(t, "a", first[0].EventID)
	require.Equal(t, "b", first[1].EventID)
	require.Equal(t, events.TypeParticipantSignedUp, first[0].EventType)
	require.Equal(t, "Chess Club", first[0].PartitionKey)

	rest := queue.Claim(0)
	require.Len(t, rest, 1)
	require.Equal(t, "c", rest[0].EventID)
	require.Nil(t, queue.Claim(5))
}

func TestQueueOverflowEvictsOldestToDeadLetters(t *testing.T) {
	ctx := context.Background()
	dead := NewDeadLetters(10, time.Minute)
	queue := NewQueue("roster_events", 2, dead)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, queue.PublishUnregistered(ctx, events.ParticipantUnregistered{EventID: id}))
	}

	require.Equal(t, 2, queue.Len())
	entries := dead.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "a", entries[0].Message.EventID)
	require.Equal(t, "outbox queue full", entries[0].Reason)
}

func TestDLQManagerRequeuesThenQuarantines(t *testing.T) {
	now := time.Date(2025, time.October, 1, 12, 0, 0, 0, time.UTC)
	dead := NewDeadLetters(10, time.Minute)
	dead.now = func() time.Time { return now }
	queue := NewQueue("roster_events", 10, dead)
	logger, hook := logtest.NewNullLogger()
	manager := NewDLQManager(dead, queue, 2, logger)

	dead.Add(Message{EventID: "evt", EventType: events.TypeParticipantSignedUp, Topic: "roster_events"}, "boom")

	// First retry is immediate.
	require.Equal(t, 1, manager.RunOnce(10))
	claimed := queue.Claim(1)
	require.Len(t, claimed, 1)
	require.Equal(t, 1, claimed[0].Attempts)

	// A second failure backs off by the base delay.
	dead.Add(claimed[0], "boom again")
	require.Equal(t, 0, manager.RunOnce(10))
	now = now.Add(time.Minute)
	require.Equal(t, 1, manager.RunOnce(10))
	claimed = queue.Claim(1)
	require.Equal(t, 2, claimed[0].Attempts)

	// Retry limit reached: entry stays quarantined.
	dead.Add(claimed[0], "still failing")
	now = now.Add(time.Hour)
	require.Equal(t, 0, manager.RunOnce(10))
	require.Equal(t, 0, queue.Len())

	entries := dead.Entries()
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].QuarantinedAt)
	require.Equal(t, "retry limit reached", entries[0].Reason)
	require.Equal(t, "dead letter quarantined", hook.LastEntry().Message)

	now = now.Add(24 * time.Hour)
	require.Equal(t, 0, manager.RunOnce(10))
}

func TestBackoffDelayCapsAtOneHour(t *testing.T) {
	require.Equal(t, time.Duration(0), backoffDelay(time.Minute, 0))
	require.Equal(t, time.Minute, backoffDelay(time.Minute, 1))
	require.Equal(t, 4*time.Minute, backoffDelay(time.Minute, 3))
	require.Equal(t, time.Hour, backoffDelay(time.Minute, 10))
	require.Equal(t, time.Hour, backoffDelay(time.Minute, 80))
}
