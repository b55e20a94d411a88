package domain_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/roster/internal/catalog"
	"example.com/roster/internal/domain"
)

func newSeededRoster(t *testing.T, opts ...domain.RosterOption) *domain.MemoryRoster {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c.Roster(opts...)
}

func TestListActivitiesIncludesEverySeededActivity(t *testing.T) {
	ctx := context.Background()
	roster := newSeededRoster(t)

	activities, err := roster.ListActivities(ctx)
	require.NoError(t, err)
	for name := range catalog.MustDefault().Seed() {
		activity, ok := activities[name]
		require.True(t, ok, "missing %s", name)
		require.NotEmpty(t, activity.Description)
		require.NotEmpty(t, activity.Schedule)
		require.Positive(t, activity.MaxParticipants)
		require.NotNil(t, activity.Participants)
	}
}

func TestListActivitiesReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	roster := newSeededRoster(t)

	snapshot, err := roster.ListActivities(ctx)
	require.NoError(t, err)
	chess := snapshot["Chess Club"]
	chess.Participants[0] = "intruder@x.edu"
	chess.Participants = append(chess.Participants, "another@x.edu")
	snapshot["Chess Club"] = chess
	delete(snapshot, "Art Club")

	fresh, err := roster.ListActivities(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"}, fresh["Chess Club"].Participants)
	require.Contains(t, fresh, domain.ActivityName("Art Club"))
}

func TestSignUpThenUnregisterRestoresChessClub(t *testing.T) {
	ctx := context.Background()
	roster := newSeededRoster(t)

	conf, err := roster.SignUp(ctx, "Chess Club", "new@x.edu")
	require.NoError(t, err)
	require.Equal(t, domain.Confirmation{
		Activity:         "Chess Club",
		Participant:      "new@x.edu",
		ParticipantCount: 3,
		MaxParticipants:  12,
		Sequence:         1,
	}, conf)

	chess, err := roster.GetActivity(ctx, "Chess Club")
	require.NoError(t, err)
	require.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu", "new@x.edu"}, chess.Participants)

	conf, err = roster.Unregister(ctx, "Chess Club", "new@x.edu")
	require.NoError(t, err)
	require.Equal(t, 2, conf.ParticipantCount)

	chess, err = roster.GetActivity(ctx, "Chess Club")
	require.NoError(t, err)
	require.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu"}, chess.Participants)
}

func TestSequenceCountsChangesPerActivity(t *testing.T) {
	ctx := context.Background()
	roster := newSeededRoster(t)

	conf, err := roster.SignUp(ctx, "Chess Club", "a@x.edu")
	require.NoError(t, err)
	require.Equal(t, uint64(1), conf.Sequence)

	_, err = roster.SignUp(ctx, "Chess Club", "a@x.edu")
	require.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	conf, err = roster.Unregister(ctx, "Chess Club", "a@x.edu")
	require.NoError(t, err)
	require.Equal(t, uint64(2), conf.Sequence, "rejected changes do not advance the sequence")

	conf, err = roster.SignUp(ctx, "Art Club", "a@x.edu")
	require.NoError(t, err)
	require.Equal(t, uint64(1), conf.Sequence)
}

func TestUnregisterKeepsOrderOfRemainingParticipants(t *testing.T) {
	ctx := context.Background()
	roster := domain.NewMemoryRoster(map[domain.ActivityName]domain.Activity{
		"Choir": {MaxParticipants: 10, Participants: []string{"a", "b", "c"}},
	})

	_, err := roster.SignUp(ctx, "Choir", "d")
	require.NoError(t, err)
	_, err = roster.Unregister(ctx, "Choir", "b")
	require.NoError(t, err)

	choir, err := roster.GetActivity(ctx, "Choir")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c", "d"}, choir.Participants)
}

func TestSignUpTwiceFailsWithAlreadyRegistered(t *testing.T) {
	ctx := context.Background()
	roster := newSeededRoster(t)

	_, err := roster.SignUp(ctx, "Debate Team", "twice@x.edu")
	require.NoError(t, err)
	_, err = roster.SignUp(ctx, "Debate Team", "twice@x.edu")
	require.ErrorIs(t, err, domain.ErrAlreadyRegistered)
}

func TestSignUpSeededParticipantLeavesRosterUnchanged(t *testing.T) {
	ctx := context.Background()
	roster := newSeededRoster(t)

	_, err := roster.SignUp(ctx, "Basketball Team", "alex@mergington.edu")
	require.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	basketball, err := roster.GetActivity(ctx, "Basketball Team")
	require.NoError(t, err)
	require.Len(t, basketball.Participants, 2)
}

func TestUnknownActivityFailsWithNotFound(t *testing.T) {
	ctx := context.Background()
	roster := newSeededRoster(t)

	for _, participant := range []string{"x@y.edu", "", "alex@mergington.edu"} {
		_, err := roster.SignUp(ctx, "Nonexistent Activity", participant)
		require.ErrorIs(t, err, domain.ErrActivityNotFound)
		_, err = roster.Unregister(ctx, "Nonexistent Activity", participant)
		require.ErrorIs(t, err, domain.ErrActivityNotFound)
	}

	_, err := roster.GetActivity(ctx, "Nonexistent Activity")
	require.ErrorIs(t, err, domain.ErrActivityNotFound)
}

func TestActivityNamesAreCaseAndSpaceSensitive(t *testing.T) {
	ctx := context.Background()
	roster := newSeededRoster(t)

	for _, name := range []domain.ActivityName{"chess club", "Chess  Club", " Chess Club", "Chess Club "} {
		_, err := roster.SignUp(ctx, name, "x@y.edu")
		require.ErrorIs(t, err, domain.ErrActivityNotFound, "name %q", name)
	}
}

func TestUnregisterNeverAddedFailsWithNotRegistered(t *testing.T) {
	ctx := context.Background()
	roster := newSeededRoster(t)

	_, err := roster.Unregister(ctx, "Programming Class", "notregistered@mergington.edu")
	require.ErrorIs(t, err, domain.ErrNotRegistered)

	programming, err := roster.GetActivity(ctx, "Programming Class")
	require.NoError(t, err)
	require.Len(t, programming.Participants, 2)
}

// Capacity is advisory by default: signups past max_participants still succeed.
func TestSignUpOverbooksWithoutCapacityLimit(t *testing.T) {
	ctx := context.Background()
	roster := domain.NewMemoryRoster(map[domain.ActivityName]domain.Activity{
		"Duet": {MaxParticipants: 2, Participants: []string{"a", "b"}},
	})

	conf, err := roster.SignUp(ctx, "Duet", "c")
	require.NoError(t, err)
	require.Equal(t, 3, conf.ParticipantCount)
	require.Greater(t, conf.ParticipantCount, conf.MaxParticipants, "overbooking is allowed unless WithCapacityLimit is set")
}

func TestSignUpRejectsWhenFullWithCapacityLimit(t *testing.T) {
	ctx := context.Background()
	roster := domain.NewMemoryRoster(map[domain.ActivityName]domain.Activity{
		"Duet": {MaxParticipants: 2, Participants: []string{"a"}},
	}, domain.WithCapacityLimit(true))

	_, err := roster.SignUp(ctx, "Duet", "b")
	require.NoError(t, err)
	_, err = roster.SignUp(ctx, "Duet", "c")
	require.ErrorIs(t, err, domain.ErrActivityFull)
	_, err = roster.SignUp(ctx, "Duet", "a")
	require.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	_, err = roster.Unregister(ctx, "Duet", "a")
	require.NoError(t, err)
	_, err = roster.SignUp(ctx, "Duet", "c")
	require.NoError(t, err)
}

func TestConcurrentSignUpAdmitsParticipantOnce(t *testing.T) {
	ctx := context.Background()
	roster := newSeededRoster(t)

	const workers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		dupes     int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := roster.SignUp(ctx, "Track and Field", "racer@mergington.edu")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrAlreadyRegistered):
				dupes++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, workers-1, dupes)

	track, err := roster.GetActivity(ctx, "Track and Field")
	require.NoError(t, err)
	require.Equal(t, []string{"sarah@mergington.edu", "racer@mergington.edu"}, track.Participants)
}
