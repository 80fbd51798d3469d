package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, time.Hour), mr
}

func TestSessionRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	state, err := store.Open(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, state.SessionID)
	assert.Equal(t, StepProject, state.Step)
	assert.Equal(t, "user-1", state.UID)

	require.NoError(t, state.SubmitProjectDetails(validProject()))
	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Get(ctx, state.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StepClient, loaded.Step)
	require.NotNil(t, loaded.Project)
	assert.Equal(t, "Riverside Renovation", loaded.Project.Name)
}

func TestGetUnknownSession(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	state, err := store.Open(ctx, "user-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = store.Get(ctx, state.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteRemovesSession(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	state, err := store.Open(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, state.SessionID))
	_, err = store.Get(ctx, state.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDoubleFinalizeRejected(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	state, err := store.Open(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, store.BeginFinalize(ctx, state.SessionID))
	assert.ErrorIs(t, store.BeginFinalize(ctx, state.SessionID), ErrFinalizeInFlight)
}

func TestFinalizeRetryAfterFailure(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	state, err := store.Open(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, store.BeginFinalize(ctx, state.SessionID))
	store.EndFinalize(ctx, state.SessionID)

	// a failed attempt releases the lock so the user can retry
	assert.NoError(t, store.BeginFinalize(ctx, state.SessionID))
}

func TestFinalizeLockExpires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	state, err := store.Open(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, store.BeginFinalize(ctx, state.SessionID))
	mr.FastForward(2 * time.Minute)
	assert.NoError(t, store.BeginFinalize(ctx, state.SessionID))
}
