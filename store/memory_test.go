package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NaviFeed/navifeed-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage(t *testing.T, id string, issued time.Time, ttl time.Duration) *types.TrafficMessage {
	t.Helper()
	from, err := types.NewTrafficPoint(11.6208, 48.3164, "Neufahrn", "68", "12732-4")
	require.NoError(t, err)
	to, err := types.NewTrafficPoint(11.5893, 48.429, "Allershausen", "67", "12732")
	require.NoError(t, err)
	location, err := types.NewTrafficLocation(from, to, "Nürnberg", "",
		types.DirectionalityOneWay, types.FuzzinessLowRes, types.RampsNone,
		types.RoadClassMotorway, "A9", "58:1", -1)
	require.NoError(t, err)

	msg, err := types.NewSingleEventMessage(id, issued, issued, issued.Add(ttl),
		false, location, types.EventClassCongestion, types.EventCongestionQueue)
	require.NoError(t, err)
	return msg
}

func testCancellation(t *testing.T, id string, issued time.Time) *types.TrafficMessage {
	t.Helper()
	from, err := types.NewTrafficPoint(11.4481, 48.1266, "Gräfelfing", "36b", "12961-2")
	require.NoError(t, err)
	to, err := types.NewTrafficPoint(11.5028, 48.1258, "München-Laim", "38", "12961")
	require.NoError(t, err)
	location, err := types.NewTrafficLocation(from, to, "München", "",
		types.DirectionalityOneWay, types.FuzzinessLowRes, types.RampsNone,
		types.RoadClassMotorway, "A96", "58:1", -1)
	require.NoError(t, err)

	msg, err := types.NewCancellationMessage(id, issued, issued, issued.Add(10*time.Second), location)
	require.NoError(t, err)
	return msg
}

// testStore returns a store with a controllable clock.
func testStore(start time.Time) (*MemoryTrafficStore, *time.Time) {
	current := start
	s := NewMemoryTrafficStore()
	s.now = func() time.Time { return current }
	return s, &current
}

func TestMemoryTrafficStore_Apply(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s, _ := testStore(now)

	msg := testMessage(t, "dummy:A9-68-67", now, 20*time.Second)

	change, err := s.Apply(ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, ChangeIssued, change)

	// Applying the same identifier again is an update
	update := testMessage(t, "dummy:A9-68-67", now.Add(time.Second), 20*time.Second)
	change, err = s.Apply(ctx, update)
	require.NoError(t, err)
	assert.Equal(t, ChangeUpdated, change)

	got, err := s.GetByID(ctx, "dummy:A9-68-67")
	require.NoError(t, err)
	assert.Equal(t, update, got)
}

func TestMemoryTrafficStore_Apply_Nil(t *testing.T) {
	s, _ := testStore(time.Now())

	change, err := s.Apply(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, ChangeNone, change)
}

func TestMemoryTrafficStore_Apply_Cancellation(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s, _ := testStore(now)

	msg := testMessage(t, "dummy:A96-36b-38", now, 20*time.Second)
	_, err := s.Apply(ctx, msg)
	require.NoError(t, err)

	change, err := s.Apply(ctx, testCancellation(t, "dummy:A96-36b-38", now))
	require.NoError(t, err)
	assert.Equal(t, ChangeCancelled, change)

	_, err = s.GetByID(ctx, "dummy:A96-36b-38")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTrafficStore_Apply_CancellationUnknownID(t *testing.T) {
	now := time.Now()
	s, _ := testStore(now)

	// Withdrawing a message that was never issued changes nothing
	change, err := s.Apply(context.Background(), testCancellation(t, "dummy:A96-36b-38", now))
	require.NoError(t, err)
	assert.Equal(t, ChangeNone, change)
}

func TestMemoryTrafficStore_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s, clock := testStore(now)

	msg := testMessage(t, "dummy:A9-68-67", now, 20*time.Second)
	_, err := s.Apply(ctx, msg)
	require.NoError(t, err)

	got, err := s.GetByID(ctx, "dummy:A9-68-67")
	require.NoError(t, err)
	assert.Equal(t, msg, got)

	_, err = s.GetByID(ctx, "dummy:unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	// Once expired the message is gone from the consumer view
	*clock = now.Add(21 * time.Second)
	_, err = s.GetByID(ctx, "dummy:A9-68-67")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTrafficStore_List(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s, clock := testStore(now)

	_, err := s.Apply(ctx, testMessage(t, "dummy:A9-68-67", now, 20*time.Second))
	require.NoError(t, err)
	_, err = s.Apply(ctx, testMessage(t, "dummy:A96-36b-38", now, 10*time.Second))
	require.NoError(t, err)

	active, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)

	// Sorted by identifier
	assert.Equal(t, "dummy:A9-68-67", active[0].ID)
	assert.Equal(t, "dummy:A96-36b-38", active[1].ID)

	// The shorter-lived message drops out of the view first
	*clock = now.Add(15 * time.Second)
	active, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "dummy:A9-68-67", active[0].ID)
}

func TestMemoryTrafficStore_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s, clock := testStore(now)

	_, err := s.Apply(ctx, testMessage(t, "dummy:A9-68-67", now, 20*time.Second))
	require.NoError(t, err)
	_, err = s.Apply(ctx, testMessage(t, "dummy:A96-36b-38", now, 10*time.Second))
	require.NoError(t, err)

	// Nothing has expired yet
	removed, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Empty(t, removed)

	*clock = now.Add(15 * time.Second)
	removed, err = s.PurgeExpired(ctx)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "dummy:A96-36b-38", removed[0].ID)

	// The purged message is gone, the other survives
	_, err = s.GetByID(ctx, "dummy:A96-36b-38")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetByID(ctx, "dummy:A9-68-67")
	assert.NoError(t, err)
}

func TestErrNotFoundUnwrapping(t *testing.T) {
	s, _ := testStore(time.Now())

	_, err := s.GetByID(context.Background(), "dummy:unknown")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "dummy:unknown")
}
