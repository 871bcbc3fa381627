package dummy

import (
	"context"
	"testing"
	"time"

	"github.com/NaviFeed/navifeed-backend/internal/provider"
	"github.com/NaviFeed/navifeed-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDummy(t *testing.T) *Dummy {
	t.Helper()
	p, err := New(provider.Config{})
	require.NoError(t, err)
	return p.(*Dummy)
}

func poll(t *testing.T, d *Dummy) types.PollResult {
	t.Helper()
	result, err := d.GetMessages(context.Background())
	require.NoError(t, err)
	return result
}

func TestDummy_Registered(t *testing.T) {
	host := struct{ marker string }{"host"}

	p, err := provider.Default().New(Name, provider.Config{Host: &host})
	require.NoError(t, err)
	assert.Equal(t, "dummy", p.Name())

	d, ok := p.(*Dummy)
	require.True(t, ok)
	assert.Same(t, &host, d.host)
}

func TestDummy_FirstPoll(t *testing.T) {
	d := newDummy(t)

	before := time.Now()
	result := poll(t, d)
	after := time.Now()

	require.True(t, result.HasUpdate())
	batch := result.Batch()
	require.Len(t, batch, 2)

	queue := batch[0]
	assert.Equal(t, "dummy:A9-68-67", queue.ID)
	require.NotNil(t, queue.Event)
	assert.Equal(t, types.EventClassCongestion, queue.Event.Class)
	assert.Equal(t, types.EventCongestionQueue, queue.Event.Kind)

	slow := batch[1]
	assert.Equal(t, "dummy:A96-36b-38", slow.ID)
	require.NotNil(t, slow.Event)
	assert.Equal(t, types.EventClassCongestion, slow.Event.Class)
	assert.Equal(t, types.EventCongestionSlowTraffic, slow.Event.Kind)

	for _, msg := range batch {
		assert.False(t, msg.Supersedes)
		assert.False(t, msg.IsCancellation())

		// Fresh reports: both timestamps match the poll instant
		assert.True(t, msg.FirstReceived.Equal(msg.LastUpdated))
		assert.False(t, msg.FirstReceived.Before(before))
		assert.False(t, msg.FirstReceived.After(after))
		assert.True(t, msg.Expiration.Equal(msg.LastUpdated.Add(20*time.Second)))
	}
}

func TestDummy_FirstPollLocations(t *testing.T) {
	d := newDummy(t)

	batch := poll(t, d).Batch()
	require.Len(t, batch, 2)

	a9 := batch[0].Location
	require.NotNil(t, a9)
	assert.Equal(t, "A9", a9.RoadRef)
	assert.Equal(t, "Nürnberg", a9.Destination)
	assert.Equal(t, types.DirectionalityOneWay, a9.Directionality)
	assert.Equal(t, types.FuzzinessLowRes, a9.Fuzziness)
	assert.Equal(t, types.RampsNone, a9.Ramps)
	assert.Equal(t, types.RoadClassMotorway, a9.RoadClass)
	assert.Equal(t, "58:1", a9.TMCTable)
	assert.Equal(t, -1, a9.Extent)

	require.NotNil(t, a9.From)
	assert.Equal(t, "Neufahrn", a9.From.Name)
	assert.Equal(t, "68", a9.From.JunctionRef)
	assert.Equal(t, "12732-4", a9.From.TMCID)
	assert.InDelta(t, 48.3164, a9.From.Coordinates.Latitude(), 1e-9)
	assert.InDelta(t, 11.6208, a9.From.Coordinates.Longitude(), 1e-9)

	require.NotNil(t, a9.To)
	assert.Equal(t, "Allershausen", a9.To.Name)
	assert.Equal(t, "67", a9.To.JunctionRef)
	assert.Equal(t, "12732", a9.To.TMCID)
	assert.InDelta(t, 48.429, a9.To.Coordinates.Latitude(), 1e-9)
	assert.InDelta(t, 11.5893, a9.To.Coordinates.Longitude(), 1e-9)

	a96 := batch[1].Location
	require.NotNil(t, a96)
	assert.Equal(t, "A96", a96.RoadRef)
	assert.Equal(t, "München", a96.Destination)
	assert.Equal(t, "58:1", a96.TMCTable)

	require.NotNil(t, a96.From)
	assert.Equal(t, "Gräfelfing", a96.From.Name)
	assert.Equal(t, "36b", a96.From.JunctionRef)
	assert.Equal(t, "12961-2", a96.From.TMCID)

	require.NotNil(t, a96.To)
	assert.Equal(t, "München-Laim", a96.To.Name)
	assert.Equal(t, "38", a96.To.JunctionRef)
	assert.Equal(t, "12961", a96.To.TMCID)
}

func TestDummy_EleventhPoll(t *testing.T) {
	d := newDummy(t)

	// Poll 1 issues the initial feed
	first := poll(t, d)
	require.True(t, first.HasUpdate())

	// Polls 2 through 10 report nothing
	for i := 2; i <= 10; i++ {
		assert.False(t, poll(t, d).HasUpdate(), "poll %d should report no update", i)
	}

	before := time.Now()
	second := poll(t, d)
	after := time.Now()

	require.True(t, second.HasUpdate())
	batch := second.Batch()
	require.Len(t, batch, 2)

	update := batch[0]
	assert.Equal(t, "dummy:A9-68-67", update.ID)
	assert.False(t, update.IsCancellation())
	require.NotNil(t, update.Event)
	assert.Equal(t, types.EventClassCongestion, update.Event.Class)
	assert.Equal(t, types.EventCongestionQueue, update.Event.Kind)

	cancellation := batch[1]
	assert.Equal(t, "dummy:A96-36b-38", cancellation.ID)
	assert.True(t, cancellation.IsCancellation())
	assert.Nil(t, cancellation.Event)
	require.NotNil(t, cancellation.Location)
	assert.Equal(t, "A96", cancellation.Location.RoadRef)

	for _, msg := range batch {
		// The update pretends to have been received ten seconds ago
		assert.True(t, msg.FirstReceived.Equal(msg.LastUpdated.Add(-10*time.Second)))
		assert.False(t, msg.LastUpdated.Before(before))
		assert.False(t, msg.LastUpdated.After(after))
		assert.True(t, msg.Expiration.Equal(msg.LastUpdated.Add(10*time.Second)))
	}
}

func TestDummy_MessageIDsStableAcrossFeeds(t *testing.T) {
	d := newDummy(t)

	firstIDs := make([]string, 0, 2)
	for _, msg := range poll(t, d).Batch() {
		firstIDs = append(firstIDs, msg.ID)
	}

	for i := 2; i <= 10; i++ {
		poll(t, d)
	}

	secondIDs := make([]string, 0, 2)
	for _, msg := range poll(t, d).Batch() {
		secondIDs = append(secondIDs, msg.ID)
	}

	assert.Equal(t, firstIDs, secondIDs)
}

func TestDummy_QuietAfterSecondFeed(t *testing.T) {
	d := newDummy(t)

	updates := 0
	for i := 1; i <= 30; i++ {
		if poll(t, d).HasUpdate() {
			updates++
			assert.Contains(t, []int{1, 11}, i, "unexpected update on poll %d", i)
		}
	}
	assert.Equal(t, 2, updates)
}
