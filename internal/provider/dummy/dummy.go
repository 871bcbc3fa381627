// Package dummy implements a fixed traffic provider used to exercise the
// traffic framework in tests. It fabricates two messages on its first poll,
// an update and a cancellation on its eleventh, and reports nothing
// otherwise. The payloads mimic TMC messages: coordinates are approximate,
// TMC identifiers are supplied for the locations, and fields that can be
// inferred from the TMC location table are filled in.
package dummy

import (
	"context"
	"time"

	"github.com/NaviFeed/navifeed-backend/internal/provider"
	"github.com/NaviFeed/navifeed-backend/types"
)

// Name is the registry name of the dummy provider.
const Name = "dummy"

// The poll counts at which the canned feeds are issued. Consumers of the
// fixture depend on these exact values.
const (
	firstFeedPoll  = 1
	secondFeedPoll = 11
)

// Expiration is deliberately far below the lowest timespan permitted in TMC
// so tests can observe expiry quickly.
const (
	firstFeedExpiry  = 20 * time.Second
	secondFeedExpiry = 10 * time.Second
	secondFeedAge    = 10 * time.Second
)

// Message identifiers, stable across the initial feed and the update feed so
// consumers can correlate them.
const (
	messageIDA9  = "dummy:A9-68-67"
	messageIDA96 = "dummy:A96-36b-38"
)

func init() {
	provider.Register(Name, New)
}

// Dummy is the plugin instance state: an opaque host back-reference and a
// monotonically increasing poll counter selecting the canned output. The
// framework polls from a single goroutine, so the counter needs no locking.
type Dummy struct {
	host  any
	polls int
}

// New builds a dummy provider instance. It never fails; the signature is
// dictated by provider.Factory.
func New(cfg provider.Config) (provider.Provider, error) {
	return &Dummy{host: cfg.Host}, nil
}

func (d *Dummy) Name() string {
	return Name
}

// GetMessages returns the canned traffic report for the current poll count.
//
// The first poll reports queuing traffic on the A9 Munich–Nuremberg between
// Neufahrn and Allershausen, and slow traffic on the A96 Lindau–Munich
// between Gräfelfing and München-Laim. Both messages have matching "first
// received" and "last updated" timestamps and expire after 20 seconds.
//
// The eleventh poll reports an update for the A9 (recent timestamp,
// otherwise the same data) and a cancellation for the A96, both expiring
// after 10 seconds.
//
// Every other poll reports NoUpdate.
func (d *Dummy) GetMessages(ctx context.Context) (types.PollResult, error) {
	d.polls++

	switch d.polls {
	case firstFeedPoll:
		return d.initialFeed()
	case secondFeedPoll:
		return d.updateFeed()
	default:
		return types.NoUpdate(), nil
	}
}

// initialFeed issues the two fresh messages of the first feed.
func (d *Dummy) initialFeed() (types.PollResult, error) {
	now := time.Now()

	a9, err := locationA9()
	if err != nil {
		return types.NoUpdate(), err
	}
	queue, err := types.NewSingleEventMessage(messageIDA9, now, now, now.Add(firstFeedExpiry),
		false, a9, types.EventClassCongestion, types.EventCongestionQueue)
	if err != nil {
		return types.NoUpdate(), err
	}

	a96, err := locationA96()
	if err != nil {
		return types.NoUpdate(), err
	}
	slow, err := types.NewSingleEventMessage(messageIDA96, now, now, now.Add(firstFeedExpiry),
		false, a96, types.EventClassCongestion, types.EventCongestionSlowTraffic)
	if err != nil {
		return types.NoUpdate(), err
	}

	return types.Messages(queue, slow), nil
}

// updateFeed issues the A9 update and the A96 cancellation.
func (d *Dummy) updateFeed() (types.PollResult, error) {
	now := time.Now()

	a9, err := locationA9()
	if err != nil {
		return types.NoUpdate(), err
	}
	update, err := types.NewSingleEventMessage(messageIDA9, now.Add(-secondFeedAge), now, now.Add(secondFeedExpiry),
		false, a9, types.EventClassCongestion, types.EventCongestionQueue)
	if err != nil {
		return types.NoUpdate(), err
	}

	a96, err := locationA96()
	if err != nil {
		return types.NoUpdate(), err
	}
	cancellation, err := types.NewCancellationMessage(messageIDA96, now.Add(-secondFeedAge), now, now.Add(secondFeedExpiry), a96)
	if err != nil {
		return types.NoUpdate(), err
	}

	return types.Messages(update, cancellation), nil
}

// locationA9 builds the A9 Munich–Nuremberg segment between the Neufahrn and
// Allershausen junctions. Built fresh per feed; messages never share
// location instances.
func locationA9() (*types.TrafficLocation, error) {
	from, err := types.NewTrafficPoint(11.6208, 48.3164, "Neufahrn", "68", "12732-4")
	if err != nil {
		return nil, err
	}
	to, err := types.NewTrafficPoint(11.5893, 48.429, "Allershausen", "67", "12732")
	if err != nil {
		return nil, err
	}
	return types.NewTrafficLocation(from, to, "Nürnberg", "",
		types.DirectionalityOneWay, types.FuzzinessLowRes, types.RampsNone,
		types.RoadClassMotorway, "A9", "58:1", -1)
}

// locationA96 builds the A96 Lindau–Munich segment between Gräfelfing and
// München-Laim.
func locationA96() (*types.TrafficLocation, error) {
	from, err := types.NewTrafficPoint(11.4481, 48.1266, "Gräfelfing", "36b", "12961-2")
	if err != nil {
		return nil, err
	}
	to, err := types.NewTrafficPoint(11.5028, 48.1258, "München-Laim", "38", "12961")
	if err != nil {
		return nil, err
	}
	return types.NewTrafficLocation(from, to, "München", "",
		types.DirectionalityOneWay, types.FuzzinessLowRes, types.RampsNone,
		types.RoadClassMotorway, "A96", "58:1", -1)
}
