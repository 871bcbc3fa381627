package types

import (
	"fmt"
	"time"

	"github.com/NaviFeed/navifeed-backend/errors"
)

// EventClass is the broad category of a traffic event.
type EventClass string

// EventKind is the specific kind of event within a class.
type EventKind string

const (
	EventClassCongestion  EventClass = "CONGESTION"
	EventClassDelay       EventClass = "DELAY"
	EventClassRestriction EventClass = "RESTRICTION"

	EventCongestionQueue             EventKind = "QUEUE"
	EventCongestionSlowTraffic       EventKind = "SLOW_TRAFFIC"
	EventCongestionStationaryTraffic EventKind = "STATIONARY_TRAFFIC"
	EventDelayDelay                  EventKind = "DELAY"
	EventRestrictionClosed           EventKind = "CLOSED"
	EventRestrictionLaneClosed       EventKind = "LANE_CLOSED"
)

// eventKindsByClass is the closed table of valid class/kind combinations.
// Message constructors reject pairs that are not listed here.
var eventKindsByClass = map[EventClass][]EventKind{
	EventClassCongestion:  {EventCongestionQueue, EventCongestionSlowTraffic, EventCongestionStationaryTraffic},
	EventClassDelay:       {EventDelayDelay},
	EventClassRestriction: {EventRestrictionClosed, EventRestrictionLaneClosed},
}

// TrafficEvent classifies what is happening at a location.
type TrafficEvent struct {
	Class EventClass `json:"class"`
	Kind  EventKind  `json:"kind"`
}

// Valid reports whether the class/kind pair is one of the defined
// combinations.
func (e TrafficEvent) Valid() bool {
	for _, kind := range eventKindsByClass[e.Class] {
		if kind == e.Kind {
			return true
		}
	}
	return false
}

// TrafficMessage is the unit of information exchanged between traffic
// providers and the framework. A message either carries one event or, when
// Event is nil, withdraws the previously issued message with the same ID.
//
// Messages are created fresh on every provider poll; ownership passes to the
// caller and instances are never reused. Treat them as immutable.
type TrafficMessage struct {
	// ID correlates updates and cancellations to a previously issued
	// message. A later message with the same ID replaces the earlier one.
	ID            string    `json:"id"`
	FirstReceived time.Time `json:"firstReceived"`
	LastUpdated   time.Time `json:"lastUpdated"`
	// Expiration is advisory: consumers must treat the message as stale
	// once the current time exceeds it, but providers are not required to
	// actively purge it.
	Expiration time.Time        `json:"expiration"`
	Supersedes bool             `json:"supersedes"`
	Location   *TrafficLocation `json:"location"`
	Event      *TrafficEvent    `json:"event,omitempty"`
}

// NewSingleEventMessage creates a validated message carrying one event.
func NewSingleEventMessage(
	id string,
	firstReceived, lastUpdated, expiration time.Time,
	supersedes bool,
	location *TrafficLocation,
	class EventClass,
	kind EventKind,
) (*TrafficMessage, error) {
	if err := validateMessageFields(id, firstReceived, lastUpdated, location); err != nil {
		return nil, err
	}
	event := TrafficEvent{Class: class, Kind: kind}
	if !event.Valid() {
		return nil, errors.ValidationFailed(
			"invalid traffic message",
			fmt.Sprintf("event %s/%s is not a defined combination", class, kind),
		)
	}
	return &TrafficMessage{
		ID:            id,
		FirstReceived: firstReceived,
		LastUpdated:   lastUpdated,
		Expiration:    expiration,
		Supersedes:    supersedes,
		Location:      location,
		Event:         &event,
	}, nil
}

// NewCancellationMessage creates a validated message with no event payload,
// semantically meaning "withdraw the message with this identifier".
func NewCancellationMessage(
	id string,
	firstReceived, lastUpdated, expiration time.Time,
	location *TrafficLocation,
) (*TrafficMessage, error) {
	if err := validateMessageFields(id, firstReceived, lastUpdated, location); err != nil {
		return nil, err
	}
	return &TrafficMessage{
		ID:            id,
		FirstReceived: firstReceived,
		LastUpdated:   lastUpdated,
		Expiration:    expiration,
		Location:      location,
	}, nil
}

func validateMessageFields(id string, firstReceived, lastUpdated time.Time, location *TrafficLocation) error {
	if id == "" {
		return errors.ValidationFailed("invalid traffic message", "message ID is required")
	}
	if firstReceived.After(lastUpdated) {
		return errors.ValidationFailed(
			"invalid traffic message",
			fmt.Sprintf("firstReceived %s is after lastUpdated %s", firstReceived, lastUpdated),
		)
	}
	if location == nil {
		return errors.ValidationFailed("invalid traffic message", "location is required")
	}
	return nil
}

// IsCancellation reports whether the message withdraws a previous one.
func (m *TrafficMessage) IsCancellation() bool {
	return m.Event == nil
}

// IsExpired reports whether the message is stale at the given time.
func (m *TrafficMessage) IsExpired(now time.Time) bool {
	return now.After(m.Expiration)
}

// PollResult is the outcome of one provider poll. The absence of new
// information is distinct from a batch that happens to be empty, so the
// result carries an explicit tag instead of relying on a nil slice or
// pointer.
type PollResult struct {
	hasUpdate bool
	messages  []*TrafficMessage
}

// NoUpdate signals that the provider has nothing new to report.
func NoUpdate() PollResult {
	return PollResult{}
}

// Messages wraps a batch of freshly built messages.
func Messages(messages ...*TrafficMessage) PollResult {
	return PollResult{hasUpdate: true, messages: messages}
}

// HasUpdate reports whether the poll produced a batch at all.
func (r PollResult) HasUpdate() bool {
	return r.hasUpdate
}

// Batch returns the messages of an update, nil for a no-update result.
func (r PollResult) Batch() []*TrafficMessage {
	if !r.hasUpdate {
		return nil
	}
	return r.messages
}
