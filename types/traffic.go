package types

import (
	"fmt"

	"github.com/NaviFeed/navifeed-backend/errors"
	"github.com/NaviFeed/navifeed-backend/pkg/valueobjects"
)

// Directionality indicates whether a location affects one or both directions
// of travel.
type Directionality string

const (
	DirectionalityOneWay Directionality = "ONE_WAY"
	DirectionalityBoth   Directionality = "BOTH_WAYS"
)

func (d Directionality) Valid() bool {
	switch d {
	case DirectionalityOneWay, DirectionalityBoth:
		return true
	}
	return false
}

// Fuzziness is the precision class of a location descriptor. TMC-derived
// locations are typically low resolution because they snap to predefined
// location-table points.
type Fuzziness string

const (
	FuzzinessExact  Fuzziness = "EXACT"
	FuzzinessLowRes Fuzziness = "LOW_RES"
)

func (f Fuzziness) Valid() bool {
	switch f {
	case FuzzinessExact, FuzzinessLowRes:
		return true
	}
	return false
}

// RampsPolicy states whether entry/exit ramps are part of the affected
// stretch of road.
type RampsPolicy string

const (
	RampsNone RampsPolicy = "NONE"
	RampsAll  RampsPolicy = "ALL"
)

func (r RampsPolicy) Valid() bool {
	switch r {
	case RampsNone, RampsAll:
		return true
	}
	return false
}

// RoadClass is a coarse classification of the affected road.
type RoadClass string

const (
	RoadClassMotorway RoadClass = "MOTORWAY"
	RoadClassTrunk    RoadClass = "TRUNK"
	RoadClassPrimary  RoadClass = "PRIMARY"
	RoadClassOther    RoadClass = "OTHER"
)

func (r RoadClass) Valid() bool {
	switch r {
	case RoadClassMotorway, RoadClassTrunk, RoadClassPrimary, RoadClassOther:
		return true
	}
	return false
}

// TrafficPoint is a named geographic waypoint anchoring one end of a traffic
// location. Immutable once constructed; treat instances as read-only.
type TrafficPoint struct {
	Coordinates valueobjects.GeoPoint `json:"coordinates"`
	Name        string                `json:"name"`
	// JunctionRef is the motorway junction or exit number, when known.
	JunctionRef string `json:"junctionRef,omitempty"`
	// TMCID references the point in a TMC location table, when known.
	TMCID string `json:"tmcId,omitempty"`
}

// NewTrafficPoint creates a validated TrafficPoint from raw coordinates.
func NewTrafficPoint(lng, lat float64, name, junctionRef, tmcID string) (*TrafficPoint, error) {
	coords, err := valueobjects.NewGeoPoint(lat, lng)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.ValidationFailed("invalid traffic point", "name is required")
	}
	return &TrafficPoint{
		Coordinates: *coords,
		Name:        name,
		JunctionRef: junctionRef,
		TMCID:       tmcID,
	}, nil
}

// TrafficLocation describes the directed road segment a message applies to.
// At least the destination point must be present. Immutable once constructed.
type TrafficLocation struct {
	From *TrafficPoint `json:"from,omitempty"`
	To   *TrafficPoint `json:"to"`
	// Destination is the region or city the affected carriageway leads to,
	// as it would appear on direction signs.
	Destination    string         `json:"destination"`
	Via            string         `json:"via,omitempty"`
	Directionality Directionality `json:"directionality"`
	Fuzziness      Fuzziness      `json:"fuzziness"`
	Ramps          RampsPolicy    `json:"ramps"`
	RoadClass      RoadClass      `json:"roadClass"`
	// RoadRef is the signposted route designation, e.g. "A9".
	RoadRef string `json:"roadRef,omitempty"`
	// TMCTable identifies the location table the TMC point references
	// belong to, e.g. "58:1" for country code 58, table 1.
	TMCTable string `json:"tmcTable,omitempty"`
	// Extent is the number of location-table steps covered by the segment.
	// Negative values mean unknown.
	Extent int `json:"extent"`
}

// NewTrafficLocation creates a validated TrafficLocation. from may be nil for
// point-like locations; to is required. When both endpoints are given they
// must be distinct.
func NewTrafficLocation(
	from, to *TrafficPoint,
	destination, via string,
	directionality Directionality,
	fuzziness Fuzziness,
	ramps RampsPolicy,
	roadClass RoadClass,
	roadRef, tmcTable string,
	extent int,
) (*TrafficLocation, error) {
	if to == nil {
		return nil, errors.ValidationFailed("invalid traffic location", "destination point is required")
	}
	if from != nil && from.Coordinates.Equals(to.Coordinates) {
		return nil, errors.ValidationFailed(
			"invalid traffic location",
			fmt.Sprintf("from and to must be distinct points, both are %s", to.Coordinates.String()),
		)
	}
	if !directionality.Valid() {
		return nil, errors.ValidationFailed("invalid traffic location", fmt.Sprintf("unknown directionality %q", directionality))
	}
	if !fuzziness.Valid() {
		return nil, errors.ValidationFailed("invalid traffic location", fmt.Sprintf("unknown fuzziness %q", fuzziness))
	}
	if !ramps.Valid() {
		return nil, errors.ValidationFailed("invalid traffic location", fmt.Sprintf("unknown ramps policy %q", ramps))
	}
	if !roadClass.Valid() {
		return nil, errors.ValidationFailed("invalid traffic location", fmt.Sprintf("unknown road class %q", roadClass))
	}
	return &TrafficLocation{
		From:           from,
		To:             to,
		Destination:    destination,
		Via:            via,
		Directionality: directionality,
		Fuzziness:      fuzziness,
		Ramps:          ramps,
		RoadClass:      roadClass,
		RoadRef:        roadRef,
		TMCTable:       tmcTable,
		Extent:         extent,
	}, nil
}

// SegmentLength returns the great-circle length of the segment in meters, or
// 0 when only one endpoint is known.
func (l *TrafficLocation) SegmentLength() float64 {
	if l.From == nil || l.To == nil {
		return 0
	}
	return l.From.Coordinates.DistanceTo(l.To.Coordinates)
}
