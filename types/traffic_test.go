package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPoint(t *testing.T, lng, lat float64, name string) *TrafficPoint {
	t.Helper()
	p, err := NewTrafficPoint(lng, lat, name, "", "")
	require.NoError(t, err)
	return p
}

func TestNewTrafficPoint(t *testing.T) {
	tests := []struct {
		name        string
		lng         float64
		lat         float64
		pointName   string
		shouldError bool
	}{
		{
			name:      "valid point",
			lng:       11.6208,
			lat:       48.3164,
			pointName: "Neufahrn",
		},
		{
			name:        "latitude out of range",
			lng:         11.6208,
			lat:         91.0,
			pointName:   "Nowhere",
			shouldError: true,
		},
		{
			name:        "longitude out of range",
			lng:         -181.0,
			lat:         48.3164,
			pointName:   "Nowhere",
			shouldError: true,
		},
		{
			name:        "missing name",
			lng:         11.6208,
			lat:         48.3164,
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point, err := NewTrafficPoint(tt.lng, tt.lat, tt.pointName, "68", "12732-4")
			if tt.shouldError {
				assert.Error(t, err)
				assert.Nil(t, point)
			} else {
				require.NoError(t, err)
				require.NotNil(t, point)
				assert.Equal(t, tt.lat, point.Coordinates.Latitude())
				assert.Equal(t, tt.lng, point.Coordinates.Longitude())
				assert.Equal(t, tt.pointName, point.Name)
				assert.Equal(t, "68", point.JunctionRef)
				assert.Equal(t, "12732-4", point.TMCID)
			}
		})
	}
}

func TestNewTrafficLocation(t *testing.T) {
	from := mustPoint(t, 11.6208, 48.3164, "Neufahrn")
	to := mustPoint(t, 11.5893, 48.429, "Allershausen")

	location, err := NewTrafficLocation(from, to, "Nürnberg", "",
		DirectionalityOneWay, FuzzinessLowRes, RampsNone, RoadClassMotorway,
		"A9", "58:1", -1)
	require.NoError(t, err)
	require.NotNil(t, location)

	assert.Equal(t, from, location.From)
	assert.Equal(t, to, location.To)
	assert.Equal(t, "Nürnberg", location.Destination)
	assert.Equal(t, DirectionalityOneWay, location.Directionality)
	assert.Equal(t, FuzzinessLowRes, location.Fuzziness)
	assert.Equal(t, RampsNone, location.Ramps)
	assert.Equal(t, RoadClassMotorway, location.RoadClass)
	assert.Equal(t, "A9", location.RoadRef)
	assert.Equal(t, "58:1", location.TMCTable)
	assert.Equal(t, -1, location.Extent)
}

func TestNewTrafficLocation_PointLike(t *testing.T) {
	to := mustPoint(t, 11.5893, 48.429, "Allershausen")

	// A location with only a destination point is valid
	location, err := NewTrafficLocation(nil, to, "Nürnberg", "",
		DirectionalityBoth, FuzzinessExact, RampsAll, RoadClassPrimary,
		"", "", -1)
	require.NoError(t, err)
	assert.Nil(t, location.From)
	assert.Zero(t, location.SegmentLength())
}

func TestNewTrafficLocation_Invalid(t *testing.T) {
	from := mustPoint(t, 11.6208, 48.3164, "Neufahrn")
	to := mustPoint(t, 11.5893, 48.429, "Allershausen")
	samePlace := mustPoint(t, 11.6208, 48.3164, "Neufahrn Ost")

	tests := []struct {
		name           string
		from           *TrafficPoint
		to             *TrafficPoint
		directionality Directionality
		fuzziness      Fuzziness
		ramps          RampsPolicy
		roadClass      RoadClass
	}{
		{
			name:           "missing destination point",
			from:           from,
			to:             nil,
			directionality: DirectionalityOneWay,
			fuzziness:      FuzzinessLowRes,
			ramps:          RampsNone,
			roadClass:      RoadClassMotorway,
		},
		{
			name:           "from and to coincide",
			from:           from,
			to:             samePlace,
			directionality: DirectionalityOneWay,
			fuzziness:      FuzzinessLowRes,
			ramps:          RampsNone,
			roadClass:      RoadClassMotorway,
		},
		{
			name:           "unknown directionality",
			from:           from,
			to:             to,
			directionality: Directionality("SIDEWAYS"),
			fuzziness:      FuzzinessLowRes,
			ramps:          RampsNone,
			roadClass:      RoadClassMotorway,
		},
		{
			name:           "unknown fuzziness",
			from:           from,
			to:             to,
			directionality: DirectionalityOneWay,
			fuzziness:      Fuzziness("GUESSED"),
			ramps:          RampsNone,
			roadClass:      RoadClassMotorway,
		},
		{
			name:           "unknown ramps policy",
			from:           from,
			to:             to,
			directionality: DirectionalityOneWay,
			fuzziness:      FuzzinessLowRes,
			ramps:          RampsPolicy("SOME"),
			roadClass:      RoadClassMotorway,
		},
		{
			name:           "unknown road class",
			from:           from,
			to:             to,
			directionality: DirectionalityOneWay,
			fuzziness:      FuzzinessLowRes,
			ramps:          RampsNone,
			roadClass:      RoadClass("FOOTPATH"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			location, err := NewTrafficLocation(tt.from, tt.to, "Nürnberg", "",
				tt.directionality, tt.fuzziness, tt.ramps, tt.roadClass,
				"A9", "58:1", -1)
			assert.Error(t, err)
			assert.Nil(t, location)
		})
	}
}

func TestTrafficLocation_SegmentLength(t *testing.T) {
	from := mustPoint(t, 11.4481, 48.1266, "Gräfelfing")
	to := mustPoint(t, 11.5028, 48.1258, "München-Laim")

	location, err := NewTrafficLocation(from, to, "München", "",
		DirectionalityOneWay, FuzzinessLowRes, RampsNone, RoadClassMotorway,
		"A96", "58:1", -1)
	require.NoError(t, err)

	// The A96 segment between the two junctions is roughly 4 km long
	assert.InDelta(t, 4060.0, location.SegmentLength(), 100.0)
}
