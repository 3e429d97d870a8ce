package datastructure

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(coords ...float64) []Coordinate {
	out := make([]Coordinate, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, NewCoordinate(coords[i], coords[i+1]))
	}
	return out
}

func TestAppendDistinct(t *testing.T) {
	a := NewRouteCandidate(1000, 120, line(-122.3, 47.6, -122.2, 47.6), SourcePrimary)
	sameAsA := NewRouteCandidate(1000.4, 120.2, line(-122.3, 47.6, -122.2, 47.6), SourceProbe)
	b := NewRouteCandidate(1400, 160, line(-122.3, 47.6, -122.25, 47.65, -122.2, 47.6), SourceProbe)

	testCases := []struct {
		name string
		in   []*RouteCandidate
		add  []*RouteCandidate
		want int
	}{
		{name: "duplicate is dropped", in: []*RouteCandidate{a}, add: []*RouteCandidate{sameAsA}, want: 1},
		{name: "different path is kept", in: []*RouteCandidate{a}, add: []*RouteCandidate{b}, want: 2},
		{name: "empty start", in: nil, add: []*RouteCandidate{a, sameAsA, b}, want: 2},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := AppendDistinct(tt.in, tt.add...)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestRouteCandidateGeometryIsCopied(t *testing.T) {
	geom := line(-122.3, 47.6, -122.2, 47.6)
	rc := NewRouteCandidate(10, 5, geom, SourcePrimary)
	geom[0].Lat = 0

	got := rc.GetGeometry()
	assert.Equal(t, 47.6, got[0].Lat)

	got[1].Lon = 0
	assert.Equal(t, -122.2, rc.GetGeometry()[1].Lon)
}

func TestNegativeMeasuresAreClamped(t *testing.T) {
	rc := NewRouteCandidate(-1, -3, line(0, 0, 1, 1), SourcePrimary)
	assert.Equal(t, 0.0, rc.GetDistance())
	assert.Equal(t, 0.0, rc.GetDuration())
}

func TestBoundingBox(t *testing.T) {
	bb := BoundingBoxOf(line(-122.30, 47.64, -122.23, 47.62))
	require.NotNil(t, bb)
	assert.True(t, bb.Contains(NewCoordinate(-122.25, 47.63)))
	assert.True(t, bb.Contains(NewCoordinate(-122.30, 47.62)), "edges are inclusive")
	assert.False(t, bb.Contains(NewCoordinate(-122.31, 47.63)))

	grown := bb.Expand(0.01)
	assert.True(t, grown.Contains(NewCoordinate(-122.31, 47.63)))
	assert.Nil(t, BoundingBoxOf(nil))
}

func TestCoordinateJSON(t *testing.T) {
	c := NewCoordinate(-122.3, 47.6)
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `[-122.3, 47.6]`, string(data))

	var back Coordinate
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, c, back)

	assert.Error(t, json.Unmarshal([]byte(`[1]`), &back))
}
