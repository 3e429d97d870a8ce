package datastructure

import (
	"math"
)

type CandidateSource string

const (
	SourcePrimary  CandidateSource = "primary"
	SourceTollFree CandidateSource = "toll-free"
	SourceProbe    CandidateSource = "probe"
)

// RouteCandidate is one path returned by the routing service. The geometry is never modified after
// construction; hasTolls and facilityIds are filled in by the toll detector.
type RouteCandidate struct {
	distance    float64 // meters
	duration    float64 // seconds
	geometry    []Coordinate
	source      CandidateSource
	classified  bool
	hasTolls    bool
	facilityIds []string
}

func NewRouteCandidate(distance, duration float64, geometry []Coordinate, source CandidateSource) *RouteCandidate {
	geom := make([]Coordinate, len(geometry))
	copy(geom, geometry)
	return &RouteCandidate{
		distance: math.Max(distance, 0),
		duration: math.Max(duration, 0),
		geometry: geom,
		source:   source,
	}
}

func (rc *RouteCandidate) GetDistance() float64 {
	return rc.distance
}

func (rc *RouteCandidate) GetDuration() float64 {
	return rc.duration
}

// GetGeometry returns a copy of the polyline.
func (rc *RouteCandidate) GetGeometry() []Coordinate {
	geom := make([]Coordinate, len(rc.geometry))
	copy(geom, rc.geometry)
	return geom
}

// ForEachPoint visits the polyline without copying it. Returning false stops the walk.
func (rc *RouteCandidate) ForEachPoint(f func(c Coordinate) bool) {
	for _, c := range rc.geometry {
		if !f(c) {
			return
		}
	}
}

func (rc *RouteCandidate) NumPoints() int {
	return len(rc.geometry)
}

func (rc *RouteCandidate) GetSource() CandidateSource {
	return rc.source
}

func (rc *RouteCandidate) IsClassified() bool {
	return rc.classified
}

func (rc *RouteCandidate) HasTolls() bool {
	return rc.hasTolls
}

func (rc *RouteCandidate) GetFacilityIds() []string {
	return rc.facilityIds
}

func (rc *RouteCandidate) SetTollClassification(hasTolls bool, facilityIds []string) {
	rc.classified = true
	rc.hasTolls = hasTolls
	rc.facilityIds = facilityIds
}

// SamePath reports whether two candidates describe the same route: equal distance (1 m), duration (1 s)
// and an identical polyline.
func (rc *RouteCandidate) SamePath(other *RouteCandidate) bool {
	if math.Abs(rc.distance-other.distance) > 1 || math.Abs(rc.duration-other.duration) > 1 {
		return false
	}
	if len(rc.geometry) != len(other.geometry) {
		return false
	}
	for i := range rc.geometry {
		if !coordEq(rc.geometry[i], other.geometry[i]) {
			return false
		}
	}
	return true
}

// AppendDistinct appends every candidate in more that is not SamePath with one already present.
func AppendDistinct(candidates []*RouteCandidate, more ...*RouteCandidate) []*RouteCandidate {
	for _, m := range more {
		dup := false
		for _, c := range candidates {
			if c.SamePath(m) {
				dup = true
				break
			}
		}
		if !dup {
			candidates = append(candidates, m)
		}
	}
	return candidates
}

const coordEps = 1e-7

func coordEq(a, b Coordinate) bool {
	return math.Abs(a.Lat-b.Lat) <= coordEps && math.Abs(a.Lon-b.Lon) <= coordEps
}
