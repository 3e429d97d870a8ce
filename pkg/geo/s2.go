package geo

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/Tollwise/pkg/datastructure"
)

func toS2(c datastructure.Coordinate) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

func ProjectPointToLineCoord(pointA, pointB, snap datastructure.Coordinate) datastructure.Coordinate {
	projection := s2.Project(toS2(snap), toS2(pointA), toS2(pointB))
	projectLatLng := s2.LatLngFromPoint(projection)
	return datastructure.NewCoordinate(projectLatLng.Lng.Degrees(), projectLatLng.Lat.Degrees())
}

// PointLinePerpendicularDistance. distance in meters from snap to the segment (pointA, pointB)
func PointLinePerpendicularDistance(pointA, pointB, snap datastructure.Coordinate) float64 {
	projectionPoint := ProjectPointToLineCoord(pointA, pointB, snap)

	return HaversineMeters(snap, projectionPoint)
}

// DistanceToPolyline returns the distance in meters from p to the nearest point of line.
// A single-point line degenerates to the point distance; an empty line is +Inf.
func DistanceToPolyline(line []datastructure.Coordinate, p datastructure.Coordinate) float64 {
	switch len(line) {
	case 0:
		return math.Inf(1)
	case 1:
		return HaversineMeters(line[0], p)
	}

	best := math.Inf(1)
	for i := 0; i+1 < len(line); i++ {
		best = math.Min(best, PointLinePerpendicularDistance(line[i], line[i+1], p))
	}
	return best
}
