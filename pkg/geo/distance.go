package geo

import (
	"math"

	"github.com/lintang-b-s/Tollwise/pkg/datastructure"
	"github.com/lintang-b-s/Tollwise/pkg/util"
)

const (
	earthRadiusKM = 6371.0
)

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}

// CalculateHaversineDistance. calculate haversine distance in km
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = util.DegreeToRadians(latOne)
	longOne = util.DegreeToRadians(longOne)
	latTwo = util.DegreeToRadians(latTwo)
	longTwo = util.DegreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusKM * c
}

// HaversineMeters is CalculateHaversineDistance between two coordinates, in meters.
func HaversineMeters(a, b datastructure.Coordinate) float64 {
	return CalculateHaversineDistance(a.Lat, a.Lon, b.Lat, b.Lon) * 1000
}

// ProbeCenter is the point probes are offset from: the midpoint longitude and the average latitude
// of origin and destination.
func ProbeCenter(origin, destination datastructure.Coordinate) datastructure.Coordinate {
	return datastructure.NewCoordinate((origin.Lon+destination.Lon)/2, (origin.Lat+destination.Lat)/2)
}

// OffsetPerpendicular shifts c by offset degrees perpendicular to a corridor running along bearing
// (degrees clockwise from north). A positive offset moves to the left of the corridor direction,
// so for an east-west corridor (bearing 90) it is a pure latitude shift northwards.
func OffsetPerpendicular(c datastructure.Coordinate, bearing, offset float64) datastructure.Coordinate {
	perp := util.DegreeToRadians(bearing - 90)
	dLat := offset * math.Cos(perp)
	dLon := offset * math.Sin(perp)
	return datastructure.NewCoordinate(normalizeLongitude(c.Lon+cleanZero(dLon)), c.Lat+cleanZero(dLat))
}

// cleanZero drops the float noise sin/cos leave on axis-aligned bearings.
func cleanZero(v float64) float64 {
	if math.Abs(v) < 1e-12 {
		return 0
	}
	return v
}

// normalizeLongitude. long in degree
func normalizeLongitude(long float64) float64 {
	if long >= -180 && long < 180 {
		return long
	}
	return math.Mod((long+540), 360) - 180.0
}
