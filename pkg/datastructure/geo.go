package datastructure

import (
	"encoding/json"
	"fmt"
	"math"
)

// Coordinate is a WGS84 (longitude, latitude) pair in degrees.
// It is encoded as the GeoJSON position [lon, lat].
type Coordinate struct {
	Lon float64
	Lat float64
}

func NewCoordinate(lon, lat float64) Coordinate {
	return Coordinate{Lon: lon, Lat: lat}
}

func (c Coordinate) GetLat() float64 {
	return c.Lat
}

func (c Coordinate) GetLon() float64 {
	return c.Lon
}

func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180 &&
		!math.IsNaN(c.Lat) && !math.IsNaN(c.Lon)
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lon, c.Lat})
}

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("coordinate must be a [lon, lat] pair, got %d values", len(pair))
	}
	c.Lon, c.Lat = pair[0], pair[1]
	return nil
}

// BoundingBox is an axis-aligned lon/lat box, closed on every side.
type BoundingBox struct {
	minLat, minLon float64
	maxLat, maxLon float64
}

func NewBoundingBox(minLat, minLon, maxLat, maxLon float64) *BoundingBox {
	return &BoundingBox{minLat: minLat,
		minLon: minLon,
		maxLat: maxLat,
		maxLon: maxLon}
}

// BoundingBoxOf returns the smallest box containing every coordinate, or nil for an empty set.
func BoundingBoxOf(coords []Coordinate) *BoundingBox {
	if len(coords) == 0 {
		return nil
	}
	bb := NewBoundingBox(coords[0].Lat, coords[0].Lon, coords[0].Lat, coords[0].Lon)
	for _, c := range coords[1:] {
		bb.minLat = math.Min(bb.minLat, c.Lat)
		bb.minLon = math.Min(bb.minLon, c.Lon)
		bb.maxLat = math.Max(bb.maxLat, c.Lat)
		bb.maxLon = math.Max(bb.maxLon, c.Lon)
	}
	return bb
}

// Expand returns a copy grown by buffer degrees on every side.
func (b *BoundingBox) Expand(buffer float64) *BoundingBox {
	return NewBoundingBox(b.minLat-buffer, b.minLon-buffer, b.maxLat+buffer, b.maxLon+buffer)
}

func (b *BoundingBox) Contains(c Coordinate) bool {
	return c.Lon >= b.minLon && c.Lon <= b.maxLon && c.Lat >= b.minLat && c.Lat <= b.maxLat
}

func (b *BoundingBox) GetMinCoord() (float64, float64) {
	return b.minLat, b.minLon
}

func (b *BoundingBox) GetMaxCoord() (float64, float64) {
	return b.maxLat, b.maxLon
}

func (b *BoundingBox) GetMinLat() float64 {
	return b.minLat
}

func (b *BoundingBox) GetMinLon() float64 {
	return b.minLon
}

func (b *BoundingBox) GetMaxLat() float64 {
	return b.maxLat
}

func (b *BoundingBox) GetMaxLon() float64 {
	return b.maxLon
}
