package geo

import (
	"fmt"

	"github.com/lintang-b-s/Tollwise/pkg/datastructure"
	"github.com/twpayne/go-polyline"
)

// Polyline6 decodes/encodes the 6-digit precision variant OSRM emits for geometries=polyline6.
var Polyline6 = polyline.Codec{Dim: 2, Scale: 1e6}

// PolylineFromCoords encodes coords as a Google encoded polyline (precision 5).
func PolylineFromCoords(coords []datastructure.Coordinate) string {
	pairs := make([][]float64, len(coords))
	for i, c := range coords {
		pairs[i] = []float64{c.Lat, c.Lon}
	}
	return string(polyline.EncodeCoords(pairs))
}

// CoordsFromPolyline decodes an encoded polyline with precision 5 or 6.
func CoordsFromPolyline(encoded string, precision int) ([]datastructure.Coordinate, error) {
	var (
		pairs [][]float64
		rest  []byte
		err   error
	)
	switch precision {
	case 5:
		pairs, rest, err = polyline.DecodeCoords([]byte(encoded))
	case 6:
		pairs, rest, err = Polyline6.DecodeCoords([]byte(encoded))
	default:
		return nil, fmt.Errorf("unsupported polyline precision %d", precision)
	}
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("trailing %d bytes after polyline", len(rest))
	}

	coords := make([]datastructure.Coordinate, len(pairs))
	for i, p := range pairs {
		coords[i] = datastructure.NewCoordinate(p[1], p[0])
	}
	return coords, nil
}
