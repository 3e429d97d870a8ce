package geofence

import (
	"fmt"

	"github.com/lintang-b-s/Tollwise/pkg/datastructure"
	"github.com/lintang-b-s/Tollwise/pkg/geo"
	"github.com/lintang-b-s/Tollwise/pkg/spatialindex"
	"github.com/lintang-b-s/Tollwise/pkg/tolls"
	"go.uber.org/zap"
)

const (
	DefaultBufferDegrees = 0.01   // ~1.1 km
	DefaultBufferMeters  = 1100.0 // same reach for CorridorStrategy
)

type SpatialIndex interface {
	SearchPoint(p datastructure.Coordinate) []spatialindex.FacilityBox
}

// BoundingBoxStrategy matches a point against the buffered anchor box of every facility.
// It over-reports near misses and under-reports facilities a rectangle covers poorly.
type BoundingBoxStrategy struct {
	index SpatialIndex
}

func NewBoundingBoxStrategy(index SpatialIndex) *BoundingBoxStrategy {
	return &BoundingBoxStrategy{index: index}
}

// NewBoundingBoxStrategyFromRegistry builds the R-tree over registry with the given buffer.
func NewBoundingBoxStrategyFromRegistry(registry *tolls.Registry, buffer float64, log *zap.Logger) (*BoundingBoxStrategy, error) {
	rt := spatialindex.NewRtree()
	if err := rt.Build(registry, buffer, log); err != nil {
		return nil, err
	}
	return NewBoundingBoxStrategy(rt), nil
}

func (s *BoundingBoxStrategy) Name() string {
	return "bbox"
}

func (s *BoundingBoxStrategy) FacilitiesAt(p datastructure.Coordinate) []string {
	boxes := s.index.SearchPoint(p)
	ids := make([]string, len(boxes))
	for i, b := range boxes {
		ids[i] = b.GetFacilityId()
	}
	return ids
}

type corridor struct {
	facilityId string
	line       []datastructure.Coordinate
	reach      *datastructure.BoundingBox // prefilter: anchors grown by roughly bufferMeters
}

// CorridorStrategy matches a point within bufferMeters of the polyline through a facility's anchors.
type CorridorStrategy struct {
	corridors    []corridor
	bufferMeters float64
}

// NewCorridorStrategy fails with spatialindex.ErrInvalidBuffer unless bufferMeters is positive.
func NewCorridorStrategy(registry *tolls.Registry, bufferMeters float64, log *zap.Logger) (*CorridorStrategy, error) {
	if !(bufferMeters > 0) {
		return nil, fmt.Errorf("%w: %v meters", spatialindex.ErrInvalidBuffer, bufferMeters)
	}
	s := &CorridorStrategy{bufferMeters: bufferMeters}
	// the prefilter box contains the whole corridor reach up to ~75 degrees of latitude.
	padding := bufferMeters / 111_000 * 5
	for _, f := range registry.Facilities() {
		line := f.Anchors.Points()
		if len(line) == 0 {
			log.Warn("toll facility has no anchor coordinates, skipped",
				zap.String("event", "ClassificationGap"), zap.String("facility_id", f.ID))
			continue
		}
		s.corridors = append(s.corridors, corridor{
			facilityId: f.ID,
			line:       line,
			reach:      datastructure.BoundingBoxOf(line).Expand(padding),
		})
	}
	return s, nil
}

func (s *CorridorStrategy) Name() string {
	return "corridor"
}

func (s *CorridorStrategy) FacilitiesAt(p datastructure.Coordinate) []string {
	var ids []string
	for _, c := range s.corridors {
		if !c.reach.Contains(p) {
			continue
		}
		if geo.DistanceToPolyline(c.line, p) <= s.bufferMeters {
			ids = append(ids, c.facilityId)
		}
	}
	return ids
}
