package spatialindex

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/Tollwise/pkg/datastructure"
	"github.com/lintang-b-s/Tollwise/pkg/tolls"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

var ErrInvalidBuffer = errors.New("geofence buffer must be positive")

// FacilityBox is the buffered geofence of one toll facility.
type FacilityBox struct {
	facilityId string
	box        *datastructure.BoundingBox
}

func (fb FacilityBox) GetFacilityId() string {
	return fb.facilityId
}

func (fb FacilityBox) GetBox() *datastructure.BoundingBox {
	return fb.box
}

type Rtree struct {
	tr     *rtree.RTreeG[FacilityBox]
	buffer float64
	gaps   []string
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[FacilityBox]
	return &Rtree{
		tr: &tr,
	}
}

// Build. index every facility as the bounding box of its anchors grown by buffer degrees on each side.
// Facilities without anchors cannot be geofenced; they are skipped and reported by Gaps.
func (rt *Rtree) Build(registry *tolls.Registry, buffer float64, log *zap.Logger) error {
	if !(buffer > 0) {
		return fmt.Errorf("%w: %v degrees", ErrInvalidBuffer, buffer)
	}
	log.Info("Building R-tree toll geofence index...", zap.Float64("buffer_degrees", buffer))
	rt.buffer = buffer

	for _, f := range registry.Facilities() {
		bb := datastructure.BoundingBoxOf(f.Anchors.Points())
		if bb == nil {
			log.Warn("toll facility has no anchor coordinates, skipped",
				zap.String("event", "ClassificationGap"), zap.String("facility_id", f.ID))
			rt.gaps = append(rt.gaps, f.ID)
			continue
		}
		bb = bb.Expand(buffer)
		minLat, minLon := bb.GetMinCoord()
		maxLat, maxLon := bb.GetMaxCoord()
		rt.tr.Insert([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat},
			FacilityBox{facilityId: f.ID, box: bb})
	}

	log.Info("R-tree toll geofence index built.", zap.Int("indexed", rt.tr.Len()), zap.Int("gaps", len(rt.gaps)))
	return nil
}

// SearchPoint returns every facility box containing p.
func (rt *Rtree) SearchPoint(p datastructure.Coordinate) []FacilityBox {
	results := make([]FacilityBox, 0, 2)
	rt.tr.Search([2]float64{p.Lon, p.Lat}, [2]float64{p.Lon, p.Lat},
		func(min, max [2]float64, data FacilityBox) bool {
			if data.box.Contains(p) {
				results = append(results, data)
			}
			return true
		})
	return results
}

// Gaps returns the ids of facilities that could not be indexed.
func (rt *Rtree) Gaps() []string {
	return rt.gaps
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

func (rt *Rtree) GetBuffer() float64 {
	return rt.buffer
}
