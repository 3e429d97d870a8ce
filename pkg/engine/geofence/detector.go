package geofence

import (
	"github.com/lintang-b-s/Tollwise/pkg/datastructure"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Strategy decides which facilities a single route point falls in.
type Strategy interface {
	Name() string
	FacilitiesAt(p datastructure.Coordinate) []string
}

type Classification struct {
	HasTolls    bool
	FacilityIDs []string // sorted, unique
}

// Detector classifies route geometries as tolled or free. A route crosses a facility when any of its
// points is matched by the strategy; facilities are matched independently.
type Detector struct {
	strategy Strategy
	log      *zap.Logger
}

func NewDetector(strategy Strategy, log *zap.Logger) *Detector {
	return &Detector{strategy: strategy, log: log}
}

func (d *Detector) Classify(geometry []datastructure.Coordinate) Classification {
	crossed := make([]string, 0, 2)
	for _, p := range geometry {
		crossed = append(crossed, d.strategy.FacilitiesAt(p)...)
	}
	return newClassification(crossed)
}

// ClassifyCandidate classifies rc and stores the result on it.
func (d *Detector) ClassifyCandidate(rc *datastructure.RouteCandidate) Classification {
	crossed := make([]string, 0, 2)
	rc.ForEachPoint(func(p datastructure.Coordinate) bool {
		crossed = append(crossed, d.strategy.FacilitiesAt(p)...)
		return true
	})
	c := newClassification(crossed)
	rc.SetTollClassification(c.HasTolls, c.FacilityIDs)

	d.log.Debug("route classified",
		zap.String("strategy", d.strategy.Name()),
		zap.String("source", string(rc.GetSource())),
		zap.Bool("has_tolls", c.HasTolls),
		zap.Strings("facility_ids", c.FacilityIDs))
	return c
}

func newClassification(crossed []string) Classification {
	slices.Sort(crossed)
	crossed = slices.Compact(crossed)
	return Classification{HasTolls: len(crossed) > 0, FacilityIDs: crossed}
}
