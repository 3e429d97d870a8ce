package alternative

import (
	"context"
	"fmt"
	"time"

	"github.com/lintang-b-s/Tollwise/pkg/concurrent"
	"github.com/lintang-b-s/Tollwise/pkg/datastructure"
	"github.com/lintang-b-s/Tollwise/pkg/geo"
	"go.uber.org/zap"
)

const (
	DefaultCorridorBearing = 90.0
	DefaultMaxConcurrency  = 2
	DefaultProbeTimeout    = 8 * time.Second
)

// DefaultOffsets shift the probe waypoint north then south of an east-west corridor, far first.
var DefaultOffsets = []float64{0.05, -0.05, 0.03, -0.03}

type WaypointFetcher interface {
	FetchViaWaypoint(ctx context.Context, origin, waypoint, destination datastructure.Coordinate) ([]*datastructure.RouteCandidate, error)
}

type Config struct {
	CorridorBearing float64
	AutoBearing     bool // use the origin -> destination bearing instead of CorridorBearing
	Offsets         []float64
	MaxConcurrency  int
	ProbeTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		CorridorBearing: DefaultCorridorBearing,
		Offsets:         append([]float64(nil), DefaultOffsets...),
		MaxConcurrency:  DefaultMaxConcurrency,
		ProbeTimeout:    DefaultProbeTimeout,
	}
}

// ProbeSearch finds extra candidates when the routing service returns too few, by forcing the route
// through waypoints displaced sideways from the corridor between origin and destination.
type ProbeSearch struct {
	fetcher WaypointFetcher
	cfg     Config
	log     *zap.Logger
}

func NewProbeSearch(fetcher WaypointFetcher, cfg Config, log *zap.Logger) *ProbeSearch {
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Offsets == nil {
		cfg.Offsets = append([]float64(nil), DefaultOffsets...)
	}
	return &ProbeSearch{fetcher: fetcher, cfg: cfg, log: log}
}

// Waypoints returns the probe waypoints in the order they are tried.
func (ps *ProbeSearch) Waypoints(origin, destination datastructure.Coordinate) []datastructure.Coordinate {
	bearing := ps.cfg.CorridorBearing
	if ps.cfg.AutoBearing && origin != destination {
		bearing = geo.BearingTo(origin.Lat, origin.Lon, destination.Lat, destination.Lon)
	}

	center := geo.ProbeCenter(origin, destination)
	waypoints := make([]datastructure.Coordinate, len(ps.cfg.Offsets))
	for i, offset := range ps.cfg.Offsets {
		waypoints[i] = geo.OffsetPerpendicular(center, bearing, offset)
	}
	return waypoints
}

type probeResult struct {
	waypoint   datastructure.Coordinate
	candidates []*datastructure.RouteCandidate
	err        error
}

// Search returns existing extended with the distinct probe candidates, in probe order. Nothing is
// probed when existing already holds two distinct paths. Failed probes are dropped and reported in
// warnings; Search itself never fails.
func (ps *ProbeSearch) Search(ctx context.Context, origin, destination datastructure.Coordinate,
	existing []*datastructure.RouteCandidate) ([]*datastructure.RouteCandidate, []string) {
	merged := datastructure.AppendDistinct(nil, existing...)
	if len(merged) >= 2 || len(ps.cfg.Offsets) == 0 {
		return merged, nil
	}

	waypoints := ps.Waypoints(origin, destination)
	results := concurrent.Run(ctx, ps.cfg.MaxConcurrency, waypoints,
		func(ctx context.Context, wp datastructure.Coordinate) probeResult {
			probeCtx, cancel := context.WithTimeout(ctx, ps.cfg.ProbeTimeout)
			defer cancel()
			cands, err := ps.fetcher.FetchViaWaypoint(probeCtx, origin, wp, destination)
			return probeResult{waypoint: wp, candidates: cands, err: err}
		})

	var warnings []string
	for _, res := range results {
		if res.err == nil && len(res.candidates) == 0 {
			res.err = fmt.Errorf("no candidates returned")
		}
		if res.err != nil {
			ps.log.Warn("probe discarded",
				zap.String("event", "ProbeFailure"),
				zap.Float64("waypoint_lat", res.waypoint.Lat),
				zap.Float64("waypoint_lon", res.waypoint.Lon),
				zap.Error(res.err))
			warnings = append(warnings, fmt.Sprintf("probe via %.5f,%.5f failed: %v",
				res.waypoint.Lat, res.waypoint.Lon, res.err))
			continue
		}
		before := len(merged)
		merged = datastructure.AppendDistinct(merged, res.candidates...)
		ps.log.Debug("probe finished",
			zap.Float64("waypoint_lat", res.waypoint.Lat),
			zap.Float64("waypoint_lon", res.waypoint.Lon),
			zap.Int("new_candidates", len(merged)-before))
	}

	return merged, warnings
}
