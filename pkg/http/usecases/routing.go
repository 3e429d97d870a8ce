package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/lintang-b-s/Tollwise/pkg/engine"
	"github.com/lintang-b-s/Tollwise/pkg/engine/pricing"
	"github.com/lintang-b-s/Tollwise/pkg/tolls"
	"github.com/lintang-b-s/Tollwise/pkg/util"
	"go.uber.org/zap"
)

var ErrFacilityNotFound = errors.New("toll facility not found")

type ComparisonService struct {
	log    *zap.Logger
	engine ComparisonEngine
}

func NewComparisonService(log *zap.Logger, engine ComparisonEngine) *ComparisonService {
	return &ComparisonService{
		log:    log,
		engine: engine,
	}
}

func (cs *ComparisonService) CompareRoutes(ctx context.Context, req engine.Request) (*engine.Outcome, error) {
	start := time.Now()
	out, err := cs.engine.Compare(ctx, req)
	if err != nil {
		cs.log.Warn("route comparison failed",
			zap.Float64("origin_lat", req.Origin.Lat), zap.Float64("origin_lon", req.Origin.Lon),
			zap.Float64("destination_lat", req.Destination.Lat), zap.Float64("destination_lon", req.Destination.Lon),
			zap.Error(err))
		return nil, err
	}

	cs.log.Debug("route comparison finished",
		zap.String("kind", string(out.Kind)),
		zap.Int("warnings", len(out.Warnings)),
		zap.Duration("took", time.Since(start)))
	return out, nil
}

type TollService struct {
	log      *zap.Logger
	registry TollRegistry
	resolver QuoteResolver
	clock    func() time.Time
}

func NewTollService(log *zap.Logger, registry TollRegistry, resolver QuoteResolver, clock func() time.Time) *TollService {
	if clock == nil {
		clock = time.Now
	}
	return &TollService{
		log:      log,
		registry: registry,
		resolver: resolver,
		clock:    clock,
	}
}

func (ts *TollService) ListFacilities() (string, string, []tolls.Facility) {
	return ts.registry.GetVersion(), ts.registry.GetLastUpdated(), ts.registry.Facilities()
}

// Quote prices one passage through facilityId. A zero at means now.
func (ts *TollService) Quote(facilityId string, at time.Time, hasPass bool) (pricing.Quote, error) {
	if _, ok := ts.registry.Get(facilityId); !ok {
		return pricing.Quote{}, util.WrapErrorf(ErrFacilityNotFound, util.ErrNotFound, "toll facility %s not found", facilityId)
	}
	if at.IsZero() {
		at = ts.clock()
	}
	return ts.resolver.Resolve(facilityId, at, hasPass), nil
}
