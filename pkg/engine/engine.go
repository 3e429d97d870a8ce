package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lintang-b-s/Tollwise/pkg/datastructure"
	"github.com/lintang-b-s/Tollwise/pkg/engine/economics"
	"github.com/lintang-b-s/Tollwise/pkg/engine/geofence"
	"github.com/lintang-b-s/Tollwise/pkg/engine/pricing"
	"github.com/lintang-b-s/Tollwise/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	MaxHourlyWage = 10000.0

	MessageNoTollFreeRoute = "No toll-free route available"
	MessageNoTollRoute     = "No toll route available"
)

var (
	ErrInvalidRequest = errors.New("invalid comparison request")
	ErrNoCandidates   = errors.New("no route found")
)

type RouteProvider interface {
	FetchCandidates(ctx context.Context, origin, destination datastructure.Coordinate) ([]*datastructure.RouteCandidate, error)
	FetchTollFree(ctx context.Context, origin, destination datastructure.Coordinate) ([]*datastructure.RouteCandidate, error)
}

type AlternativeSearch interface {
	Search(ctx context.Context, origin, destination datastructure.Coordinate,
		existing []*datastructure.RouteCandidate) ([]*datastructure.RouteCandidate, []string)
}

type Classifier interface {
	ClassifyCandidate(rc *datastructure.RouteCandidate) geofence.Classification
}

type TollPricer interface {
	ResolveRoute(facilityIds []string, at time.Time, hasPass bool) pricing.RouteToll
}

type Request struct {
	Origin      datastructure.Coordinate
	Destination datastructure.Coordinate
	HourlyWage  float64
	HasPass     bool
	DepartAt    time.Time // zero means now
}

type OutcomeKind string

const (
	OutcomeCompared    OutcomeKind = "compared"
	OutcomeSingleRoute OutcomeKind = "single-route"
)

type PricedRoute struct {
	Candidate *datastructure.RouteCandidate
	Toll      pricing.RouteToll
}

// Outcome is either a full comparison or, when only one class of route exists, that single route.
type Outcome struct {
	Kind      OutcomeKind
	Result    *economics.ComparisonResult // set when Kind is OutcomeCompared
	TollRoute *PricedRoute
	FreeRoute *PricedRoute
	Message   string
	DepartAt  time.Time
	Warnings  []string

	CandidateCount int
}

type Options struct {
	UseTollFreeQuery   bool
	Clock              func() time.Time
	ClassificationGaps []string // facilities that can never be detected
}

type Engine struct {
	provider    RouteProvider
	alternative AlternativeSearch
	classifier  Classifier
	pricer      TollPricer
	opts        Options
	log         *zap.Logger
}

func NewEngine(provider RouteProvider, alternative AlternativeSearch, classifier Classifier, pricer TollPricer,
	opts Options, log *zap.Logger) *Engine {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Engine{
		provider:    provider,
		alternative: alternative,
		classifier:  classifier,
		pricer:      pricer,
		opts:        opts,
		log:         log,
	}
}

func (req Request) validate() error {
	if !req.Origin.Valid() {
		return util.WrapErrorf(ErrInvalidRequest, util.ErrBadParamInput, "origin %v is outside WGS84 range", req.Origin)
	}
	if !req.Destination.Valid() {
		return util.WrapErrorf(ErrInvalidRequest, util.ErrBadParamInput, "destination %v is outside WGS84 range", req.Destination)
	}
	if !(req.HourlyWage > 0 && req.HourlyWage <= MaxHourlyWage) {
		return util.WrapErrorf(ErrInvalidRequest, util.ErrBadParamInput,
			"hourly wage must be greater than 0 and at most %v", MaxHourlyWage)
	}
	return nil
}

// Compare fetches candidates between the request's endpoints, classifies them and compares the fastest
// tolled route against the fastest free one. Only a failure of the primary routing query is returned
// as an error; everything else degrades into warnings.
func (e *Engine) Compare(ctx context.Context, req Request) (*Outcome, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var warnings []string
	for _, id := range e.opts.ClassificationGaps {
		warnings = append(warnings, fmt.Sprintf("facility %s has no coordinates and is never detected", id))
	}

	var primary, tollFree []*datastructure.RouteCandidate
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		primary, err = e.provider.FetchCandidates(gctx, req.Origin, req.Destination)
		return err
	})
	if e.opts.UseTollFreeQuery {
		g.Go(func() error {
			cands, err := e.provider.FetchTollFree(gctx, req.Origin, req.Destination)
			if err != nil {
				e.log.Warn("toll-free query failed", zap.Error(err))
				warnings = append(warnings, fmt.Sprintf("toll-free query failed: %v", err))
				return nil
			}
			tollFree = cands
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	candidates := datastructure.AppendDistinct(nil, primary...)
	candidates = datastructure.AppendDistinct(candidates, tollFree...)

	if len(candidates) < 2 {
		var probeWarnings []string
		candidates, probeWarnings = e.alternative.Search(ctx, req.Origin, req.Destination, candidates)
		warnings = append(warnings, probeWarnings...)
	}
	if err := ctx.Err(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "comparison cancelled")
	}
	if len(candidates) == 0 {
		return nil, util.WrapErrorf(ErrNoCandidates, util.ErrNotFound, "no route found")
	}

	var fastestToll, fastestFree *datastructure.RouteCandidate
	for _, rc := range candidates {
		c := e.classifier.ClassifyCandidate(rc)
		if c.HasTolls {
			if fastestToll == nil || rc.GetDuration() < fastestToll.GetDuration() {
				fastestToll = rc
			}
		} else if fastestFree == nil || rc.GetDuration() < fastestFree.GetDuration() {
			fastestFree = rc
		}
	}

	departAt := req.DepartAt
	if departAt.IsZero() {
		departAt = e.opts.Clock()
	}

	out := &Outcome{DepartAt: departAt, CandidateCount: len(candidates)}

	if fastestToll != nil {
		toll := e.pricer.ResolveRoute(fastestToll.GetFacilityIds(), departAt, req.HasPass)
		for _, id := range toll.Unresolved() {
			warnings = append(warnings, fmt.Sprintf("no pricing for facility %s, assumed free", id))
		}
		out.TollRoute = &PricedRoute{Candidate: fastestToll, Toll: toll}
	}
	if fastestFree != nil {
		out.FreeRoute = &PricedRoute{Candidate: fastestFree}
	}

	switch {
	case out.TollRoute != nil && out.FreeRoute != nil:
		result := economics.Compare(
			fastestToll.GetDuration(), fastestToll.GetDistance(),
			fastestFree.GetDuration(), fastestFree.GetDistance(),
			out.TollRoute.Toll.Total, req.HourlyWage)
		out.Kind = OutcomeCompared
		out.Result = &result

		e.log.Info("routes compared",
			zap.String("recommendation", string(result.Recommendation)),
			zap.Float64("time_saved_seconds", result.TimeSavedSeconds),
			zap.Float64("toll_cost", result.MoneySpent),
			zap.Int("candidates", len(candidates)))
	case out.TollRoute != nil:
		out.Kind = OutcomeSingleRoute
		out.Message = MessageNoTollFreeRoute
	default:
		out.Kind = OutcomeSingleRoute
		out.Message = MessageNoTollRoute
	}

	if out.Kind == OutcomeSingleRoute {
		e.log.Info("single route class available", zap.String("message", out.Message),
			zap.Int("candidates", len(candidates)))
	}

	out.Warnings = warnings
	return out, nil
}
