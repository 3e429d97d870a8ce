package engine

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lintang-b-s/Tollwise/pkg/datastructure"
	"github.com/lintang-b-s/Tollwise/pkg/engine/alternative"
	"github.com/lintang-b-s/Tollwise/pkg/engine/economics"
	"github.com/lintang-b-s/Tollwise/pkg/engine/geofence"
	"github.com/lintang-b-s/Tollwise/pkg/engine/pricing"
	"github.com/lintang-b-s/Tollwise/pkg/engine/provider"
	"github.com/lintang-b-s/Tollwise/pkg/tolls"
	"github.com/lintang-b-s/Tollwise/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	seattle  = datastructure.NewCoordinate(-122.3035, 47.6440)
	bellevue = datastructure.NewCoordinate(-122.1870, 47.6160)
)

func ptr(lon, lat float64) *datastructure.Coordinate {
	c := datastructure.NewCoordinate(lon, lat)
	return &c
}

func path(coords ...float64) []datastructure.Coordinate {
	out := make([]datastructure.Coordinate, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, datastructure.NewCoordinate(coords[i], coords[i+1]))
	}
	return out
}

func overSR520() *datastructure.RouteCandidate {
	return datastructure.NewRouteCandidate(15000, 900,
		path(-122.3035, 47.6440, -122.2585, 47.6400, -122.2153, 47.6390, -122.1870, 47.6160),
		datastructure.SourcePrimary)
}

func overI90(source datastructure.CandidateSource) *datastructure.RouteCandidate {
	return datastructure.NewRouteCandidate(17000, 1200,
		path(-122.3035, 47.6440, -122.3035, 47.5900, -122.2500, 47.5890, -122.1870, 47.6160),
		source)
}

type fakeProvider struct {
	primary      []*datastructure.RouteCandidate
	primaryErr   error
	tollFree     []*datastructure.RouteCandidate
	tollFreeErr  error
	probe        func(wp datastructure.Coordinate) ([]*datastructure.RouteCandidate, error)
	probeCalls   atomic.Int32
	tollFreeCall atomic.Int32
}

func (f *fakeProvider) FetchCandidates(ctx context.Context, o, d datastructure.Coordinate) ([]*datastructure.RouteCandidate, error) {
	return f.primary, f.primaryErr
}

func (f *fakeProvider) FetchTollFree(ctx context.Context, o, d datastructure.Coordinate) ([]*datastructure.RouteCandidate, error) {
	f.tollFreeCall.Add(1)
	return f.tollFree, f.tollFreeErr
}

func (f *fakeProvider) FetchViaWaypoint(ctx context.Context, o, wp, d datastructure.Coordinate) ([]*datastructure.RouteCandidate, error) {
	f.probeCalls.Add(1)
	if f.probe == nil {
		return nil, errors.New("probe refused")
	}
	return f.probe(wp)
}

func seattleTime(t *testing.T, day, hour int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	// 2025-01-06 is a Monday.
	return time.Date(2025, time.January, day, hour, 0, 0, 0, loc)
}

func newTestEngine(t *testing.T, p *fakeProvider, opts Options) *Engine {
	t.Helper()
	reg, err := tolls.NewRegistry(&tolls.Dataset{
		Timezone: "America/Los_Angeles",
		Facilities: []tolls.Facility{
			{ID: "sr520", Kind: tolls.KindBridge,
				Anchors: tolls.Anchors{Start: ptr(-122.2585, 47.6395), End: ptr(-122.2153, 47.6385)},
				Pricing: tolls.TimeOfDayPricing{
					Surcharge: tolls.Surcharge{HasGoodToGo: true, PayByMailPremium: 2},
					Weekday: []tolls.TimeSlot{
						{Start: tolls.NewClockTime(5, 0), End: tolls.NewClockTime(20, 0), Rate: 1.35},
					},
					Weekend: []tolls.TimeSlot{},
				}},
		},
	}, time.UTC)
	require.NoError(t, err)

	log := zap.NewNop()
	strategy, err := geofence.NewBoundingBoxStrategyFromRegistry(reg, geofence.DefaultBufferDegrees, log)
	require.NoError(t, err)
	detector := geofence.NewDetector(strategy, log)
	probes := alternative.NewProbeSearch(p, alternative.DefaultConfig(), log)
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return seattleTime(t, 6, 12) }
	}
	return NewEngine(p, probes, detector, pricing.NewResolver(reg, log), opts, log)
}

func request(wage float64) Request {
	return Request{Origin: seattle, Destination: bellevue, HourlyWage: wage, HasPass: true}
}

func TestCompareScenarios(t *testing.T) {
	testCases := []struct {
		name    string
		wage    float64
		wantRec economics.Recommendation
	}{
		{name: "scenario A: $25/hr takes the toll", wage: 25, wantRec: economics.RecommendToll},
		{name: "scenario B: $10/hr drives free", wage: 10, wantRec: economics.RecommendFree},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{primary: []*datastructure.RouteCandidate{overSR520(), overI90(datastructure.SourcePrimary)}}
			e := newTestEngine(t, p, Options{})

			out, err := e.Compare(context.Background(), request(tt.wage))
			require.NoError(t, err)
			require.Equal(t, OutcomeCompared, out.Kind)
			require.NotNil(t, out.Result)

			assert.Equal(t, tt.wantRec, out.Result.Recommendation)
			assert.InDelta(t, 1.35, out.Result.MoneySpent, 1e-9)
			assert.InDelta(t, 300, out.Result.TimeSavedSeconds, 1e-9)
			assert.InDelta(t, 16.20, out.Result.BreakEvenWage, 1e-9)
			assert.Equal(t, []string{"sr520"}, out.TollRoute.Candidate.GetFacilityIds())
			assert.False(t, out.FreeRoute.Candidate.HasTolls())
			assert.Zero(t, p.probeCalls.Load())
			assert.Empty(t, out.Warnings)
			assert.Equal(t, 2, out.CandidateCount)
		})
	}
}

func TestCompareSingleTolledCandidateAllProbesFail(t *testing.T) {
	p := &fakeProvider{primary: []*datastructure.RouteCandidate{overSR520()}}
	e := newTestEngine(t, p, Options{})

	out, err := e.Compare(context.Background(), request(25))
	require.NoError(t, err)

	assert.Equal(t, OutcomeSingleRoute, out.Kind)
	assert.Equal(t, MessageNoTollFreeRoute, out.Message)
	assert.Nil(t, out.Result)
	assert.Nil(t, out.FreeRoute)
	require.NotNil(t, out.TollRoute)
	assert.InDelta(t, 1.35, out.TollRoute.Toll.Total, 1e-9)
	assert.Equal(t, int32(4), p.probeCalls.Load())
	assert.Len(t, out.Warnings, 4)
}

func TestCompareOnlyFreeRoutes(t *testing.T) {
	p := &fakeProvider{primary: []*datastructure.RouteCandidate{overI90(datastructure.SourcePrimary)}}
	e := newTestEngine(t, p, Options{})

	out, err := e.Compare(context.Background(), request(25))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSingleRoute, out.Kind)
	assert.Equal(t, MessageNoTollRoute, out.Message)
	assert.Nil(t, out.TollRoute)
	require.NotNil(t, out.FreeRoute)
}

func TestCompareProbeFindsFreeRoute(t *testing.T) {
	p := &fakeProvider{
		primary: []*datastructure.RouteCandidate{overSR520()},
		probe: func(wp datastructure.Coordinate) ([]*datastructure.RouteCandidate, error) {
			if wp.Lat < 47.63 {
				return []*datastructure.RouteCandidate{overI90(datastructure.SourceProbe)}, nil
			}
			// northern probes come back over the bridge
			return []*datastructure.RouteCandidate{overSR520()}, nil
		},
	}
	e := newTestEngine(t, p, Options{})

	out, err := e.Compare(context.Background(), request(25))
	require.NoError(t, err)
	require.Equal(t, OutcomeCompared, out.Kind)
	assert.Equal(t, datastructure.SourceProbe, out.FreeRoute.Candidate.GetSource())
	assert.Equal(t, 2, out.CandidateCount)
	assert.Equal(t, economics.RecommendToll, out.Result.Recommendation)
}

func TestCompareUsesTollFreeQuery(t *testing.T) {
	p := &fakeProvider{
		primary:  []*datastructure.RouteCandidate{overSR520()},
		tollFree: []*datastructure.RouteCandidate{overI90(datastructure.SourceTollFree)},
	}
	e := newTestEngine(t, p, Options{UseTollFreeQuery: true})

	out, err := e.Compare(context.Background(), request(25))
	require.NoError(t, err)
	require.Equal(t, OutcomeCompared, out.Kind)
	assert.Equal(t, datastructure.SourceTollFree, out.FreeRoute.Candidate.GetSource())
	assert.Equal(t, int32(1), p.tollFreeCall.Load())
	assert.Zero(t, p.probeCalls.Load())
}

func TestCompareTollFreeFailureIsAWarning(t *testing.T) {
	p := &fakeProvider{
		primary:     []*datastructure.RouteCandidate{overSR520(), overI90(datastructure.SourcePrimary)},
		tollFreeErr: util.WrapErrorf(provider.ErrNoRoute, util.ErrNotFound, "no route found"),
	}
	e := newTestEngine(t, p, Options{UseTollFreeQuery: true})

	out, err := e.Compare(context.Background(), request(25))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompared, out.Kind)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "toll-free query failed")
}

func TestComparePrimaryFailure(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantCode error
	}{
		{name: "network", err: util.WrapErrorf(provider.ErrNetwork, util.ErrBadGateway, "routing request failed"),
			wantCode: util.ErrBadGateway},
		{name: "no route", err: util.WrapErrorf(provider.ErrNoRoute, util.ErrNotFound, "no route found"),
			wantCode: util.ErrNotFound},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{primaryErr: tt.err}
			e := newTestEngine(t, p, Options{})

			out, err := e.Compare(context.Background(), request(25))
			require.Error(t, err)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.wantCode, util.ErrorCode(err))
			assert.Zero(t, p.probeCalls.Load())
		})
	}
}

func TestCompareValidatesRequest(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(r *Request)
		wantErr bool
	}{
		{name: "zero wage", mutate: func(r *Request) { r.HourlyWage = 0 }, wantErr: true},
		{name: "negative wage", mutate: func(r *Request) { r.HourlyWage = -3 }, wantErr: true},
		{name: "wage above cap", mutate: func(r *Request) { r.HourlyWage = 10000.01 }, wantErr: true},
		{name: "NaN wage", mutate: func(r *Request) { r.HourlyWage = math.NaN() }, wantErr: true},
		{name: "wage at cap", mutate: func(r *Request) { r.HourlyWage = 10000 }, wantErr: false},
		{name: "bad origin", mutate: func(r *Request) { r.Origin = datastructure.NewCoordinate(-200, 47) }, wantErr: true},
		{name: "bad destination", mutate: func(r *Request) { r.Destination = datastructure.NewCoordinate(0, 95) }, wantErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{primary: []*datastructure.RouteCandidate{overSR520(), overI90(datastructure.SourcePrimary)}}
			e := newTestEngine(t, p, Options{})

			req := request(25)
			tt.mutate(&req)
			_, err := e.Compare(context.Background(), req)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.Equal(t, util.ErrBadParamInput, util.ErrorCode(err))
		})
	}
}

func TestComparePricesAtDepartureTime(t *testing.T) {
	testCases := []struct {
		name     string
		departAt func(t *testing.T) time.Time
		hasPass  bool
		wantToll float64
	}{
		{name: "defaults to the clock", departAt: func(*testing.T) time.Time { return time.Time{} }, hasPass: true, wantToll: 1.35},
		{name: "overnight is untolled", departAt: func(t *testing.T) time.Time { return seattleTime(t, 6, 22) }, hasPass: true, wantToll: 0},
		{name: "pay by mail", departAt: func(t *testing.T) time.Time { return seattleTime(t, 7, 9) }, hasPass: false, wantToll: 3.35},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{primary: []*datastructure.RouteCandidate{overSR520(), overI90(datastructure.SourcePrimary)}}
			e := newTestEngine(t, p, Options{})

			req := request(25)
			req.DepartAt = tt.departAt(t)
			req.HasPass = tt.hasPass
			out, err := e.Compare(context.Background(), req)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantToll, out.Result.MoneySpent, 1e-9)
			assert.False(t, out.DepartAt.IsZero())
		})
	}
}

func TestCompareReportsClassificationGaps(t *testing.T) {
	p := &fakeProvider{primary: []*datastructure.RouteCandidate{overSR520(), overI90(datastructure.SourcePrimary)}}
	e := newTestEngine(t, p, Options{ClassificationGaps: []string{"sr509-expressway"}})

	out, err := e.Compare(context.Background(), request(25))
	require.NoError(t, err)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "sr509-expressway")
}

func TestCompareCancelled(t *testing.T) {
	p := &fakeProvider{primary: []*datastructure.RouteCandidate{overSR520()}}
	e := newTestEngine(t, p, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Compare(ctx, request(25))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
