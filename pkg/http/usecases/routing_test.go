package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lintang-b-s/Tollwise/pkg/engine"
	"github.com/lintang-b-s/Tollwise/pkg/engine/pricing"
	"github.com/lintang-b-s/Tollwise/pkg/tolls"
	"github.com/lintang-b-s/Tollwise/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testTollService(t *testing.T, now time.Time) *TollService {
	t.Helper()
	reg, err := tolls.NewRegistry(&tolls.Dataset{
		Version:     "2025.1",
		LastUpdated: "2025-01-01",
		Facilities: []tolls.Facility{
			{ID: "tacoma-narrows", Name: "Tacoma Narrows Bridge", Kind: tolls.KindBridge,
				Pricing: tolls.FixedPricing{Surcharge: tolls.Surcharge{HasGoodToGo: true, PayByMailPremium: 1.5}, Rate: 3.5}},
			{ID: "sr99-tunnel", Name: "SR 99 Tunnel", Kind: tolls.KindTunnel,
				Pricing: tolls.TimeOfDayPricing{
					Weekday: []tolls.TimeSlot{{Start: tolls.NewClockTime(6, 0), End: tolls.NewClockTime(9, 0), Rate: 2.25}},
					Weekend: []tolls.TimeSlot{},
				}},
		},
	}, time.UTC)
	require.NoError(t, err)
	return NewTollService(zap.NewNop(), reg, pricing.NewResolver(reg, zap.NewNop()), func() time.Time { return now })
}

func TestTollServiceQuote(t *testing.T) {
	monday7am := time.Date(2025, time.January, 6, 7, 0, 0, 0, time.UTC)
	ts := testTollService(t, monday7am)

	q, err := ts.Quote("tacoma-narrows", time.Time{}, false)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, q.Amount, 1e-9)

	q, err = ts.Quote("sr99-tunnel", time.Time{}, true)
	require.NoError(t, err)
	assert.InDelta(t, 2.25, q.Amount, 1e-9)

	q, err = ts.Quote("sr99-tunnel", monday7am.Add(3*time.Hour), true)
	require.NoError(t, err)
	assert.Equal(t, pricing.QuoteUntolled, q.Status)

	_, err = ts.Quote("ghost", time.Time{}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFacilityNotFound)
	assert.Equal(t, util.ErrNotFound, util.ErrorCode(err))
}

func TestTollServiceListFacilities(t *testing.T) {
	ts := testTollService(t, time.Now())

	version, lastUpdated, facilities := ts.ListFacilities()
	assert.Equal(t, "2025.1", version)
	assert.Equal(t, "2025-01-01", lastUpdated)
	assert.Len(t, facilities, 2)
}

type stubEngine struct {
	out *engine.Outcome
	err error
}

func (s stubEngine) Compare(ctx context.Context, req engine.Request) (*engine.Outcome, error) {
	return s.out, s.err
}

func TestComparisonServicePassesThrough(t *testing.T) {
	want := &engine.Outcome{Kind: engine.OutcomeSingleRoute, Message: engine.MessageNoTollRoute}
	cs := NewComparisonService(zap.NewNop(), stubEngine{out: want})
	got, err := cs.CompareRoutes(context.Background(), engine.Request{HourlyWage: 25})
	require.NoError(t, err)
	assert.Same(t, want, got)

	boom := errors.New("boom")
	cs = NewComparisonService(zap.NewNop(), stubEngine{err: boom})
	_, err = cs.CompareRoutes(context.Background(), engine.Request{HourlyWage: 25})
	assert.ErrorIs(t, err, boom)
}
