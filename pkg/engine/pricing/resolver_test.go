package pricing

import (
	"testing"
	"time"

	"github.com/lintang-b-s/Tollwise/pkg/tolls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	ds := &tolls.Dataset{
		Timezone: "America/Los_Angeles",
		Facilities: []tolls.Facility{
			{ID: "daytime", Pricing: tolls.TimeOfDayPricing{
				Surcharge: tolls.Surcharge{HasGoodToGo: true, PayByMailPremium: 2},
				Weekday: []tolls.TimeSlot{
					{Start: tolls.NewClockTime(5, 0), End: tolls.NewClockTime(20, 0), Rate: 1.00},
				},
				Weekend: []tolls.TimeSlot{},
			}},
			{ID: "sr520", Pricing: tolls.TimeOfDayPricing{
				Surcharge: tolls.Surcharge{HasGoodToGo: true, PayByMailPremium: 2},
				Weekday: []tolls.TimeSlot{
					{Start: tolls.Midnight, End: tolls.NewClockTime(5, 0), Rate: 1.35},
					{Start: tolls.NewClockTime(5, 0), End: tolls.NewClockTime(20, 0), Rate: 4.5},
					{Start: tolls.NewClockTime(20, 0), End: tolls.EndOfDay, Rate: 2.25},
				},
				Weekend: []tolls.TimeSlot{
					{Start: tolls.NewClockTime(8, 0), End: tolls.NewClockTime(23, 0), Rate: 2.9},
				},
			}},
			{ID: "tacoma-narrows", Pricing: tolls.FixedPricing{
				Surcharge: tolls.Surcharge{HasGoodToGo: true, PayByMailPremium: 1.5}, Rate: 3.5}},
			{ID: "i405-express", Pricing: tolls.DynamicPricing{
				Surcharge: tolls.Surcharge{HasGoodToGo: true, PayByMailPremium: 2},
				RateRange: tolls.RateRange{Min: 0.75, Max: 15},
				Estimates: tolls.Estimates{OffPeak: 1, Typical: 4, Peak: 10}}},
		},
	}
	reg, err := tolls.NewRegistry(ds, time.UTC)
	require.NoError(t, err)
	return NewResolver(reg, zap.NewNop())
}

func seattle(t *testing.T, day, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	// 2025-01-06 is a Monday.
	return time.Date(2025, time.January, day, hour, minute, 0, 0, loc)
}

func TestResolveTimeOfDayBoundaries(t *testing.T) {
	r := newTestResolver(t)

	testCases := []struct {
		name       string
		hour, min  int
		wantAmount float64
		wantStatus QuoteStatus
	}{
		{name: "04:59", hour: 4, min: 59, wantAmount: 0, wantStatus: QuoteUntolled},
		{name: "05:00", hour: 5, min: 0, wantAmount: 1.00, wantStatus: QuoteResolved},
		{name: "19:59", hour: 19, min: 59, wantAmount: 1.00, wantStatus: QuoteResolved},
		{name: "20:00", hour: 20, min: 0, wantAmount: 0, wantStatus: QuoteUntolled},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			q := r.Resolve("daytime", seattle(t, 6, tt.hour, tt.min), true)
			assert.Equal(t, tt.wantStatus, q.Status)
			assert.InDelta(t, tt.wantAmount, q.Amount, 1e-9)
		})
	}
}

func TestResolveNextSlotAndMidnightSentinel(t *testing.T) {
	r := newTestResolver(t)

	assert.InDelta(t, 2.25, r.Resolve("sr520", seattle(t, 6, 20, 0), true).Amount, 1e-9)
	assert.InDelta(t, 2.25, r.Resolve("sr520", seattle(t, 6, 23, 59), true).Amount, 1e-9)
	assert.InDelta(t, 1.35, r.Resolve("sr520", seattle(t, 7, 0, 0), true).Amount, 1e-9)
	assert.InDelta(t, 4.5, r.Resolve("sr520", seattle(t, 7, 5, 0), true).Amount, 1e-9)
}

func TestResolveUsesRegistryTimezone(t *testing.T) {
	r := newTestResolver(t)

	// 03:30 UTC on Tuesday is 19:30 Monday in Seattle.
	utc := time.Date(2025, time.January, 7, 3, 30, 0, 0, time.UTC)
	q := r.Resolve("sr520", utc, true)
	assert.InDelta(t, 4.5, q.Amount, 1e-9)
}

func TestResolveWeekend(t *testing.T) {
	r := newTestResolver(t)

	// 2025-01-11 is a Saturday.
	assert.InDelta(t, 2.9, r.Resolve("sr520", seattle(t, 11, 12, 0), true).Amount, 1e-9)
	assert.Equal(t, QuoteUntolled, r.Resolve("sr520", seattle(t, 12, 7, 0), true).Status)
	assert.Equal(t, QuoteUntolled, r.Resolve("daytime", seattle(t, 12, 12, 0), false).Status)
}

func TestResolvePassPremium(t *testing.T) {
	r := newTestResolver(t)
	monday := seattle(t, 6, 12, 0)

	testCases := []struct {
		name    string
		id      string
		hasPass bool
		want    float64
		status  QuoteStatus
	}{
		{name: "fixed with pass", id: "tacoma-narrows", hasPass: true, want: 3.5, status: QuoteResolved},
		{name: "fixed by mail", id: "tacoma-narrows", hasPass: false, want: 5.0, status: QuoteResolved},
		{name: "slot by mail", id: "sr520", hasPass: false, want: 6.5, status: QuoteResolved},
		{name: "dynamic typical", id: "i405-express", hasPass: true, want: 4, status: QuoteEstimated},
		{name: "dynamic ignores pass", id: "i405-express", hasPass: false, want: 4, status: QuoteEstimated},
		{name: "unknown facility", id: "sr167-express", hasPass: false, want: 0, status: QuoteUnknownFacility},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			q := r.Resolve(tt.id, monday, tt.hasPass)
			assert.Equal(t, tt.id, q.FacilityID)
			assert.Equal(t, tt.status, q.Status)
			assert.InDelta(t, tt.want, q.Amount, 1e-9)
		})
	}
}

func TestResolveRoute(t *testing.T) {
	r := newTestResolver(t)

	rt := r.ResolveRoute([]string{"sr520", "tacoma-narrows", "ghost"}, seattle(t, 6, 12, 0), true)
	assert.InDelta(t, 8.0, rt.Total, 1e-9)
	require.Len(t, rt.Quotes, 3)
	assert.Equal(t, []string{"ghost"}, rt.Unresolved())

	empty := r.ResolveRoute(nil, seattle(t, 6, 12, 0), true)
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.Unresolved())
}
