package economics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareScenarios(t *testing.T) {
	testCases := []struct {
		name          string
		wage          float64
		wantRec       Recommendation
		wantPenalty   float64
		wantEffective float64
	}{
		{name: "scenario A: $25/hr takes the toll", wage: 25, wantRec: RecommendToll, wantPenalty: 194.4, wantEffective: 1094.4},
		{name: "scenario B: $10/hr drives free", wage: 10, wantRec: RecommendFree, wantPenalty: 486, wantEffective: 1386},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(900, 15000, 1200, 17000, 1.35, tt.wage)

			assert.Equal(t, tt.wantRec, got.Recommendation)
			assert.InDelta(t, 300, got.TimeSavedSeconds, 1e-9)
			assert.InDelta(t, tt.wantPenalty, got.TollPenaltySeconds, 1e-9)
			assert.InDelta(t, tt.wantEffective, got.TollRoute.EffectiveCostSeconds, 1e-9)
			assert.InDelta(t, 1200, got.FreeRoute.EffectiveCostSeconds, 1e-9)
			assert.InDelta(t, 16.20, got.BreakEvenWage, 1e-9)
			assert.Equal(t, 1.35, got.MoneySpent)
			assert.Equal(t, 1.35, got.TollRoute.TollCost)
			assert.Zero(t, got.FreeRoute.TollCost)
			assert.Equal(t, 15000.0, got.TollRoute.DistanceMeters)
			assert.Equal(t, 17000.0, got.FreeRoute.DistanceMeters)
		})
	}
}

func TestCompareTieGoesFree(t *testing.T) {
	// 1.35 / 16.2 * 3600 = 300 s, exactly the time saved.
	got := Compare(900, 0, 1200, 0, 1.35, 16.2)
	assert.InDelta(t, got.TollRoute.EffectiveCostSeconds, got.FreeRoute.EffectiveCostSeconds, 1e-9)

	// representable tie.
	tie := Compare(1000, 0, 1450, 0, 1, 8)
	assert.Equal(t, tie.TollRoute.EffectiveCostSeconds, tie.FreeRoute.EffectiveCostSeconds)
	assert.Equal(t, RecommendFree, tie.Recommendation)

	// a free toll on an equally fast road is still not worth taking.
	zero := Compare(600, 0, 600, 0, 0, 30)
	assert.Equal(t, RecommendFree, zero.Recommendation)
}

func TestBreakEvenWageIsInfiniteWithoutTimeSaved(t *testing.T) {
	testCases := []struct {
		name         string
		toll, free   float64
		wantInfinite bool
	}{
		{name: "toll route slower", toll: 1300, free: 1200, wantInfinite: true},
		{name: "equal durations", toll: 1200, free: 1200, wantInfinite: true},
		{name: "toll route faster", toll: 1199, free: 1200, wantInfinite: false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.toll, 0, tt.free, 0, 2.5, 20)
			assert.Equal(t, tt.wantInfinite, math.IsInf(got.BreakEvenWage, 1))
			assert.Equal(t, got.TimeSavedSeconds <= 0, math.IsInf(got.BreakEvenWage, 1))
		})
	}
}

func TestNonPositiveWageAlwaysFree(t *testing.T) {
	for _, wage := range []float64{0, -5} {
		got := Compare(100, 0, 5000, 0, 0.5, wage)
		assert.True(t, math.IsInf(got.TollPenaltySeconds, 1))
		assert.Equal(t, RecommendFree, got.Recommendation)
	}
}

func TestRecommendationLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		tollDuration := rng.Float64() * 3600
		freeDuration := rng.Float64() * 3600
		tollCost := rng.Float64() * 15
		wage := 0.01 + rng.Float64()*200

		got := Compare(tollDuration, 0, freeDuration, 0, tollCost, wage)

		wantToll := tollDuration+tollCost/wage*3600 < freeDuration
		assert.Equal(t, wantToll, got.Recommendation == RecommendToll,
			"toll=%v free=%v cost=%v wage=%v", tollDuration, freeDuration, tollCost, wage)
		assert.Equal(t, got.TimeSavedSeconds <= 0, math.IsInf(got.BreakEvenWage, 1))
	}
}
