package economics

import (
	"math"
)

type Recommendation string

const (
	RecommendToll Recommendation = "toll"
	RecommendFree Recommendation = "free"
)

const secondsPerHour = 3600.0

type RouteSummary struct {
	DurationSeconds      float64
	DistanceMeters       float64
	TollCost             float64
	EffectiveCostSeconds float64 // duration plus the toll expressed as working time
}

type ComparisonResult struct {
	TollRoute          RouteSummary
	FreeRoute          RouteSummary
	Recommendation     Recommendation
	TimeSavedSeconds   float64
	MoneySpent         float64
	BreakEvenWage      float64 // +Inf when the toll route saves no time
	TollPenaltySeconds float64
	HourlyWage         float64
}

// TollPenaltySeconds converts a toll into the seconds of work it costs. A non-positive wage makes the
// penalty infinite so the free route always wins.
func TollPenaltySeconds(tollCost, hourlyWage float64) float64 {
	if hourlyWage <= 0 {
		return math.Inf(1)
	}
	return tollCost / hourlyWage * secondsPerHour
}

// BreakEvenWage is the hourly wage at which the time saved exactly pays the toll.
func BreakEvenWage(tollCost, timeSavedSeconds float64) float64 {
	if timeSavedSeconds <= 0 {
		return math.Inf(1)
	}
	return tollCost / (timeSavedSeconds / secondsPerHour)
}

// Compare recommends the toll route only when its duration plus the toll penalty is strictly below
// the free route's duration; an exact tie goes to the free route.
func Compare(tollDuration, tollDistance, freeDuration, freeDistance, tollCost, hourlyWage float64) ComparisonResult {
	penalty := TollPenaltySeconds(tollCost, hourlyWage)
	tollEffective := tollDuration + penalty
	freeEffective := freeDuration
	timeSaved := freeDuration - tollDuration

	rec := RecommendFree
	if tollEffective < freeEffective {
		rec = RecommendToll
	}

	return ComparisonResult{
		TollRoute: RouteSummary{
			DurationSeconds:      tollDuration,
			DistanceMeters:       tollDistance,
			TollCost:             tollCost,
			EffectiveCostSeconds: tollEffective,
		},
		FreeRoute: RouteSummary{
			DurationSeconds:      freeDuration,
			DistanceMeters:       freeDistance,
			EffectiveCostSeconds: freeEffective,
		},
		Recommendation:     rec,
		TimeSavedSeconds:   timeSaved,
		MoneySpent:         tollCost,
		BreakEvenWage:      BreakEvenWage(tollCost, timeSaved),
		TollPenaltySeconds: penalty,
		HourlyWage:         hourlyWage,
	}
}
