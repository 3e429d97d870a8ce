package tolls

import (
	"fmt"
	"sort"
)

type PricingType string

const (
	PricingFixed     PricingType = "fixed"
	PricingTimeOfDay PricingType = "time-of-day"
	PricingDynamic   PricingType = "dynamic"
)

// PricingModel is one of FixedPricing, TimeOfDayPricing or DynamicPricing.
type PricingModel interface {
	Type() PricingType
	GetSurcharge() Surcharge
	validate() error
}

// Surcharge is shared by every pricing model.
type Surcharge struct {
	HasGoodToGo      bool    // electronic pass accepted
	PayByMailPremium float64 // added when the traveler has no pass
}

func (s Surcharge) GetSurcharge() Surcharge {
	return s
}

func (s Surcharge) validate() error {
	if s.PayByMailPremium < 0 {
		return fmt.Errorf("negative pay-by-mail premium %v", s.PayByMailPremium)
	}
	return nil
}

type FixedPricing struct {
	Surcharge
	Rate float64
}

func (FixedPricing) Type() PricingType {
	return PricingFixed
}

func (p FixedPricing) validate() error {
	if p.Rate < 0 {
		return fmt.Errorf("negative rate %v", p.Rate)
	}
	return p.Surcharge.validate()
}

type Direction string

const (
	DirectionBoth       Direction = "both"
	DirectionNorthbound Direction = "northbound"
	DirectionSouthbound Direction = "southbound"
	DirectionEastbound  Direction = "eastbound"
	DirectionWestbound  Direction = "westbound"
)

// TimeSlot is the half-open interval [Start, End) of local time with its rate.
type TimeSlot struct {
	Start     ClockTime `json:"start"`
	End       ClockTime `json:"end"`
	Rate      float64   `json:"rate"`
	Direction Direction `json:"direction,omitempty"`
}

func (s TimeSlot) Contains(t ClockTime) bool {
	return s.Start <= t && t < s.End
}

// sharesDirection is false only for two slots tagged with different, specific directions.
func (s TimeSlot) sharesDirection(o TimeSlot) bool {
	if s.Direction == "" || s.Direction == DirectionBoth || o.Direction == "" || o.Direction == DirectionBoth {
		return true
	}
	return s.Direction == o.Direction
}

type TimeOfDayPricing struct {
	Surcharge
	Weekday []TimeSlot
	Weekend []TimeSlot
}

func (TimeOfDayPricing) Type() PricingType {
	return PricingTimeOfDay
}

// SlotAt returns the first slot of the day type containing t.
func (p TimeOfDayPricing) SlotAt(weekend bool, t ClockTime) (TimeSlot, bool) {
	slots := p.Weekday
	if weekend {
		slots = p.Weekend
	}
	for _, s := range slots {
		if s.Contains(t) {
			return s, true
		}
	}
	return TimeSlot{}, false
}

func (p TimeOfDayPricing) validate() error {
	if err := validateSlots("weekday", p.Weekday); err != nil {
		return err
	}
	if err := validateSlots("weekend", p.Weekend); err != nil {
		return err
	}
	return p.Surcharge.validate()
}

func validateSlots(dayType string, slots []TimeSlot) error {
	for _, s := range slots {
		if s.Start < Midnight || s.End > EndOfDay || s.Start >= s.End {
			return fmt.Errorf("%s slot %s-%s is not a valid interval", dayType, s.Start, s.End)
		}
		if s.Rate < 0 {
			return fmt.Errorf("%s slot %s-%s has negative rate %v", dayType, s.Start, s.End, s.Rate)
		}
	}

	sorted := make([]TimeSlot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := range sorted {
		for j := i + 1; j < len(sorted) && sorted[j].Start < sorted[i].End; j++ {
			if sorted[i].sharesDirection(sorted[j]) {
				return fmt.Errorf("%s slots %s-%s and %s-%s overlap", dayType,
					sorted[i].Start, sorted[i].End, sorted[j].Start, sorted[j].End)
			}
		}
	}
	return nil
}

type RateRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Estimates struct {
	OffPeak float64 `json:"offPeak"`
	Typical float64 `json:"typical"`
	Peak    float64 `json:"peak"`
}

type HoursRange struct {
	Start ClockTime `json:"start"`
	End   ClockTime `json:"end"`
}

type OperatingHours struct {
	Weekday *HoursRange `json:"weekday"`
	Weekend *HoursRange `json:"weekend"`
}

// DynamicPricing describes lanes priced continuously from live traffic. Only the estimates are used.
type DynamicPricing struct {
	Surcharge
	RateRange         RateRange
	Estimates         Estimates
	PayByPlatePremium *float64
	HOVFree           bool
	OperatingHours    *OperatingHours
	Note              string
}

func (DynamicPricing) Type() PricingType {
	return PricingDynamic
}

func (p DynamicPricing) validate() error {
	if p.RateRange.Min < 0 || p.RateRange.Max < p.RateRange.Min {
		return fmt.Errorf("invalid rate range [%v, %v]", p.RateRange.Min, p.RateRange.Max)
	}
	if p.Estimates.OffPeak < 0 || p.Estimates.Typical < 0 || p.Estimates.Peak < 0 {
		return fmt.Errorf("negative estimate %+v", p.Estimates)
	}
	return p.Surcharge.validate()
}
