package pricing

import (
	"time"

	"github.com/lintang-b-s/Tollwise/pkg/tolls"
	"go.uber.org/zap"
)

type QuoteStatus string

const (
	// QuoteResolved is an exact charge from a fixed rate or a matching time slot.
	QuoteResolved QuoteStatus = "resolved"
	// QuoteEstimated is the representative figure of a dynamically priced facility, never a quote.
	QuoteEstimated QuoteStatus = "estimated"
	// QuoteUntolled means the facility charges nothing at that time.
	QuoteUntolled QuoteStatus = "untolled"
	// QuoteUnknownFacility means the id is not in the registry; the amount is assumed to be zero.
	QuoteUnknownFacility QuoteStatus = "unknown-facility"
)

type Quote struct {
	FacilityID string
	Amount     float64
	Status     QuoteStatus
}

type RouteToll struct {
	Total  float64
	Quotes []Quote
}

// Unresolved returns the ids whose charge could not be determined.
func (rt RouteToll) Unresolved() []string {
	var ids []string
	for _, q := range rt.Quotes {
		if q.Status == QuoteUnknownFacility {
			ids = append(ids, q.FacilityID)
		}
	}
	return ids
}

type Resolver struct {
	registry *tolls.Registry
	log      *zap.Logger
}

func NewResolver(registry *tolls.Registry, log *zap.Logger) *Resolver {
	return &Resolver{registry: registry, log: log}
}

// Resolve returns the charge for one passage through facilityId at time at.
func (r *Resolver) Resolve(facilityId string, at time.Time, hasPass bool) Quote {
	f, ok := r.registry.Get(facilityId)
	if !ok {
		r.log.Warn("toll requested for unregistered facility, assuming no charge",
			zap.String("event", "PricingUnknownFacility"), zap.String("facility_id", facilityId))
		return Quote{FacilityID: facilityId, Status: QuoteUnknownFacility}
	}

	premium := 0.0
	if !hasPass {
		premium = f.Pricing.GetSurcharge().PayByMailPremium
	}

	switch p := f.Pricing.(type) {
	case tolls.FixedPricing:
		return Quote{FacilityID: facilityId, Amount: p.Rate + premium, Status: QuoteResolved}

	case tolls.TimeOfDayPricing:
		local := at.In(r.registry.Location())
		slot, found := p.SlotAt(isWeekend(local), tolls.ClockTimeOf(local))
		if !found {
			return Quote{FacilityID: facilityId, Status: QuoteUntolled}
		}
		return Quote{FacilityID: facilityId, Amount: slot.Rate + premium, Status: QuoteResolved}

	case tolls.DynamicPricing:
		return Quote{FacilityID: facilityId, Amount: p.Estimates.Typical, Status: QuoteEstimated}
	}

	r.log.Error("unsupported pricing model", zap.String("facility_id", facilityId),
		zap.String("pricing_type", string(f.Pricing.Type())))
	return Quote{FacilityID: facilityId, Status: QuoteUnknownFacility}
}

// ResolveRoute prices every facility a route crosses, once each.
func (r *Resolver) ResolveRoute(facilityIds []string, at time.Time, hasPass bool) RouteToll {
	rt := RouteToll{Quotes: make([]Quote, 0, len(facilityIds))}
	for _, id := range facilityIds {
		q := r.Resolve(id, at, hasPass)
		rt.Quotes = append(rt.Quotes, q)
		rt.Total += q.Amount
	}
	return rt
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
