package tolls

import (
	"encoding/json"
	"fmt"

	"github.com/lintang-b-s/Tollwise/pkg/datastructure"
)

type FacilityKind string

const (
	KindBridge       FacilityKind = "bridge"
	KindTunnel       FacilityKind = "tunnel"
	KindExpressLanes FacilityKind = "express-lanes"
	KindExpressway   FacilityKind = "expressway"
)

// Anchors are the known ends of a tolled segment. Any of them may be missing.
type Anchors struct {
	Start *datastructure.Coordinate `json:"start,omitempty"`
	End   *datastructure.Coordinate `json:"end,omitempty"`
	North *datastructure.Coordinate `json:"north,omitempty"`
	South *datastructure.Coordinate `json:"south,omitempty"`
}

// Points returns the present anchors in start, end, north, south order.
func (a Anchors) Points() []datastructure.Coordinate {
	pts := make([]datastructure.Coordinate, 0, 4)
	for _, p := range []*datastructure.Coordinate{a.Start, a.End, a.North, a.South} {
		if p != nil {
			pts = append(pts, *p)
		}
	}
	return pts
}

type Facility struct {
	ID          string
	Name        string
	Description string
	Kind        FacilityKind
	Anchors     Anchors
	Pricing     PricingModel
}

func (f Facility) validate() error {
	if f.ID == "" {
		return fmt.Errorf("facility %q has an empty id", f.Name)
	}
	if f.Pricing == nil {
		return fmt.Errorf("facility %s has no pricing model", f.ID)
	}
	for _, p := range f.Anchors.Points() {
		if !p.Valid() {
			return fmt.Errorf("facility %s has an out of range anchor %v", f.ID, p)
		}
	}
	if err := f.Pricing.validate(); err != nil {
		return fmt.Errorf("facility %s: %w", f.ID, err)
	}
	return nil
}

type facilityDoc struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Kind        FacilityKind `json:"type,omitempty"`
	Coordinates Anchors      `json:"coordinates"`
	Pricing     pricingDoc   `json:"pricing"`
}

// pricingDoc is the flat, type-tagged document form shared by every pricing variant.
type pricingDoc struct {
	Type              PricingType     `json:"type"`
	HasGoodToGo       bool            `json:"hasGoodToGo"`
	PayByMailPremium  float64         `json:"payByMailPremium"`
	Rate              *float64        `json:"rate,omitempty"`
	Weekday           *[]TimeSlot     `json:"weekday,omitempty"`
	Weekend           *[]TimeSlot     `json:"weekend,omitempty"`
	PayByPlatePremium *float64        `json:"payByPlatePremium,omitempty"`
	HOVFree           *bool           `json:"hovFree,omitempty"`
	OperatingHours    *OperatingHours `json:"operatingHours,omitempty"`
	RateRange         *RateRange      `json:"rateRange,omitempty"`
	Estimates         *Estimates      `json:"estimates,omitempty"`
	Note              string          `json:"note,omitempty"`
}

func (f Facility) MarshalJSON() ([]byte, error) {
	if f.Pricing == nil {
		return nil, fmt.Errorf("facility %s has no pricing model", f.ID)
	}
	doc := facilityDoc{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Kind:        f.Kind,
		Coordinates: f.Anchors,
	}

	s := f.Pricing.GetSurcharge()
	doc.Pricing = pricingDoc{Type: f.Pricing.Type(), HasGoodToGo: s.HasGoodToGo, PayByMailPremium: s.PayByMailPremium}

	switch p := f.Pricing.(type) {
	case FixedPricing:
		rate := p.Rate
		doc.Pricing.Rate = &rate
	case TimeOfDayPricing:
		doc.Pricing.Weekday = slotsDoc(p.Weekday)
		doc.Pricing.Weekend = slotsDoc(p.Weekend)
	case DynamicPricing:
		rr, est, hov := p.RateRange, p.Estimates, p.HOVFree
		doc.Pricing.RateRange = &rr
		doc.Pricing.Estimates = &est
		doc.Pricing.HOVFree = &hov
		doc.Pricing.PayByPlatePremium = p.PayByPlatePremium
		doc.Pricing.OperatingHours = p.OperatingHours
		doc.Pricing.Note = p.Note
	default:
		return nil, fmt.Errorf("facility %s: unsupported pricing model %T", f.ID, f.Pricing)
	}

	return json.Marshal(doc)
}

func (f *Facility) UnmarshalJSON(data []byte) error {
	var doc facilityDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	pricing, err := doc.Pricing.model()
	if err != nil {
		return fmt.Errorf("facility %s: %w", doc.ID, err)
	}

	*f = Facility{
		ID:          doc.ID,
		Name:        doc.Name,
		Description: doc.Description,
		Kind:        doc.Kind,
		Anchors:     doc.Coordinates,
		Pricing:     pricing,
	}
	return nil
}

func (d pricingDoc) model() (PricingModel, error) {
	s := Surcharge{HasGoodToGo: d.HasGoodToGo, PayByMailPremium: d.PayByMailPremium}

	switch d.Type {
	case PricingFixed:
		if d.Rate == nil {
			return nil, fmt.Errorf("fixed pricing without rate")
		}
		return FixedPricing{Surcharge: s, Rate: *d.Rate}, nil
	case PricingTimeOfDay:
		return TimeOfDayPricing{Surcharge: s, Weekday: slotsOf(d.Weekday), Weekend: slotsOf(d.Weekend)}, nil
	case PricingDynamic:
		if d.Estimates == nil {
			return nil, fmt.Errorf("dynamic pricing without estimates")
		}
		p := DynamicPricing{
			Surcharge:         s,
			Estimates:         *d.Estimates,
			PayByPlatePremium: d.PayByPlatePremium,
			OperatingHours:    d.OperatingHours,
			Note:              d.Note,
		}
		if d.RateRange != nil {
			p.RateRange = *d.RateRange
		}
		if d.HOVFree != nil {
			p.HOVFree = *d.HOVFree
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown pricing type %q", d.Type)
	}
}

// slotsDoc keeps a nil day type out of the document and an empty one as [].
func slotsDoc(slots []TimeSlot) *[]TimeSlot {
	if slots == nil {
		return nil
	}
	return &slots
}

func slotsOf(doc *[]TimeSlot) []TimeSlot {
	if doc == nil {
		return nil
	}
	return *doc
}
