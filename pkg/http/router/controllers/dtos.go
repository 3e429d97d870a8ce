package controllers

import (
	"math"
	"time"

	"github.com/lintang-b-s/Tollwise/pkg/datastructure"
	"github.com/lintang-b-s/Tollwise/pkg/engine"
	"github.com/lintang-b-s/Tollwise/pkg/engine/pricing"
	"github.com/lintang-b-s/Tollwise/pkg/geo"
	"github.com/lintang-b-s/Tollwise/pkg/tolls"
)

const DefaultHourlyWage = 25.0

type compareRoutesRequest struct {
	OriginLat      float64   `json:"origin_lat" validate:"min=-90,max=90"`
	OriginLon      float64   `json:"origin_lon" validate:"min=-180,max=180"`
	DestinationLat float64   `json:"destination_lat" validate:"min=-90,max=90"`
	DestinationLon float64   `json:"destination_lon" validate:"min=-180,max=180"`
	Wage           float64   `json:"wage" validate:"gt=0,lte=10000"`
	HasPass        *bool     `json:"has_pass"`
	DepartAt       time.Time `json:"depart_at"`
}

func (r compareRoutesRequest) toEngineRequest() engine.Request {
	hasPass := true
	if r.HasPass != nil {
		hasPass = *r.HasPass
	}
	return engine.Request{
		Origin:      datastructure.NewCoordinate(r.OriginLon, r.OriginLat),
		Destination: datastructure.NewCoordinate(r.DestinationLon, r.DestinationLat),
		HourlyWage:  r.Wage,
		HasPass:     hasPass,
		DepartAt:    r.DepartAt,
	}
}

type quoteResponse struct {
	FacilityID string  `json:"facility_id"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
}

func NewQuoteResponse(q pricing.Quote) quoteResponse {
	return quoteResponse{FacilityID: q.FacilityID, Amount: q.Amount, Status: string(q.Status)}
}

type routeResponse struct {
	Source               string          `json:"source"`
	DurationSeconds      float64         `json:"duration_seconds"`
	DistanceMeters       float64         `json:"distance_meters"`
	TollCost             float64         `json:"toll_cost"`
	EffectiveCostSeconds *float64        `json:"effective_cost_seconds,omitempty"`
	HasTolls             bool            `json:"has_tolls"`
	FacilityIds          []string        `json:"facility_ids"`
	Quotes               []quoteResponse `json:"quotes,omitempty"`
	Path                 string          `json:"path"`
}

func newRouteResponse(pr *engine.PricedRoute) *routeResponse {
	if pr == nil {
		return nil
	}
	rc := pr.Candidate
	ids := rc.GetFacilityIds()
	if ids == nil {
		ids = []string{}
	}
	resp := &routeResponse{
		Source:          string(rc.GetSource()),
		DurationSeconds: rc.GetDuration(),
		DistanceMeters:  rc.GetDistance(),
		TollCost:        pr.Toll.Total,
		HasTolls:        rc.HasTolls(),
		FacilityIds:     ids,
		Path:            geo.PolylineFromCoords(rc.GetGeometry()),
	}
	for _, q := range pr.Toll.Quotes {
		resp.Quotes = append(resp.Quotes, NewQuoteResponse(q))
	}
	return resp
}

type compareRoutesResponse struct {
	SingleRoute        bool           `json:"single_route"`
	Message            string         `json:"message,omitempty"`
	Recommendation     string         `json:"recommendation,omitempty"`
	TollRoute          *routeResponse `json:"toll_route"`
	FreeRoute          *routeResponse `json:"free_route"`
	TimeSavedSeconds   *float64       `json:"time_saved_seconds"`
	MoneySpent         *float64       `json:"money_spent"`
	BreakEvenWage      *float64       `json:"break_even_wage"` // null when the toll route saves no time
	TollPenaltySeconds *float64       `json:"toll_penalty_seconds"`
	HourlyWage         float64        `json:"hourly_wage"`
	DepartAt           time.Time      `json:"depart_at"`
	Warnings           []string       `json:"warnings"`
}

func NewCompareRoutesResponse(out *engine.Outcome, hourlyWage float64) compareRoutesResponse {
	resp := compareRoutesResponse{
		SingleRoute: out.Kind == engine.OutcomeSingleRoute,
		Message:     out.Message,
		TollRoute:   newRouteResponse(out.TollRoute),
		FreeRoute:   newRouteResponse(out.FreeRoute),
		HourlyWage:  hourlyWage,
		DepartAt:    out.DepartAt,
		Warnings:    out.Warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}

	if res := out.Result; res != nil {
		resp.Recommendation = string(res.Recommendation)
		resp.TimeSavedSeconds = finite(res.TimeSavedSeconds)
		resp.MoneySpent = finite(res.MoneySpent)
		resp.BreakEvenWage = finite(res.BreakEvenWage)
		resp.TollPenaltySeconds = finite(res.TollPenaltySeconds)
		resp.TollRoute.EffectiveCostSeconds = finite(res.TollRoute.EffectiveCostSeconds)
		resp.FreeRoute.EffectiveCostSeconds = finite(res.FreeRoute.EffectiveCostSeconds)
	}
	return resp
}

// finite returns nil for values JSON cannot carry.
func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

type tollFacilitiesResponse struct {
	Version     string           `json:"version"`
	LastUpdated string           `json:"last_updated"`
	Count       int              `json:"count"`
	Facilities  []tolls.Facility `json:"facilities"`
}

func NewTollFacilitiesResponse(version, lastUpdated string, facilities []tolls.Facility) tollFacilitiesResponse {
	if facilities == nil {
		facilities = []tolls.Facility{}
	}
	return tollFacilitiesResponse{
		Version:     version,
		LastUpdated: lastUpdated,
		Count:       len(facilities),
		Facilities:  facilities,
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
