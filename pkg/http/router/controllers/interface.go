package controllers

import (
	"context"
	"time"

	"github.com/lintang-b-s/Tollwise/pkg/engine"
	"github.com/lintang-b-s/Tollwise/pkg/engine/pricing"
	"github.com/lintang-b-s/Tollwise/pkg/tolls"
)

type ComparisonService interface {
	CompareRoutes(ctx context.Context, req engine.Request) (*engine.Outcome, error)
}

type TollService interface {
	ListFacilities() (version, lastUpdated string, facilities []tolls.Facility)
	Quote(facilityId string, at time.Time, hasPass bool) (pricing.Quote, error)
}
