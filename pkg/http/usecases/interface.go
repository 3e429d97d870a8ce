package usecases

import (
	"context"
	"time"

	"github.com/lintang-b-s/Tollwise/pkg/engine"
	"github.com/lintang-b-s/Tollwise/pkg/engine/pricing"
	"github.com/lintang-b-s/Tollwise/pkg/tolls"
)

type ComparisonEngine interface {
	Compare(ctx context.Context, req engine.Request) (*engine.Outcome, error)
}

type TollRegistry interface {
	Get(id string) (tolls.Facility, bool)
	Facilities() []tolls.Facility
	GetVersion() string
	GetLastUpdated() string
}

type QuoteResolver interface {
	Resolve(facilityId string, at time.Time, hasPass bool) pricing.Quote
}
