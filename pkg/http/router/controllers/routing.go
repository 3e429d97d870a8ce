package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/Tollwise/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type routingAPI struct {
	baseAPI
	comparisonService ComparisonService
	tollService       TollService
}

func New(comparisonService ComparisonService, tollService TollService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		baseAPI:           baseAPI{log: log},
		comparisonService: comparisonService,
		tollService:       tollService,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/compareRoutes", api.compareRoutes)
	group.GET("/tollFacilities", api.tollFacilities)
	group.GET("/tollFacilities/:id/quote", api.tollQuote)
}

func parseCompareRoutesRequest(query url.Values) (compareRoutesRequest, error) {
	var (
		request compareRoutesRequest
		err     error
	)

	if request.OriginLat, err = parseFloatParam(query, "origin_lat"); err != nil {
		return request, err
	}
	if request.OriginLon, err = parseFloatParam(query, "origin_lon"); err != nil {
		return request, err
	}
	if request.DestinationLat, err = parseFloatParam(query, "destination_lat"); err != nil {
		return request, err
	}
	if request.DestinationLon, err = parseFloatParam(query, "destination_lon"); err != nil {
		return request, err
	}

	request.Wage = DefaultHourlyWage
	if strings.TrimSpace(query.Get("wage")) != "" {
		if request.Wage, err = parseFloatParam(query, "wage"); err != nil {
			return request, err
		}
	}

	hasPass := parseBoolParam(query, "has_pass", true)
	request.HasPass = &hasPass

	if request.DepartAt, err = parseTimeParam(query, "depart_at"); err != nil {
		return request, err
	}
	return request, nil
}

// compareRoutes
//
//	@Summary		compare the fastest toll route against the fastest toll-free route
//	@Description	recommends the toll route only when the time it saves is worth more than its price at the given hourly wage
//	@Tags			routing
//	@Param			origin_lat		query	number	true	"origin latitude"
//	@Param			origin_lon		query	number	true	"origin longitude"
//	@Param			destination_lat	query	number	true	"destination latitude"
//	@Param			destination_lon	query	number	true	"destination longitude"
//	@Param			wage			query	number	false	"hourly wage in USD, defaults to 25"
//	@Param			has_pass		query	bool	false	"traveler has an electronic toll pass, defaults to true"
//	@Param			depart_at		query	string	false	"RFC3339 departure time, defaults to now"
//	@Produce		application/json
//	@Router			/compareRoutes [get]
//	@Success		200	{object}	compareRoutesResponse
//	@Failure		400	{object}	errorResponse
//	@Failure		404	{object}	errorResponse
//	@Failure		502	{object}	errorResponse
func (api *routingAPI) compareRoutes(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	request, err := parseCompareRoutesRequest(r.URL.Query())
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := validateStruct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	outcome, err := api.comparisonService.CompareRoutes(r.Context(), request.toEngineRequest())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewCompareRoutesResponse(outcome, request.Wage)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

// tollFacilities
//
//	@Summary	list the toll facilities the engine detects
//	@Tags		tolls
//	@Produce	application/json
//	@Router		/tollFacilities [get]
//	@Success	200	{object}	tollFacilitiesResponse
func (api *routingAPI) tollFacilities(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	version, lastUpdated, facilities := api.tollService.ListFacilities()

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewTollFacilitiesResponse(version, lastUpdated, facilities)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

// tollQuote
//
//	@Summary	price one passage through a toll facility
//	@Tags		tolls
//	@Param		id			path	string	true	"facility id"
//	@Param		at			query	string	false	"RFC3339 time, defaults to now"
//	@Param		has_pass	query	bool	false	"traveler has an electronic toll pass, defaults to true"
//	@Produce	application/json
//	@Router		/tollFacilities/{id}/quote [get]
//	@Success	200	{object}	quoteResponse
//	@Failure	404	{object}	errorResponse
func (api *routingAPI) tollQuote(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id := p.ByName("id")
	if id == "" {
		api.BadRequestResponse(w, r, errors.New("facility id is required"))
		return
	}

	query := r.URL.Query()
	at, err := parseTimeParam(query, "at")
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	hasPass := parseBoolParam(query, "has_pass", true)

	quote, err := api.tollService.Quote(id, at, hasPass)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewQuoteResponse(quote)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
