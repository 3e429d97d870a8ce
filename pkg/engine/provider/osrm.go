package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lintang-b-s/Tollwise/pkg/datastructure"
	"github.com/lintang-b-s/Tollwise/pkg/geo"
	"github.com/lintang-b-s/Tollwise/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrNetwork is a transport or HTTP failure reaching the routing service.
	ErrNetwork = errors.New("routing service request failed")
	// ErrNoRoute means the routing service answered but found no path.
	ErrNoRoute = errors.New("no route found")
)

const (
	GeometriesPolyline  = "polyline"
	GeometriesPolyline6 = "polyline6"
	GeometriesGeoJSON   = "geojson"

	maxResponseBytes = 32 << 20
)

type Config struct {
	BaseURL    string
	Profile    string
	Geometries string
	Timeout    time.Duration
	RateLimit  float64 // requests per second, <= 0 disables throttling
	Burst      int
}

// OSRMClient fetches route candidates from an OSRM compatible /route/v1 HTTP API.
type OSRMClient struct {
	baseURL    string
	profile    string
	geometries string
	client     *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

func NewOSRMClient(cfg Config, log *zap.Logger) *OSRMClient {
	if cfg.Profile == "" {
		cfg.Profile = "driving"
	}
	if cfg.Geometries == "" {
		cfg.Geometries = GeometriesPolyline
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = int(cfg.RateLimit) + 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &OSRMClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		profile:    cfg.Profile,
		geometries: cfg.Geometries,
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		log:        log,
	}
}

// FetchCandidates asks for the best route and the service's native alternatives.
func (c *OSRMClient) FetchCandidates(ctx context.Context, origin, destination datastructure.Coordinate) ([]*datastructure.RouteCandidate, error) {
	q := url.Values{}
	q.Set("alternatives", "true")
	return c.route(ctx, []datastructure.Coordinate{origin, destination}, q, datastructure.SourcePrimary)
}

// FetchViaWaypoint asks for a single origin -> waypoint -> destination route.
func (c *OSRMClient) FetchViaWaypoint(ctx context.Context, origin, waypoint, destination datastructure.Coordinate) ([]*datastructure.RouteCandidate, error) {
	q := url.Values{}
	q.Set("alternatives", "false")
	return c.route(ctx, []datastructure.Coordinate{origin, waypoint, destination}, q, datastructure.SourceProbe)
}

// FetchTollFree asks for a route excluding toll roads. The routing profile must define the toll class.
func (c *OSRMClient) FetchTollFree(ctx context.Context, origin, destination datastructure.Coordinate) ([]*datastructure.RouteCandidate, error) {
	q := url.Values{}
	q.Set("alternatives", "false")
	q.Set("exclude", "toll")
	return c.route(ctx, []datastructure.Coordinate{origin, destination}, q, datastructure.SourceTollFree)
}

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64         `json:"distance"`
	Duration float64         `json:"duration"`
	Geometry json.RawMessage `json:"geometry"`
}

type geoJSONLineString struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

func (c *OSRMClient) buildURL(coords []datastructure.Coordinate, q url.Values) string {
	pairs := make([]string, len(coords))
	for i, p := range coords {
		pairs[i] = strconv.FormatFloat(p.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat, 'f', 6, 64)
	}
	q.Set("overview", "full")
	q.Set("geometries", c.geometries)
	return fmt.Sprintf("%s/route/v1/%s/%s?%s", c.baseURL, c.profile, strings.Join(pairs, ";"), q.Encode())
}

func (c *OSRMClient) route(ctx context.Context, coords []datastructure.Coordinate, q url.Values,
	source datastructure.CandidateSource) ([]*datastructure.RouteCandidate, error) {
	reqURL := c.buildURL(coords, q)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, networkError(err, "routing request throttled")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, networkError(err, "build routing request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, networkError(err, "routing request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, networkError(err, "read routing response")
	}

	c.log.Debug("routing service responded",
		zap.String("source", string(source)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, networkError(fmt.Errorf("status %d", resp.StatusCode), "routing service error")
	}

	var data osrmResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, networkError(fmt.Errorf("status %d: %w", resp.StatusCode, err), "decode routing response")
	}

	if data.Code != "Ok" || len(data.Routes) == 0 {
		return nil, util.WrapErrorf(ErrNoRoute, util.ErrNotFound,
			"no route found between %s (code %q: %s)", describe(coords), data.Code, data.Message)
	}

	candidates := make([]*datastructure.RouteCandidate, 0, len(data.Routes))
	for i, r := range data.Routes {
		geometry, err := c.decodeGeometry(r.Geometry)
		if err != nil {
			c.log.Warn("dropping route with undecodable geometry", zap.Int("route", i), zap.Error(err))
			continue
		}
		if len(geometry) < 2 {
			c.log.Warn("dropping route with degenerate geometry", zap.Int("route", i), zap.Int("points", len(geometry)))
			continue
		}
		candidates = append(candidates, datastructure.NewRouteCandidate(r.Distance, r.Duration, geometry, source))
	}

	if len(candidates) == 0 {
		return nil, util.WrapErrorf(ErrNoRoute, util.ErrNotFound, "no usable route between %s", describe(coords))
	}
	return candidates, nil
}

func (c *OSRMClient) decodeGeometry(raw json.RawMessage) ([]datastructure.Coordinate, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, err
		}
		precision := 5
		if c.geometries == GeometriesPolyline6 {
			precision = 6
		}
		return geo.CoordsFromPolyline(encoded, precision)
	}

	var ls geoJSONLineString
	if err := json.Unmarshal(raw, &ls); err != nil {
		return nil, err
	}
	if ls.Type != "LineString" {
		return nil, fmt.Errorf("unexpected geometry type %q", ls.Type)
	}
	coords := make([]datastructure.Coordinate, 0, len(ls.Coordinates))
	for _, p := range ls.Coordinates {
		if len(p) < 2 {
			return nil, fmt.Errorf("position with %d values", len(p))
		}
		coords = append(coords, datastructure.NewCoordinate(p[0], p[1]))
	}
	return coords, nil
}

func networkError(cause error, msg string) error {
	return util.WrapErrorf(fmt.Errorf("%w: %w", ErrNetwork, cause), util.ErrBadGateway, "%s", msg)
}

func describe(coords []datastructure.Coordinate) string {
	parts := make([]string, len(coords))
	for i, p := range coords {
		parts[i] = fmt.Sprintf("%f,%f", p.Lat, p.Lon)
	}
	return strings.Join(parts, " -> ")
}
