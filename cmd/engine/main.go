package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/lintang-b-s/Tollwise/pkg/engine"
	"github.com/lintang-b-s/Tollwise/pkg/engine/alternative"
	"github.com/lintang-b-s/Tollwise/pkg/engine/geofence"
	"github.com/lintang-b-s/Tollwise/pkg/engine/pricing"
	"github.com/lintang-b-s/Tollwise/pkg/engine/provider"
	"github.com/lintang-b-s/Tollwise/pkg/http"
	"github.com/lintang-b-s/Tollwise/pkg/http/usecases"
	"github.com/lintang-b-s/Tollwise/pkg/logger"
	"github.com/lintang-b-s/Tollwise/pkg/spatialindex"
	"github.com/lintang-b-s/Tollwise/pkg/tolls"
	"github.com/lintang-b-s/Tollwise/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	datasetPath = flag.String("dataset", "", "toll facility dataset (.json or .json5), overrides TOLL_DATASET_PATH")
	strategy    = flag.String("strategy", "", "toll geofence strategy: bbox or corridor, overrides GEOFENCE_STRATEGY")
)

func main() {
	flag.Parse()
	if err := util.ReadConfig(); err != nil {
		panic(err)
	}
	if *datasetPath != "" {
		viper.Set("TOLL_DATASET_PATH", *datasetPath)
	}
	if *strategy != "" {
		viper.Set("GEOFENCE_STRATEGY", *strategy)
	}

	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	registry, err := tolls.LoadRegistry(viper.GetString("TOLL_DATASET_PATH"), logger)
	if err != nil {
		logger.Fatal("load toll dataset", zap.Error(err))
	}

	detectorStrategy, gaps, err := newStrategy(registry, logger)
	if err != nil {
		logger.Fatal("build toll geofence", zap.Error(err))
	}
	detector := geofence.NewDetector(detectorStrategy, logger)

	osrm := provider.NewOSRMClient(provider.Config{
		BaseURL:    viper.GetString("ROUTING_SERVICE_URL"),
		Profile:    viper.GetString("ROUTING_PROFILE"),
		Geometries: viper.GetString("ROUTING_GEOMETRIES"),
		Timeout:    viper.GetDuration("ROUTING_TIMEOUT"),
		RateLimit:  viper.GetFloat64("ROUTING_RATE_LIMIT"),
	}, logger)

	offsets, err := util.ParseFloatList(viper.GetString("PROBE_OFFSETS"))
	if err != nil {
		logger.Fatal("parse PROBE_OFFSETS", zap.Error(err))
	}
	probes := alternative.NewProbeSearch(osrm, alternative.Config{
		CorridorBearing: viper.GetFloat64("PROBE_CORRIDOR_BEARING"),
		AutoBearing:     viper.GetBool("PROBE_AUTO_BEARING"),
		Offsets:         offsets,
		MaxConcurrency:  viper.GetInt("PROBE_MAX_CONCURRENCY"),
		ProbeTimeout:    viper.GetDuration("PROBE_TIMEOUT"),
	}, logger)

	resolver := pricing.NewResolver(registry, logger)

	comparisonEngine := engine.NewEngine(osrm, probes, detector, resolver, engine.Options{
		UseTollFreeQuery:   viper.GetBool("ROUTING_USE_EXCLUDE_TOLL"),
		ClassificationGaps: gaps,
	}, logger)

	comparisonService := usecases.NewComparisonService(logger, comparisonEngine)
	tollService := usecases.NewTollService(logger, registry, resolver, nil)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	api := http.NewServer(logger)
	api.Use(ctx,
		logger, viper.GetBool("USE_RATE_LIMIT"), comparisonService, tollService)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- api.Wait()
	}()

	go func() {
		signal := http.GracefulShutdown()
		logger.Info("shutdown signal received", zap.String("signal", signal.String()))
		cleanup()
	}()

	if err := <-serverErr; err != nil && err != context.Canceled {
		logger.Error("Tollwise server stopped with error", zap.Error(err))
	}
	cleanup()
	logger.Info("Tollwise Route Comparison Server Stopped")
}

func newStrategy(registry *tolls.Registry, log *zap.Logger) (geofence.Strategy, []string, error) {
	switch name := viper.GetString("GEOFENCE_STRATEGY"); name {
	case "bbox", "":
		rt := spatialindex.NewRtree()
		if err := rt.Build(registry, viper.GetFloat64("GEOFENCE_BUFFER_DEGREES"), log); err != nil {
			return nil, nil, fmt.Errorf("GEOFENCE_BUFFER_DEGREES: %w", err)
		}
		return geofence.NewBoundingBoxStrategy(rt), rt.Gaps(), nil
	case "corridor":
		var gaps []string
		for _, f := range registry.Facilities() {
			if len(f.Anchors.Points()) == 0 {
				gaps = append(gaps, f.ID)
			}
		}
		s, err := geofence.NewCorridorStrategy(registry, viper.GetFloat64("GEOFENCE_BUFFER_METERS"), log)
		if err != nil {
			return nil, nil, fmt.Errorf("GEOFENCE_BUFFER_METERS: %w", err)
		}
		return s, gaps, nil
	default:
		return nil, nil, fmt.Errorf("unknown geofence strategy %q", name)
	}
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
