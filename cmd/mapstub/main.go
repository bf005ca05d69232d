package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/http"
	"github.com/routeview/mapkit/pkg/http/usecases"
	"github.com/routeview/mapkit/pkg/logger"
	"github.com/routeview/mapkit/pkg/spatialindex"
	"github.com/routeview/mapkit/pkg/util"
	"go.uber.org/zap"
)

var (
	placesFile            = flag.String("places", "./data/places.json", "json file with named places for geocoding")
	leafBoundingBoxRadius = flag.Float64("leaf_bounding_box_radius", 1.0, "leaf node (r-tree) bounding box radius in km")
	useRateLimit          = flag.Bool("rate_limit", false, "rate limit api requests per client ip")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	if err := util.ReadConfig(); err != nil {
		logger.Warn("no config file, using defaults", zap.Error(err))
	}

	places, err := readPlaces(*placesFile)
	if err != nil {
		logger.Warn("places file unreadable, using built-in places",
			zap.String("file", *placesFile), zap.Error(err))
		places = defaultPlaces()
	}

	index := spatialindex.NewIndex()
	index.Build(places, *leafBoundingBoxRadius, logger)

	api := http.NewServer(logger)

	routesService := usecases.NewRoutesUsecase(logger)
	locationsService := usecases.NewLocationsUsecase(index, logger)
	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}
	api.Use(ctx,
		logger, *useRateLimit, routesService, locationsService)

	signal := http.GracefulShutdown()

	logger.Info("mapkit stub backend stopped", zap.String("signal", signal.String()))
	cleanup()
}

func readPlaces(path string) ([]spatialindex.Place, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var places []spatialindex.Place
	if err := json.Unmarshal(raw, &places); err != nil {
		return nil, err
	}
	return places, nil
}

func defaultPlaces() []spatialindex.Place {
	return []spatialindex.Place{
		{ID: "monas", Name: "National Monument", Address: "Gambir, Central Jakarta", Point: geo.NewCoordinate(-6.175392, 106.827153)},
		{ID: "kotatua", Name: "Kota Tua", Address: "West Jakarta", Point: geo.NewCoordinate(-6.1352, 106.8133)},
		{ID: "ragunan", Name: "Ragunan Zoo", Address: "South Jakarta", Point: geo.NewCoordinate(-6.3124, 106.8201)},
		{ID: "ancol", Name: "Ancol Dreamland", Address: "North Jakarta", Point: geo.NewCoordinate(-6.1226, 106.8308)},
		{ID: "blokm", Name: "Blok M Square", Address: "South Jakarta", Point: geo.NewCoordinate(-6.2446, 106.7992)},
	}
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
