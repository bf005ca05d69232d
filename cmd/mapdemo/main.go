// Demo wiring for the headless map sdk: fetches a route from the stub
// backend and mounts it on a preview widget, then prints what the widget
// would render.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/routeview/mapkit/pkg/component"
	"github.com/routeview/mapkit/pkg/engine"
	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/logger"
	"github.com/routeview/mapkit/pkg/overlay"
	"github.com/routeview/mapkit/pkg/preview"
	"github.com/routeview/mapkit/pkg/routingclient"
	"go.uber.org/zap"
)

var (
	apiBase  = flag.String("api", "http://localhost:6060/api", "stub backend base url")
	provider = flag.String("provider", "osm", "map provider: osm or vendor")
	fromArg  = flag.String("from", "-6.175392,106.827153", "origin as lat,lon")
	toArg    = flag.String("to", "-6.1352,106.8133", "destination as lat,lon")
	mode     = flag.String("mode", "car", "travel mode")
)

// consoleContainer stands in for a real rendering surface.
type consoleContainer struct {
	width, height int
	events        chan engine.Event
}

func newConsoleContainer(width, height int) *consoleContainer {
	return &consoleContainer{
		width:  width,
		height: height,
		events: make(chan engine.Event),
	}
}

func (c *consoleContainer) Size() (int, int)            { return c.width, c.height }
func (c *consoleContainer) Events() <-chan engine.Event { return c.events }

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	from, err := parsePoint(*fromArg)
	if err != nil {
		logger.Fatal("bad -from", zap.Error(err))
	}
	to, err := parsePoint(*toArg)
	if err != nil {
		logger.Fatal("bad -to", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := routingclient.New(*apiBase, logger)
	route, err := client.RoutePreview(ctx, from, to, *mode, nil)
	if err != nil {
		logger.Fatal("route preview request failed", zap.Error(err))
	}
	logger.Info("route fetched",
		zap.Float64("distance_m", route.DistanceM),
		zap.Float64("duration_sec", route.DurationSec))

	registry := component.NewRegistry(component.Deps{
		Log:        logger,
		Keys:       client,
		OSMSources: []engine.Source{{Name: "bundled", Location: "./assets/osm-engine.json"}},
	})

	container := newConsoleContainer(800, 600)
	pv, err := registry.NewPreview(engine.Provider(*provider), container, preview.Options{})
	if err != nil {
		logger.Fatal("building preview", zap.Error(err))
	}

	pv.Mount(ctx)
	pv.Update(preview.PropsFromRoute(route))

	if !waitReady(ctx, pv) {
		logger.Fatal("preview never became ready", zap.String("error", pv.ErrorMessage()))
	}

	line := pv.Line()
	path := line.Path()
	fmt.Printf("route %s: %d points, polyline %s\n", *mode, len(path), overlay.EncodePath(path))
	pv.Unmount()
}

func waitReady(ctx context.Context, pv *preview.Preview) bool {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			switch pv.State() {
			case preview.StateReady:
				return true
			case preview.StateDestroyed:
				return false
			}
		}
	}
}

func parsePoint(raw string) (geo.Coordinate, error) {
	var lat, lon float64
	if _, err := fmt.Sscanf(raw, "%f,%f", &lat, &lon); err != nil {
		return geo.Coordinate{}, err
	}
	if !geo.IsValidLatLon(lat, lon) {
		return geo.Coordinate{}, fmt.Errorf("out of range: %s", raw)
	}
	return geo.NewCoordinate(lat, lon), nil
}
