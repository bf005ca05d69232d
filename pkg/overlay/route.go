// Package overlay draws route geometry onto a live map widget.
package overlay

import (
	"errors"

	"github.com/twpayne/go-polyline"

	"github.com/routeview/mapkit/pkg/engine"
	"github.com/routeview/mapkit/pkg/geo"
)

// fixed route stroke style, shared by every provider
const (
	RouteColor   = "#276EF1"
	RouteWeight  = 4
	RouteOpacity = 0.8
)

var ErrShortPath = errors.New("route path needs at least 2 points")

func RouteStyle() engine.LineStyle {
	return engine.LineStyle{
		Color:   RouteColor,
		Weight:  RouteWeight,
		Opacity: RouteOpacity,
	}
}

type RouteParams struct {
	Path []geo.Coordinate
	Map  engine.Map
	// Existing, when set, is mutated in place instead of creating a new
	// overlay. Cheaper and avoids a visible flicker on prop change.
	Existing engine.Polyline
}

// DrawRoute attaches or updates the route polyline. Safe from the two-point
// straight fallback up to arbitrarily long paths.
func DrawRoute(p RouteParams) (engine.Polyline, error) {
	if len(p.Path) < 2 {
		return nil, ErrShortPath
	}

	if p.Existing != nil {
		p.Existing.SetPath(p.Path)
		return p.Existing, nil
	}
	return p.Map.DrawPolyline(p.Path, RouteStyle()), nil
}

// EncodePath renders a path as a google encoded polyline, the compact form
// used for logging and debug snapshots.
func EncodePath(path []geo.Coordinate) string {
	coords := make([][]float64, len(path))
	for i, c := range path {
		coords[i] = []float64{c.Lat, c.Lon}
	}
	return string(polyline.EncodeCoords(coords))
}
