package usecases

import (
	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/spatialindex"
)

type PlaceIndex interface {
	Suggest(query string, near *geo.Coordinate, limit int) []spatialindex.Place
	Nearest(q geo.Coordinate, maxRadius float64) (spatialindex.Place, bool)
}

// PreviewResult is one computed route between two points. GeometryWKT and
// GeometryLatLon describe the same path in the two formats real backends
// have been seen returning.
type PreviewResult struct {
	Mode           string
	DurationSec    float64
	DistanceM      float64
	From, To       geo.Coordinate
	GeometryWKT    string
	GeometryLatLon [][]float64
}

type RouteOption struct {
	Mode          string
	DurationSec   float64
	DistanceM     float64
	EstimatedCost float64
	Score         float64
	Reason        string
}

type RuntimeConfig struct {
	APIKey string
	Layers []string
}
