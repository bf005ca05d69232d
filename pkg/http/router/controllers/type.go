package controllers

import (
	"time"

	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/http/usecases"
	"github.com/routeview/mapkit/pkg/spatialindex"
)

type RoutesService interface {
	RoutePreview(from, to geo.Coordinate, mode string, departureAt *time.Time) (*usecases.PreviewResult, error)
	Recommendations(from, to geo.Coordinate, modes []string) ([]usecases.RouteOption, error)
	RuntimeConfig() usecases.RuntimeConfig
}

type LocationsService interface {
	Suggest(query string, near *geo.Coordinate, limit int) ([]spatialindex.Place, error)
	Reverse(point geo.Coordinate) (spatialindex.Place, error)
}
