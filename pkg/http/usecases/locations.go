package usecases

import (
	"fmt"

	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/spatialindex"
	"github.com/routeview/mapkit/pkg/util"
	"go.uber.org/zap"
)

// reverse lookups stop expanding past this radius (km)
const maxReverseRadiusKM = 25.0

type LocationsUsecase struct {
	index PlaceIndex
	log   *zap.Logger
}

func NewLocationsUsecase(index PlaceIndex, log *zap.Logger) *LocationsUsecase {
	return &LocationsUsecase{
		index: index,
		log:   log,
	}
}

func (uc *LocationsUsecase) Suggest(query string, near *geo.Coordinate, limit int) ([]spatialindex.Place, error) {
	if limit <= 0 {
		limit = 10
	}
	return uc.index.Suggest(query, near, limit), nil
}

func (uc *LocationsUsecase) Reverse(point geo.Coordinate) (spatialindex.Place, error) {
	if !point.Valid() {
		return spatialindex.Place{}, util.WrapErrorf(
			fmt.Errorf("(%f, %f)", point.Lat, point.Lon), util.ErrBadParamInput,
			"invalid coordinate")
	}

	place, ok := uc.index.Nearest(point, maxReverseRadiusKM)
	if !ok {
		return spatialindex.Place{}, util.WrapErrorf(
			fmt.Errorf("no place within %.0f km", maxReverseRadiusKM), util.ErrNotFound,
			"reverse geocode miss")
	}
	return place, nil
}
