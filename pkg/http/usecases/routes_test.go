package usecases

import (
	"testing"
	"time"

	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/geometry"
	"github.com/routeview/mapkit/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	monas   = geo.NewCoordinate(-6.175392, 106.827153)
	kotaTua = geo.NewCoordinate(-6.1352, 106.8133)
)

func TestRoutePreviewGeometryEndpoints(t *testing.T) {
	uc := NewRoutesUsecase(logger.NewNop())

	result, err := uc.RoutePreview(monas, kotaTua, "car", nil)
	require.NoError(t, err)

	require.Len(t, result.GeometryLatLon, geometrySteps+1)
	assert.InDelta(t, monas.Lat, result.GeometryLatLon[0][0], 1e-9)
	assert.InDelta(t, monas.Lon, result.GeometryLatLon[0][1], 1e-9)
	last := result.GeometryLatLon[len(result.GeometryLatLon)-1]
	assert.InDelta(t, kotaTua.Lat, last[0], 1e-9)
	assert.InDelta(t, kotaTua.Lon, last[1], 1e-9)

	assert.Greater(t, result.DistanceM, 0.0)
	assert.Greater(t, result.DurationSec, 0.0)
}

// the wkt the stub emits must survive the client-side normalizer
func TestRoutePreviewWKTNormalizes(t *testing.T) {
	uc := NewRoutesUsecase(logger.NewNop())

	result, err := uc.RoutePreview(monas, kotaTua, "walk", nil)
	require.NoError(t, err)

	path := geometry.NormalizeLineGeometry(result.GeometryWKT, monas, kotaTua)
	require.Len(t, path, geometrySteps+1)
	assert.InDelta(t, monas.Lat, path[0].Lat, 1e-4)
	assert.InDelta(t, monas.Lon, path[0].Lon, 1e-4)
}

func TestRoutePreviewUnknownMode(t *testing.T) {
	uc := NewRoutesUsecase(logger.NewNop())

	_, err := uc.RoutePreview(monas, kotaTua, "teleport", nil)
	assert.Error(t, err)
}

func TestRoutePreviewOffPeakTransitSlower(t *testing.T) {
	uc := NewRoutesUsecase(logger.NewNop())

	peak := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	night := time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC)

	day, err := uc.RoutePreview(monas, kotaTua, "transit", &peak)
	require.NoError(t, err)
	late, err := uc.RoutePreview(monas, kotaTua, "transit", &night)
	require.NoError(t, err)

	assert.Greater(t, late.DurationSec, day.DurationSec)
}

func TestRecommendationsSortedByScore(t *testing.T) {
	uc := NewRoutesUsecase(logger.NewNop())

	options, err := uc.Recommendations(monas, kotaTua, []string{"car", "walk", "transit"})
	require.NoError(t, err)
	require.Len(t, options, 3)

	for i := 1; i < len(options); i++ {
		assert.GreaterOrEqual(t, options[i-1].Score, options[i].Score)
	}
	for _, opt := range options {
		assert.NotEmpty(t, opt.Reason)
	}

	_, err = uc.Recommendations(monas, kotaTua, []string{"car", "teleport"})
	assert.Error(t, err)
}
