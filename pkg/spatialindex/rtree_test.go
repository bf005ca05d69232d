package spatialindex

import (
	"testing"

	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlaces() []Place {
	return []Place{
		{ID: "monas", Name: "National Monument", Address: "Gambir, Central Jakarta", Point: geo.NewCoordinate(-6.175392, 106.827153)},
		{ID: "kotatua", Name: "Kota Tua", Address: "West Jakarta", Point: geo.NewCoordinate(-6.1352, 106.8133)},
		{ID: "ragunan", Name: "Ragunan Zoo", Address: "South Jakarta", Point: geo.NewCoordinate(-6.3124, 106.8201)},
		{ID: "bandung", Name: "Gedung Sate", Address: "Bandung", Point: geo.NewCoordinate(-6.9025, 107.6186)},
	}
}

func buildTestIndex(t *testing.T) *Index {
	t.Helper()
	idx := NewIndex()
	idx.Build(testPlaces(), 1.0, logger.NewNop())
	return idx
}

func TestSearchWithinRadiusNearestFirst(t *testing.T) {
	idx := buildTestIndex(t)

	// query near monas, 10km radius covers monas and kota tua but not
	// ragunan (~15km) or bandung (~120km)
	got := idx.SearchWithinRadius(geo.NewCoordinate(-6.17, 106.82), 10)
	require.Len(t, got, 2)
	assert.Equal(t, "monas", got[0].ID)
	assert.Equal(t, "kotatua", got[1].ID)
}

func TestNearestExpandsRadius(t *testing.T) {
	idx := buildTestIndex(t)

	// ~15km from ragunan, found only after the radius expands
	got, ok := idx.Nearest(geo.NewCoordinate(-6.44, 106.85), 50)
	require.True(t, ok)
	assert.Equal(t, "ragunan", got.ID)

	_, ok = idx.Nearest(geo.NewCoordinate(35.0, 135.0), 50)
	assert.False(t, ok)
}

func TestSuggestMatchesNameAndAddress(t *testing.T) {
	idx := buildTestIndex(t)

	byName := idx.Suggest("kota", nil, 10)
	require.Len(t, byName, 1)
	assert.Equal(t, "kotatua", byName[0].ID)

	byAddress := idx.Suggest("jakarta", nil, 10)
	assert.Len(t, byAddress, 3)

	assert.Empty(t, idx.Suggest("  ", nil, 10))
}

func TestSuggestOrdersByDistanceWhenNearGiven(t *testing.T) {
	idx := buildTestIndex(t)

	near := geo.NewCoordinate(-6.31, 106.82) // next to ragunan
	got := idx.Suggest("jakarta", &near, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "ragunan", got[0].ID)
}
