package engine

import (
	"math"
	"testing"

	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContainer struct {
	w, h   int
	events chan Event
}

func newFakeContainer(w, h int) *fakeContainer {
	return &fakeContainer{w: w, h: h, events: make(chan Event, 8)}
}

func (c *fakeContainer) Size() (int, int)     { return c.w, c.h }
func (c *fakeContainer) Events() <-chan Event { return c.events }

func testHandle() *Handle {
	return &Handle{
		Provider: ProviderOSM,
		TileURL:  "https://tile.test/{z}/{x}/{y}.png",
		MinZoom:  1,
		MaxZoom:  19,
	}
}

func testWidget(t *testing.T, w, h int) (*Widget, *fakeContainer) {
	t.Helper()
	c := newFakeContainer(w, h)
	widget := NewWidget(testHandle(), c, MapOptions{
		Center: geo.NewCoordinate(-6.175392, 106.827153),
		Zoom:   12,
	}, logger.NewNop())
	return widget, c
}

func TestWidgetProjectUnprojectCenter(t *testing.T) {
	w, _ := testWidget(t, 800, 600)

	x, y := w.Project(w.Center())
	assert.InDelta(t, 400, x, 1e-6)
	assert.InDelta(t, 300, y, 1e-6)

	back := w.Unproject(400, 300)
	assert.InDelta(t, w.Center().Lat, back.Lat, 1e-9)
	assert.InDelta(t, w.Center().Lon, back.Lon, 1e-9)
}

func TestWidgetMarkerMutatedInPlace(t *testing.T) {
	w, _ := testWidget(t, 800, 600)

	m := w.PlaceMarker(geo.NewCoordinate(10, 20), MarkerOptions{Label: "start"})
	m.SetPosition(geo.NewCoordinate(11, 21))

	assert.Equal(t, geo.NewCoordinate(11, 21), m.Position())
}

func TestWidgetMarkerInvalidPositionFallsBack(t *testing.T) {
	w, _ := testWidget(t, 800, 600)

	m := w.PlaceMarker(geo.NewCoordinate(999, 999), MarkerOptions{})
	assert.Equal(t, geo.FallbackCenter(), m.Position())
}

func TestWidgetPolylineSetPath(t *testing.T) {
	w, _ := testWidget(t, 800, 600)

	line := w.DrawPolyline([]geo.Coordinate{
		geo.NewCoordinate(55.75, 37.6),
		geo.NewCoordinate(55.76, 37.62),
	}, LineStyle{Color: "#276EF1", Weight: 4, Opacity: 0.8})

	line.SetPath([]geo.Coordinate{
		geo.NewCoordinate(55.75, 37.6),
		geo.NewCoordinate(55.8, 37.7),
		geo.NewCoordinate(55.9, 37.8),
	})
	assert.Len(t, line.Path(), 3)
	assert.Equal(t, "#276EF1", line.Style().Color)
}

func TestWidgetFitBounds(t *testing.T) {
	w, _ := testWidget(t, 800, 600)

	b := geo.NewBounds(55.75, 30.33, 59.93, 37.6)
	w.FitBounds(b, 24)

	center := w.Center()
	assert.InDelta(t, b.Center().Lat, center.Lat, 1e-9)
	assert.InDelta(t, b.Center().Lon, center.Lon, 1e-9)
	assert.Greater(t, w.Zoom(), 0.0)

	// both corners must land inside the padded viewport
	x1, y1 := w.Project(geo.NewCoordinate(b.MinLat, b.MinLon))
	x2, y2 := w.Project(geo.NewCoordinate(b.MaxLat, b.MaxLon))
	for _, v := range []float64{x1, x2} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 800.0)
	}
	for _, v := range []float64{y1, y2} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 600.0)
	}
}

func TestWidgetZoomClamped(t *testing.T) {
	w, _ := testWidget(t, 800, 600)

	w.SetView(w.Center(), 50)
	assert.Equal(t, 19.0, w.Zoom())

	w.SetView(w.Center(), -3)
	assert.Equal(t, 1.0, w.Zoom())
}

func TestWidgetInvalidateSizeTracksContainer(t *testing.T) {
	w, c := testWidget(t, 0, 0)

	// zero-sized at creation, like a widget inside a just-opened dialog
	c.w, c.h = 640, 480
	w.InvalidateSize()

	x, _ := w.Project(w.Center())
	assert.InDelta(t, 320, x, 1e-6)
}

func TestWidgetClickUnprojects(t *testing.T) {
	w, _ := testWidget(t, 800, 600)

	w.HandleClick(400, 300)
	got := <-w.Clicks()
	assert.InDelta(t, w.Center().Lat, got.Lat, 1e-9)
	assert.InDelta(t, w.Center().Lon, got.Lon, 1e-9)
}

func TestWidgetDestroyIdempotent(t *testing.T) {
	w, _ := testWidget(t, 800, 600)

	require.NotPanics(t, func() {
		w.Destroy()
		w.Destroy()
	})

	// clicks after destroy are dropped, not sent on a closed channel
	require.NotPanics(t, func() {
		w.HandleClick(10, 10)
	})
}

func TestWidgetTilePrefetch(t *testing.T) {
	w, _ := testWidget(t, 800, 600)

	tiles := w.TileURLs()
	require.NotEmpty(t, tiles)
	for _, url := range tiles {
		assert.NotContains(t, url, "{z}")
		assert.NotContains(t, url, "{key}")
	}
}

func TestVisibleTilesWrapAntimeridian(t *testing.T) {
	tiles := visibleTiles(geo.NewCoordinate(0, 179.9), 3, 800, 600)
	n := int(math.Exp2(3))
	for _, tile := range tiles {
		assert.GreaterOrEqual(t, tile.x, 0)
		assert.Less(t, tile.x, n)
	}
}
