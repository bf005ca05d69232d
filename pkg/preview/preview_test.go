package preview

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/routeview/mapkit/pkg/engine"
	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/logger"
	"github.com/routeview/mapkit/pkg/routingclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContainer struct {
	mu     sync.Mutex
	w, h   int
	events chan engine.Event
}

func newFakeContainer(w, h int) *fakeContainer {
	return &fakeContainer{w: w, h: h, events: make(chan engine.Event, 8)}
}

func (c *fakeContainer) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w, c.h
}

func (c *fakeContainer) Events() <-chan engine.Event { return c.events }

type fakeEngine struct {
	delay time.Duration
}

func (f *fakeEngine) Provider() engine.Provider { return engine.ProviderOSM }

func (f *fakeEngine) Load(ctx context.Context) (*engine.Handle, error) {
	return &engine.Handle{TileURL: "https://tile.test/{z}/{x}/{y}.png", MinZoom: 1, MaxZoom: 19}, nil
}

func (f *fakeEngine) CreateMap(ctx context.Context, c engine.Container, opts engine.MapOptions) (engine.Map, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	h, _ := f.Load(ctx)
	return engine.NewWidget(h, c, opts, logger.NewNop()), nil
}

var (
	from = geo.NewCoordinate(55.75, 37.6)
	to   = geo.NewCoordinate(59.93, 30.33)
)

func mountedPreview(t *testing.T) (*Preview, *fakeContainer) {
	t.Helper()
	c := newFakeContainer(800, 600)
	pv := New(&fakeEngine{}, c, Options{}, logger.NewNop())
	pv.Mount(context.Background())
	require.Eventually(t, func() bool { return pv.State() == StateReady },
		2*time.Second, 5*time.Millisecond)
	return pv, c
}

func TestPreviewNilGeometryFallbackLine(t *testing.T) {
	pv, _ := mountedPreview(t)
	defer pv.Unmount()

	pv.Update(Props{From: from, To: to, Geometry: nil})

	line := pv.Line()
	require.NotNil(t, line)
	assert.Equal(t, []geo.Coordinate{from, to}, line.Path(),
		"nil geometry must render exactly the 2-point fallback")
}

func TestPreviewUpdatesOverlayInPlace(t *testing.T) {
	pv, _ := mountedPreview(t)
	defer pv.Unmount()

	pv.Update(Props{From: from, To: to, Geometry: "LINESTRING(37.6 55.75, 37.62 55.76)"})
	first := pv.Line()
	require.NotNil(t, first)

	pv.Update(Props{From: from, To: to, Geometry: "LINESTRING(37.6 55.75, 37.65 55.78, 37.7 55.8)"})
	second := pv.Line()

	assert.Same(t, first, second, "prop change must mutate the overlay, not recreate it")
	assert.Len(t, second.Path(), 3)
}

func TestPreviewPropsBeforeReadyAppliedOnMount(t *testing.T) {
	c := newFakeContainer(800, 600)
	pv := New(&fakeEngine{delay: 40 * time.Millisecond}, c, Options{}, logger.NewNop())

	pv.Mount(context.Background())
	pv.Update(Props{From: from, To: to, Geometry: nil})

	require.Eventually(t, func() bool { return pv.Line() != nil },
		2*time.Second, 5*time.Millisecond)
	assert.Len(t, pv.Line().Path(), 2)
	pv.Unmount()
}

func TestPreviewUnmountMidLoad(t *testing.T) {
	c := newFakeContainer(800, 600)
	pv := New(&fakeEngine{delay: 80 * time.Millisecond}, c, Options{}, logger.NewNop())

	require.NotPanics(t, func() {
		pv.Mount(context.Background())
		time.Sleep(10 * time.Millisecond)
		pv.Unmount()
	})

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, StateDestroyed, pv.State())
	assert.Nil(t, pv.Line())
}

func TestPreviewUpdateBeforeMountNoops(t *testing.T) {
	c := newFakeContainer(800, 600)
	pv := New(&fakeEngine{}, c, Options{}, logger.NewNop())

	require.NotPanics(t, func() {
		pv.Update(Props{From: from, To: to})
	})
	assert.Nil(t, pv.Line())
}

func TestPropsFromRoutePrefersLatLon(t *testing.T) {
	rp := &routingclient.RoutePreview{
		FromPoint:      from,
		ToPoint:        to,
		Geometry:       json.RawMessage(`"LINESTRING(37.6 55.75, 37.62 55.76)"`),
		GeometryLatLon: [][]float64{{55.75, 37.6}, {55.76, 37.62}},
	}

	p := PropsFromRoute(rp)
	_, tagged := p.Geometry.(latLonTagged)
	assert.True(t, tagged, "geometry_latlon should take precedence")
}

func TestPropsFromRouteFallsBackToRaw(t *testing.T) {
	rp := &routingclient.RoutePreview{
		FromPoint: from,
		ToPoint:   to,
		Geometry:  json.RawMessage(`"LINESTRING(37.6 55.75, 37.62 55.76)"`),
	}

	p := PropsFromRoute(rp)
	s, ok := p.Geometry.(string)
	require.True(t, ok)
	assert.Contains(t, s, "LINESTRING")
}
