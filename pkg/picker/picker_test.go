package picker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/routeview/mapkit/pkg/engine"
	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/logger"
	"github.com/routeview/mapkit/pkg/viewport"
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
	mu      sync.Mutex
	fail    bool
	delay   time.Duration
	created atomic.Int32
}

func (f *fakeEngine) Provider() engine.Provider { return engine.ProviderOSM }

func (f *fakeEngine) Load(ctx context.Context) (*engine.Handle, error) {
	return &engine.Handle{TileURL: "https://tile.test/{z}/{x}/{y}.png", MinZoom: 1, MaxZoom: 19}, nil
}

func (f *fakeEngine) CreateMap(ctx context.Context, c engine.Container, opts engine.MapOptions) (engine.Map, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return nil, engine.ErrEngineLoad
	}
	h, _ := f.Load(ctx)
	f.created.Add(1)
	return engine.NewWidget(h, c, opts, logger.NewNop()), nil
}

func (f *fakeEngine) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func waitState(t *testing.T, p *Picker, want State) {
	t.Helper()
	require.Eventually(t, func() bool { return p.State() == want },
		2*time.Second, 5*time.Millisecond)
}

func coordPtr(lat, lon float64) *geo.Coordinate {
	c := geo.NewCoordinate(lat, lon)
	return &c
}

type fixedLocator struct {
	c   geo.Coordinate
	err error
}

func (l fixedLocator) Locate(ctx context.Context) (geo.Coordinate, error) {
	return l.c, l.err
}

func TestResolveCenterPriority(t *testing.T) {
	jakarta := geo.NewCoordinate(-6.175392, 106.827153)
	bandung := geo.NewCoordinate(-6.9175, 107.6191) // ~120km from jakarta
	bogor := geo.NewCoordinate(-6.5971, 106.806)    // ~47km from jakarta

	testCases := []struct {
		name string
		cfg  Config
		want geo.Coordinate
	}{
		{
			name: "selected wins",
			cfg: Config{
				Selected:  coordPtr(55.75, 37.6),
				Preferred: &jakarta,
				Locator:   fixedLocator{c: bandung},
			},
			want: geo.NewCoordinate(55.75, 37.6),
		},
		{
			name: "preferred when device nearby",
			cfg: Config{
				Preferred: &jakarta,
				Locator:   fixedLocator{c: bogor},
			},
			want: jakarta,
		},
		{
			name: "device when preferred implausibly far",
			cfg: Config{
				Preferred: &jakarta,
				Locator:   fixedLocator{c: bandung},
			},
			want: bandung,
		},
		{
			name: "device when no preferred",
			cfg:  Config{Locator: fixedLocator{c: bogor}},
			want: bogor,
		},
		{
			name: "fallback when nothing known",
			cfg:  Config{Locator: fixedLocator{err: context.DeadlineExceeded}},
			want: geo.FallbackCenter(),
		},
		{
			name: "invalid selected ignored",
			cfg: Config{
				Selected:  coordPtr(999, 999),
				Preferred: &jakarta,
			},
			want: jakarta,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			p := New(&fakeEngine{}, newFakeContainer(800, 600), tt.cfg, logger.NewNop())
			got := p.resolveCenter(context.Background())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPickerClickSelectsAndCloses(t *testing.T) {
	eng := &fakeEngine{}
	c := newFakeContainer(800, 600)

	selected := make(chan geo.Coordinate, 1)
	p := New(eng, c, Config{
		Preferred: coordPtr(-6.175392, 106.827153),
		OnSelect:  func(pt geo.Coordinate) { selected <- pt },
	}, logger.NewNop())

	p.Open(context.Background())
	waitState(t, p, StateReady)

	// one click in the middle of the map resolves immediately
	c.events <- engine.Event{Kind: engine.EventClick, X: 400, Y: 300}

	select {
	case pt := <-selected:
		assert.InDelta(t, -6.175392, pt.Lat, 1e-6)
		assert.InDelta(t, 106.827153, pt.Lon, 1e-6)
	case <-time.After(2 * time.Second):
		t.Fatal("selection never delivered")
	}

	waitState(t, p, StateClosed)
	require.NotNil(t, p.Selected())
}

func TestPickerReopenGetsFreshWidget(t *testing.T) {
	eng := &fakeEngine{}
	c := newFakeContainer(800, 600)
	p := New(eng, c, Config{}, logger.NewNop())

	p.Open(context.Background())
	waitState(t, p, StateReady)
	p.Close()

	p.Open(context.Background())
	waitState(t, p, StateReady)
	p.Close()

	assert.Equal(t, int32(2), eng.created.Load())
}

func TestPickerCloseMidLoad(t *testing.T) {
	eng := &fakeEngine{delay: 80 * time.Millisecond}
	c := newFakeContainer(800, 600)
	p := New(eng, c, Config{}, logger.NewNop())

	require.NotPanics(t, func() {
		p.Open(context.Background())
		time.Sleep(10 * time.Millisecond)
		p.Close()
	})

	// the in-flight initialization must notice the cancellation and discard
	// its widget instead of publishing it
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, StateClosed, p.State())
	assert.Nil(t, p.widget)
}

func TestPickerEngineFailureSurfacesError(t *testing.T) {
	eng := &fakeEngine{}
	eng.setFail(true)
	c := newFakeContainer(800, 600)
	p := New(eng, c, Config{}, logger.NewNop())

	p.Open(context.Background())
	require.Eventually(t, func() bool { return p.ErrorMessage() != "" },
		2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "unable to load map", p.ErrorMessage())
	assert.Equal(t, StateClosed, p.State())

	// reopening after a failure triggers a fresh attempt
	eng.setFail(false)
	p.Open(context.Background())
	waitState(t, p, StateReady)
	p.Close()
}

func TestPickerProceedsWithUnsizedContainer(t *testing.T) {
	eng := &fakeEngine{}
	c := newFakeContainer(0, 0)
	p := New(eng, c, Config{
		Options: Options{Size: viewport.SizeOptions{Timeout: 30 * time.Millisecond, Interval: 5 * time.Millisecond}},
	}, logger.NewNop())

	p.Open(context.Background())
	waitState(t, p, StateReady)
	p.Close()
}
