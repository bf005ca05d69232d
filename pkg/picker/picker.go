// Package picker is the modal point-selection component: a lazily created
// map, one marker, and a click that immediately resolves the selection.
package picker

import (
	"context"
	"sync"
	"time"

	"github.com/golang/geo/s2"
	"go.uber.org/zap"

	"github.com/routeview/mapkit/pkg/engine"
	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/viewport"
)

type State uint8

const (
	StateClosed State = iota
	StateLoadingEngine
	StateCreatingWidget
	StateReady
)

const (
	defaultZoom = 15.0
	// device location further than this from the preferred center means the
	// preferred center is stale, prefer where the user actually is
	defaultPlausibleDistanceKM = 100.0

	earthRadiusKM = 6371.0
)

// Locator reports an approximate device location. Implementations are
// expected to be fast and coarse (ip geolocation, last known fix).
type Locator interface {
	Locate(ctx context.Context) (geo.Coordinate, error)
}

type Options struct {
	Size                viewport.SizeOptions
	InvalidateDelays    []time.Duration
	Zoom                float64
	PlausibleDistanceKM float64
}

type Config struct {
	// Selected is the currently chosen point, if any.
	Selected *geo.Coordinate
	// Preferred is the caller's preferred initial center, e.g. a home
	// location.
	Preferred *geo.Coordinate
	Locator   Locator
	// OnSelect fires once per open, with the clicked point, right before the
	// picker closes itself.
	OnSelect func(c geo.Coordinate)
	Options  Options
}

type Picker struct {
	eng       engine.Engine
	container engine.Container
	cfg       Config
	log       *zap.Logger

	mu       sync.Mutex
	state    State
	widget   engine.Map
	marker   engine.Marker
	obs      *viewport.Observer
	cancel   context.CancelFunc
	selected *geo.Coordinate
	errMsg   string
}

func New(eng engine.Engine, container engine.Container, cfg Config, log *zap.Logger) *Picker {
	if cfg.Options.Zoom <= 0 {
		cfg.Options.Zoom = defaultZoom
	}
	if cfg.Options.PlausibleDistanceKM <= 0 {
		cfg.Options.PlausibleDistanceKM = defaultPlausibleDistanceKM
	}
	return &Picker{
		eng:       eng,
		container: container,
		cfg:       cfg,
		log:       log,
		selected:  cfg.Selected,
	}
}

// Open starts the dialog lifecycle: wait for the container, load the engine,
// create a fresh widget. Idempotent while already open. Initialization runs
// in the background; failures surface through ErrorMessage, never a panic.
func (p *Picker) Open(ctx context.Context) {
	p.mu.Lock()
	if p.state != StateClosed {
		p.mu.Unlock()
		return
	}
	p.state = StateLoadingEngine
	p.errMsg = ""
	openCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	go p.initialize(openCtx)
}

func (p *Picker) initialize(ctx context.Context) {
	if !viewport.WaitForContainerSize(ctx, p.container, p.cfg.Options.Size) {
		if ctx.Err() != nil {
			return
		}
		// transient in freshly opened dialogs, the invalidation schedule
		// compensates
		p.log.Warn("picker container has no size, proceeding anyway")
	}

	center := p.resolveCenter(ctx)
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	if p.state != StateLoadingEngine {
		p.mu.Unlock()
		return
	}
	p.state = StateCreatingWidget
	p.mu.Unlock()

	widget, err := p.eng.CreateMap(ctx, p.container, engine.MapOptions{
		Center:           center,
		Zoom:             p.cfg.Options.Zoom,
		InvalidateDelays: p.cfg.Options.InvalidateDelays,
	})
	if err != nil {
		p.log.Error("picker engine load failed", zap.Error(err))
		p.mu.Lock()
		p.state = StateClosed
		p.errMsg = "unable to load map"
		p.cancel = nil
		p.mu.Unlock()
		return
	}
	if ctx.Err() != nil {
		widget.Destroy()
		return
	}

	var marker engine.Marker
	if p.selectedPoint() != nil {
		marker = widget.PlaceMarker(*p.selectedPoint(), engine.MarkerOptions{})
	}

	viewport.ScheduleInvalidate(ctx, widget, p.cfg.Options.InvalidateDelays)
	obs := viewport.Observe(p.container,
		func(w, h int) {
			widget.HandleResize(w, h)
			viewport.ScheduleInvalidate(ctx, widget, p.cfg.Options.InvalidateDelays)
		},
		func(x, y int) {
			p.handleClick(x, y)
		},
		p.log)

	p.mu.Lock()
	if ctx.Err() != nil || p.state != StateCreatingWidget {
		p.mu.Unlock()
		obs.Disconnect()
		widget.Destroy()
		return
	}
	p.widget = widget
	p.marker = marker
	p.obs = obs
	p.state = StateReady
	p.mu.Unlock()
}

// handleClick places or moves the single marker and immediately resolves the
// selection. No confirm step.
func (p *Picker) handleClick(x, y int) {
	p.mu.Lock()
	if p.state != StateReady || p.widget == nil {
		p.mu.Unlock()
		return
	}
	c := p.widget.Unproject(float64(x), float64(y))
	c = geo.NormalizePoint(c)
	if p.marker == nil {
		p.marker = p.widget.PlaceMarker(c, engine.MarkerOptions{})
	} else {
		p.marker.SetPosition(c)
	}
	p.selected = &c
	onSelect := p.cfg.OnSelect
	p.mu.Unlock()

	if onSelect != nil {
		onSelect(c)
	}
	p.Close()
}

// Close tears the dialog down from whatever state it is in. Each teardown
// step is guarded on its own so a failing one does not block the rest. A
// closed picker can be opened again and gets a fresh widget.
func (p *Picker) Close() {
	p.mu.Lock()
	cancel := p.cancel
	obs := p.obs
	widget := p.widget
	p.cancel = nil
	p.obs = nil
	p.widget = nil
	p.marker = nil
	p.state = StateClosed
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if obs != nil {
		obs.Disconnect()
	}
	if widget != nil {
		// Destroy recovers SDK teardown panics itself
		widget.Destroy()
	}
}

// resolveCenter implements the initial-center priority: selected point, then
// the preferred center unless the device says we are somewhere else entirely,
// then the device location, then the fallback city center.
func (p *Picker) resolveCenter(ctx context.Context) geo.Coordinate {
	if sel := p.selectedPoint(); sel != nil && sel.Valid() {
		return *sel
	}

	var device *geo.Coordinate
	if p.cfg.Locator != nil {
		if c, err := p.cfg.Locator.Locate(ctx); err == nil && c.Valid() {
			device = &c
		}
	}

	if p.cfg.Preferred != nil && p.cfg.Preferred.Valid() {
		if device != nil && distanceKM(*device, *p.cfg.Preferred) > p.cfg.Options.PlausibleDistanceKM {
			return *device
		}
		return *p.cfg.Preferred
	}
	if device != nil {
		return *device
	}
	return geo.FallbackCenter()
}

func (p *Picker) selectedPoint() *geo.Coordinate {
	return p.selected
}

func (p *Picker) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Selected returns the current selection, nil when nothing was picked yet.
func (p *Picker) Selected() *geo.Coordinate {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return nil
	}
	c := *p.selected
	return &c
}

// ErrorMessage is non-empty after a failed open, rendered inline by the UI.
func (p *Picker) ErrorMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errMsg
}

func distanceKM(a, b geo.Coordinate) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lon)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lon)
	return la.Distance(lb).Radians() * earthRadiusKM
}
