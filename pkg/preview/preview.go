// Package preview is the persistent route-preview component: two endpoint
// markers and the route polyline, fitted to the path bounds and kept in sync
// with prop changes without recreating the widget.
package preview

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/routeview/mapkit/pkg/engine"
	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/geometry"
	"github.com/routeview/mapkit/pkg/overlay"
	"github.com/routeview/mapkit/pkg/routingclient"
	"github.com/routeview/mapkit/pkg/viewport"
)

type State uint8

const (
	StateUnmounted State = iota
	StateLoadingEngine
	StateCreatingWidget
	StateReady
	StateDestroyed
)

const (
	fitPadding   = 24
	fallbackZoom = 13.0
)

type Options struct {
	Size             viewport.SizeOptions
	InvalidateDelays []time.Duration
}

// Props are the three inputs the panel renders. Geometry stays raw; the
// normalizer sorts out its wire format.
type Props struct {
	From     geo.Coordinate
	To       geo.Coordinate
	Geometry interface{}
}

// PropsFromRoute builds Props out of a preview response, preferring the
// already-ordered geometry_latlon payload when the backend sent one.
func PropsFromRoute(rp *routingclient.RoutePreview) Props {
	p := Props{
		From: rp.FromPoint,
		To:   rp.ToPoint,
	}
	if len(rp.GeometryLatLon) >= 2 {
		p.Geometry = latLonTagged(rp.GeometryLatLon)
	} else {
		p.Geometry = rp.RawGeometry()
	}
	return p
}

// latLonTagged marks a pair array as already (lat, lon) ordered, so Update
// can route it through the order-preserving normalizer.
type latLonTagged [][]float64

type Preview struct {
	eng       engine.Engine
	container engine.Container
	opts      Options
	log       *zap.Logger

	mu          sync.Mutex
	state       State
	widget      engine.Map
	startMarker engine.Marker
	endMarker   engine.Marker
	line        engine.Polyline
	obs         *viewport.Observer
	cancel      context.CancelFunc
	props       Props
	hasProps    bool
	errMsg      string
}

func New(eng engine.Engine, container engine.Container, opts Options, log *zap.Logger) *Preview {
	return &Preview{
		eng:       eng,
		container: container,
		opts:      opts,
		log:       log,
	}
}

// Mount starts the widget lifecycle. Initialization is asynchronous and
// strictly sequential: engine load, container size, widget, overlays.
func (pv *Preview) Mount(ctx context.Context) {
	pv.mu.Lock()
	if pv.state != StateUnmounted {
		pv.mu.Unlock()
		return
	}
	pv.state = StateLoadingEngine
	mountCtx, cancel := context.WithCancel(ctx)
	pv.cancel = cancel
	pv.mu.Unlock()

	go pv.initialize(mountCtx)
}

func (pv *Preview) initialize(ctx context.Context) {
	if !viewport.WaitForContainerSize(ctx, pv.container, pv.opts.Size) {
		if ctx.Err() != nil {
			return
		}
		pv.log.Warn("preview container has no size, proceeding anyway")
	}

	pv.mu.Lock()
	if pv.state != StateLoadingEngine {
		pv.mu.Unlock()
		return
	}
	pv.state = StateCreatingWidget
	from := pv.props.From
	pv.mu.Unlock()

	widget, err := pv.eng.CreateMap(ctx, pv.container, engine.MapOptions{
		Center:           geo.NormalizePoint(from),
		Zoom:             fallbackZoom,
		InvalidateDelays: pv.opts.InvalidateDelays,
	})
	if err != nil {
		pv.log.Error("preview engine load failed", zap.Error(err))
		pv.mu.Lock()
		pv.state = StateUnmounted
		pv.errMsg = "unable to load map"
		pv.cancel = nil
		pv.mu.Unlock()
		return
	}
	if ctx.Err() != nil {
		widget.Destroy()
		return
	}

	viewport.ScheduleInvalidate(ctx, widget, pv.opts.InvalidateDelays)
	obs := viewport.Observe(pv.container,
		func(w, h int) {
			widget.HandleResize(w, h)
			viewport.ScheduleInvalidate(ctx, widget, pv.opts.InvalidateDelays)
		},
		nil,
		pv.log)

	pv.mu.Lock()
	if ctx.Err() != nil || pv.state != StateCreatingWidget {
		pv.mu.Unlock()
		obs.Disconnect()
		widget.Destroy()
		return
	}
	pv.widget = widget
	pv.obs = obs
	pv.state = StateReady
	apply := pv.hasProps
	pv.mu.Unlock()

	if apply {
		pv.applyProps()
	}
}

// Update sets new props. Applied immediately when the widget exists; before
// that it only records them, the mount path applies the latest props once
// ready. Never recreates the widget.
func (pv *Preview) Update(props Props) {
	pv.mu.Lock()
	pv.props = props
	pv.hasProps = true
	ready := pv.state == StateReady
	pv.mu.Unlock()

	if ready {
		pv.applyProps()
	}
}

func (pv *Preview) applyProps() {
	pv.mu.Lock()
	widget := pv.widget
	props := pv.props
	if widget == nil {
		pv.mu.Unlock()
		return
	}
	pv.mu.Unlock()

	from := geo.NormalizePoint(props.From)
	to := geo.NormalizePoint(props.To)

	var path []geo.Coordinate
	if tagged, ok := props.Geometry.(latLonTagged); ok {
		path = geometry.NormalizeLatLonLineGeometry([][]float64(tagged), from, to)
	} else {
		path = geometry.NormalizeLineGeometry(props.Geometry, from, to)
	}

	pv.mu.Lock()
	line := pv.line
	start := pv.startMarker
	end := pv.endMarker
	pv.mu.Unlock()

	newLine, err := overlay.DrawRoute(overlay.RouteParams{Path: path, Map: widget, Existing: line})
	if err != nil {
		pv.log.Error("drawing route failed", zap.Error(err))
		return
	}

	if start == nil {
		start = widget.PlaceMarker(from, engine.MarkerOptions{Label: "start"})
	} else {
		start.SetPosition(from)
	}
	if end == nil {
		end = widget.PlaceMarker(to, engine.MarkerOptions{Label: "end"})
	} else {
		end.SetPosition(to)
	}

	pv.fitToPath(widget, path, from)

	pv.log.Debug("preview updated",
		zap.Int("points", len(path)),
		zap.String("polyline", overlay.EncodePath(path)))

	pv.mu.Lock()
	pv.line = newLine
	pv.startMarker = start
	pv.endMarker = end
	pv.mu.Unlock()
}

func (pv *Preview) fitToPath(widget engine.Map, path []geo.Coordinate, from geo.Coordinate) {
	b, ok := geo.CalcBounds(path)
	if !ok || b.IsPoint() {
		widget.SetView(from, fallbackZoom)
		return
	}
	widget.FitBounds(b, fitPadding)
}

// Unmount destroys the widget unconditionally, from any state. Teardown
// steps are individually guarded.
func (pv *Preview) Unmount() {
	pv.mu.Lock()
	cancel := pv.cancel
	obs := pv.obs
	widget := pv.widget
	pv.cancel = nil
	pv.obs = nil
	pv.widget = nil
	pv.line = nil
	pv.startMarker = nil
	pv.endMarker = nil
	pv.state = StateDestroyed
	pv.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if obs != nil {
		obs.Disconnect()
	}
	if widget != nil {
		widget.Destroy()
	}
}

func (pv *Preview) State() State {
	pv.mu.Lock()
	defer pv.mu.Unlock()
	return pv.state
}

func (pv *Preview) ErrorMessage() string {
	pv.mu.Lock()
	defer pv.mu.Unlock()
	return pv.errMsg
}

// Line exposes the current route overlay for tests and debug tooling.
func (pv *Preview) Line() engine.Polyline {
	pv.mu.Lock()
	defer pv.mu.Unlock()
	return pv.line
}
