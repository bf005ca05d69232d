// Package engine defines the provider-agnostic map rendering capability
// surface. Two interchangeable engines (osm, vendor) load their assets
// differently but hand out the same widget: callers never touch a
// provider-specific API directly.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/routeview/mapkit/pkg/geo"
)

type Provider string

const (
	ProviderOSM    Provider = "osm"
	ProviderVendor Provider = "vendor"
)

var (
	ErrEngineLoad    = errors.New("unable to load map engine")
	ErrMissingAPIKey = errors.New("map engine api key is missing")
	ErrMapDestroyed  = errors.New("map widget already destroyed")
)

type EventKind uint8

const (
	EventResize EventKind = iota
	EventClick
)

// Event is a container-level UI event delivered to whoever observes the
// container. X/Y are container pixel coordinates, Width/Height accompany
// resizes.
type Event struct {
	Kind   EventKind
	X      int
	Y      int
	Width  int
	Height int
}

// Container is a rectangular surface owned by the embedding UI. The SDK never
// creates containers, it only reads their size and observes their events.
type Container interface {
	Size() (width, height int)
	Events() <-chan Event
}

type MarkerOptions struct {
	Label string
}

// Marker is owned by the map widget that placed it. SetPosition mutates the
// marker in place, it is never recreated on prop change.
type Marker interface {
	Position() geo.Coordinate
	SetPosition(c geo.Coordinate)
}

type LineStyle struct {
	Color   string
	Weight  int
	Opacity float64
}

// Polyline is owned by the map widget that drew it. SetPath mutates the
// overlay in place.
type Polyline interface {
	Path() []geo.Coordinate
	SetPath(path []geo.Coordinate)
	Style() LineStyle
}

// Map is the live widget capability surface: one instance per owning
// component, created on mount, destroyed unconditionally on unmount.
type Map interface {
	PlaceMarker(c geo.Coordinate, opts MarkerOptions) Marker
	DrawPolyline(path []geo.Coordinate, style LineStyle) Polyline
	SetView(center geo.Coordinate, zoom float64)
	FitBounds(b geo.Bounds, padding int)
	Center() geo.Coordinate
	Zoom() float64

	// InvalidateSize re-reads the container box. The widget caches pixel
	// dimensions at creation, so this must run after creation and after
	// every container resize.
	InvalidateSize()

	HandleClick(x, y int)
	HandleResize(width, height int)
	Clicks() <-chan geo.Coordinate

	Project(c geo.Coordinate) (x, y float64)
	Unproject(x, y float64) geo.Coordinate

	Destroy()
}

// Engine creates map widgets for one provider. Load is safe to call
// concurrently; all callers share a single in-flight asset load.
type Engine interface {
	Provider() Provider
	Load(ctx context.Context) (*Handle, error)
	CreateMap(ctx context.Context, container Container, opts MapOptions) (Map, error)
}

type MapOptions struct {
	Center geo.Coordinate
	Zoom   float64

	// InvalidateDelays is the redundant invalidation schedule applied after
	// resizes, absorbing layout-transition timing. Nil means the viewport
	// package default.
	InvalidateDelays []time.Duration

	// APIKey is appended to tile URLs by engines whose handle requires it.
	APIKey string
}
