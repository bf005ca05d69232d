package engine

import (
	"sync"

	"github.com/routeview/mapkit/pkg/geo"
)

type widgetMarker struct {
	mu    sync.Mutex
	pos   geo.Coordinate
	label string
}

func (m *widgetMarker) Position() geo.Coordinate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos
}

func (m *widgetMarker) SetPosition(c geo.Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = geo.NormalizePoint(c)
}

type widgetPolyline struct {
	mu    sync.Mutex
	path  []geo.Coordinate
	style LineStyle
}

func (l *widgetPolyline) Path() []geo.Coordinate {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]geo.Coordinate, len(l.path))
	copy(out, l.path)
	return out
}

// SetPath replaces the coordinates in place. The overlay object itself is
// reused across prop changes, which avoids redraw flicker.
func (l *widgetPolyline) SetPath(path []geo.Coordinate) {
	cleaned := make([]geo.Coordinate, 0, len(path))
	for _, c := range path {
		cleaned = append(cleaned, geo.NormalizePoint(c))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.path = cleaned
}

func (l *widgetPolyline) Style() LineStyle {
	return l.style
}
