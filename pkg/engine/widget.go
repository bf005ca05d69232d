package engine

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/routeview/mapkit/pkg/concurrent"
	"github.com/routeview/mapkit/pkg/geo"
	"go.uber.org/zap"
)

const (
	prefetchWorkers = 4
	maxPrefetchTile = 512
)

// Widget is the shared map widget both engines hand out. One widget per
// owning component; never shared, never reused after Destroy.
type Widget struct {
	handle    *Handle
	container Container
	log       *zap.Logger
	apiKey    string

	mu        sync.Mutex
	center    geo.Coordinate
	zoom      float64
	width     int
	height    int
	markers   []*widgetMarker
	lines     []*widgetPolyline
	tileURLs  map[string]string
	destroyed bool

	clicks chan geo.Coordinate
}

func NewWidget(handle *Handle, container Container, opts MapOptions, log *zap.Logger) *Widget {
	w, h := container.Size()

	widget := &Widget{
		handle:    handle,
		container: container,
		log:       log,
		apiKey:    opts.APIKey,
		center:    geo.NormalizePoint(opts.Center),
		zoom:      clampZoom(opts.Zoom, handle),
		width:     w,
		height:    h,
		tileURLs:  make(map[string]string),
		clicks:    make(chan geo.Coordinate, 8),
	}
	widget.prefetchTiles()
	return widget
}

func clampZoom(zoom float64, h *Handle) float64 {
	if h.MaxZoom > 0 {
		zoom = math.Min(zoom, h.MaxZoom)
	}
	return math.Max(zoom, h.MinZoom)
}

func (w *Widget) PlaceMarker(c geo.Coordinate, opts MarkerOptions) Marker {
	m := &widgetMarker{pos: geo.NormalizePoint(c), label: opts.Label}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.markers = append(w.markers, m)
	return m
}

func (w *Widget) DrawPolyline(path []geo.Coordinate, style LineStyle) Polyline {
	line := &widgetPolyline{style: style}
	line.SetPath(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.lines = append(w.lines, line)
	return line
}

func (w *Widget) SetView(center geo.Coordinate, zoom float64) {
	w.mu.Lock()
	w.center = geo.NormalizePoint(center)
	w.zoom = clampZoom(zoom, w.handle)
	w.mu.Unlock()

	w.prefetchTiles()
}

func (w *Widget) FitBounds(b geo.Bounds, padding int) {
	w.mu.Lock()
	width, height := w.width, w.height
	w.mu.Unlock()

	zoom := geo.ZoomForBounds(b, width, height, padding)
	w.SetView(b.Center(), math.Floor(zoom))
}

func (w *Widget) Center() geo.Coordinate {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.center
}

func (w *Widget) Zoom() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.zoom
}

func (w *Widget) InvalidateSize() {
	width, height := w.container.Size()

	w.mu.Lock()
	changed := width != w.width || height != w.height
	w.width, w.height = width, height
	w.mu.Unlock()

	if changed {
		w.prefetchTiles()
	}
}

func (w *Widget) HandleResize(width, height int) {
	w.InvalidateSize()
}

func (w *Widget) HandleClick(x, y int) {
	c := w.Unproject(float64(x), float64(y))

	// send under the lock so Destroy cannot close the channel mid-send
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.destroyed {
		return
	}

	select {
	case w.clicks <- c:
	default:
		// slow consumer, drop the click
	}
}

func (w *Widget) Clicks() <-chan geo.Coordinate {
	return w.clicks
}

// Project converts a coordinate to container pixel space relative to the
// current view.
func (w *Widget) Project(c geo.Coordinate) (float64, float64) {
	w.mu.Lock()
	center, zoom, width, height := w.center, w.zoom, w.width, w.height
	w.mu.Unlock()

	cx, cy := geo.ProjectPixel(center, zoom)
	px, py := geo.ProjectPixel(c, zoom)
	return px - cx + float64(width)/2, py - cy + float64(height)/2
}

func (w *Widget) Unproject(x, y float64) geo.Coordinate {
	w.mu.Lock()
	center, zoom, width, height := w.center, w.zoom, w.width, w.height
	w.mu.Unlock()

	cx, cy := geo.ProjectPixel(center, zoom)
	return geo.UnprojectPixel(cx+x-float64(width)/2, cy+y-float64(height)/2, zoom)
}

// Destroy tears the widget down. Idempotent; a panic out of teardown is
// recovered and logged because it happens where no caller can act on it.
func (w *Widget) Destroy() {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("map widget teardown panicked", zap.Any("panic", r))
		}
	}()

	w.mu.Lock()
	if w.destroyed {
		w.mu.Unlock()
		return
	}
	w.destroyed = true
	w.markers = nil
	w.lines = nil
	w.tileURLs = nil
	close(w.clicks)
	w.mu.Unlock()
}

type tileCoord struct {
	x, y, z int
}

// prefetchTiles resolves the tile URLs covering the current viewport through
// a worker pool, warming the widget's tile cache.
func (w *Widget) prefetchTiles() {
	w.mu.Lock()
	if w.destroyed || w.width <= 0 || w.height <= 0 {
		w.mu.Unlock()
		return
	}
	center, zoom, width, height := w.center, w.zoom, w.width, w.height
	w.mu.Unlock()

	tiles := visibleTiles(center, zoom, width, height)
	if len(tiles) == 0 || len(tiles) > maxPrefetchTile {
		return
	}

	pool := concurrent.NewWorkerPool[tileCoord, [2]string](prefetchWorkers, len(tiles))
	pool.Start(func(t tileCoord) [2]string {
		return [2]string{tileKey(t), w.resolveTileURL(t)}
	})
	for _, t := range tiles {
		pool.AddJob(t)
	}
	pool.Close()
	pool.Wait()

	resolved := make(map[string]string, len(tiles))
	for kv := range pool.CollectResults() {
		resolved[kv[0]] = kv[1]
	}

	w.mu.Lock()
	if !w.destroyed {
		w.tileURLs = resolved
	}
	w.mu.Unlock()
}

// TileURLs returns a snapshot of the resolved tiles for the current view.
func (w *Widget) TileURLs() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[string]string, len(w.tileURLs))
	for k, v := range w.tileURLs {
		out[k] = v
	}
	return out
}

func (w *Widget) resolveTileURL(t tileCoord) string {
	url := w.handle.TileURL
	url = strings.ReplaceAll(url, "{z}", strconv.Itoa(t.z))
	url = strings.ReplaceAll(url, "{x}", strconv.Itoa(t.x))
	url = strings.ReplaceAll(url, "{y}", strconv.Itoa(t.y))
	url = strings.ReplaceAll(url, "{key}", w.apiKey)
	return url
}

func tileKey(t tileCoord) string {
	return strconv.Itoa(t.z) + "/" + strconv.Itoa(t.x) + "/" + strconv.Itoa(t.y)
}

func visibleTiles(center geo.Coordinate, zoom float64, width, height int) []tileCoord {
	z := int(math.Floor(zoom))
	n := int(math.Exp2(float64(z)))

	cx, cy := geo.ProjectPixel(center, float64(z))
	minTileX := int(math.Floor((cx - float64(width)/2) / geo.TileSize))
	maxTileX := int(math.Floor((cx + float64(width)/2) / geo.TileSize))
	minTileY := int(math.Floor((cy - float64(height)/2) / geo.TileSize))
	maxTileY := int(math.Floor((cy + float64(height)/2) / geo.TileSize))

	var tiles []tileCoord
	for x := minTileX; x <= maxTileX; x++ {
		for y := maxInt(0, minTileY); y <= minInt(n-1, maxTileY); y++ {
			// wrap x across the antimeridian
			wrapped := ((x % n) + n) % n
			tiles = append(tiles, tileCoord{x: wrapped, y: y, z: z})
		}
	}
	return tiles
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
