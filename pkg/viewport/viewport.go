// Package viewport owns the timing-sensitive part of widget lifecycle:
// waiting for a container to acquire real size, and re-validating the widget
// viewport after resizes.
package viewport

import (
	"context"
	"sync"
	"time"

	"github.com/routeview/mapkit/pkg/engine"
	"go.uber.org/zap"
)

type SizeOptions struct {
	Timeout   time.Duration
	MinWidth  int
	MinHeight int
	// Interval is the polling cadence, one frame by default.
	Interval time.Duration
}

const (
	defaultSizeTimeout = 3 * time.Second
	defaultMinSize     = 40
	frameInterval      = 16 * time.Millisecond
)

// DefaultInvalidateDelays is the redundant invalidation schedule. Widgets
// cache pixel dimensions at creation, and the surrounding layout may still be
// animating, so invalidation runs at several delays to absorb the variance.
func DefaultInvalidateDelays() []time.Duration {
	return []time.Duration{0, 16 * time.Millisecond, 50 * time.Millisecond,
		250 * time.Millisecond, 700 * time.Millisecond}
}

// WaitForContainerSize polls until the container's box exceeds the minimum or
// the timeout elapses. Returns false on timeout without error: a zero-sized
// container is usually transient and callers proceed anyway.
func WaitForContainerSize(ctx context.Context, c engine.Container, opts SizeOptions) bool {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultSizeTimeout
	}
	if opts.MinWidth <= 0 {
		opts.MinWidth = defaultMinSize
	}
	if opts.MinHeight <= 0 {
		opts.MinHeight = defaultMinSize
	}
	if opts.Interval <= 0 {
		opts.Interval = frameInterval
	}

	deadline := time.Now().Add(opts.Timeout)
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		w, h := c.Size()
		if w >= opts.MinWidth && h >= opts.MinHeight {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

// Invalidator is the widget capability this package needs.
type Invalidator interface {
	InvalidateSize()
}

// ScheduleInvalidate runs InvalidateSize at each delay. Every firing checks
// the context first, so teardown stops the remaining schedule.
func ScheduleInvalidate(ctx context.Context, m Invalidator, delays []time.Duration) {
	if len(delays) == 0 {
		delays = DefaultInvalidateDelays()
	}
	for _, d := range delays {
		if d == 0 {
			m.InvalidateSize()
			continue
		}
		go func(d time.Duration) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
				m.InvalidateSize()
			}
		}(d)
	}
}

// Observer forwards container events to a widget-owning component. One
// observer per component instance; Disconnect is idempotent and must run on
// unmount.
type Observer struct {
	log  *zap.Logger
	stop chan struct{}
	done chan struct{}

	mu          sync.Mutex
	disconnects int
}

// Observe consumes the container event stream, dispatching resizes and
// clicks. Callbacks may be nil.
func Observe(c engine.Container, onResize func(width, height int), onClick func(x, y int), log *zap.Logger) *Observer {
	o := &Observer{
		log:  log,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	go func() {
		defer close(o.done)
		for {
			select {
			case <-o.stop:
				return
			case ev, ok := <-c.Events():
				if !ok {
					return
				}
				switch ev.Kind {
				case engine.EventResize:
					if onResize != nil {
						onResize(ev.Width, ev.Height)
					}
				case engine.EventClick:
					if onClick != nil {
						onClick(ev.X, ev.Y)
					}
				}
			}
		}
	}()
	return o
}

// Disconnect stops event delivery. Safe to call more than once; only the
// first call counts. Does not wait for the dispatch goroutine, which may be
// the very one running the callback that triggered the disconnect.
func (o *Observer) Disconnect() {
	o.mu.Lock()
	defer o.mu.Unlock()

	select {
	case <-o.stop:
		return
	default:
	}

	close(o.stop)
	o.disconnects++
}

// Disconnects reports how many times Disconnect actually ran. Exposed for
// lifecycle tests.
func (o *Observer) Disconnects() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.disconnects
}
