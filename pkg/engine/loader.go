package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/routeview/mapkit/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Handle is the resolved engine namespace: everything a widget needs to
// render through this provider. Obtained once per process and shared by all
// components.
type Handle struct {
	Provider    Provider `json:"provider"`
	TileURL     string   `json:"tile_url"`
	StyleURL    string   `json:"style_url"`
	Attribution string   `json:"attribution"`
	MinZoom     float64  `json:"min_zoom"`
	MaxZoom     float64  `json:"max_zoom"`
	RequiresKey bool     `json:"requires_key"`
	Layers      []string `json:"layers"`
}

// Source is one candidate location for the engine asset manifest. Location
// without a URL scheme is read from the local filesystem, so a bundled copy
// can sit ahead of the public CDN in the source list.
type Source struct {
	Name     string
	Location string
}

type LoaderOptions struct {
	// SourceTimeout bounds one source attempt, then the next source is tried.
	SourceTimeout time.Duration
	// ReadyTimeout bounds the provider ready handshake after a successful
	// manifest load.
	ReadyTimeout time.Duration
}

const (
	defaultSourceTimeout = 10 * time.Second
	defaultReadyTimeout  = 8 * time.Second
)

// ReadyFunc is a provider-specific handshake run once after the manifest
// loads, before the handle is published.
type ReadyFunc func(ctx context.Context, h *Handle) error

// Loader resolves a Handle at most once, shared by every concurrent caller.
// A failed load clears the cached state so a later call retries from scratch.
type Loader struct {
	provider Provider
	sources  []Source
	ready    ReadyFunc
	opts     LoaderOptions
	client   *http.Client
	log      *zap.Logger

	sf singleflight.Group

	mu     sync.Mutex
	handle *Handle
}

func NewLoader(provider Provider, sources []Source, ready ReadyFunc, opts LoaderOptions, log *zap.Logger) *Loader {
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = defaultSourceTimeout
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = defaultReadyTimeout
	}
	return &Loader{
		provider: provider,
		sources:  sources,
		ready:    ready,
		opts:     opts,
		client:   &http.Client{},
		log:      log,
	}
}

// Load returns the cached handle or performs the load. Concurrent callers
// before resolution share one underlying attempt.
func (l *Loader) Load(ctx context.Context) (*Handle, error) {
	l.mu.Lock()
	if l.handle != nil {
		h := l.handle
		l.mu.Unlock()
		return h, nil
	}
	l.mu.Unlock()

	v, err, _ := l.sf.Do(string(l.provider), func() (interface{}, error) {
		h, err := l.loadFromSources(ctx)
		if err != nil {
			return nil, err
		}

		if l.ready != nil {
			readyCtx, cancel := context.WithTimeout(ctx, l.opts.ReadyTimeout)
			defer cancel()
			if err := l.ready(readyCtx, h); err != nil {
				return nil, util.WrapErrorf(err, util.ErrUnavailable,
					"engine %s ready handshake failed", l.provider)
			}
		}

		l.mu.Lock()
		l.handle = h
		l.mu.Unlock()
		return h, nil
	})
	if err != nil {
		// nothing cached: the next Load starts over
		return nil, err
	}
	return v.(*Handle), nil
}

// Reset drops the cached handle. Mainly for tests.
func (l *Loader) Reset() {
	l.mu.Lock()
	l.handle = nil
	l.mu.Unlock()
}

func (l *Loader) loadFromSources(ctx context.Context) (*Handle, error) {
	var lastErr error
	for _, src := range l.sources {
		if util.StopConcurrentOperation(ctx) {
			return nil, ctx.Err()
		}

		h, err := l.loadSource(ctx, src)
		if err != nil {
			l.log.Warn("engine source failed, trying next",
				zap.String("provider", string(l.provider)),
				zap.String("source", src.Name),
				zap.Error(err))
			lastErr = err
			continue
		}
		h.Provider = l.provider
		return h, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no sources configured for %s", l.provider)
	}
	return nil, util.WrapErrorf(lastErr, util.ErrUnavailable,
		"all %d engine sources failed for %s", len(l.sources), l.provider)
}

func (l *Loader) loadSource(ctx context.Context, src Source) (*Handle, error) {
	srcCtx, cancel := context.WithTimeout(ctx, l.opts.SourceTimeout)
	defer cancel()

	raw, err := l.fetch(srcCtx, src.Location)
	if err != nil {
		return nil, err
	}

	var h Handle
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("bad engine manifest from %s: %w", src.Name, err)
	}
	if h.TileURL == "" {
		return nil, fmt.Errorf("engine manifest from %s has no tile_url", src.Name)
	}
	return &h, nil
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	if !strings.Contains(location, "://") {
		// locally bundled copy
		return os.ReadFile(location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("engine source responded %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
