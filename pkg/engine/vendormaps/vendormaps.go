// Package vendormaps is the commercial engine variant. Its tiles need a runtime
// api key fetched from the configuration endpoint, and the provider requires
// an explicit ready handshake before it is usable.
package vendormaps

import (
	"context"
	"sync"

	"github.com/routeview/mapkit/pkg/engine"
	"github.com/routeview/mapkit/pkg/util"
	"go.uber.org/zap"
)

func DefaultSources() []engine.Source {
	return []engine.Source{
		{Name: "bundled", Location: "./assets/vendor-engine.json"},
		{Name: "vendor-cdn", Location: "https://sdk.vendormaps.example/v3/engine.json"},
	}
}

// KeyFetcher hands out the runtime api key, typically backed by
// GET /routes/config. Fetched once and memoized here.
type KeyFetcher interface {
	APIKey(ctx context.Context) (string, error)
}

type Engine struct {
	loader *engine.Loader
	keys   KeyFetcher
	log    *zap.Logger

	mu  sync.Mutex
	key string
}

func New(log *zap.Logger, keys KeyFetcher, sources []engine.Source, opts engine.LoaderOptions) *Engine {
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	e := &Engine{
		keys: keys,
		log:  log,
	}
	e.loader = engine.NewLoader(engine.ProviderVendor, sources, e.readyHandshake, opts, log)
	return e
}

func (e *Engine) Provider() engine.Provider {
	return engine.ProviderVendor
}

func (e *Engine) Load(ctx context.Context) (*engine.Handle, error) {
	return e.loader.Load(ctx)
}

func (e *Engine) CreateMap(ctx context.Context, container engine.Container, opts engine.MapOptions) (engine.Map, error) {
	h, err := e.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	key, err := e.apiKey(ctx)
	if err != nil {
		return nil, err
	}
	opts.APIKey = key

	return engine.NewWidget(h, container, opts, e.log), nil
}

// readyHandshake runs once after the manifest loads. The vendor sdk is not
// usable until a key is known, so a missing key fails the load explicitly
// instead of stalling callers forever.
func (e *Engine) readyHandshake(ctx context.Context, h *engine.Handle) error {
	if !h.RequiresKey {
		return nil
	}
	_, err := e.apiKey(ctx)
	return err
}

func (e *Engine) apiKey(ctx context.Context) (string, error) {
	e.mu.Lock()
	if e.key != "" {
		key := e.key
		e.mu.Unlock()
		return key, nil
	}
	e.mu.Unlock()

	if e.keys == nil {
		return "", engine.ErrMissingAPIKey
	}

	key, err := e.keys.APIKey(ctx)
	if err != nil {
		return "", util.WrapErrorf(err, util.ErrUnavailable, "fetching vendor api key")
	}
	if key == "" {
		return "", engine.ErrMissingAPIKey
	}

	e.mu.Lock()
	e.key = key
	e.mu.Unlock()
	return key, nil
}
