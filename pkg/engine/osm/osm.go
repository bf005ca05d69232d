// Package osm is the freely usable engine: no api key, manifest served from a
// bundled asset first and public tile CDNs as fallback.
package osm

import (
	"context"

	"github.com/routeview/mapkit/pkg/engine"
	"go.uber.org/zap"
)

func DefaultSources() []engine.Source {
	return []engine.Source{
		{Name: "bundled", Location: "./assets/osm-engine.json"},
		{Name: "cdn-primary", Location: "https://tiles.routeview.dev/engine/osm.json"},
		{Name: "cdn-fallback", Location: "https://cdn.jsdelivr.net/gh/routeview/engine-assets/osm.json"},
	}
}

type Engine struct {
	loader *engine.Loader
	log    *zap.Logger
}

func New(log *zap.Logger, sources []engine.Source, opts engine.LoaderOptions) *Engine {
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	return &Engine{
		// osm tiles are usable as soon as the manifest resolves, no ready
		// handshake needed
		loader: engine.NewLoader(engine.ProviderOSM, sources, nil, opts, log),
		log:    log,
	}
}

func (e *Engine) Provider() engine.Provider {
	return engine.ProviderOSM
}

func (e *Engine) Load(ctx context.Context) (*engine.Handle, error) {
	return e.loader.Load(ctx)
}

func (e *Engine) CreateMap(ctx context.Context, container engine.Container, opts engine.MapOptions) (engine.Map, error) {
	h, err := e.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return engine.NewWidget(h, container, opts, e.log), nil
}
