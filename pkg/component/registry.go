// Package component dispatches provider-agnostic map components. Callers
// pick a provider tag; everything engine-specific stays behind the engine
// interfaces.
package component

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/routeview/mapkit/pkg/engine"
	"github.com/routeview/mapkit/pkg/engine/osm"
	"github.com/routeview/mapkit/pkg/engine/vendormaps"
	"github.com/routeview/mapkit/pkg/picker"
	"github.com/routeview/mapkit/pkg/preview"
	"github.com/routeview/mapkit/pkg/util"
)

type Deps struct {
	Log *zap.Logger
	// Keys backs the vendor engine's runtime api key. Usually the routing
	// client.
	Keys vendormaps.KeyFetcher

	// optional source overrides, engine defaults apply when empty
	OSMSources    []engine.Source
	VendorSources []engine.Source
	LoaderOptions engine.LoaderOptions
}

// Registry owns one engine instance per provider for the whole application,
// so the expensive load happens once and is shared everywhere. Injected into
// components instead of living in module globals.
type Registry struct {
	deps Deps

	mu      sync.Mutex
	engines map[engine.Provider]engine.Engine
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:    deps,
		engines: make(map[engine.Provider]engine.Engine),
	}
}

// Engine returns the provider's engine, constructing it on first use.
func (r *Registry) Engine(p engine.Provider) (engine.Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if eng, ok := r.engines[p]; ok {
		return eng, nil
	}

	var eng engine.Engine
	switch p {
	case engine.ProviderOSM:
		eng = osm.New(r.deps.Log, r.deps.OSMSources, r.deps.LoaderOptions)
	case engine.ProviderVendor:
		eng = vendormaps.New(r.deps.Log, r.deps.Keys, r.deps.VendorSources, r.deps.LoaderOptions)
	default:
		return nil, util.WrapErrorf(fmt.Errorf("provider %q", p), util.ErrBadParamInput,
			"unknown map provider")
	}
	r.engines[p] = eng
	return eng, nil
}

// EngineFor builds a one-off engine for the provider. Most callers want a
// shared Registry so the load happens once.
func EngineFor(p engine.Provider, deps Deps) (engine.Engine, error) {
	return NewRegistry(deps).Engine(p)
}

// NewPicker builds a point picker backed by the given provider.
func (r *Registry) NewPicker(p engine.Provider, container engine.Container, cfg picker.Config) (*picker.Picker, error) {
	eng, err := r.Engine(p)
	if err != nil {
		return nil, err
	}
	return picker.New(eng, container, cfg, r.deps.Log), nil
}

// NewPreview builds a route preview panel backed by the given provider.
func (r *Registry) NewPreview(p engine.Provider, container engine.Container, opts preview.Options) (*preview.Preview, error) {
	eng, err := r.Engine(p)
	if err != nil {
		return nil, err
	}
	return preview.New(eng, container, opts, r.deps.Log), nil
}
