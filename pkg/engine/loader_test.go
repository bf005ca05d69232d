package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/routeview/mapkit/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestJSON = `{"tile_url":"https://tile.test/{z}/{x}/{y}.png","attribution":"test","min_zoom":1,"max_zoom":19}`

func TestLoaderConcurrentCallersShareOneFetch(t *testing.T) {
	var hits int32
	// hold every request until all callers are in flight, so the second
	// caller arrives before the first resolves
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		w.Write([]byte(manifestJSON))
	}))
	defer srv.Close()

	l := NewLoader(ProviderOSM, []Source{{Name: "cdn", Location: srv.URL}}, nil, LoaderOptions{}, logger.NewNop())

	var wg sync.WaitGroup
	results := make([]*Handle, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = l.Load(context.Background())
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "concurrent loads must share one fetch")
	assert.Same(t, results[0], results[1])
}

func TestLoaderFallsBackAcrossSources(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(manifestJSON))
	}))
	defer good.Close()

	l := NewLoader(ProviderOSM, []Source{
		{Name: "bad", Location: bad.URL},
		{Name: "good", Location: good.URL},
	}, nil, LoaderOptions{}, logger.NewNop())

	h, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://tile.test/{z}/{x}/{y}.png", h.TileURL)
	assert.Equal(t, ProviderOSM, h.Provider)
}

func TestLoaderRetriesAfterTotalFailure(t *testing.T) {
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(manifestJSON))
	}))
	defer srv.Close()

	l := NewLoader(ProviderOSM, []Source{{Name: "cdn", Location: srv.URL}}, nil, LoaderOptions{}, logger.NewNop())

	_, err := l.Load(context.Background())
	require.Error(t, err, "first load must fail")

	// failure must not be cached: a later call retries from scratch
	healthy.Store(true)
	h, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestLoaderReadyHandshakeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(manifestJSON))
	}))
	defer srv.Close()

	ready := func(ctx context.Context, h *Handle) error {
		return ErrMissingAPIKey
	}
	l := NewLoader(ProviderVendor, []Source{{Name: "cdn", Location: srv.URL}}, ready, LoaderOptions{}, logger.NewNop())

	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoaderNoSources(t *testing.T) {
	l := NewLoader(ProviderOSM, nil, nil, LoaderOptions{}, logger.NewNop())
	_, err := l.Load(context.Background())
	assert.Error(t, err)
}
