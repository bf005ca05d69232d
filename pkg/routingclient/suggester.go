package routingclient

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultDebounce = 240 * time.Millisecond

// SuggestAPI is the slice of Client the suggester needs.
type SuggestAPI interface {
	SuggestLocations(ctx context.Context, query string, limit int) ([]Suggestion, error)
}

// Suggester debounces location autocomplete. Each new keystroke cancels the
// previous in-flight request before its debounce window or network call
// finishes.
type Suggester struct {
	api   SuggestAPI
	delay time.Duration
	log   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func NewSuggester(api SuggestAPI, delay time.Duration, log *zap.Logger) *Suggester {
	if delay <= 0 {
		delay = defaultDebounce
	}
	return &Suggester{
		api:   api,
		delay: delay,
		log:   log,
	}
}

// Query schedules a suggestion lookup. deliver runs on a background goroutine
// once the debounce window passes and the request completes; a superseded or
// stopped query never delivers.
func (s *Suggester) Query(ctx context.Context, query string, limit int, deliver func([]Suggestion, error)) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	queryCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		t := time.NewTimer(s.delay)
		defer t.Stop()

		select {
		case <-queryCtx.Done():
			return
		case <-t.C:
		}

		results, err := s.api.SuggestLocations(queryCtx, query, limit)
		if queryCtx.Err() != nil {
			return
		}
		deliver(results, err)
	}()
}

// Stop cancels any pending query.
func (s *Suggester) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
