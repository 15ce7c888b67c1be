package client

import (
	"context"
	"strings"
	"sync"
	"time"
)

// DefaultSearchDebounce is how long input must pause before a lookup fires.
const DefaultSearchDebounce = 500 * time.Millisecond

// SearchFunc issues one lookup. The context is cancelled when the query
// changes or the searcher closes.
type SearchFunc func(ctx context.Context, query string) ([]User, error)

// Searcher debounces queries and guards against stale responses with a
// generation counter: every SetQuery bumps the generation, and a lookup's
// result is only installed if its generation is still current. An older
// request resolving after a newer one can therefore never overwrite
// fresher results.
type Searcher struct {
	search   SearchFunc
	debounce time.Duration

	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	results []User
	closed  bool
}

func NewSearcher(search SearchFunc, debounce time.Duration) *Searcher {
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}
	return &Searcher{search: search, debounce: debounce}
}

// SetQuery restarts the debounce window. An empty query clears results
// immediately and issues no lookup.
func (s *Searcher) SetQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.gen++
	s.stopLocked()
	if strings.TrimSpace(query) == "" {
		s.results = nil
		return
	}
	gen := s.gen
	s.timer = time.AfterFunc(s.debounce, func() { s.run(gen, query) })
}

func (s *Searcher) run(gen uint64, query string) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	results, err := s.search(ctx, query)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		// A newer query superseded this lookup while it was in flight.
		return
	}
	s.cancel = nil
	if err != nil {
		// Terminal for this lookup; the user retries by typing again.
		return
	}
	s.results = results
}

// Results returns the results of the most recent completed lookup.
func (s *Searcher) Results() []User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]User, len(s.results))
	copy(out, s.results)
	return out
}

// Close abandons the pending window and any in-flight lookup. No state
// changes after Close returns.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	s.stopLocked()
	s.results = nil
}

func (s *Searcher) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
