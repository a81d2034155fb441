package catalog

import (
	"context"
	"sync"
)

type Result struct {
	Query    Query
	Products []Product
	Err      error
}

// Searcher runs catalog queries where only the latest one matters. Starting
// a new search cancels the in-flight fetch; a superseded fetch never
// delivers its result or error, even if it resolves later.
type Searcher struct {
	svc *Service

	mu     sync.Mutex
	cancel context.CancelFunc
	seq    uint64

	results chan Result
}

func NewSearcher(svc *Service) *Searcher {
	return &Searcher{svc: svc, results: make(chan Result, 1)}
}

func (s *Searcher) Search(ctx context.Context, q Query) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	cctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	go func() {
		products, err := s.svc.List(cctx, q)

		s.mu.Lock()
		stale := seq != s.seq
		s.mu.Unlock()
		if stale || cctx.Err() != nil {
			return
		}

		// Replace an unread older result instead of blocking behind it.
		select {
		case <-s.results:
		default:
		}
		s.results <- Result{Query: q, Products: products, Err: err}
	}()
}

// Results delivers at most one pending result, always from the latest
// non-cancelled search.
func (s *Searcher) Results() <-chan Result { return s.results }

// Close cancels the in-flight search, if any.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++ // anything still in flight is now stale
}
