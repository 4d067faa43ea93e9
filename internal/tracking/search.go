package tracking

import (
	"context"
	"sync"
	"time"
)

// DefaultSearchDebounce is the quiet period before a search is reported.
const DefaultSearchDebounce = 500 * time.Millisecond

// Timer is the part of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SearchOption configures a SearchTracker.
type SearchOption func(*SearchTracker)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) SearchOption {
	return func(s *SearchTracker) { s.debounce = d }
}

// WithAfterFunc replaces the timer source, mostly for tests.
func WithAfterFunc(after AfterFunc) SearchOption {
	return func(s *SearchTracker) { s.afterFunc = after }
}

// SearchTracker reports a search only after the query has been stable for the
// debounce window. Each update cancels the previous pending report.
type SearchTracker struct {
	tracker   *Tracker
	debounce  time.Duration
	afterFunc AfterFunc

	mu       sync.Mutex
	pending  Timer
	gen      uint64
	disposed bool
}

func NewSearchTracker(tracker *Tracker, opts ...SearchOption) *SearchTracker {
	s := &SearchTracker{
		tracker:   tracker,
		debounce:  DefaultSearchDebounce,
		afterFunc: stdAfterFunc,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Update replaces any pending report. An empty query only cancels.
// The report outlives ctx's cancellation but keeps its values.
func (s *SearchTracker) Update(ctx context.Context, query string, resultCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}

	s.stopLocked()

	if query == "" {
		return
	}

	gen := s.gen
	ctx = context.WithoutCancel(ctx)

	s.pending = s.afterFunc(s.debounce, func() {
		s.mu.Lock()
		// A Stop that lost the race with the timer still bumped gen.
		stale := s.disposed || gen != s.gen
		if !stale {
			s.pending = nil
		}
		s.mu.Unlock()

		if stale {
			return
		}

		s.tracker.TrackSearch(ctx, query, resultCount)
	})
}

// Pending reports whether a search report is scheduled.
func (s *SearchTracker) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending != nil
}

// Dispose cancels any pending report; later updates are ignored.
func (s *SearchTracker) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.disposed = true
}

func (s *SearchTracker) stopLocked() {
	s.gen++

	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}
