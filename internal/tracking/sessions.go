package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultSessionSize = 10_000
	DefaultSessionTTL  = 30 * time.Minute
)

// Page holds the tracking state of one page lifetime.
type Page struct {
	id      string
	tracker *Tracker
	scroll  *ScrollDepth
	search  *SearchTracker

	mu       sync.Mutex
	sections map[string]*SectionView
	disposed bool
}

func newPage(id string, tracker *Tracker, searchOpts ...SearchOption) *Page {
	return &Page{
		id:       id,
		tracker:  tracker,
		scroll:   NewScrollDepth(tracker),
		search:   NewSearchTracker(tracker, searchOpts...),
		sections: make(map[string]*SectionView),
	}
}

func (p *Page) ID() string {
	return p.id
}

// Scroll feeds a scroll position and returns the milestones reached.
func (p *Page) Scroll(ctx context.Context, scrollY, documentHeight, viewportHeight float64) []int {
	if p.isDisposed() {
		return nil
	}

	return p.scroll.Observe(ctx, scrollY, documentHeight, viewportHeight)
}

// Intersect feeds a visibility ratio for a section. The section observer is
// created on first sight with the given threshold (zero means default).
func (p *Page) Intersect(ctx context.Context, sectionID, sectionName string, ratio, threshold float64) bool {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()

		return false
	}

	view, ok := p.sections[sectionID]
	if !ok {
		view = NewSectionView(p.tracker, sectionID, sectionName, threshold)
		p.sections[sectionID] = view
	}
	p.mu.Unlock()

	return view.Observe(ctx, ratio)
}

// Search feeds the current search box state into the debouncer.
func (p *Page) Search(ctx context.Context, query string, resultCount int) {
	p.search.Update(ctx, query, resultCount)
}

// ScrollReported returns the milestones already sent for this page.
func (p *Page) ScrollReported() MilestoneSet {
	return p.scroll.Reported()
}

// Dispose cancels the pending search report and detaches every section observer.
func (p *Page) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()

		return
	}

	p.disposed = true
	sections := p.sections
	p.sections = nil
	p.mu.Unlock()

	p.search.Dispose()

	for _, view := range sections {
		view.Dispose()
	}
}

func (p *Page) isDisposed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.disposed
}

// Sessions keeps live pages in a bounded, expiring cache. Pages that fall out
// of the cache are disposed.
type Sessions struct {
	tracker    *Tracker
	searchOpts []SearchOption
	pages      *expirable.LRU[string, *Page]
	mu         sync.Mutex
}

// NewSessions creates a page cache. Non-positive size or ttl use the defaults.
func NewSessions(tracker *Tracker, size int, ttl time.Duration, searchOpts ...SearchOption) *Sessions {
	if size <= 0 {
		size = DefaultSessionSize
	}

	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &Sessions{
		tracker:    tracker,
		searchOpts: searchOpts,
		pages: expirable.NewLRU(size, func(_ string, p *Page) {
			p.Dispose()
		}, ttl),
	}
}

// Page returns the live page for id, starting a new lifetime if none exists.
// Every call restarts the page's idle ttl.
func (s *Sessions) Page(id string) *Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pages.Get(id); ok {
		// Add restarts the entry's ttl.
		s.pages.Add(id, p)

		return p
	}

	// Evicts an expired entry that Get no longer returns, so it is disposed.
	s.pages.Remove(id)

	p := newPage(id, s.tracker, s.searchOpts...)
	s.pages.Add(id, p)

	return p
}

// End disposes the page and forgets it. Unknown ids are ignored.
func (s *Sessions) End(id string) {
	s.pages.Remove(id)
}

// Len returns the number of cached pages.
func (s *Sessions) Len() int {
	return s.pages.Len()
}

// Shutdown disposes every live page.
func (s *Sessions) Shutdown() error {
	s.pages.Purge()

	return nil
}
