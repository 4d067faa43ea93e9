package tracking

import (
	"context"
	"sync"
)

const (
	// DefaultSectionThreshold is the visible fraction that counts as a view.
	DefaultSectionThreshold = 0.5
	// CompactSectionThreshold suits short sections that rarely reach half visibility.
	CompactSectionThreshold = 0.3
)

// SectionView emits section_viewed the first time a section becomes visible
// enough, then stops observing.
type SectionView struct {
	tracker   *Tracker
	id        string
	name      string
	threshold float64

	mu       sync.Mutex
	seen     bool
	detached bool
}

// NewSectionView creates an observer for one section. A threshold outside
// (0, 1] falls back to DefaultSectionThreshold.
func NewSectionView(tracker *Tracker, id, name string, threshold float64) *SectionView {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultSectionThreshold
	}

	return &SectionView{
		tracker:   tracker,
		id:        id,
		name:      name,
		threshold: threshold,
	}
}

// Observe feeds an intersection ratio and reports whether it produced the view event.
func (s *SectionView) Observe(ctx context.Context, ratio float64) bool {
	s.mu.Lock()
	if s.detached || ratio < s.threshold {
		s.mu.Unlock()

		return false
	}

	s.seen = true
	s.detached = true
	s.mu.Unlock()

	s.tracker.TrackSectionView(ctx, s.id, s.name)

	return true
}

// Seen reports whether the view event has fired.
func (s *SectionView) Seen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.seen
}

// Threshold returns the visibility fraction this observer fires at.
func (s *SectionView) Threshold() float64 {
	return s.threshold
}

// Dispose stops observing without emitting.
func (s *SectionView) Dispose() {
	s.mu.Lock()
	s.detached = true
	s.mu.Unlock()
}
