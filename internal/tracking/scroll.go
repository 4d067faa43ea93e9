package tracking

import (
	"context"
	"math"
	"slices"
	"sync"
)

// ScrollMilestones are the depth percentages reported once per page.
var ScrollMilestones = [...]int{25, 50, 75, 100}

// MilestoneSet records which milestones have been reported.
type MilestoneSet uint8

func (m MilestoneSet) Has(milestone int) bool {
	i := slices.Index(ScrollMilestones[:], milestone)

	return i >= 0 && m&(1<<i) != 0
}

func (m *MilestoneSet) add(i int) {
	*m |= 1 << i
}

// Reported lists the recorded milestones in ascending order.
func (m MilestoneSet) Reported() []int {
	var out []int

	for i, v := range ScrollMilestones {
		if m&(1<<i) != 0 {
			out = append(out, v)
		}
	}

	return out
}

// ScrollPercent converts a scroll position into a rounded percentage of the
// scrollable range. ok is false when the page cannot scroll.
func ScrollPercent(scrollY, documentHeight, viewportHeight float64) (percent int, ok bool) {
	scrollable := documentHeight - viewportHeight
	if scrollable <= 0 {
		return 0, false
	}

	// Half-up rounding, matching browsers' Math.round.
	return int(math.Floor(scrollY/scrollable*100 + 0.5)), true
}

// ScrollDepth emits scroll_depth for each milestone the reader passes.
type ScrollDepth struct {
	tracker *Tracker

	mu       sync.Mutex
	reported MilestoneSet
}

func NewScrollDepth(tracker *Tracker) *ScrollDepth {
	return &ScrollDepth{tracker: tracker}
}

// Observe records a scroll position and returns the milestones it newly
// reached, in ascending order. Skipped milestones are reported too.
func (s *ScrollDepth) Observe(ctx context.Context, scrollY, documentHeight, viewportHeight float64) []int {
	percent, ok := ScrollPercent(scrollY, documentHeight, viewportHeight)
	if !ok {
		return nil
	}

	var fired []int

	s.mu.Lock()
	for i, milestone := range ScrollMilestones {
		if percent >= milestone && !s.reported.Has(milestone) {
			s.reported.add(i)
			fired = append(fired, milestone)
		}
	}
	s.mu.Unlock()

	for _, milestone := range fired {
		s.tracker.TrackScrollDepth(ctx, milestone)
	}

	return fired
}

// Reported returns a snapshot of the milestones already sent.
func (s *ScrollDepth) Reported() MilestoneSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reported
}
