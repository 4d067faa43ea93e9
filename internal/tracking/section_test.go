package tracking_test

import (
	"context"
	"sync"
	"testing"

	"github.com/serroba/launch-site-go/internal/tracking"
	"github.com/stretchr/testify/assert"
)

func TestSectionView_Observe(t *testing.T) {
	t.Run("fires once when the threshold is reached", func(t *testing.T) {
		sink := &recordingSink{}
		view := tracking.NewSectionView(newTestTracker(sink), "hero", "Hero", tracking.DefaultSectionThreshold)
		ctx := context.Background()

		assert.False(t, view.Observe(ctx, 0.2))
		assert.False(t, view.Seen())
		assert.True(t, view.Observe(ctx, 0.5))
		assert.False(t, view.Observe(ctx, 0.9), "seen is terminal")
		assert.False(t, view.Observe(ctx, 0.1))

		assert.True(t, view.Seen())
		assert.Equal(t, []string{"section_viewed"}, sink.Names())
		assert.Equal(t, "hero", sink.Events()[0].Properties["section_id"])
	})

	t.Run("compact threshold fires earlier", func(t *testing.T) {
		sink := &recordingSink{}
		view := tracking.NewSectionView(newTestTracker(sink), "faq", "FAQ", tracking.CompactSectionThreshold)

		assert.True(t, view.Observe(context.Background(), 0.3))
		assert.Len(t, sink.Events(), 1)
	})

	t.Run("invalid threshold uses the default", func(t *testing.T) {
		view := tracking.NewSectionView(newTestTracker(&recordingSink{}), "a", "A", 0)

		assert.InDelta(t, tracking.DefaultSectionThreshold, view.Threshold(), 0)
	})

	t.Run("dispose detaches without emitting", func(t *testing.T) {
		sink := &recordingSink{}
		view := tracking.NewSectionView(newTestTracker(sink), "hero", "Hero", 0.5)

		view.Dispose()

		assert.False(t, view.Observe(context.Background(), 1))
		assert.False(t, view.Seen())
		assert.Empty(t, sink.Events())
	})

	t.Run("concurrent observations emit once", func(t *testing.T) {
		sink := &recordingSink{}
		view := tracking.NewSectionView(newTestTracker(sink), "hero", "Hero", 0.5)

		var wg sync.WaitGroup
		for range 20 {
			wg.Go(func() { view.Observe(context.Background(), 0.8) })
		}

		wg.Wait()

		assert.Len(t, sink.Events(), 1)
	})
}
