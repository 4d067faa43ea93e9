package tracking_test

import (
	"context"
	"testing"

	"github.com/serroba/launch-site-go/internal/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrollPercent(t *testing.T) {
	tests := []struct {
		name               string
		scrollY, doc, view float64
		want               int
		wantOK             bool
	}{
		{name: "top", scrollY: 0, doc: 3000, view: 1000, want: 0, wantOK: true},
		{name: "half", scrollY: 1000, doc: 3000, view: 1000, want: 50, wantOK: true},
		{name: "rounds half up", scrollY: 1, doc: 108, view: 100, want: 13, wantOK: true},
		{name: "rounds up above half", scrollY: 249, doc: 1200, view: 200, want: 25, wantOK: true},
		{name: "rounds down below half", scrollY: 244, doc: 1200, view: 200, want: 24, wantOK: true},
		{name: "bottom", scrollY: 2000, doc: 3000, view: 1000, want: 100, wantOK: true},
		{name: "page shorter than viewport", scrollY: 0, doc: 800, view: 1000, wantOK: false},
		{name: "page equal to viewport", scrollY: 0, doc: 1000, view: 1000, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tracking.ScrollPercent(tt.scrollY, tt.doc, tt.view)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScrollDepth_Observe(t *testing.T) {
	ctx := context.Background()

	t.Run("reports every passed milestone in ascending order", func(t *testing.T) {
		sink := &recordingSink{}
		depth := tracking.NewScrollDepth(newTestTracker(sink))

		fired := depth.Observe(ctx, 1600, 3000, 1000)

		assert.Equal(t, []int{25, 50, 75}, fired)

		events := sink.Events()
		require.Len(t, events, 3)

		for i, want := range []int{25, 50, 75} {
			assert.Equal(t, want, events[i].Properties["depth_percentage"])
		}
	})

	t.Run("each milestone fires at most once", func(t *testing.T) {
		sink := &recordingSink{}
		depth := tracking.NewScrollDepth(newTestTracker(sink))

		depth.Observe(ctx, 500, 3000, 1000)
		depth.Observe(ctx, 1000, 3000, 1000)
		depth.Observe(ctx, 400, 3000, 1000)
		assert.Empty(t, depth.Observe(ctx, 1000, 3000, 1000))
		assert.Equal(t, []int{75, 100}, depth.Observe(ctx, 2000, 3000, 1000), "skipped milestones are caught up")
		assert.Empty(t, depth.Observe(ctx, 2000, 3000, 1000))

		assert.Len(t, sink.Events(), 4)
		assert.Equal(t, []int{25, 50, 75, 100}, depth.Reported().Reported())
	})

	t.Run("below the first milestone reports nothing", func(t *testing.T) {
		depth := tracking.NewScrollDepth(newTestTracker(&recordingSink{}))

		assert.Empty(t, depth.Observe(ctx, 100, 3000, 1000))
		assert.False(t, depth.Reported().Has(25))
	})

	t.Run("unscrollable page is ignored", func(t *testing.T) {
		sink := &recordingSink{}
		depth := tracking.NewScrollDepth(newTestTracker(sink))

		assert.Nil(t, depth.Observe(ctx, 0, 500, 900))
		assert.Empty(t, sink.Events())
	})
}
