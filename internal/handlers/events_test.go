package handlers_test

import (
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/serroba/launch-site-go/internal/handlers"
	"github.com/serroba/launch-site-go/internal/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type eventsFixture struct {
	api      humatest.TestAPI
	sink     *recordingSink
	timers   *heldTimers
	sessions *tracking.Sessions
}

func newEventsFixture(t *testing.T) *eventsFixture {
	t.Helper()

	sink := &recordingSink{}
	timers := &heldTimers{}
	tracker := newTestTracker(sink)
	sessions := tracking.NewSessions(tracker, 0, 0, tracking.WithAfterFunc(timers.AfterFunc))

	t.Cleanup(func() { _ = sessions.Shutdown() })

	api := newTestAPI(t)
	handlers.RegisterEventRoutes(api, handlers.NewEventsHandler(tracker, sessions, zap.NewNop()))

	return &eventsFixture{api: api, sink: sink, timers: timers, sessions: sessions}
}

func TestEventsHandler_Collect(t *testing.T) {
	t.Run("tracks named events with page properties", func(t *testing.T) {
		f := newEventsFixture(t)
		distinctID := gofakeit.UUID()

		resp := f.api.Post("/api/events", map[string]any{
			"pageId":     "page-1",
			"distinctId": distinctID,
			"pagePath":   "/troubleshooting",
			"events": []map[string]any{
				{"name": "video_clicked", "properties": map[string]any{"video_id": "sr6BEY5HmHc"}},
			},
		})

		require.Equal(t, http.StatusAccepted, resp.Code)
		assert.InDelta(t, 1, decode[map[string]any](t, resp.Body.Bytes())["accepted"], 0)

		events := f.sink.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "video_clicked", events[0].Name)
		assert.Equal(t, distinctID, events[0].DistinctID)
		assert.Equal(t, "sr6BEY5HmHc", events[0].Properties["video_id"])
		assert.Equal(t, "/troubleshooting", events[0].Properties["page_path"])
		assert.Equal(t, "page-1", events[0].Properties["page_id"])
	})

	t.Run("signals drive the page state machines", func(t *testing.T) {
		f := newEventsFixture(t)

		resp := f.api.Post("/api/events", map[string]any{
			"pageId":   "page-2",
			"pagePath": "/",
			"signals": []map[string]any{
				{"type": "scroll", "scrollY": 1000, "documentHeight": 3000, "viewportHeight": 1000},
				{"type": "intersection", "sectionId": "specs", "sectionName": "Specs", "ratio": 0.7},
				{"type": "intersection", "sectionId": "specs", "sectionName": "Specs", "ratio": 0.9},
				{"type": "search", "query": "firmware", "resultCount": 2},
				{"type": "click", "target": map[string]any{"tag": "BUTTON", "text": "  Buy now  "}},
			},
		})

		require.Equal(t, http.StatusAccepted, resp.Code)
		f.timers.Fire()

		assert.Equal(t, []string{
			tracking.EventScrollDepth,
			tracking.EventScrollDepth,
			tracking.EventSectionViewed,
			tracking.EventClick,
			tracking.EventSearch,
		}, f.sink.Names())

		click := f.sink.Events()[3]
		assert.Equal(t, "button", click.Properties["element_tag"])
		assert.Equal(t, "Buy now", click.Properties["element_text"])
		assert.Equal(t, "/", click.Properties["page_path"])
	})

	t.Run("milestones are not repeated across beacons", func(t *testing.T) {
		f := newEventsFixture(t)
		scroll := map[string]any{"type": "scroll", "scrollY": 2000, "documentHeight": 3000, "viewportHeight": 1000}

		for range 2 {
			resp := f.api.Post("/api/events", map[string]any{"pageId": "page-3", "signals": []any{scroll}})
			require.Equal(t, http.StatusAccepted, resp.Code)
		}

		assert.Len(t, f.sink.Events(), 4)
	})

	t.Run("pagehide ends the page and drops a pending search", func(t *testing.T) {
		f := newEventsFixture(t)

		resp := f.api.Post("/api/events", map[string]any{
			"pageId": "page-4",
			"signals": []map[string]any{
				{"type": "search", "query": "charging", "resultCount": 1},
				{"type": "pagehide"},
			},
		})

		require.Equal(t, http.StatusAccepted, resp.Code)
		f.timers.Fire()

		assert.Empty(t, f.sink.Events())
		assert.Equal(t, 0, f.sessions.Len())
	})

	t.Run("rejects invalid beacons", func(t *testing.T) {
		cases := map[string]map[string]any{
			"missing page id": {"pageId": ""},
			"unknown signal":  {"pageId": "p", "signals": []map[string]any{{"type": "hover"}}},
			"scroll without heights": {
				"pageId":  "p",
				"signals": []map[string]any{{"type": "scroll", "scrollY": 10}},
			},
			"click without target": {"pageId": "p", "signals": []map[string]any{{"type": "click"}}},
			"nameless event":       {"pageId": "p", "events": []map[string]any{{"name": ""}}},
		}

		for name, body := range cases {
			t.Run(name, func(t *testing.T) {
				f := newEventsFixture(t)

				resp := f.api.Post("/api/events", body)

				assert.Equal(t, http.StatusBadRequest, resp.Code)
				assert.Equal(t, "Invalid event payload", decode[errorBody](t, resp.Body.Bytes()).Error)
				assert.Empty(t, f.sink.Events())
			})
		}
	})

	t.Run("names the failing field", func(t *testing.T) {
		f := newEventsFixture(t)

		resp := f.api.Post("/api/events", map[string]any{
			"pageId":  "p",
			"signals": []map[string]any{{"type": "intersection", "ratio": 0.5}},
		})

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, "signals[0].sectionId: required_if", decode[errorBody](t, resp.Body.Bytes()).Details)
	})
}
