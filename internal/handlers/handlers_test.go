package handlers_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/serroba/launch-site-go/internal/analytics"
	"github.com/serroba/launch-site-go/internal/apierror"
	"github.com/serroba/launch-site-go/internal/tracking"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu     sync.Mutex
	events []*analytics.TrackedEvent
}

func (r *recordingSink) Send(_ context.Context, event *analytics.TrackedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)

	return nil
}

func (r *recordingSink) Events() []*analytics.TrackedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]*analytics.TrackedEvent(nil), r.events...)
}

func (r *recordingSink) Names() []string {
	var names []string
	for _, e := range r.Events() {
		names = append(names, e.Name)
	}

	return names
}

type heldTimer struct{ stopped bool }

func (h *heldTimer) Stop() bool {
	was := !h.stopped
	h.stopped = true

	return was
}

// heldTimers collects debounced callbacks until Fire is called.
type heldTimers struct {
	mu    sync.Mutex
	funcs []func()
	held  []*heldTimer
}

func (h *heldTimers) AfterFunc(_ time.Duration, f func()) tracking.Timer {
	h.mu.Lock()
	defer h.mu.Unlock()

	t := &heldTimer{}
	h.funcs = append(h.funcs, f)
	h.held = append(h.held, t)

	return t
}

func (h *heldTimers) Fire() {
	h.mu.Lock()
	funcs, held := h.funcs, h.held
	h.funcs, h.held = nil, nil
	h.mu.Unlock()

	for i, f := range funcs {
		if !held[i].stopped {
			f()
		}
	}
}

func newTestTracker(sink tracking.Sink) *tracking.Tracker {
	return tracking.NewTracker("test-token", sink, zap.NewNop(),
		tracking.WithIDGenerator(func() string { return "evt-1" }),
	)
}

func newTestAPI(t *testing.T) humatest.TestAPI {
	t.Helper()
	apierror.Install()

	_, api := humatest.New(t)

	return api
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(raw, &v))

	return v
}
