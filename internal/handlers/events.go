package handlers

import (
	"context"

	"github.com/serroba/launch-site-go/internal/tracking"
	"go.uber.org/zap"
)

const (
	signalScroll       = "scroll"
	signalIntersection = "intersection"
	signalSearch       = "search"
	signalClick        = "click"
	signalPageHide     = "pagehide"
)

// EventsHandler accepts page beacons and drives the page-session trackers.
type EventsHandler struct {
	tracker  *tracking.Tracker
	sessions *tracking.Sessions
	logger   *zap.Logger
}

// NewEventsHandler creates a new beacon handler.
func NewEventsHandler(tracker *tracking.Tracker, sessions *tracking.Sessions, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{tracker: tracker, sessions: sessions, logger: logger}
}

// Collect processes one beacon. Tracking problems never fail the request.
func (h *EventsHandler) Collect(ctx context.Context, req *BeaconRequest) (*BeaconResponse, error) {
	body := req.Body

	if err := validate.Struct(body); err != nil {
		return nil, validationError("Invalid event payload", err)
	}

	ctx = tracking.WithProperties(ctx, pageProperties(body.PageID, body.DistinctID, body.PagePath))

	for _, e := range body.Events {
		h.tracker.Track(ctx, e.Name, e.Properties)
	}

	page := h.sessions.Page(body.PageID)

	for _, s := range body.Signals {
		switch s.Type {
		case signalScroll:
			page.Scroll(ctx, s.ScrollY, s.DocumentHeight, s.ViewportHeight)
		case signalIntersection:
			page.Intersect(ctx, s.SectionID, s.SectionName, s.Ratio, s.Threshold)
		case signalSearch:
			page.Search(ctx, s.Query, s.ResultCount)
		case signalClick:
			target := *s.Target
			if target.PagePath == "" {
				target.PagePath = body.PagePath
			}

			h.tracker.TrackClick(ctx, target)
		case signalPageHide:
			h.sessions.End(body.PageID)
		}
	}

	resp := &BeaconResponse{}
	resp.Body.Accepted = len(body.Events) + len(body.Signals)

	return resp, nil
}

func pageProperties(pageID, distinctID, pagePath string) tracking.Properties {
	props := tracking.Properties{"page_id": pageID}

	if distinctID != "" {
		props["distinct_id"] = distinctID
	}

	if pagePath != "" {
		props["page_path"] = pagePath
	}

	return props
}
