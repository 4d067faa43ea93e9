package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/launch-site-go/internal/ratelimit"
)

const maxBodyBytes = 10 * 1024

// RegisterProfileRoutes registers the profile lookup with its per-IP limit.
func RegisterProfileRoutes(api huma.API, h *ProfileHandler) {
	huma.Register(api, huma.Operation{
		OperationID:  "lookup-profile",
		Method:       http.MethodPost,
		Path:         "/api/mixpanel/profile",
		Summary:      "Look up a customer profile",
		Description:  "Finds the analytics profile whose email matches exactly.",
		Tags:         []string{"Profile"},
		MaxBodyBytes: maxBodyBytes,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{ratelimit.ProfileLookupLimit},
			},
		},
	}, h.Lookup)
}

// RegisterEventRoutes registers the page beacon.
func RegisterEventRoutes(api huma.API, h *EventsHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "collect-events",
		Method:        http.MethodPost,
		Path:          "/api/events",
		Summary:       "Collect page events",
		Description:   "Accepts named events and raw interaction signals from one page.",
		Tags:          []string{"Analytics"},
		MaxBodyBytes:  maxBodyBytes,
		DefaultStatus: http.StatusAccepted,
	}, h.Collect)
}

// RegisterContentRoutes registers the troubleshooting hub and the quiz.
func RegisterContentRoutes(api huma.API, c *ContentHandler, q *QuizHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "search-troubleshooting",
		Method:      http.MethodGet,
		Path:        "/api/troubleshooting",
		Summary:     "Search troubleshooting sections",
		Tags:        []string{"Content"},
	}, c.Troubleshooting)

	huma.Register(api, huma.Operation{
		OperationID: "get-quiz",
		Method:      http.MethodGet,
		Path:        "/api/quiz",
		Summary:     "Get the onboarding quiz",
		Tags:        []string{"Content"},
	}, q.Questions)

	huma.Register(api, huma.Operation{
		OperationID:   "submit-quiz",
		Method:        http.MethodPost,
		Path:          "/api/quiz",
		Summary:       "Submit onboarding quiz answers",
		Tags:          []string{"Content"},
		MaxBodyBytes:  maxBodyBytes,
		DefaultStatus: http.StatusAccepted,
	}, q.Submit)
}
