package handlers

import (
	"github.com/serroba/launch-site-go/internal/content"
	"github.com/serroba/launch-site-go/internal/profile"
	"github.com/serroba/launch-site-go/internal/tracking"
)

// ProfileLookupBody is the body of a profile lookup. Email is checked by the
// handler so a missing value yields the documented 400 message.
type ProfileLookupBody struct {
	Email string `doc:"Customer email" example:"golfer@example.com" json:"email,omitempty" required:"false"`
}

// ProfileLookupRequest is the request for POST /api/mixpanel/profile.
type ProfileLookupRequest struct {
	Body *ProfileLookupBody `required:"false"`
}

// ProfileLookupResponse is the response for a found profile.
type ProfileLookupResponse struct {
	Body struct {
		Success bool             `json:"success"`
		Profile *profile.Profile `json:"profile"`
	}
}

// BeaconEvent is an explicitly named event sent by the page.
type BeaconEvent struct {
	Name       string         `json:"name"                 validate:"required,max=255"`
	Properties map[string]any `json:"properties,omitempty"`
}

// BeaconSignal is a raw interaction the server turns into events.
type BeaconSignal struct {
	Type           string                `json:"type"                     validate:"required,oneof=scroll intersection search click pagehide"`
	ScrollY        float64               `json:"scrollY,omitempty"        validate:"gte=0"`
	DocumentHeight float64               `json:"documentHeight,omitempty" validate:"required_if=Type scroll,gte=0"`
	ViewportHeight float64               `json:"viewportHeight,omitempty" validate:"required_if=Type scroll,gte=0"`
	SectionID      string                `json:"sectionId,omitempty"      validate:"required_if=Type intersection,max=128"`
	SectionName    string                `json:"sectionName,omitempty"    validate:"max=255"`
	Ratio          float64               `json:"ratio,omitempty"          validate:"gte=0,lte=1"`
	Threshold      float64               `json:"threshold,omitempty"      validate:"gte=0,lte=1"`
	Query          string                `json:"query,omitempty"          validate:"max=256"`
	ResultCount    int                   `json:"resultCount,omitempty"    validate:"gte=0"`
	Target         *tracking.ClickTarget `json:"target,omitempty"         validate:"required_if=Type click"`
}

// BeaconBody is a batch of events and signals from one page lifetime.
type BeaconBody struct {
	PageID     string         `json:"pageId"               validate:"required,max=64"`
	DistinctID string         `json:"distinctId,omitempty" validate:"max=255"`
	PagePath   string         `json:"pagePath,omitempty"   validate:"max=2048"`
	Events     []BeaconEvent  `json:"events,omitempty"     validate:"max=50,dive"`
	Signals    []BeaconSignal `json:"signals,omitempty"    validate:"max=50,dive"`
}

// BeaconRequest is the request for POST /api/events.
type BeaconRequest struct {
	Body BeaconBody
}

// BeaconResponse acknowledges a beacon.
type BeaconResponse struct {
	Body struct {
		Accepted int `doc:"Number of events and signals processed" json:"accepted"`
	}
}

// TroubleshootingRequest is the request for GET /api/troubleshooting.
type TroubleshootingRequest struct {
	Query    string `doc:"Case-insensitive text to find in titles and content" query:"q"`
	Category string `doc:"Exact category name"                                 query:"category"`
}

// TroubleshootingResponse lists matching sections.
type TroubleshootingResponse struct {
	Body struct {
		Sections   []content.Section `json:"sections"`
		Count      int               `json:"count"`
		Categories []string          `json:"categories"`
	}
}

// QuizResponse is the question set.
type QuizResponse struct {
	Body struct {
		Questions []content.Question `json:"questions"`
	}
}

// QuizSubmitBody is a completed quiz.
type QuizSubmitBody struct {
	PageID     string         `json:"pageId,omitempty"     validate:"max=64"`
	DistinctID string         `json:"distinctId,omitempty" validate:"max=255"`
	Answers    map[string]any `json:"answers"`
}

// QuizSubmitRequest is the request for POST /api/quiz.
type QuizSubmitRequest struct {
	Body QuizSubmitBody
}

// QuizSubmitResponse acknowledges a quiz submission.
type QuizSubmitResponse struct {
	Body struct {
		Success bool `json:"success"`
	}
}
