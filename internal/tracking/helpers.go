package tracking

import (
	"context"
	"maps"
	"strings"
)

const (
	EventSectionViewed = "section_viewed"
	EventSearch        = "troubleshooting_search"
	EventExternalLink  = "external_link_clicked"
	EventVideoClicked  = "video_clicked"
	EventMetricClicked = "metric_clicked"
	EventClick         = "element_clicked"
	EventScrollDepth   = "scroll_depth"
	EventQuizCompleted = "mlm2pro_onboarding_quiz_completed"
)

const (
	maxClassLength = 100
	maxTextLength  = 50
)

func (t *Tracker) TrackSectionView(ctx context.Context, sectionID, sectionName string) {
	t.Track(ctx, EventSectionViewed, Properties{
		"section_id":   sectionID,
		"section_name": sectionName,
	})
}

func (t *Tracker) TrackSearch(ctx context.Context, query string, resultsCount int) {
	t.Track(ctx, EventSearch, Properties{
		"search_query":  query,
		"results_count": resultsCount,
	})
}

func (t *Tracker) TrackExternalLink(ctx context.Context, url, text string) {
	t.Track(ctx, EventExternalLink, Properties{
		"link_url":  url,
		"link_text": text,
	})
}

func (t *Tracker) TrackVideoClick(ctx context.Context, videoID, title string) {
	t.Track(ctx, EventVideoClicked, Properties{
		"video_id":    videoID,
		"video_title": title,
	})
}

func (t *Tracker) TrackMetricClick(ctx context.Context, metric string) {
	t.Track(ctx, EventMetricClicked, Properties{"metric_name": metric})
}

func (t *Tracker) TrackScrollDepth(ctx context.Context, percent int) {
	t.Track(ctx, EventScrollDepth, Properties{"depth_percentage": percent})
}

// TrackQuizCompleted sends the quiz answers keyed by question id.
func (t *Tracker) TrackQuizCompleted(ctx context.Context, answers map[string]any) {
	t.Track(ctx, EventQuizCompleted, Properties(maps.Clone(answers)))
}

// ClickTarget describes the element a generic click landed on.
type ClickTarget struct {
	Tag      string `json:"tag"`
	ID       string `json:"id,omitempty"`
	Class    string `json:"class,omitempty"`
	Text     string `json:"text,omitempty"`
	Href     string `json:"href,omitempty"`
	PagePath string `json:"pagePath,omitempty"`
}

// TrackClick records a generic click. Class is capped at 100 characters and
// the visible text is trimmed and capped at 50.
func (t *Tracker) TrackClick(ctx context.Context, target ClickTarget) {
	t.Track(ctx, EventClick, Properties{
		"element_tag":   strings.ToLower(target.Tag),
		"element_id":    target.ID,
		"element_class": truncate(target.Class, maxClassLength),
		"element_text":  truncate(strings.TrimSpace(target.Text), maxTextLength),
		"link_href":     target.Href,
		"page_path":     target.PagePath,
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n])
}
