// Package mixpanel talks to the Mixpanel query and ingestion APIs.
package mixpanel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/serroba/launch-site-go/internal/analytics"
	"github.com/serroba/launch-site-go/internal/profile"
)

const (
	DefaultAPIBase    = "https://mixpanel.com"
	DefaultIngestBase = "https://api.mixpanel.com"

	peopleByEmailScript = `function main() {
  return People().filter(function(user) {
    return user.properties.$email == params.email;
  });
}`

	maxErrorBody = 512
)

// ErrNoToken is returned by Track when no project token is configured.
var ErrNoToken = errors.New("mixpanel: ingestion token not configured")

// Config holds project credentials. Query calls need the project id and a
// service account; ingestion needs only the project token.
type Config struct {
	Token          string
	ProjectID      string
	ServiceAccount string
	Secret         string
	APIBase        string
	IngestBase     string
}

// Client is a minimal Mixpanel HTTP client.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a client. Requests are bounded by their context; the
// http.Client timeout is a backstop.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.APIBase == "" {
		cfg.APIBase = DefaultAPIBase
	}

	if cfg.IngestBase == "" {
		cfg.IngestBase = DefaultIngestBase
	}

	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	cfg.IngestBase = strings.TrimRight(cfg.IngestBase, "/")

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{cfg: cfg, httpClient: httpClient}
}

// Configured reports whether query credentials are present.
func (c *Client) Configured() bool {
	return c.cfg.ProjectID != "" && c.cfg.ServiceAccount != "" && c.cfg.Secret != ""
}

type peopleRecord struct {
	DistinctID any            `json:"$distinct_id"`
	Properties map[string]any `json:"$properties"`
}

// QueryPeopleByEmail runs a JQL query returning people whose $email equals email.
func (c *Client) QueryPeopleByEmail(ctx context.Context, email string) ([]map[string]any, error) {
	params, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("script", peopleByEmailScript)
	form.Set("params", string(params))

	endpoint := fmt.Sprintf("%s/api/query/jql?project_id=%s", c.cfg.APIBase, url.QueryEscape(c.cfg.ProjectID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	req.SetBasicAuth(c.cfg.ServiceAccount, c.cfg.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

		return nil, &profile.UpstreamError{Status: resp.StatusCode}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var records []peopleRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode jql response: %w", err)
	}

	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		if r.Properties == nil {
			r.Properties = map[string]any{}
		}

		out = append(out, r.Properties)
	}

	return out, nil
}

type ingestEvent struct {
	Event      string         `json:"event"`
	Properties map[string]any `json:"properties"`
}

type ingestResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// Track sends one event to the ingestion API. The event id doubles as
// $insert_id so redelivered messages are deduplicated upstream.
func (c *Client) Track(ctx context.Context, event *analytics.TrackedEvent) error {
	if c.cfg.Token == "" {
		return ErrNoToken
	}

	props := make(map[string]any, len(event.Properties)+6)
	maps.Copy(props, event.Properties)

	props["token"] = c.cfg.Token
	props["time"] = event.OccurredAt.UnixMilli()
	props["$insert_id"] = event.ID

	if event.DistinctID != "" {
		props["distinct_id"] = event.DistinctID
	}

	if event.ClientIP != "" {
		props["ip"] = event.ClientIP
	}

	if event.UserAgent != "" {
		props["$user_agent"] = event.UserAgent
	}

	body, err := json.Marshal([]ingestEvent{{Event: event.Name, Properties: props}})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.IngestBase+"/track?verbose=1", bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return fmt.Errorf("mixpanel track: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out ingestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode track response: %w", err)
	}

	if out.Status != 1 {
		return fmt.Errorf("mixpanel track rejected: %s", out.Error)
	}

	return nil
}

// SaveTrackedEvent lets the client act as an analytics.Store.
func (c *Client) SaveTrackedEvent(ctx context.Context, event *analytics.TrackedEvent) error {
	return c.Track(ctx, event)
}

var (
	_ profile.Querier = (*Client)(nil)
	_ analytics.Store = (*Client)(nil)
)
