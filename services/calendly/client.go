package calendly

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://api.calendly.com"

// Client talks to the Calendly API v2 with a personal access token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string

	userURI string
}

func NewClient(apiToken string) *Client {
	return NewClientWithBaseURL(apiToken, defaultBaseURL)
}

// NewClientWithBaseURL exists for tests pointing at a fake server.
func NewClientWithBaseURL(apiToken, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiToken:   apiToken,
	}
}

type User struct {
	URI                 string `json:"uri"`
	Name                string `json:"name"`
	Email               string `json:"email"`
	CurrentOrganization string `json:"current_organization"`
}

type ScheduledEvent struct {
	URI       string     `json:"uri"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	EventType string     `json:"event_type"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// UUID extracts the event identifier from the resource URI.
func (e ScheduledEvent) UUID() string {
	if i := strings.LastIndexByte(e.URI, '/'); i >= 0 {
		return e.URI[i+1:]
	}
	return ""
}

type Invitee struct {
	URI       string     `json:"uri"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	CreatedAt *time.Time `json:"created_at"`
}

type pagination struct {
	NextPageToken string `json:"next_page_token"`
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "calendly request %s failed", endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return errors.Errorf("calendly %s returned status %d: %s", endpoint, resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// CurrentUser fetches and caches the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var response struct {
		Resource User `json:"resource"`
	}
	if err := c.get(ctx, "/users/me", nil, &response); err != nil {
		return nil, err
	}
	c.userURI = response.Resource.URI
	return &response.Resource, nil
}

func (c *Client) currentUserURI(ctx context.Context) (string, error) {
	if c.userURI != "" {
		return c.userURI, nil
	}
	user, err := c.CurrentUser(ctx)
	if err != nil {
		return "", err
	}
	return user.URI, nil
}

// ListScheduledEvents pages through all active events in the window.
func (c *Client) ListScheduledEvents(ctx context.Context, minStartTime, maxStartTime time.Time) ([]ScheduledEvent, error) {
	userURI, err := c.currentUserURI(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("user", userURI)
	params.Set("status", "active")
	params.Set("count", "100")
	params.Set("min_start_time", minStartTime.UTC().Format(time.RFC3339))
	params.Set("max_start_time", maxStartTime.UTC().Format(time.RFC3339))

	var events []ScheduledEvent
	for {
		var response struct {
			Collection []ScheduledEvent `json:"collection"`
			Pagination pagination       `json:"pagination"`
		}
		if err := c.get(ctx, "/scheduled_events", params, &response); err != nil {
			return nil, err
		}
		events = append(events, response.Collection...)

		if response.Pagination.NextPageToken == "" {
			return events, nil
		}
		params.Set("page_token", response.Pagination.NextPageToken)
	}
}

// ListEventInvitees pages through every invitee of one scheduled event.
func (c *Client) ListEventInvitees(ctx context.Context, event ScheduledEvent) ([]Invitee, error) {
	uuid := event.UUID()
	if uuid == "" {
		return nil, errors.Errorf("event %q has no uuid", event.URI)
	}
	endpoint := fmt.Sprintf("/scheduled_events/%s/invitees", uuid)

	params := url.Values{}
	params.Set("count", "100")

	var invitees []Invitee
	for {
		var response struct {
			Collection []Invitee  `json:"collection"`
			Pagination pagination `json:"pagination"`
		}
		if err := c.get(ctx, endpoint, params, &response); err != nil {
			return nil, err
		}
		invitees = append(invitees, response.Collection...)

		if response.Pagination.NextPageToken == "" {
			return invitees, nil
		}
		params.Set("page_token", response.Pagination.NextPageToken)
	}
}
