package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"gcalnote/internal/logging"
)

const (
	// DefaultBaseURL is the Google Calendar v3 REST endpoint.
	DefaultBaseURL = "https://www.googleapis.com/calendar/v3"

	// defaultColor is attached to events whose calendar has no cached
	// background color.
	defaultColor = "#4285f4"

	untitledEvent = "(no title)"

	// isoMillis renders day boundaries with millisecond precision.
	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

// TokenSource supplies the bearer token for API calls and performs the
// one-shot refresh on expiry. Refresh must be safe to call from
// concurrent requests.
type TokenSource interface {
	AccessToken() string
	Refresh(ctx context.Context) error
}

// APIError is a non-2xx, non-retried response from the Calendar API.
type APIError struct {
	Status int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("calendar API error: status %d", e.Status)
}

// Client fetches events and calendar colors over the Calendar REST API.
//
// The color cache is session-scoped: populated lazily on first need and
// never invalidated, so a calendar recolored mid-session keeps its old
// color until restart.
type Client struct {
	// BaseURL may be overridden for tests; defaults to DefaultBaseURL.
	BaseURL string

	httpClient  *http.Client
	auth        TokenSource
	calendarIDs []string
	logger      *slog.Logger

	mu     sync.Mutex
	colors map[string]string
}

// NewClient creates a Calendar client querying the given calendars.
func NewClient(auth TokenSource, calendarIDs []string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL:     DefaultBaseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		auth:        auth,
		calendarIDs: calendarIDs,
		logger:      logger,
		colors:      make(map[string]string),
	}
}

// FetchEventsForDate fetches events for the local calendar day named by
// dateStr (YYYY-MM-DD) across all configured calendars. A failure on one
// calendar is logged and excluded; it never aborts the others. Color
// lookup failures degrade to the default color. The combined result is
// sorted ascending by parsed start instant regardless of fetch order.
func (c *Client) FetchEventsForDate(ctx context.Context, dateStr string) ([]Event, error) {
	day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	startOfDay := day
	endOfDay := day.Add(24*time.Hour - time.Millisecond)

	// Color enrichment is best-effort.
	if err := c.FetchColors(ctx); err != nil {
		c.logger.Warn("failed to fetch calendar colors", logging.Err(err))
	}

	var all []Event
	for _, id := range c.calendarIDs {
		events, err := c.FetchEvents(ctx, id, startOfDay, endOfDay)
		if err != nil {
			c.logger.Error("failed to fetch events", logging.Calendar(id), logging.Err(err))
			continue
		}
		color := c.Color(id)
		for i := range events {
			events[i].CalendarColor = color
		}
		all = append(all, events...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].startTime().Before(all[j].startTime())
	})
	return all, nil
}

// FetchEvents issues a single range query against one calendar, with
// single-event expansion and ascending start order requested from the
// server.
func (c *Client) FetchEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]Event, error) {
	u := fmt.Sprintf("%s/calendars/%s/events?timeMin=%s&timeMax=%s&singleEvents=true&orderBy=startTime",
		c.BaseURL,
		url.PathEscape(calendarID),
		url.QueryEscape(timeMin.Format(isoMillis)),
		url.QueryEscape(timeMax.Format(isoMillis)))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events for calendar %s: %w", calendarID, err)
	}

	var resp eventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode events response: %w", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, toEvent(item))
	}
	return events, nil
}

// FetchColors populates the calendar color cache from the user's
// calendar list. Idempotent within a session: a non-empty cache returns
// immediately without a network call. Calendars lacking an id or a
// background color are skipped; no fallback color is stored for them.
func (c *Client) FetchColors(ctx context.Context) error {
	c.mu.Lock()
	if len(c.colors) > 0 {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	body, err := c.get(ctx, c.BaseURL+"/users/me/calendarList")
	if err != nil {
		return fmt.Errorf("failed to fetch calendar list: %w", err)
	}

	var resp calendarListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode calendar list: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, entry := range resp.Items {
		if entry.ID != "" && entry.BackgroundColor != "" {
			c.colors[entry.ID] = entry.BackgroundColor
		}
	}
	return nil
}

// Color returns the cached background color for a calendar, or the
// default when none is cached.
func (c *Client) Color(calendarID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if color, ok := c.colors[calendarID]; ok {
		return color
	}
	return defaultColor
}

// get performs an authenticated GET. On 401 it refreshes the token once
// and retries once; a second 401, or any other non-2xx status, surfaces
// as an APIError. The retry is an explicit bounded sequence, never a
// recursive one.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	body, status, err := c.doRequest(ctx, u)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		if err := c.auth.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("token refresh failed: %w", err)
		}
		body, status, err = c.doRequest(ctx, u)
		if err != nil {
			return nil, err
		}
	}
	if status < 200 || status > 299 {
		return nil, &APIError{Status: status}
	}
	return body, nil
}

func (c *Client) doRequest(ctx context.Context, u string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.auth.AccessToken())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}
