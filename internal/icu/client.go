package icu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cycleiq/internal/store"
)

const BaseURL = "https://intervals.icu/api/v1"

// Client is an intervals.icu API client. The API authenticates with HTTP
// basic auth using the literal username "API_KEY".
type Client struct {
	httpClient *http.Client
	baseURL    string
	athleteID  string
	apiKey     string
}

// NewClient creates a new intervals.icu API client
func NewClient(athleteID, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    BaseURL,
		athleteID:  athleteID,
		apiKey:     apiKey,
	}
}

// ListActivities fetches activities whose local date falls in [oldest, newest],
// up to limit results. The API returns newest first.
func (c *Client) ListActivities(ctx context.Context, oldest, newest time.Time, limit int) ([]store.Activity, error) {
	params := url.Values{}
	params.Set("oldest", formatDay(oldest))
	params.Set("newest", formatDay(newest))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, fmt.Sprintf("/athlete/%s/activities", c.athleteID), params)
	if err != nil {
		return nil, err
	}

	raw, err := decodeActivities(body)
	if err != nil {
		return nil, err
	}

	activities := make([]store.Activity, 0, len(raw))
	for _, r := range raw {
		a, err := r.toActivity()
		if err != nil {
			// Malformed entries are skipped, not fatal
			continue
		}
		activities = append(activities, a)
	}
	return activities, nil
}

// GetActivity fetches a single activity by id. A 404 means the activity
// does not exist upstream and returns (nil, nil).
func (c *Client) GetActivity(ctx context.Context, id string) (*store.Activity, error) {
	body, err := c.get(ctx, "/activity/"+url.PathEscape(id), nil)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, err
	}

	var raw rawActivity
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding activity: %w", err)
	}

	a, err := raw.toActivity()
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetActivityStreams fetches the per-second sample streams recorded for an
// activity. Activities without recorded streams yield (nil, nil).
func (c *Client) GetActivityStreams(ctx context.Context, id string, types []string) ([]Stream, error) {
	params := url.Values{}
	if len(types) > 0 {
		params.Set("types", strings.Join(types, ","))
	}

	body, err := c.get(ctx, "/activity/"+url.PathEscape(id)+"/streams", params)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, nil
		}
		return nil, err
	}

	var streams []Stream
	if err := json.Unmarshal(body, &streams); err != nil {
		return nil, fmt.Errorf("decoding streams: %w", err)
	}
	return streams, nil
}

// GetWellness fetches wellness entries for [oldest, newest]. Days without
// data are simply absent from the result.
func (c *Client) GetWellness(ctx context.Context, oldest, newest time.Time) ([]store.WellnessEntry, error) {
	params := url.Values{}
	params.Set("oldest", formatDay(oldest))
	params.Set("newest", formatDay(newest))

	body, err := c.get(ctx, fmt.Sprintf("/athlete/%s/wellness", c.athleteID), params)
	if err != nil {
		return nil, err
	}

	var raw []rawWellness
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding wellness: %w", err)
	}

	entries := make([]store.WellnessEntry, 0, len(raw))
	for _, r := range raw {
		if r.ID == "" {
			continue
		}
		entries = append(entries, r.toEntry())
	}
	return entries, nil
}

// get performs an authenticated GET, retrying once on a transport failure.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	body, err := c.doGet(ctx, path, params)
	var te *TransportError
	if errors.As(err, &te) && ctx.Err() == nil {
		body, err = c.doGet(ctx, path, params)
	}
	return body, err
}

func (c *Client) doGet(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth("API_KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	switch {
	case resp.StatusCode/100 == 2:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthError{Status: resp.StatusCode, Body: string(body)}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &NotFoundError{Status: resp.StatusCode, Body: string(body)}
	default:
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}
}
