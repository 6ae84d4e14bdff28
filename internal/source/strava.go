package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/routeblend/routeblend/internal/types"
)

const defaultBaseURL = "https://www.strava.com/api/v3"

// ClientConfig configures the HTTP activity/stream source.
type ClientConfig struct {
	// BaseURL of the fitness API (default: Strava v3).
	BaseURL string
	// Tokens provides the bearer token per request.
	Tokens TokenProvider
	// HTTPClient defaults to a client with a 30s timeout.
	HTTPClient *http.Client
	// Logger for fetch operations.
	Logger *slog.Logger
}

// Client fetches activities and point streams from a Strava-shaped REST API.
type Client struct {
	baseURL string
	tokens  TokenProvider
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a new API client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		tokens:  cfg.Tokens,
		http:    cfg.HTTPClient,
		logger:  cfg.Logger,
	}
}

// wireActivity mirrors the activity summary shape of the Strava v3 API.
type wireActivity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	Distance           float64   `json:"distance"`
	MovingTime         int       `json:"moving_time"`
	ElapsedTime        int       `json:"elapsed_time"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
}

// wireStreams is the key_by_type=true streams response.
type wireStreams struct {
	LatLng   *wireStream[[2]float64] `json:"latlng"`
	Time     *wireStream[float64]    `json:"time"`
	Distance *wireStream[float64]    `json:"distance"`
}

type wireStream[T any] struct {
	Data         []T    `json:"data"`
	SeriesType   string `json:"series_type"`
	OriginalSize int    `json:"original_size"`
}

// ListActivities fetches one page of the athlete's activities.
func (c *Client) ListActivities(ctx context.Context, page, perPage int) ([]types.Activity, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var wire []wireActivity
	if err := c.getJSON(ctx, "/athlete/activities?"+q.Encode(), "", &wire); err != nil {
		return nil, err
	}

	activities := make([]types.Activity, 0, len(wire))
	for _, a := range wire {
		actType := a.SportType
		if actType == "" {
			actType = a.Type
		}
		activities = append(activities, types.Activity{
			ID:            strconv.FormatInt(a.ID, 10),
			Name:          a.Name,
			Type:          actType,
			StartTime:     a.StartDate,
			Distance:      a.Distance,
			MovingTime:    a.MovingTime,
			ElapsedTime:   a.ElapsedTime,
			ElevationGain: a.TotalElevationGain,
		})
	}

	c.logger.Debug("listed activities", "page", page, "count", len(activities))
	return activities, nil
}

// GetStream fetches the latlng/time/distance streams of one activity.
// A response without latlng data is malformed: the activity carries no
// geometry and is dropped by the caller.
func (c *Client) GetStream(ctx context.Context, activityID string) ([]types.RawPoint, error) {
	q := url.Values{}
	q.Set("keys", "latlng,time,distance")
	q.Set("key_by_type", "true")

	var wire wireStreams
	path := fmt.Sprintf("/activities/%s/streams?%s", url.PathEscape(activityID), q.Encode())
	if err := c.getJSON(ctx, path, activityID, &wire); err != nil {
		return nil, err
	}

	if wire.LatLng == nil || len(wire.LatLng.Data) == 0 {
		return nil, fmt.Errorf("activity %s: %w", activityID, ErrMalformedStream)
	}

	points := make([]types.RawPoint, 0, len(wire.LatLng.Data))
	for i, ll := range wire.LatLng.Data {
		p := types.RawPoint{Lat: ll[0], Lon: ll[1]}
		if wire.Time != nil && i < len(wire.Time.Data) {
			t := time.Unix(int64(wire.Time.Data[i]), 0)
			p.Time = &t
		}
		if wire.Distance != nil && i < len(wire.Distance.Data) {
			d := wire.Distance.Data[i]
			p.Distance = &d
		}
		points = append(points, p)
	}
	return points, nil
}

// getJSON performs an authenticated GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, path, activityID string, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{ActivityID: activityID, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return ErrUnauthenticated
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &UpstreamError{
			ActivityID: activityID,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s: %s", resp.Status, body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamError{ActivityID: activityID, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
