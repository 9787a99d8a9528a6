package radarapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"radarwatch/config"
)

// RadarNone marks a snapshot whose latest frame reference is absent or
// unparseable. It never collides with a real frame name because frame refs
// are file names served by the dashboard.
const RadarNone = "\x00none"

// Client talks to the radar dashboard server.
type Client struct {
	logger     *zap.Logger
	httpClient *http.Client
	baseURL    string
	resolve    Resolver
}

// Resolver maps a frame reference to its fetchable URL.
type Resolver func(baseURL, ref string) string

// DefaultResolver serves frames from the dashboard's /radar/ path.
func DefaultResolver(baseURL, ref string) string {
	return strings.TrimSuffix(baseURL, "/") + "/radar/" + url.PathEscape(ref)
}

func NewClient(logger *zap.Logger, cfg *config.Config) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		logger: logger,
		httpClient: &http.Client{
			Timeout: cfg.Radar.FetchTimeout,
		},
		baseURL: strings.TrimSuffix(cfg.Radar.StatusURL, "/"),
		resolve: DefaultResolver,
	}
}

// SetResolver replaces the frame URL resolver.
func (c *Client) SetResolver(r Resolver) {
	if r != nil {
		c.resolve = r
	}
}

// Stats mirrors the stats block of the dashboard's status payload.
type Stats struct {
	LastUpdate    string  `json:"last_update"`
	TotalImages   int     `json:"total_images"`
	LastUpdateAgo float64 `json:"last_update_ago"` // whole minutes since last capture
}

// Snapshot is one observation of the dashboard's /api/status feed.
type Snapshot struct {
	Status      string `json:"status"`
	Stats       Stats  `json:"stats"`
	LatestRadar string `json:"latest_radar"`
	Timestamp   string `json:"timestamp"`
}

// LatestID returns the identity of the newest frame, or RadarNone when the
// payload carried no usable reference.
func (s *Snapshot) LatestID() string {
	if s == nil || strings.TrimSpace(s.LatestRadar) == "" {
		return RadarNone
	}
	return s.LatestRadar
}

// GetStatus fetches the current status snapshot.
func (c *Client) GetStatus(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	if err := c.doGet(ctx, c.baseURL+"/api/status", &snap); err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	if snap.LatestID() == RadarNone {
		c.logger.Warn("status snapshot has no latest radar reference",
			zap.String("status", snap.Status),
		)
	}

	return &snap, nil
}

// FetchImage downloads the full frame for ref. The caller gets the bytes only
// after the body has been read to completion, so a displayed frame is never
// partial.
func (c *Client) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" || ref == RadarNone {
		return nil, fmt.Errorf("no frame reference to fetch")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(c.baseURL, ref), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fetch image: status=%d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fetch image: empty body")
	}

	return data, nil
}

// FrameURL returns the resolved URL for ref without fetching it.
func (c *Client) FrameURL(ref string) string {
	return c.resolve(c.baseURL, ref)
}

// doGet is a helper that performs a GET request and decodes JSON response.
func (c *Client) doGet(ctx context.Context, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}
