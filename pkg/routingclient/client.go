// Package routingclient consumes the routing/geocoding HTTP surface. The
// backend owns these endpoints; this side only reads.
package routingclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/routeview/mapkit/pkg/geo"
	"github.com/routeview/mapkit/pkg/util"
	"go.uber.org/zap"
)

type Client struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger

	keyMu  sync.Mutex
	apiKey string
}

func New(baseURL string, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

func formatPoint(c geo.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

func (c *Client) RoutePreview(ctx context.Context, from, to geo.Coordinate, mode string, departureAt *time.Time) (*RoutePreview, error) {
	q := url.Values{}
	q.Set("from", formatPoint(from))
	q.Set("to", formatPoint(to))
	q.Set("mode", mode)
	if departureAt != nil {
		q.Set("departure_at", departureAt.Format(time.RFC3339))
	}

	var out RoutePreview
	if err := c.get(ctx, "/routes/preview", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Recommendations(ctx context.Context, from, to geo.Coordinate, modes []string) ([]Recommendation, error) {
	q := url.Values{}
	q.Set("from", formatPoint(from))
	q.Set("to", formatPoint(to))
	for _, m := range modes {
		q.Add("modes[]", m)
	}

	var out []Recommendation
	if err := c.get(ctx, "/routes/recommendations", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SuggestLocations(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	var out []Suggestion
	if err := c.get(ctx, "/routes/locations/suggest", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ReverseGeocode(ctx context.Context, point geo.Coordinate) (*Place, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(point.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(point.Lon, 'f', -1, 64))

	var out Place
	if err := c.get(ctx, "/routes/locations/reverse", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RuntimeConfig(ctx context.Context) (*RuntimeConfig, error) {
	var out RuntimeConfig
	if err := c.get(ctx, "/routes/config", url.Values{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// APIKey implements the vendor engine's key source: one successful config
// fetch per process, shared by every caller.
func (c *Client) APIKey(ctx context.Context) (string, error) {
	c.keyMu.Lock()
	defer c.keyMu.Unlock()

	if c.apiKey != "" {
		return c.apiKey, nil
	}

	cfg, err := c.RuntimeConfig(ctx)
	if err != nil {
		return "", err
	}
	c.apiKey = cfg.APIKey
	return c.apiKey, nil
}

// envelope matches the backend's {"data": ...} response wrapper.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return util.WrapErrorf(err, util.ErrUnavailable, "GET %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return util.WrapErrorf(
			fmt.Errorf("status %d", resp.StatusCode), util.ErrUnavailable, "GET %s", path)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return util.WrapErrorf(err, util.ErrInternalServerError, "decoding %s response", path)
	}
	if env.Data == nil {
		return util.WrapErrorf(fmt.Errorf("missing data field"), util.ErrInternalServerError,
			"decoding %s response", path)
	}
	return json.Unmarshal(env.Data, out)
}
