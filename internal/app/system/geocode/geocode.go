// Package geocode resolves free-text locations to coordinates using the
// Nominatim search API (OpenStreetMap).
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/newsgeo/internal/app/system/metrics"
	"github.com/dalemusser/newsgeo/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// gatewayName labels this gateway in metrics.
const gatewayName = "geocode"

// ErrUpstream wraps non-2xx responses from the geocoding service.
var ErrUpstream = errors.New("geocoding service error")

// Match is one geocoding result. Coordinates are the decimal strings the
// service returned, unmodified.
type Match struct {
	Latitude    string `json:"lat"`
	Longitude   string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// MapURL returns a Google Maps link centred on the match.
func (m Match) MapURL() string {
	return fmt.Sprintf("https://www.google.com/maps?q=%s,%s", m.Latitude, m.Longitude)
}

// Geocoder translates a location description into ordered matches.
// Zero matches is not an error.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]Match, error)
}

// Config configures a Client.
type Config struct {
	BaseURL    string        // defaults to DefaultBaseURL
	UserAgent  string        // Nominatim's usage policy requires an identifying UA
	Timeout    time.Duration // defaults to timeouts.Geocode()
	HTTPClient *http.Client  // defaults to a client without its own timeout
}

// Client is a Geocoder backed by Nominatim's /search endpoint.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      *http.Client
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// New creates a Nominatim client. m may be nil.
func New(cfg Config, m *metrics.Metrics, logger *zap.Logger) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "newsgeo/1.0"
	}
	return &Client{
		baseURL:   base,
		userAgent: ua,
		timeout:   cfg.Timeout,
		http:      hc,
		metrics:   m,
		logger:    logger,
	}
}

// Search queries Nominatim for query and returns its matches in service order.
// A blank query returns no matches without calling the service.
func (c *Client) Search(ctx context.Context, query string) ([]Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	timeout := c.timeout
	if timeout <= 0 {
		timeout = timeouts.Geocode()
	}
	ctx, cancel := timeouts.WithTimeout(ctx, timeout, c.logger, "geocode.search")
	defer cancel()

	start := time.Now()
	matches, err := c.search(ctx, query)
	switch {
	case err != nil:
		c.metrics.ObserveGateway(gatewayName, metrics.OutcomeError, time.Since(start))
	case len(matches) == 0:
		c.metrics.ObserveGateway(gatewayName, metrics.OutcomeEmpty, time.Since(start))
	default:
		c.metrics.ObserveGateway(gatewayName, metrics.OutcomeOK, time.Since(start))
	}
	return matches, err
}

func (c *Client) search(ctx context.Context, query string) ([]Match, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", query)
	endpoint := c.baseURL + "/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: http %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var matches []Match
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	return matches, nil
}
