package catalog

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

	"github.com/charlesng35/otpdash/pkg/metrics"
)

const (
	// DefaultBaseURL is the public catalog the dashboard reads from.
	DefaultBaseURL = "https://dummyjson.com/products"
	// DefaultLimit is the number of products requested in the single fetch.
	DefaultLimit   = 100
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
)

// ErrUpstreamFetch reports that the catalog could not be loaded.
var ErrUpstreamFetch = errors.New("catalog: upstream fetch failed")

// Source yields catalog snapshots.
type Source interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// ClientConfig configures the HTTP catalog client.
type ClientConfig struct {
	BaseURL    string
	Limit      int
	Timeout    time.Duration
	HTTPClient *http.Client
	Clock      func() time.Time
}

// Client fetches the catalog with one GET per call. It never retries.
type Client struct {
	endpoint string
	http     *http.Client
	now      func() time.Time
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}

	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("catalog: invalid base url %q", base)
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	query := parsed.Query()
	query.Set("limit", strconv.Itoa(limit))
	parsed.RawQuery = query.Encode()

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	now := time.Now
	if cfg.Clock != nil {
		now = cfg.Clock
	}

	return &Client{
		endpoint: parsed.String(),
		http:     httpClient,
		now:      now,
	}, nil
}

// Endpoint returns the fully built request URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch loads one snapshot. Every failure is wrapped in ErrUpstreamFetch.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	started := time.Now()
	snapshot, err := c.fetch(ctx)
	metrics.CatalogFetchDuration.Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.CatalogFetches.WithLabelValues("upstream", "failure").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	metrics.CatalogFetches.WithLabelValues("upstream", "success").Inc()
	return snapshot, nil
}

func (c *Client) fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var snapshot Snapshot
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if snapshot.Products == nil {
		snapshot.Products = []Product{}
	}
	snapshot.FetchedAt = c.now()
	return &snapshot, nil
}
