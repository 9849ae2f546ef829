package nyaa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"animetracker/internal/config"
	"animetracker/internal/logging"
	"animetracker/internal/services"
)

const (
	defaultBaseURL  = "https://nyaa.si"
	defaultCategory = "1_2"
	defaultTimeout  = 30 * time.Second
)

// Result is one row of the listing table.
type Result struct {
	Title      string `json:"title"`
	Link       string `json:"link"`
	MagnetLink string `json:"magnetLink"`
	InfoHash   string `json:"infoHash,omitempty"`
	Size       string `json:"size"`
	Date       string `json:"date"`
	Seeders    int    `json:"seeders"`
	Leechers   int    `json:"leechers"`
}

// Client performs listing searches.
type Client struct {
	baseURL    *url.URL
	category   string
	filter     int
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "nyaa")
		}
	}
}

// WithLimiter replaces the request limiter.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		if limiter != nil {
			c.limiter = limiter
		}
	}
}

// New builds a client from the nyaa configuration section.
func New(cfg config.Nyaa, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		raw = defaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, services.Wrap(services.ErrConfiguration, "nyaa", "init", fmt.Sprintf("invalid base url %q", raw), err)
	}
	category := strings.TrimSpace(cfg.Category)
	if category == "" {
		category = defaultCategory
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	c := &Client{
		baseURL:    base,
		category:   category,
		filter:     cfg.Filter,
		userAgent:  strings.TrimSpace(cfg.UserAgent),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SearchURL returns the listing URL for query, sorted by seeders descending.
func (c *Client) SearchURL(query string) string {
	values := url.Values{}
	values.Set("f", strconv.Itoa(c.filter))
	values.Set("c", c.category)
	values.Set("q", query)
	values.Set("s", "seeders")
	values.Set("o", "desc")
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	u.RawQuery = values.Encode()
	return u.String()
}

// Search fetches and parses the first listing page for query.
func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "nyaa", "search", "query is empty", nil)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(query), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "nyaa", "build request", "", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, services.Wrap(services.ErrTimeout, "nyaa", "search", query, err)
		}
		return nil, services.Wrap(services.ErrExternalService, "nyaa", "search", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternalService, "nyaa", "search",
			fmt.Sprintf("failed to fetch listing: %s", http.StatusText(resp.StatusCode)), nil)
	}

	results, err := parseListing(resp.Body, c.baseURL)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "nyaa", "parse listing", query, err)
	}
	c.logger.Debug("nyaa search complete",
		logging.String(logging.FieldQuery, query),
		logging.Int("results", len(results)),
		logging.Duration("elapsed", time.Since(start)),
	)
	return results, nil
}
