// Package suggest is a client for the Google autocomplete endpoint in its
// Firefox JSON flavour: [query, [suggestion, ...]].
package suggest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	ferrors "facettes/internal/errors"
)

const (
	// DefaultEndpoint is the public autocomplete endpoint.
	DefaultEndpoint = "https://suggestqueries.google.com/complete/search"
	// DefaultTimeout bounds a single call.
	DefaultTimeout = 15 * time.Second

	userAgent = "FacettesAnalyser/1.0"
)

// Config configures a Client.
type Config struct {
	Endpoint string
	Lang     string
	Country  string
	Timeout  time.Duration
}

// Client fetches autocomplete suggestions.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// New creates a client. Empty endpoint and timeout use the defaults.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Locale returns the language and country sent with each request.
func (c *Client) Locale() (lang, country string) {
	return c.cfg.Lang, c.cfg.Country
}

// Suggestions returns the suggestions for query in provider order.
func (c *Client) Suggestions(ctx context.Context, query string) ([]string, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ConfigurationError, "invalid suggest endpoint", err)
	}
	q := u.Query()
	q.Set("client", "firefox")
	q.Set("q", query)
	q.Set("hl", c.cfg.Lang)
	q.Set("gl", c.cfg.Country)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ProviderError, "failed to create suggest request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ProviderError, "suggest request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ferrors.Newf(ferrors.ProviderError, "suggest returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ProviderError, "failed to read suggest response", err)
	}

	suggestions, err := ParseResponse(body)
	if err != nil {
		return nil, err
	}
	if c.logger != nil {
		c.logger.Debug("suggest", "query", query, "count", len(suggestions))
	}
	return suggestions, nil
}

// ParseResponse decodes [query, [suggestions...]]. Extra trailing elements
// are ignored.
func ParseResponse(body []byte) ([]string, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return nil, ferrors.Wrap(ferrors.ProviderError, "suggest: malformed payload", err)
	}
	if len(parts) < 2 {
		return nil, ferrors.Newf(ferrors.ProviderError, "suggest: expected 2 elements, got %d", len(parts))
	}

	var suggestions []string
	if err := json.Unmarshal(parts[1], &suggestions); err != nil {
		return nil, ferrors.Wrap(ferrors.ProviderError, "suggest: malformed suggestion list", err)
	}
	if suggestions == nil {
		suggestions = []string{}
	}
	return suggestions, nil
}
