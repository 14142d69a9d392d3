// Package semrush is a client for the SEMrush phrase_this report, which
// returns search volume, cost-per-click and keyword difficulty for a phrase.
package semrush

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ferrors "facettes/internal/errors"
)

const (
	// DefaultEndpoint is the public API root.
	DefaultEndpoint = "https://api.semrush.com/"
	// DefaultTimeout bounds a single report call.
	DefaultTimeout = 30 * time.Second

	userAgent     = "FacettesAnalyser/1.0"
	exportColumns = "Ph,Nq,Cp,Kd"
)

// Config configures a Client.
type Config struct {
	Endpoint string
	APIKey   string
	Database string
	Timeout  time.Duration
}

// Metrics is one parsed phrase_this row.
type Metrics struct {
	Volume int
	CPC    float64
	KD     int
}

// Client calls the phrase_this report.
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
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Database returns the regional database queried by the client.
func (c *Client) Database() string {
	return c.cfg.Database
}

// Phrase fetches the metrics of phrase. Any transport, status or payload
// problem is reported as a PROVIDER_ERROR.
func (c *Client) Phrase(ctx context.Context, phrase string) (*Metrics, error) {
	u, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ConfigurationError, "invalid semrush endpoint", err)
	}
	q := u.Query()
	q.Set("type", "phrase_this")
	q.Set("key", c.cfg.APIKey)
	q.Set("phrase", phrase)
	q.Set("database", c.cfg.Database)
	q.Set("export_columns", exportColumns)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ProviderError, "failed to create semrush request", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ProviderError, "semrush request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ProviderError, "failed to read semrush response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ferrors.Newf(ferrors.ProviderError, "semrush returned status %d", resp.StatusCode)
	}

	m, err := ParsePhraseReport(body)
	if err != nil {
		return nil, err
	}

	if c.logger != nil {
		c.logger.Debug("semrush phrase",
			"phrase", phrase,
			"database", c.cfg.Database,
			"volume", m.Volume,
		)
	}
	return m, nil
}

// ParsePhraseReport parses the ';'-separated report: a header line then one
// data line with phrase, volume, cpc and kd. A first line starting with
// ERROR is the provider's error message.
func ParsePhraseReport(body []byte) (*Metrics, error) {
	text := strings.TrimSpace(string(body))
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		if strings.Contains(lines[0], "ERROR") {
			return nil, ferrors.New(ferrors.ProviderError, "semrush: "+strings.TrimSpace(lines[0]))
		}
		return nil, ferrors.New(ferrors.ProviderError, "semrush: empty report")
	}
	if strings.Contains(lines[0], "ERROR") {
		return nil, ferrors.New(ferrors.ProviderError, "semrush: "+strings.TrimSpace(lines[0]))
	}

	r := csv.NewReader(bytes.NewReader([]byte(lines[1])))
	r.Comma = ';'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	cols, err := r.Read()
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ProviderError, "semrush: malformed data line", err)
	}
	if len(cols) < 4 {
		return nil, ferrors.Newf(ferrors.ProviderError, "semrush: expected 4 columns, got %d", len(cols))
	}

	volume, err := parseNumber(cols[1])
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ProviderError, "semrush: invalid volume", err)
	}
	cpc, err := parseNumber(cols[2])
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ProviderError, "semrush: invalid cpc", err)
	}
	kd, err := parseNumber(cols[3])
	if err != nil {
		return nil, ferrors.Wrap(ferrors.ProviderError, "semrush: invalid kd", err)
	}

	return &Metrics{
		Volume: int(volume),
		CPC:    cpc,
		KD:     int(kd),
	}, nil
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, err)
	}
	return v, nil
}
