// Package edinet talks to the EDINET v2 disclosure API: listing the
// filings submitted on a day and downloading their XBRL archives. EDINET
// asks for at most one request per second, so the client carries a rate
// limiter and retries transient failures with exponential backoff.
package edinet

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://disclosure.edinet-fsa.go.jp/api/v2"

	// docTypeSecuritiesReport is the EDINET code for 有価証券報告書.
	docTypeSecuritiesReport = "120"

	listTimeout     = 30 * time.Second
	downloadTimeout = 60 * time.Second
)

// Options configure the API client. Zero values fall back to the
// documented EDINET defaults.
type Options struct {
	APIKey            string
	BaseURL           string
	UserAgent         string
	MaxRetries        int
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client is a rate-limited EDINET v2 API client. Safe for concurrent use.
type Client struct {
	opts    Options
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient builds a Client with the given options.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "edinet-cli/1.0"
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = downloadTimeout
	}
	return &Client{
		opts: opts,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}
}

// ListFilings returns the securities reports submitted on date
// (YYYY-MM-DD). The daily feed carries every disclosure type; only annual
// securities reports from listed companies come back.
func (c *Client) ListFilings(ctx context.Context, date string) ([]Filing, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("date", date)
	params.Set("type", "2")
	body, err := c.get(ctx, c.opts.BaseURL+"/documents.json", params)
	if err != nil {
		return nil, eris.Wrapf(err, "edinet: list filings for %s", date)
	}
	defer body.Close() //nolint:errcheck

	var payload documentsResponse
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, eris.Wrap(err, "edinet: decode documents listing")
	}

	filings := make([]Filing, 0, len(payload.Results))
	for _, f := range payload.Results {
		if f.IsSecuritiesReport() {
			filings = append(filings, f)
		}
	}
	zap.L().Info("listed filings",
		zap.String("date", date),
		zap.Int("total", len(payload.Results)),
		zap.Int("securities_reports", len(filings)),
	)
	return filings, nil
}

// DownloadArchive fetches the XBRL ZIP container for one document.
func (c *Client) DownloadArchive(ctx context.Context, docID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("type", "1")
	body, err := c.get(ctx, c.opts.BaseURL+"/documents/"+docID, params)
	if err != nil {
		return nil, eris.Wrapf(err, "edinet: download document %s", docID)
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrapf(err, "edinet: read document %s", docID)
	}
	zap.L().Debug("downloaded archive",
		zap.String("doc_id", docID),
		zap.Int("bytes", len(data)),
	)
	return data, nil
}

func (c *Client) get(ctx context.Context, rawURL string, params url.Values) (io.ReadCloser, error) {
	if c.opts.APIKey != "" {
		params.Set("Subscription-Key", c.opts.APIKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, eris.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return resp.Body, nil
}

func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := range c.opts.MaxRetries {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter wait")
		}

		cloned := req.Clone(ctx)
		resp, err := c.client.Do(cloned)
		if err != nil {
			lastErr = err
			zap.L().Warn("request failed, retrying",
				zap.String("url", req.URL.Path),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			c.backoff(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, req.URL.Path)
			zap.L().Warn("retryable status",
				zap.String("url", req.URL.Path),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			c.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}
	return nil, eris.Wrap(lastErr, "all retries exhausted")
}

func (c *Client) backoff(ctx context.Context, attempt int) {
	base := time.Second
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
