// Package fetcher implements polite HTTP retrieval with retry on top of Colly.
package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/steamgram/steamgram/internal/metrics"
)

// Config controls collector behavior.
type Config struct {
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// HTTPError reports a non-2xx response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

// Client fetches pages through a shared Colly collector, retrying transient
// failures with jittered exponential backoff.
type Client struct {
	cfg           Config
	baseCollector *colly.Collector
	policy        RetryPolicy
	logger        *zap.Logger
}

// New builds a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	base := colly.NewCollector(colly.Async(false))
	base.AllowURLRevisit = true
	base.WithTransport(newHTTPTransport())
	base.SetRequestTimeout(cfg.Timeout)
	if cfg.UserAgent != "" {
		base.UserAgent = cfg.UserAgent
	}
	base.IgnoreRobotsTxt = true

	return &Client{
		cfg:           cfg,
		baseCollector: base,
		policy:        NewExponentialRetryPolicy(cfg.MaxRetries, cfg.BackoffInitial, cfg.BackoffMax),
		logger:        logger,
	}
}

// Get retrieves url, retrying per the configured budget. The returned body is
// the raw response payload of the final successful attempt.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		body, err := c.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !c.policy.ShouldRetry(err, attempt) {
			break
		}
		metrics.ObserveFetchRetry()
		c.logger.Debug("retrying fetch",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
		case <-time.After(c.policy.Backoff(attempt)):
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	collector := c.baseCollector.Clone()

	var (
		body     []byte
		fetchErr error
	)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		r.Headers.Set("Cache-Control", "no-cache")
	})
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			fetchErr = &HTTPError{URL: url, StatusCode: r.StatusCode}
			return
		}
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if fetchErr != nil {
			return nil, fetchErr
		}
		if err != nil {
			return nil, fmt.Errorf("visit %s: %w", url, err)
		}
		return body, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
