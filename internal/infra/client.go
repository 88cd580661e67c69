// Package infra provides shared infrastructure for the terminal: the
// throttled HTTP client, the on-device key-value store, and the
// stale-while-revalidate cache layered on top of it.
package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ClientConfig tunes the throttled fetch client.
type ClientConfig struct {
	MinRequestGap  time.Duration // minimum gap between outbound requests
	Retries        int           // attempts per call
	RetryDelay     time.Duration // fixed delay after non-rate-limit failures
	RateLimitDelay time.Duration // base delay after HTTP 429, scaled by attempt
	Timeout        time.Duration // per-request timeout
}

// DefaultClientConfig mirrors the public-API etiquette the free CoinGecko
// and DeFiLlama tiers expect.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		MinRequestGap:  2 * time.Second,
		Retries:        3,
		RetryDelay:     2 * time.Second,
		RateLimitDelay: 5 * time.Second,
		Timeout:        15 * time.Second,
	}
}

// HTTPError is returned when the upstream answers with a non-2xx status
// after all retries are exhausted.
type HTTPError struct {
	URL    string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Status)
}

// Client issues outbound GET requests with a process-wide minimum gap,
// bounded retries, and per-URL de-duplication of concurrent calls.
// All providers share one instance so the gap holds across them.
type Client struct {
	cfg  ClientConfig
	http *http.Client

	mu       sync.Mutex
	nextSlot time.Time
	inflight map[string]struct{}
}

// NewClient creates a throttled fetch client.
func NewClient(cfg ClientConfig) *Client {
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout},
		inflight: make(map[string]struct{}),
	}
}

// FetchJSON performs a throttled GET and returns the raw response body.
// A second call for a URL already in flight returns (nil, nil) immediately;
// callers treat that as "no new data, keep using cache".
func (c *Client) FetchJSON(ctx context.Context, url string) ([]byte, error) {
	c.mu.Lock()
	if _, busy := c.inflight[url]; busy {
		c.mu.Unlock()
		return nil, nil
	}
	c.inflight[url] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, url)
		c.mu.Unlock()
	}()

	var lastErr error
	for attempt := 1; attempt <= c.cfg.Retries; attempt++ {
		if err := c.throttle(ctx); err != nil {
			return nil, err
		}

		body, status, err := c.get(ctx, url)
		switch {
		case err != nil:
			lastErr = err
		case status == http.StatusTooManyRequests:
			lastErr = &HTTPError{URL: url, Status: status}
			// Rate-limited: back off harder each attempt.
			if err := sleep(ctx, time.Duration(attempt)*c.cfg.RateLimitDelay); err != nil {
				return nil, err
			}
			continue
		case status < 200 || status > 299:
			lastErr = &HTTPError{URL: url, Status: status}
		default:
			return body, nil
		}

		if attempt < c.cfg.Retries {
			if err := sleep(ctx, c.cfg.RetryDelay); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

// throttle reserves the next dispatch slot so that consecutive requests,
// regardless of the calling goroutine, start at least MinRequestGap apart.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	wait := c.nextSlot.Sub(now)
	if wait < 0 {
		wait = 0
	}
	c.nextSlot = now.Add(wait + c.cfg.MinRequestGap)
	c.mu.Unlock()

	return sleep(ctx, wait)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read %s: %w", url, err)
	}
	return body, resp.StatusCode, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
