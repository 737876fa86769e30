// Package scryfall provides a rate-limited client for the Scryfall card API,
// used as the external name resolution service.
package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cfle/mtg-oracle/internal/models"
	"golang.org/x/time/rate"
)

const (
	// Scryfall asks clients to stay under 10 requests per second.
	rateLimitDelay = 100 * time.Millisecond
	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 8 * time.Second
)

// Client is a Scryfall API client with rate limiting and retry on 429.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
}

// NewClient creates a client for the API at baseURL with a per-request timeout.
func NewClient(baseURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		baseURL:    baseURL,
		userAgent:  userAgent,
	}
}

// NamedFuzzy resolves a free-text card name via the fuzzy named-card endpoint.
// At most one canonical card comes back; an unrecognizable name is a
// *NotFoundError, any other failure is a transport or API error.
func (c *Client) NamedFuzzy(ctx context.Context, name string) (*models.Card, error) {
	u := fmt.Sprintf("%s/cards/named?fuzzy=%s", c.baseURL, url.QueryEscape(name))
	var card models.Card
	if err := c.doRequest(ctx, u, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// doRequest performs a GET with rate limiting, decoding the JSON response into
// result. 429 responses are retried with exponential backoff; 404 becomes a
// *NotFoundError so callers can tell "no such card" from service failure.
func (c *Client) doRequest(ctx context.Context, u string, result interface{}) error {
	backoff := initialBackoff
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			return nil

		case http.StatusNotFound:
			_ = resp.Body.Close()
			return &NotFoundError{Query: u}

		case http.StatusTooManyRequests:
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
			if attempt < maxRetries {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(backoff):
				}
				if backoff *= 2; backoff > maxBackoff {
					backoff = maxBackoff
				}
				continue
			}
			return lastErr

		default:
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			var apiErr APIError
			if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
				return &apiErr
			}
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
