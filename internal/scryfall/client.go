// Package scryfall is a minimal client for the Scryfall card catalog.
// It covers the single lookup the enricher needs: fetch one card by its
// Scryfall ID.
package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Scryfall API endpoint.
const DefaultBaseURL = "https://api.scryfall.com"

// ErrNotFound is returned when the catalog has no card for the given ID.
var ErrNotFound = errors.New("card not found in catalog")

// Client talks to the Scryfall API. Scryfall asks integrators to stay under
// roughly 10 requests per second, so every call goes through a rate limiter
// regardless of how wide the enricher fans out.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	maxRetries int
}

// Options configures a Client. Zero values select sensible defaults.
type Options struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	RPS        int
	MaxRetries int
}

// NewClient creates a catalog client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "card-list-service/1.0"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RPS <= 0 {
		opts.RPS = 10
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(opts.RPS)), 1),
		maxRetries: opts.MaxRetries,
	}
}

// Card matches the subset of Scryfall's card object the list service uses.
// Prices arrive as currency strings ("1.50") or null.
type Card struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Set             string `json:"set"`
	SetName         string `json:"set_name"`
	CollectorNumber string `json:"collector_number"`
	ImageURIs       *struct {
		Small  string `json:"small"`
		Normal string `json:"normal"`
		Large  string `json:"large"`
	} `json:"image_uris"`
	Prices struct {
		USD     *string `json:"usd"`
		USDFoil *string `json:"usd_foil"`
	} `json:"prices"`
}

// Card fetches a single card by Scryfall ID.
func (c *Client) Card(ctx context.Context, id string) (*Card, error) {
	u := fmt.Sprintf("%s/cards/%s", c.baseURL, id)

	var card Card
	if err := c.get(ctx, u, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// get performs a rate-limited GET with bounded retries on 429 and 5xx
// responses, decoding the JSON body into target.
func (c *Client) get(ctx context.Context, url string, target any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(target)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decoding catalog response: %w", err)
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("catalog returned status %d", resp.StatusCode)
			continue
		default:
			resp.Body.Close()
			return fmt.Errorf("catalog returned status %d", resp.StatusCode)
		}
	}
	return fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

// ParsePrice converts a catalog currency string to a float. Scryfall omits
// prices it has no offering for; nil or unparsable values normalize to 0,
// which callers treat as "no offering".
func ParsePrice(s *string) float64 {
	if s == nil || *s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return 0
	}
	return v
}
