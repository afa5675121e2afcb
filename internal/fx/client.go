// Package fx resolves historical USD/EUR exchange rates.
package fx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ErrRateFetch means the provider could not be reached or answered with something unusable.
var ErrRateFetch = errors.New("fetching historical rate")

const quotePath = "$.quotes.USDEUR"

// Fetcher returns the USDEUR quote (euros per dollar) published for a date.
type Fetcher interface {
	Fetch(ctx context.Context, date time.Time, accessKey string) (float64, error)
}

// Client fetches historical quotes from an exchangerate.host compatible endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewClient creates a Client. requestsPerSecond <= 0 disables throttling.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64, log zerolog.Logger) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
		log:     log.With().Str("client", "exchangerate").Logger(),
	}
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, date time.Time, accessKey string) (float64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRateFetch, err)
	}

	day := date.UTC().Format("2006-01-02")
	addr, err := c.url(day, accessKey)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRateFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: building request: %v", ErrRateFetch, err)
	}

	c.log.Debug().Str("date", day).Msg("Fetching historical rate")
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w for %s: %v", ErrRateFetch, day, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w for %s: provider returned %s", ErrRateFetch, day, resp.Status)
	}

	var body any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w for %s: decoding response: %v", ErrRateFetch, day, err)
	}

	quote, err := extractQuote(body)
	if err != nil {
		return 0, fmt.Errorf("%w for %s: %v", ErrRateFetch, day, err)
	}

	c.log.Info().Str("date", day).Float64("usdeur", quote).Msg("Fetched historical rate")
	return quote, nil
}

func (c *Client) url(day, accessKey string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing provider url: %w", err)
	}
	q := u.Query()
	q.Set("date", day)
	q.Set("access_key", accessKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// extractQuote reads quotes.USDEUR, surfacing the provider's own error when it reports one.
func extractQuote(body any) (float64, error) {
	if ok, err := jsonpath.Get("$.success", body); err == nil {
		if success, isBool := ok.(bool); isBool && !success {
			info, _ := jsonpath.Get("$.error.info", body)
			return 0, fmt.Errorf("provider error: %v", info)
		}
	}

	val, err := jsonpath.Get(quotePath, body)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %v", quotePath, err)
	}
	quote, ok := val.(float64)
	if !ok {
		return 0, fmt.Errorf("%s is not a number: %v", quotePath, val)
	}
	if quote <= 0 {
		return 0, fmt.Errorf("%s is not positive: %v", quotePath, quote)
	}
	return quote, nil
}
