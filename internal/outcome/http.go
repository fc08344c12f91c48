package outcome

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"matchday-bot/internal/model"
)

const (
	defaultRateLimit = 2.0 // requests per second
	defaultBurst     = 2
	maxBodyBytes     = 1 << 20
)

// HTTPProvider fetches outcomes from a statistics API:
// GET {base}/matches/{id} with an X-Api-Key header.
type HTTPProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures the HTTP provider.
type ClientOption func(*HTTPProvider)

// WithAPIKey sets the key sent in X-Api-Key.
func WithAPIKey(key string) ClientOption {
	return func(p *HTTPProvider) {
		p.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(p *HTTPProvider) {
		p.httpClient = client
	}
}

// WithTimeout sets the request timeout of the default client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(p *HTTPProvider) {
		if timeout > 0 {
			p.httpClient.Timeout = timeout
		}
	}
}

// WithRateLimit sets custom rate limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(p *HTTPProvider) {
		if rps > 0 && burst > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

// NewHTTPProvider creates a provider for the API at baseURL.
func NewHTTPProvider(baseURL string, opts ...ClientOption) *HTTPProvider {
	p := &HTTPProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Lookup fetches and validates one match outcome.
func (p *HTTPProvider) Lookup(ctx context.Context, matchID string) (*model.MatchOutcome, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	u := p.baseURL + "/matches/" + url.PathEscape(matchID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-Api-Key", p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return Decode(body)
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, matchID)
	default:
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(body))
	}
}
