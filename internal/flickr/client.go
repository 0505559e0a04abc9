package flickr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"codeberg.org/snonux/flickfinder/internal/geo"
	"codeberg.org/snonux/flickfinder/internal/metrics"
)

const (
	DefaultBaseURL       = "https://api.flickr.com/services/rest"
	DefaultTimeout       = 30 * time.Second
	DefaultMaxImageBytes = 10 * 1024 * 1024

	maxResponseBytes = 8 * 1024 * 1024

	breakerFailures = 5
	breakerCooldown = 30 * time.Second
)

// Rand picks the random page and photo. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// globalRand uses the goroutine-safe top-level math/rand/v2 source
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Client talks to the Flickr REST API
type Client struct {
	apiKey        string
	baseURL       string
	httpClient    *http.Client
	breaker       *gobreaker.CircuitBreaker
	rng           Rand
	maxImageBytes int64
	log           zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another endpoint, e.g. a test server
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRand replaces the random source used for page and photo selection
func WithRand(r Rand) Option {
	return func(c *Client) { c.rng = r }
}

// WithMaxImageBytes limits the size of downloaded images
func WithMaxImageBytes(n int64) Option {
	return func(c *Client) { c.maxImageBytes = n }
}

// WithLogger sets the fallback logger for requests without one in their context
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a new Flickr API client
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:        apiKey,
		baseURL:       DefaultBaseURL,
		httpClient:    &http.Client{Timeout: DefaultTimeout},
		rng:           globalRand{},
		maxImageBytes: DefaultMaxImageBytes,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "flickr-api",
		Timeout: breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		IsSuccessful: func(err error) bool {
			// Only remote failures count against the API.
			return err == nil || !errors.Is(err, ErrNetwork) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.Set(float64(to))
			c.log.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("circuit breaker state changed")
		},
	})

	return c, nil
}

// PhraseParameters builds search arguments for a text search
func (c *Client) PhraseParameters(text string) SearchParameters {
	return NewPhraseParameters(c.apiKey, text)
}

// LocationParameters builds search arguments for a bounding box search
func (c *Client) LocationParameters(bbox geo.BoundingBox) SearchParameters {
	return NewLocationParameters(c.apiKey, bbox)
}

// Search runs the two-phase search: the first request learns the page count,
// the second fetches one page chosen uniformly at random and one photo is
// picked from it, also uniformly at random. Any failure ends the search.
func (c *Client) Search(ctx context.Context, params SearchParameters) (Result, error) {
	log := c.logger(ctx).With().Stringer("mode", params.Mode()).Logger()

	first, err := c.fetchCollection(ctx, params)
	if err != nil {
		log.Error().Err(err).Msg("page count lookup failed")
		return Result{}, err
	}

	pages := clampPages(int(first.Pages))
	page := 1 + c.rng.IntN(pages)
	log.Debug().Int("pages", int(first.Pages)).Int("usable_pages", pages).Int("page", page).Msg("picked random page")

	paged, err := params.WithPage(page)
	if err != nil {
		return Result{}, err
	}
	coll, err := c.fetchCollection(ctx, paged)
	if err != nil {
		log.Error().Err(err).Int("page", page).Msg("paged search failed")
		return Result{}, err
	}

	if coll.Total != nil && *coll.Total == 0 {
		log.Info().Msg("no photos returned")
		return Result{}, ErrNoResults
	}

	entries, err := coll.entries()
	if err != nil {
		log.Error().Err(err).Msg("cannot read photo list")
		return Result{}, err
	}
	if len(entries) == 0 {
		log.Info().Int("page", page).Msg("sampled page is empty")
		return Result{}, ErrNoResults
	}

	photo, err := parsePhoto(entries[c.rng.IntN(len(entries))])
	if err != nil {
		log.Error().Err(err).Msg("picked photo is unusable")
		return Result{}, err
	}

	total := len(entries)
	if coll.Total != nil {
		total = int(*coll.Total)
	}

	log.Info().Str("photo_id", photo.ID).Int("page", page).Int("total", total).Msg("picked photo")
	return Result{Photo: photo, Total: total, Page: page, Pages: pages}, nil
}

// clampPages limits the usable page range to [1, MaxPages]
func clampPages(pages int) int {
	if pages < 1 {
		return 1
	}
	if pages > MaxPages {
		return MaxPages
	}
	return pages
}

func (c *Client) fetchCollection(ctx context.Context, params SearchParameters) (photoCollection, error) {
	query, err := BuildQuery(params.Map())
	if err != nil {
		return photoCollection{}, err
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.get(ctx, c.baseURL+query)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return photoCollection{}, fmt.Errorf("%w: %w", ErrNetwork, err)
		}
		return photoCollection{}, err
	}

	return parseCollection(body.([]byte))
}

// get performs one API request and returns the raw body
func (c *Client) get(ctx context.Context, reqURL string) (body []byte, err error) {
	started := time.Now()
	status := "error"
	defer func() { metrics.ObserveCall(metrics.APISearch, status, started) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", ErrNetwork, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger(ctx).Warn().Err(cerr).Msg("close response body failed")
		}
	}()

	status = strconv.Itoa(resp.StatusCode)
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{RetryAfter: resp.Header.Get("Retry-After")}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrNetwork, resp.Status)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrNetwork, err)
	}
	return body, nil
}

// logger prefers the request scoped logger stored in ctx
func (c *Client) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &c.log
}
