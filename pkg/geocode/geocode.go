// Package geocode turns free-text place names into coordinates using a Nominatim
// search endpoint. Every request, from any caller, goes through one rate limiter so the
// provider's one-request-per-second policy holds for the whole process.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"golang.org/x/time/rate"

	"github.com/scubot/tidechart/pkg/metrics"
)

const (
	NominatimURL = "https://nominatim.openstreetmap.org/search"

	defaultMinDelay = time.Second
	defaultTimeout  = 5 * time.Second
)

var (
	// ErrNoResults means the provider answered but knew no such place.
	ErrNoResults = errors.New("no results found")
	// ErrTimeout marks a request that ran out of time; it is safe to retry.
	ErrTimeout = errors.New("request timed out")
)

// GeocodeError wraps any failure to geocode Query.
type GeocodeError struct {
	Query string
	Err   error
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("geocoding %q: %v", e.Query, e.Err)
}

func (e *GeocodeError) Unwrap() error {
	return e.Err
}

// Client is a rate limited Nominatim client. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// Option configures the Client
type Option func(*Client)

// WithBaseURL points the client at another Nominatim-compatible search endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithUserAgent sets the identifying User-Agent Nominatim requires.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMinDelay sets the minimum spacing between two requests. Nominatim's usage
// policy allows one request per second, so shorter delays are raised to that.
func WithMinDelay(d time.Duration) Option {
	return func(c *Client) {
		d = max(d, defaultMinDelay)
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithTimeout bounds each request, not counting time spent waiting for the limiter.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    NominatimURL,
		userAgent:  "scubot",
		timeout:    defaultTimeout,
		limiter:    rate.NewLimiter(rate.Every(defaultMinDelay), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode returns the best match for query as a (longitude, latitude) point. It blocks
// until the rate limiter allows a request; if ctx ends first the reserved slot is
// handed back and no request is made.
func (c *Client) Geocode(ctx context.Context, query string) (orb.Point, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.ObserveGeocode("cancelled")
		return orb.Point{}, &GeocodeError{Query: query, Err: err}
	}

	p, err := c.lookup(ctx, query)
	switch {
	case err == nil:
		metrics.ObserveGeocode("ok")
	case errors.Is(err, ErrNoResults):
		metrics.ObserveGeocode("empty")
	default:
		metrics.ObserveGeocode("error")
	}
	if err != nil {
		return orb.Point{}, &GeocodeError{Query: query, Err: err}
	}
	return p, nil
}

func (c *Client) lookup(ctx context.Context, query string) (orb.Point, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	addr, err := url.Parse(c.baseURL)
	if err != nil {
		return orb.Point{}, err
	}
	vals := make(url.Values)
	vals.Set("q", query)
	vals.Set("format", "json")
	vals.Set("limit", "1")
	addr.RawQuery = vals.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr.String(), nil)
	if err != nil {
		return orb.Point{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream("geocode", "error", time.Since(start).Seconds())
		var ne net.Error
		if (errors.As(err, &ne) && ne.Timeout()) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return orb.Point{}, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return orb.Point{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveUpstream("geocode", strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		return orb.Point{}, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var places []place
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&places); err != nil {
		return orb.Point{}, fmt.Errorf("failed to parse geocoder response: %w", err)
	}
	if len(places) == 0 {
		return orb.Point{}, ErrNoResults
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("latitude %q not a float: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("longitude %q not a float: %w", places[0].Lon, err)
	}
	return orb.Point{lon, lat}, nil
}
