package noaa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/scubot/tidechart/pkg/metrics"
)

const (
	STATIONS_URL     = "https://tidesandcurrents.noaa.gov/stations.html?type=All%20Stations&sort=0"
	STATION_HOME_URL = "https://tidesandcurrents.noaa.gov/stationhome.html"

	defaultTimeout = 10 * time.Second
	userAgent      = "tidechart (+https://github.com/scubot/tidechart)"

	// The listing page is a few megabytes; anything far past that is not NOAA.
	maxBodySize = 32 << 20
)

// Client talks to the NOAA prediction API and the station directory pages.
type Client struct {
	httpClient  *http.Client
	timeout     time.Duration
	dataURL     string
	stationsURL string
	homeURL     string
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithTimeout bounds every request made by the client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithDataURL points prediction queries at another datagetter endpoint.
func WithDataURL(u string) ClientOption {
	return func(c *Client) {
		c.dataURL = u
	}
}

// WithStationsURL overrides the station listing page.
func WithStationsURL(u string) ClientOption {
	return func(c *Client) {
		c.stationsURL = u
	}
}

// WithStationHomeURL overrides the station home page; the id is added as ?id=.
func WithStationHomeURL(u string) ClientOption {
	return func(c *Client) {
		c.homeURL = u
	}
}

// NewClient creates a client for the public NOAA endpoints.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		timeout:     defaultTimeout,
		dataURL:     NOAA_URL,
		stationsURL: STATIONS_URL,
		homeURL:     STATION_HOME_URL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListStations fetches the station listing and extracts every (id, name) pair.
func (c *Client) ListStations(ctx context.Context) ([]Listing, error) {
	body, err := c.get(ctx, "stations", c.stationsURL)
	if err != nil {
		return nil, err
	}
	return ParseListing(body), nil
}

// StationCoordinates fetches a station's home page and returns its coordinates in
// decimal degrees. A page without coordinates is a *StationParseError.
func (c *Client) StationCoordinates(ctx context.Context, id string) (lat, lon float64, err error) {
	body, err := c.get(ctx, "stationhome", c.homeURL+"?id="+id)
	if err != nil {
		return 0, 0, err
	}
	return ParseStationHome(id, body)
}

// get performs a bounded GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, endpoint, addr string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(endpoint, "error", time.Since(start).Seconds())
		if isTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w: %w", endpoint, ErrTimeout, err)
		}
		return nil, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.ObserveUpstream(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%s: %w: %w", endpoint, ErrTimeout, err)
		}
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}
	return body, nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
