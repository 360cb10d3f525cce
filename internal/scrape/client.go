package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultUserAgent is a desktop browser user agent; the mobile pages carry
	// a different embedded layout.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultAcceptLanguage matches the caption language priority.
	DefaultAcceptLanguage = "ja-JP,ja;q=0.9,en;q=0.8"

	defaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"

	maxBodySize = 16 << 20
)

// ErrUnexpectedStatus is returned when a page fetch does not answer 200.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// Client fetches and scrapes YouTube pages. Requests are never retried.
type Client struct {
	baseURL          string
	imageBaseURL     string
	pageTimeout      time.Duration
	channelTimeout   time.Duration
	thumbnailTimeout time.Duration
	verbose          bool
	httpClient       *http.Client
}

// ClientOption customizes Client creation
type ClientOption func(*Client)

// WithBaseURL points page requests at another host (tests).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithImageBaseURL points thumbnail probes at another host (tests).
func WithImageBaseURL(u string) ClientOption {
	return func(c *Client) { c.imageBaseURL = u }
}

// WithTimeouts overrides the page, channel and thumbnail timeouts. Zero
// values keep the defaults.
func WithTimeouts(page, channel, thumbnail time.Duration) ClientOption {
	return func(c *Client) {
		if page > 0 {
			c.pageTimeout = page
		}
		if channel > 0 {
			c.channelTimeout = channel
		}
		if thumbnail > 0 {
			c.thumbnailTimeout = thumbnail
		}
	}
}

// WithHeaders sets the user agent and language preference sent on every
// request. Empty values keep the defaults.
func WithHeaders(userAgent, acceptLanguage string) ClientOption {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if acceptLanguage == "" {
		acceptLanguage = DefaultAcceptLanguage
	}
	return func(c *Client) {
		c.httpClient = &http.Client{Transport: &headerTransport{
			base:           http.DefaultTransport,
			userAgent:      userAgent,
			acceptLanguage: acceptLanguage,
		}}
	}
}

// WithVerbose enables diagnostic output.
func WithVerbose(verbose bool) ClientOption {
	return func(c *Client) { c.verbose = verbose }
}

// NewClient creates a scraping client with desktop browser headers.
func NewClient(options ...ClientOption) *Client {
	c := &Client{
		baseURL:          "https://www.youtube.com",
		imageBaseURL:     "https://img.youtube.com",
		pageTimeout:      15 * time.Second,
		channelTimeout:   20 * time.Second,
		thumbnailTimeout: 10 * time.Second,
	}
	WithHeaders(DefaultUserAgent, DefaultAcceptLanguage)(c)
	for _, option := range options {
		option(c)
	}
	return c
}

// headerTransport fills in browser-like headers the caller did not set.
type headerTransport struct {
	base           http.RoundTripper
	userAgent      string
	acceptLanguage string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", t.acceptLanguage)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", defaultAccept)
	}
	return t.base.RoundTrip(req)
}

// fetch performs a bounded GET and returns the body and status code.
func (c *Client) fetch(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// fetchPage is fetch with anything but 200 treated as a failure.
func (c *Client) fetchPage(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	body, status, err := c.fetch(ctx, rawURL, timeout)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w %d for %s", ErrUnexpectedStatus, status, rawURL)
	}
	return body, nil
}

func (c *Client) verbosef(format string, args ...any) {
	if c.verbose {
		fmt.Printf(format, args...)
	}
}
