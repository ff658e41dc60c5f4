package fmp

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://financialmodelingprep.com"
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "eod-connector/1.0"
	historicalPath   = "/api/v3/historical-price-full/{symbol}"
)

// Client is a client for the Financial Modeling Prep API.
type Client struct {
	// apiKey is sent as the apikey query parameter.
	apiKey string
	// rest is the underlying resty client. Retries are disabled.
	rest *resty.Client
	// limiter paces outgoing requests. nil means unlimited.
	limiter *rate.Limiter
}

// ClientOption is a configuration option for the FMP client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.rest.SetBaseURL(baseURL)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.rest.SetTimeout(timeout)
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.rest.Header.Add(key, value)
			}
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.rest.SetHeader("User-Agent", userAgent)
	}
}

// WithProxy routes requests through the HTTP proxy at proxyURL.
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.rest.SetProxy(proxyURL)
	}
}

// WithRateLimit caps outgoing requests to perMinute. Requests wait for a
// token rather than fail. Zero or negative disables pacing.
func WithRateLimit(perMinute int) ClientOption {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
}

// NewClient creates a new FMP client.
func NewClient(apiKey string, options ...ClientOption) *Client {
	rest := resty.New().
		SetBaseURL(defaultBaseURL).
		SetTimeout(defaultTimeout).
		SetRetryCount(0).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": defaultUserAgent,
		})

	c := &Client{apiKey: apiKey, rest: rest}
	for _, option := range options {
		option(c)
	}
	return c
}
