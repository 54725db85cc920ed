// Package httpclient builds verification requests and sends them without
// following HTTP redirects or retrying. Redirect and retry decisions belong
// to the verification pipeline.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"dlcheck/internal/core/domain"
	"dlcheck/internal/platform/errors"
	"dlcheck/internal/platform/logx"
)

// DefaultUserAgent is the static browser-like identification header sent
// with every probe.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_10_1) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/41.0.2227.1 Safari/537.36"

// Config holds the configuration for the HTTP transport.
type Config struct {
	// Timeout is the fixed per-request timeout.
	// Default: 10 seconds
	Timeout time.Duration

	// PoolSize bounds concurrent connections per host. Excess requests
	// queue for a free connection.
	// Default: 5
	PoolSize int

	// UserAgent is the User-Agent header value.
	// Default: DefaultUserAgent
	UserAgent string

	// RateLimit is the maximum requests per second across all hosts.
	// 0 means no rate limiting.
	RateLimit float64

	// RateLimitBurst is the burst size for rate limiting.
	// Default: 1
	RateLimitBurst int

	// MaxBodyBytes caps how much of a response body is read.
	// Default: 2 MiB
	MaxBodyBytes int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		PoolSize:       5,
		UserAgent:      DefaultUserAgent,
		RateLimit:      0,
		RateLimitBurst: 1,
		MaxBodyBytes:   2 << 20,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.PoolSize <= 0 {
		c.PoolSize = d.PoolSize
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = d.RateLimitBurst
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	return c
}

type proxyKey struct{}

// Client sends a RequestSpec and returns the full response. A non-2xx status
// is a normal result; only transport failures are errors.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      logx.Logger
	config      Config
}

// New creates a new HTTP client with the given configuration.
func New(config Config, logger logx.Logger) *Client {
	config = config.withDefaults()

	transport := &http.Transport{
		Proxy:               proxyFromContext,
		MaxConnsPerHost:     config.PoolSize,
		MaxIdleConnsPerHost: config.PoolSize,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: config.Timeout,
	}

	httpClient := &http.Client{
		Transport: transport,
		// Redirects are interpreted by providers, never followed here.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	var rateLimiter *rate.Limiter
	if config.RateLimit > 0 {
		rateLimiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimitBurst)
	}

	return &Client{
		httpClient:  httpClient,
		rateLimiter: rateLimiter,
		logger:      logger.With("component", "httpclient"),
		config:      config,
	}
}

// proxyFromContext returns the proxy attached to the request by Do. For a
// plain http target the request goes to the proxy in absolute form (no
// tunnel); https targets always use CONNECT.
func proxyFromContext(req *http.Request) (*url.URL, error) {
	if u, ok := req.Context().Value(proxyKey{}).(*url.URL); ok {
		return u, nil
	}
	return nil, nil
}

// Do performs one request. It never retries and never follows redirects.
func (c *Client) Do(ctx context.Context, spec domain.RequestSpec) (*domain.Response, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(errors.Classify(err), "rate limit wait failed")
		}
	}

	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = c.config.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if spec.Proxy != "" {
		proxyURL, err := url.Parse(spec.Proxy)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "proxy for %s: %v", spec.URL, err)
		}
		ctx = context.WithValue(ctx, proxyKey{}, proxyURL)
	}

	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if spec.Body != "" {
		body = strings.NewReader(spec.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, spec.URL, body)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "failed to create request for %s %s: %v", method, spec.URL, err)
	}

	for key, values := range spec.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug("HTTP request",
		"method", method,
		"url", spec.URL,
		"proxied", spec.Proxy != "",
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Debug("HTTP request failed",
			"method", method,
			"url", spec.URL,
			"error", err.Error(),
			"duration_ms", duration.Milliseconds(),
		)
		return nil, errors.Wrapf(errors.Classify(err), "%s %s", method, spec.URL)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxBodyBytes))
	if err != nil {
		return nil, errors.Wrapf(errors.Mark(errors.Classify(err), errors.ErrInvalidResponse), "read body %s", spec.URL)
	}

	c.logger.Debug("HTTP response received",
		"method", method,
		"url", spec.URL,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration_ms", duration.Milliseconds(),
	)

	return &domain.Response{
		URL:        spec.URL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       data,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// String returns a human-readable representation of the client configuration.
func (c *Client) String() string {
	return fmt.Sprintf("HTTPClient{timeout=%s, pool_size=%d, rate_limit=%.1f/s}",
		c.config.Timeout,
		c.config.PoolSize,
		c.config.RateLimit,
	)
}
