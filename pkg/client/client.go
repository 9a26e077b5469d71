// Package client provides the HTTP transport for the platform's REST APIs:
// JSON bodies, session cookie, CSRF-challenge retry, fixed-delay rate-limit
// retry, backoff for server and network errors, and an optional Redis
// response cache.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/rbx-client/pkg/cache"
	"github.com/Sternrassler/rbx-client/pkg/logging"
	"github.com/Sternrassler/rbx-client/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbx_requests_total",
		Help: "Total platform requests by host and status",
	}, []string{"host", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rbx_request_duration_seconds",
		Help:    "Platform request duration in seconds by host",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"host"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbx_errors_total",
		Help: "Total platform errors by class",
	}, []string{"class"})
)

const (
	// DefaultUserAgent is the User-Agent the platform's web clients send.
	DefaultUserAgent = "Roblox/WinInet"

	// DefaultReferer is sent on every request.
	DefaultReferer = "https://www.roblox.com/"

	// SessionCookie carries the session token.
	SessionCookie = ".ROBLOSECURITY"

	csrfHeader = "X-CSRF-Token"
)

// Client is the platform HTTP client. It is safe for concurrent use.
type Client struct {
	httpClient  *http.Client
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	config      Config
	logger      zerolog.Logger
	scope       string

	csrfMu    sync.RWMutex
	csrfToken string
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header (REQUIRED)
	UserAgent string

	// Referer header. Defaults to DefaultReferer.
	Referer string

	// Token is the opaque session credential sent as the .ROBLOSECURITY cookie.
	// Empty for anonymous use.
	Token string

	// Redis enables the shared response cache and shared rate limit state.
	// Optional.
	Redis *redis.Client

	// ResponseCacheTTL is used when a response carries no Expires header.
	ResponseCacheTTL time.Duration

	// Rate limiting (HTTP 429): fixed delay, bounded re-issues.
	RateLimitDelay      time.Duration
	MaxRateLimitRetries int

	// Retry for 5xx and network errors.
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Timeout per HTTP attempt.
	Timeout time.Duration

	// DebugRequests logs every request at info level.
	DebugRequests bool
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(redis *redis.Client, userAgent string) Config {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return Config{
		Redis:               redis,
		UserAgent:           userAgent,
		Referer:             DefaultReferer,
		ResponseCacheTTL:    cache.DefaultTTL,
		RateLimitDelay:      ratelimit.DefaultDelay,
		MaxRateLimitRetries: ratelimit.DefaultMaxRetries,
		MaxRetries:          3,
		InitialBackoff:      1 * time.Second,
		MaxBackoff:          30 * time.Second,
		Timeout:             30 * time.Second,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("%w: user-agent is required", ErrInvalidConfig)
	}
	if c.MaxRateLimitRetries < 0 {
		return fmt.Errorf("%w: max_rate_limit_retries must be >= 0 (got %d)", ErrInvalidConfig, c.MaxRateLimitRetries)
	}
	if c.RateLimitDelay < 0 {
		return fmt.Errorf("%w: rate_limit_delay must be >= 0 (got %s)", ErrInvalidConfig, c.RateLimitDelay)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must be >= 0 (got %d)", ErrInvalidConfig, c.MaxRetries)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be >= 0 (got %s)", ErrInvalidConfig, c.Timeout)
	}
	return nil
}

// New creates a new platform client.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Referer == "" {
		cfg.Referer = DefaultReferer
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = 30 * time.Second
	}

	logger := logging.NewLogger(logging.ComponentClient)

	rateLimiter := ratelimit.NewTracker(cfg.Redis, ratelimit.Policy{
		Delay:      cfg.RateLimitDelay,
		MaxRetries: cfg.MaxRateLimitRetries,
	}, logging.NewLogger(logging.ComponentRateLimit))

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rateLimiter,
		cache:       cacheManager,
		config:      cfg,
		logger:      logger,
		scope:       cache.ScopeForToken(cfg.Token),
	}, nil
}

type bypassCacheKey struct{}

// WithoutCachedResponse marks ctx so that GET requests skip the response cache
// lookup. The fresh response is still written back.
func WithoutCachedResponse(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassCacheKey{}, true)
}

func bypassCache(ctx context.Context) bool {
	v, _ := ctx.Value(bypassCacheKey{}).(bool)
	return v
}

// Get performs a GET request and returns the JSON body.
// params are merged into the URL's query, overriding duplicate keys.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	return c.Do(ctx, http.MethodGet, rawURL, params, nil)
}

// Post performs a POST request with payload encoded as JSON.
func (c *Client) Post(ctx context.Context, rawURL string, payload any) ([]byte, error) {
	return c.Do(ctx, http.MethodPost, rawURL, nil, payload)
}

// Do performs a request with retries and caching. An empty response body is
// returned as "{}".
func (c *Client) Do(ctx context.Context, method, rawURL string, params url.Values, payload any) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q[k] = v
		}
		u.RawQuery = q.Encode()
	}

	var cacheKey cache.CacheKey
	useCache := c.cache != nil && method == http.MethodGet
	if useCache {
		cacheKey = cache.KeyFor(u, c.scope)
	}
	if useCache && !bypassCache(ctx) {
		entry, err := c.cache.Get(ctx, cacheKey)
		switch {
		case err == nil:
			c.logger.Debug().Str("host", u.Host).Str("path", u.Path).Msg("Response cache hit")
			return entry.Data, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("path", u.Path).Msg("Response cache get error")
		}
	}

	var body []byte
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
	}

	var (
		status int
		header http.Header
		data   []byte
	)

	err = c.retryWithBackoff(ctx, func(attempt int) (ErrorClass, error) {
		var sendErr error
		status, header, data, sendErr = c.send(ctx, method, u, body)
		if sendErr != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(u.Host, "network_error").Inc()
			return ErrorClassNetwork, sendErr
		}

		requestsTotal.WithLabelValues(u.Host, strconv.Itoa(status)).Inc()
		if err := c.rateLimiter.Observe(ctx, status, header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to record rate limit state")
		}

		errorClass := classifyStatus(status, header)
		if errorClass == "" {
			return "", nil
		}

		errorsTotal.WithLabelValues(string(errorClass)).Inc()
		if errorClass == ErrorClassCSRF {
			c.setCSRFToken(header.Get(csrfHeader))
		}

		return errorClass, newAPIError(status, errorClass, data)
	})
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}

	if useCache && cache.Cacheable(method, status, header) {
		entry, err := cache.ResponseToEntry(status, header, data, c.config.ResponseCacheTTL)
		if err == nil {
			err = c.cache.Set(ctx, cacheKey, entry)
		}
		if err != nil {
			c.logger.Warn().Err(err).Str("path", u.Path).Msg("Failed to cache response")
		}
	}

	return data, nil
}

// send performs a single HTTP attempt.
func (c *Client) send(ctx context.Context, method string, u *url.URL, body []byte) (int, http.Header, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Referer", c.config.Referer)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.CSRFToken(); token != "" {
		req.Header.Set(csrfHeader, token)
	}
	if c.config.Token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: c.config.Token})
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(u.Host).Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("read response body: %w", err)
	}

	if c.config.DebugRequests {
		c.logger.Info().
			Str("method", method).
			Str("host", u.Host).
			Str("path", u.Path).
			Str("query", u.RawQuery).
			Int("status_code", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Msg("Platform request")
	}

	return resp.StatusCode, resp.Header, data, nil
}

// CSRFToken returns the last token received in a CSRF challenge.
func (c *Client) CSRFToken() string {
	c.csrfMu.RLock()
	defer c.csrfMu.RUnlock()
	return c.csrfToken
}

func (c *Client) setCSRFToken(token string) {
	c.csrfMu.Lock()
	c.csrfToken = token
	c.csrfMu.Unlock()
	c.logger.Debug().Msg("Stored CSRF token from challenge")
}

// Authenticated reports whether a session token is configured.
func (c *Client) Authenticated() bool {
	return c.config.Token != ""
}

// RateLimiter returns the rate limit tracker.
func (c *Client) RateLimiter() *ratelimit.Tracker {
	return c.rateLimiter
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetCache returns the response cache manager, nil without Redis.
func (c *Client) GetCache() *cache.Manager {
	return c.cache
}
