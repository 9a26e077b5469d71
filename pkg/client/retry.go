package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbx_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rbx_retry_backoff_seconds",
		Help:    "Backoff duration for retries by error class",
		Buckets: []float64{0, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbx_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// RetryConfig holds the configuration for retry logic.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// InitialBackoff is the initial backoff duration.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration.
	MaxBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	// 1 keeps the delay fixed.
	BackoffMultiplier float64

	// Jitter randomizes each delay by ±20%.
	Jitter bool
}

// RetryConfigForErrorClass returns the retry configuration for an error class
// under the client's Config.
func (c *Client) RetryConfigForErrorClass(errorClass ErrorClass) RetryConfig {
	switch errorClass {
	case ErrorClassRateLimit:
		policy := c.rateLimiter.Policy()
		return RetryConfig{
			MaxAttempts:       policy.MaxRetries + 1,
			InitialBackoff:    policy.Delay,
			MaxBackoff:        policy.Delay,
			BackoffMultiplier: 1,
		}
	case ErrorClassCSRF:
		// The fresh token is stored before the re-issue; no wait needed.
		return RetryConfig{
			MaxAttempts:       2,
			BackoffMultiplier: 1,
		}
	case ErrorClassServer, ErrorClassNetwork:
		return RetryConfig{
			MaxAttempts:       c.config.MaxRetries + 1,
			InitialBackoff:    c.config.InitialBackoff,
			MaxBackoff:        c.config.MaxBackoff,
			BackoffMultiplier: 2.0,
			Jitter:            true,
		}
	default:
		return RetryConfig{MaxAttempts: 1}
	}
}

// attemptFunc performs one request attempt. A nil error means success.
// A non-nil error must come with its class.
type attemptFunc func(attempt int) (ErrorClass, error)

// retryWithBackoff runs fn until it succeeds, returns a non-retryable error,
// or exhausts the attempts of the failing class. Each class keeps its own
// attempt count and backoff.
func (c *Client) retryWithBackoff(ctx context.Context, fn attemptFunc) error {
	attempts := make(map[ErrorClass]int)
	backoffs := make(map[ErrorClass]time.Duration)

	for attempt := 1; ; attempt++ {
		errorClass, err := fn(attempt)
		if err == nil {
			if attempt > 1 {
				c.logger.Info().
					Int("attempt", attempt).
					Msg("Request succeeded after retry")
			}
			return nil
		}

		if !shouldRetry(errorClass) {
			return err
		}

		config := c.RetryConfigForErrorClass(errorClass)
		attempts[errorClass]++
		if attempts[errorClass] >= config.MaxAttempts {
			retryExhaustedTotal.WithLabelValues(string(errorClass)).Inc()
			c.logger.Error().
				Err(err).
				Str("error_class", string(errorClass)).
				Int("max_attempts", config.MaxAttempts).
				Msg("Retry attempts exhausted")
			return fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, attempts[errorClass], err)
		}

		backoff, ok := backoffs[errorClass]
		if !ok {
			backoff = config.InitialBackoff
		}
		wait := backoff
		if config.Jitter && wait > 0 {
			wait = time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		}

		retriesTotal.WithLabelValues(string(errorClass)).Inc()
		retryBackoffSeconds.WithLabelValues(string(errorClass)).Observe(wait.Seconds())

		c.logger.Warn().
			Err(err).
			Str("error_class", string(errorClass)).
			Int("attempt", attempts[errorClass]).
			Dur("backoff", wait).
			Msg("Retrying request after backoff")

		if err := c.wait(ctx, errorClass, wait); err != nil {
			return err
		}

		next := time.Duration(float64(backoff) * config.BackoffMultiplier)
		if config.MaxBackoff > 0 && next > config.MaxBackoff {
			next = config.MaxBackoff
		}
		backoffs[errorClass] = next
	}
}

// wait sleeps for d, delegating rate-limit waits to the tracker.
func (c *Client) wait(ctx context.Context, errorClass ErrorClass, d time.Duration) error {
	if errorClass == ErrorClassRateLimit {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return cancelled(err)
		}
		return nil
	}

	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return cancelled(err)
		}
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		c.logger.Warn().
			Str("error_class", string(errorClass)).
			Msg("Context cancelled during retry backoff")
		return cancelled(ctx.Err())
	case <-timer.C:
		return nil
	}
}

func cancelled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrContextCancelled, err)
	}
	return err
}
