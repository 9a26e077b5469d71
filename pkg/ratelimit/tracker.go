package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rbx_rate_limited_total",
		Help: "Total number of HTTP 429 responses received",
	})

	rateLimitConsecutive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rbx_rate_limit_consecutive",
		Help: "Number of consecutive HTTP 429 responses",
	})

	rateLimitWaitSeconds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rbx_rate_limit_wait_seconds_total",
		Help: "Total time spent waiting before re-issuing rate-limited requests",
	})
)

// Tracker records rate-limit responses and applies the fixed-delay policy.
// The Redis client is optional; when set, the total and cooldown are shared
// across every tracker using the same Redis.
type Tracker struct {
	redis  *redis.Client
	policy Policy
	logger zerolog.Logger

	mu    sync.Mutex
	state State
}

// NewTracker creates a new rate limit tracker.
func NewTracker(redisClient *redis.Client, policy Policy, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		policy: policy,
		logger: logger,
	}
}

// Policy returns the retry policy.
func (t *Tracker) Policy() Policy {
	return t.policy
}

// Observe records the outcome of a response.
// A 429 increments the counters; any other status resets the consecutive count.
func (t *Tracker) Observe(ctx context.Context, status int, header http.Header) error {
	now := time.Now()

	t.mu.Lock()
	t.state.LastUpdate = now
	if status != http.StatusTooManyRequests {
		t.state.Consecutive = 0
		t.mu.Unlock()
		rateLimitConsecutive.Set(0)
		return nil
	}
	t.state.LimitedTotal++
	t.state.Consecutive++
	t.state.LastLimitedAt = now
	t.state.CooldownUntil = now.Add(t.policy.Delay)
	consecutive := t.state.Consecutive
	cooldown := t.state.CooldownUntil
	t.mu.Unlock()

	rateLimitedTotal.Inc()
	rateLimitConsecutive.Set(float64(consecutive))

	logEvent := t.logger.Warn()
	if consecutive > t.policy.MaxRetries {
		logEvent = t.logger.Error()
	}
	logEvent.
		Int("consecutive", consecutive).
		Str("retry_after", header.Get("Retry-After")).
		Time("cooldown_until", cooldown).
		Msg("Rate limited by platform")

	if t.redis == nil {
		return nil
	}

	pipe := t.redis.Pipeline()
	pipe.Incr(ctx, RedisKeyLimitedTotal)
	pipe.Set(ctx, RedisKeyLastLimited, now.Unix(), 0)
	if t.policy.Delay > 0 {
		pipe.Set(ctx, RedisKeyCooldownUntil, cooldown.Unix(), t.policy.Delay)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}

	return nil
}

// State returns a snapshot of the observed state.
// With Redis the shared total and cooldown replace the local values.
func (t *Tracker) State(ctx context.Context) (*State, error) {
	t.mu.Lock()
	state := t.state
	t.mu.Unlock()

	if t.redis == nil {
		return &state, nil
	}

	total, err := t.redis.Get(ctx, RedisKeyLimitedTotal).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get limited total: %w", err)
	}
	if err == nil {
		state.LimitedTotal = total
	}

	last, err := t.redis.Get(ctx, RedisKeyLastLimited).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get last limited: %w", err)
	}
	if ts, convErr := strconv.ParseInt(last, 10, 64); err == nil && convErr == nil {
		state.LastLimitedAt = time.Unix(ts, 0)
	}

	cooldown, err := t.redis.Get(ctx, RedisKeyCooldownUntil).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get cooldown: %w", err)
	}
	if err == nil && time.Unix(cooldown, 0).After(state.CooldownUntil) {
		state.CooldownUntil = time.Unix(cooldown, 0)
	}

	return &state, nil
}

// Wait blocks for the policy delay or until ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	if t.policy.Delay <= 0 {
		return ctx.Err()
	}

	t.logger.Info().
		Dur("delay", t.policy.Delay).
		Msg("Waiting before re-issuing rate-limited request")

	timer := time.NewTimer(t.policy.Delay)
	defer timer.Stop()

	start := time.Now()
	select {
	case <-ctx.Done():
		rateLimitWaitSeconds.Add(time.Since(start).Seconds())
		return ctx.Err()
	case <-timer.C:
		rateLimitWaitSeconds.Add(t.policy.Delay.Seconds())
		return nil
	}
}
