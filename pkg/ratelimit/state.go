// Package ratelimit implements the fixed-delay retry policy for platform
// rate limiting (HTTP 429) and tracks the rate-limit state observed by a client.
//
// The tracker never gates requests. It records what the platform reported so
// the client can retry and operators can see it.
package ratelimit

import (
	"errors"
	"time"
)

// Redis keys for shared rate limit state.
const (
	RedisKeyLimitedTotal  = "rbx:rate_limit:limited_total"
	RedisKeyLastLimited   = "rbx:rate_limit:last_limited"
	RedisKeyCooldownUntil = "rbx:rate_limit:cooldown_until"
)

const (
	// DefaultDelay is the fixed wait before re-issuing a rate-limited request.
	DefaultDelay = 60 * time.Second

	// DefaultMaxRetries caps how many times a rate-limited request is re-issued.
	DefaultMaxRetries = 3
)

// ErrInvalidPolicy is returned by Policy.Validate.
var ErrInvalidPolicy = errors.New("invalid rate limit policy")

// Policy is the retry policy applied to rate-limited responses.
type Policy struct {
	// Delay is the fixed wait before each re-issue. No backoff growth.
	Delay time.Duration

	// MaxRetries is the number of re-issues allowed. 0 disables retrying.
	MaxRetries int
}

// DefaultPolicy returns the 60 second, 3 retry policy.
func DefaultPolicy() Policy {
	return Policy{
		Delay:      DefaultDelay,
		MaxRetries: DefaultMaxRetries,
	}
}

// Validate checks the policy bounds.
func (p Policy) Validate() error {
	if p.Delay < 0 {
		return errors.Join(ErrInvalidPolicy, errors.New("delay must be >= 0"))
	}
	if p.MaxRetries < 0 {
		return errors.Join(ErrInvalidPolicy, errors.New("max retries must be >= 0"))
	}
	return nil
}

// State is the observed rate limit state.
type State struct {
	// LimitedTotal counts 429 responses seen.
	// With a shared Redis this is the total across all clients.
	LimitedTotal int64 `json:"limited_total"`

	// Consecutive counts 429 responses since the last non-429 response.
	// Always local to this tracker.
	Consecutive int `json:"consecutive"`

	// LastLimitedAt is when the last 429 was observed. Zero if never.
	LastLimitedAt time.Time `json:"last_limited_at"`

	// CooldownUntil is LastLimitedAt + Delay.
	CooldownUntil time.Time `json:"cooldown_until"`

	// LastUpdate is when any response was last observed.
	LastUpdate time.Time `json:"last_update"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// CoolingDown reports whether the last 429 is more recent than the retry delay.
func (s *State) CoolingDown() bool {
	return time.Now().Before(s.CooldownUntil)
}

// TimeUntilReset returns the duration until the cooldown ends.
// Returns 0 if it has already passed.
func (s *State) TimeUntilReset() time.Duration {
	duration := time.Until(s.CooldownUntil)
	if duration < 0 {
		return 0
	}
	return duration
}

// IsHealthy reports whether no 429 is currently outstanding.
func (s *State) IsHealthy() bool {
	return s.Consecutive == 0 && !s.CoolingDown()
}
