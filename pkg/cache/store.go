package cache

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Session cache buckets, one per entity kind fetched by id, plus the
// place-to-universe id lookup.
const (
	BucketUsers       = "users"
	BucketGroups      = "groups"
	BucketPlaces      = "places"
	BucketUniverses   = "universes"
	BucketBadges      = "badges"
	BucketUniverseIDs = "universe_ids"
)

// DefaultBuckets lists the buckets a session cache is created with.
var DefaultBuckets = []string{
	BucketUsers,
	BucketGroups,
	BucketPlaces,
	BucketUniverses,
	BucketBadges,
	BucketUniverseIDs,
}

// ErrUnknownBucket marks a lookup against a bucket the store was not created
// with. It is logged and counted, never returned to callers.
var ErrUnknownBucket = errors.New("unknown cache bucket")

// Store is the per-session id-to-entity memoization table.
//
// It is unbounded and never evicts. Entries are only replaced by a later Set
// for the same id. Concurrent writers race with last-write-wins semantics.
type Store struct {
	mu      sync.RWMutex
	enabled bool
	buckets map[string]map[int64]any
	logger  zerolog.Logger
}

// NewStore creates a store with the given buckets. A disabled store misses on
// every Get and drops every Set.
func NewStore(enabled bool, logger zerolog.Logger, buckets ...string) *Store {
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}
	s := &Store{
		enabled: enabled,
		buckets: make(map[string]map[int64]any, len(buckets)),
		logger:  logger,
	}
	for _, b := range buckets {
		s.buckets[b] = make(map[int64]any)
	}
	return s
}

// Enabled reports whether the store caches anything.
func (s *Store) Enabled() bool {
	return s.enabled
}

// Get returns the value stored under id in bucket.
func (s *Store) Get(bucket string, id int64) (any, bool) {
	if !s.enabled {
		return nil, false
	}

	s.mu.RLock()
	sub, ok := s.buckets[bucket]
	var v any
	var hit bool
	if ok {
		v, hit = sub[id]
	}
	s.mu.RUnlock()

	if !ok {
		s.unknownBucket(bucket, "get")
		return nil, false
	}
	if !hit {
		SessionCacheMisses.WithLabelValues(bucket).Inc()
		s.logger.Debug().Str("bucket", bucket).Int64("id", id).Msg("Session cache miss")
		return nil, false
	}

	SessionCacheHits.WithLabelValues(bucket).Inc()
	return v, true
}

// Set stores v under id in bucket, replacing any previous entry.
func (s *Store) Set(bucket string, id int64, v any) {
	if !s.enabled {
		return
	}

	s.mu.Lock()
	sub, ok := s.buckets[bucket]
	if ok {
		sub[id] = v
	}
	s.mu.Unlock()

	if !ok {
		s.unknownBucket(bucket, "set")
	}
}

// Len returns the number of entries in bucket.
func (s *Store) Len(bucket string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets[bucket])
}

func (s *Store) unknownBucket(bucket, op string) {
	SessionCacheErrors.WithLabelValues(op).Inc()
	s.logger.Warn().
		Err(ErrUnknownBucket).
		Str("bucket", bucket).
		Str("operation", op).
		Msg("Missing session cache bucket, caching disabled for this call")
}

// Lookup is Get with a typed result. A stored value of another type is a miss.
func Lookup[T any](s *Store, bucket string, id int64) (T, bool) {
	var zero T
	v, ok := s.Get(bucket, id)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
