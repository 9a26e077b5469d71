// Package cache holds the two caches used by the platform client.
//
// # Session cache
//
// Store memoizes entities fetched by id, bucketed by kind:
//
//	store := cache.NewStore(true, logger)
//	store.Set(cache.BucketUsers, 1, user)
//	u, ok := cache.Lookup[*roblox.User](store, cache.BucketUsers, 1)
//
// The store is unbounded with no eviction. Lookups against a bucket the store
// was not created with are logged and treated as a miss.
//
// # Response cache
//
// Manager is an optional Redis-backed cache for raw GET responses, shared by
// every client connected to the same Redis:
//
//	manager := cache.NewManager(redisClient)
//	key := cache.KeyFor(req.URL, cache.ScopeForToken(token))
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the platform
//	}
//
// Responses fetched with a token are scoped by a hash of that token so they
// are never served to another session.
//
// # Metrics
//
//   - rbx_session_cache_hits_total{bucket}
//   - rbx_session_cache_misses_total{bucket}
//   - rbx_session_cache_errors_total{operation}
//   - rbx_response_cache_hits_total
//   - rbx_response_cache_misses_total
//   - rbx_response_cache_size_bytes
//   - rbx_response_cache_errors_total{operation}
package cache
