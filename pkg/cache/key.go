package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// CacheKey identifies a cached platform response.
type CacheKey struct {
	// Host is the API host (e.g., "users.roblox.com")
	Host string

	// Endpoint is the request path (e.g., "/v1/users/1")
	Endpoint string

	// QueryParams are the query parameters (e.g., {"limit": "10"})
	QueryParams url.Values

	// Scope separates responses fetched with different credentials.
	// Empty for anonymous requests.
	Scope string
}

// ScopeForToken derives a cache scope from a session token without storing
// the token itself.
func ScopeForToken(token string) string {
	if token == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(token))
}

// String generates a deterministic cache key string.
// Format: rbx:host:endpoint:query1=val1:scope=abc
//
// Example:
//
//	rbx:games.roblox.com:v1/games:universeIds=1
func (k CacheKey) String() string {
	parts := []string{"rbx"}

	if k.Host != "" {
		parts = append(parts, strings.ToLower(k.Host))
	}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Sorted for determinism
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(k.QueryParams[key], ",")))
		}
	}

	if k.Scope != "" {
		parts = append(parts, "scope="+k.Scope)
	}

	return strings.Join(parts, ":")
}

// KeyFor builds the cache key of a request URL.
func KeyFor(u *url.URL, scope string) CacheKey {
	return CacheKey{
		Host:        u.Host,
		Endpoint:    u.Path,
		QueryParams: u.Query(),
		Scope:       scope,
	}
}
