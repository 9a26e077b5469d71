package cache

import (
	"fmt"
	"net/http"
	"time"
)

// DefaultTTL is the fallback TTL when neither the response nor the caller
// provides one.
const DefaultTTL = 30 * time.Second

// ResponseToEntry builds a cache entry from a decoded response.
// The expiry comes from the Expires header, else from now + fallbackTTL.
func ResponseToEntry(status int, header http.Header, body []byte, fallbackTTL time.Duration) (*CacheEntry, error) {
	if body == nil {
		return nil, fmt.Errorf("response body cannot be nil")
	}

	if fallbackTTL <= 0 {
		fallbackTTL = DefaultTTL
	}

	return &CacheEntry{
		Data:       body,
		StatusCode: status,
		Expires:    parseExpires(header, fallbackTTL),
		CachedAt:   time.Now(),
	}, nil
}

// parseExpires parses the Expires header.
// Returns the parsed expiration time, or now + fallback if absent or invalid.
func parseExpires(headers http.Header, fallback time.Duration) time.Time {
	expiresStr := headers.Get("Expires")
	if expiresStr == "" {
		return time.Now().Add(fallback)
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil {
		return time.Now().Add(fallback)
	}

	if expires.Before(time.Now()) {
		return time.Now()
	}

	return expires
}

// Cacheable reports whether a response may be stored.
func Cacheable(method string, status int, header http.Header) bool {
	if method != http.MethodGet || status != http.StatusOK {
		return false
	}
	cc := header.Get("Cache-Control")
	return cc != "no-store" && cc != "no-cache"
}
