package roblox

import (
	"fmt"
	"net/url"
)

// DefaultBaseDomain is the platform's root domain.
const DefaultBaseDomain = "roblox.com"

// Config holds session-wide behavior.
type Config struct {
	// AllowPartials makes embedded references stubs built from the embedding
	// payload. When false every reference is fetched through the session cache.
	AllowPartials bool

	// DoCaching enables the session cache.
	DoCaching bool

	// BaseDomain is the domain API subdomains hang off.
	BaseDomain string

	// BaseURL overrides URL generation for gateways and tests. URLs become
	// BaseURL/<subdomain>/<path>.
	BaseURL string
}

// DefaultConfig returns partials on, caching on, against roblox.com.
func DefaultConfig() Config {
	return Config{
		AllowPartials: true,
		DoCaching:     true,
		BaseDomain:    DefaultBaseDomain,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.BaseDomain == "" && c.BaseURL == "" {
		return fmt.Errorf("%w: base domain or base url is required", ErrInvalidConfig)
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("%w: base url: %v", ErrInvalidConfig, err)
		}
		if u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: base url %q must be absolute", ErrInvalidConfig, c.BaseURL)
		}
	}
	return nil
}
