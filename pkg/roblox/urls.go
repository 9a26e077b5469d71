package roblox

import (
	"fmt"
	"strings"
)

// URLGenerator builds endpoint URLs from a subdomain and a path.
type URLGenerator struct {
	BaseDomain string
	BaseURL    string
}

// URL returns https://<subdomain>.<domain>/<path>, or BaseURL/<subdomain>/<path>
// when a base URL is set.
func (g URLGenerator) URL(subdomain, path string) string {
	path = strings.TrimPrefix(path, "/")
	if g.BaseURL != "" {
		return strings.TrimSuffix(g.BaseURL, "/") + "/" + subdomain + "/" + path
	}
	return fmt.Sprintf("https://%s.%s/%s", subdomain, g.BaseDomain, path)
}

// URLf is URL with a formatted path.
func (g URLGenerator) URLf(subdomain, format string, args ...any) string {
	return g.URL(subdomain, fmt.Sprintf(format, args...))
}
