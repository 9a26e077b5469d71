package roblox

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/rbx-client/pkg/cache"
	"github.com/Sternrassler/rbx-client/pkg/client"
	"github.com/Sternrassler/rbx-client/pkg/logging"
)

// Transport issues requests against the platform and returns JSON bodies.
// *client.Client implements it.
type Transport interface {
	Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error)
	Post(ctx context.Context, rawURL string, payload any) ([]byte, error)
}

// Session is the root handle every entity carries.
//
// A Session is safe for concurrent use.
type Session struct {
	transport Transport
	urls      URLGenerator
	config    Config
	cache     *cache.Store
	logger    zerolog.Logger

	Users      *UserProvider
	Groups     *GroupProvider
	Places     *PlaceProvider
	Universes  *UniverseProvider
	Badges     *BadgeProvider
	Presence   *PresenceProvider
	Friends    *FriendProvider
	Inventory  *InventoryProvider
	Economy    *EconomyProvider
	Thumbnails *ThumbnailProvider
	Avatar     *AvatarProvider
}

// New creates a session over transport.
func New(transport Transport, cfg Config) (*Session, error) {
	if transport == nil {
		return nil, ErrNoTransport
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewLogger(logging.ComponentSession)
	s := &Session{
		transport: transport,
		urls:      URLGenerator{BaseDomain: cfg.BaseDomain, BaseURL: cfg.BaseURL},
		config:    cfg,
		cache:     cache.NewStore(cfg.DoCaching, logger, cache.DefaultBuckets...),
		logger:    logger,
	}

	s.Users = &UserProvider{s: s}
	s.Groups = &GroupProvider{s: s}
	s.Places = &PlaceProvider{s: s}
	s.Universes = &UniverseProvider{s: s}
	s.Badges = &BadgeProvider{s: s}
	s.Presence = &PresenceProvider{s: s}
	s.Friends = &FriendProvider{s: s}
	s.Inventory = &InventoryProvider{s: s}
	s.Economy = &EconomyProvider{s: s}
	s.Thumbnails = &ThumbnailProvider{s: s}
	s.Avatar = &AvatarProvider{s: s}

	logger.Debug().
		Bool("allow_partials", cfg.AllowPartials).
		Bool("do_caching", cfg.DoCaching).
		Str("base_domain", cfg.BaseDomain).
		Str("base_url", cfg.BaseURL).
		Msg("Session created")

	return s, nil
}

// NewFromConfig builds the HTTP transport from clientCfg and a session on top of it.
func NewFromConfig(cfg Config, clientCfg client.Config) (*Session, error) {
	c, err := client.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	s, err := New(c, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	return s, nil
}

// AllowPartials implements entity.Policy.
func (s *Session) AllowPartials() bool {
	return s.config.AllowPartials
}

// Config returns the session configuration.
func (s *Session) Config() Config {
	return s.config
}

// Cache returns the session cache.
func (s *Session) Cache() *cache.Store {
	return s.cache
}

// Transport returns the underlying transport.
func (s *Session) Transport() Transport {
	return s.transport
}

// URL returns the endpoint URL for path on subdomain.
func (s *Session) URL(subdomain, path string) string {
	return s.urls.URL(subdomain, path)
}

// Close releases the transport if it holds resources.
func (s *Session) Close() error {
	if c, ok := s.transport.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Session) get(ctx context.Context, subdomain, path string, params url.Values) ([]byte, error) {
	return s.transport.Get(ctx, s.urls.URL(subdomain, path), params)
}

func (s *Session) post(ctx context.Context, subdomain, path string, payload any) ([]byte, error) {
	return s.transport.Post(ctx, s.urls.URL(subdomain, path), payload)
}

// resolveSiblings runs the independent reference resolutions of one payload.
// With partials allowed they are cheap and run inline; otherwise they fetch
// in parallel and the first error cancels the rest.
func (s *Session) resolveSiblings(ctx context.Context, fns ...func(context.Context) error) error {
	if s.config.AllowPartials || len(fns) < 2 {
		for _, fn := range fns {
			if err := fn(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, fn := range fns {
		g.Go(func() error { return fn(gctx) })
	}
	return g.Wait()
}

// cached is the cache-through accessor shared by every provider.
func cached[T any](ctx context.Context, s *Session, bucket string, id int64, fetch func(context.Context, int64) (T, error)) (T, error) {
	if v, ok := cache.Lookup[T](s.cache, bucket, id); ok {
		return v, nil
	}
	v, err := fetch(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	s.cache.Set(bucket, id, v)
	return v, nil
}

// refreshed fetches a new snapshot and replaces the cache entry. The shared
// response cache is bypassed so the snapshot reflects the platform.
func refreshed[T any](ctx context.Context, s *Session, bucket string, id int64, fetch func(context.Context, int64) (T, error)) (T, error) {
	v, err := fetch(client.WithoutCachedResponse(ctx), id)
	if err != nil {
		var zero T
		return zero, err
	}
	s.cache.Set(bucket, id, v)
	return v, nil
}
