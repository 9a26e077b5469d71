package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/Sternrassler/rbx-client/pkg/client"
	"github.com/Sternrassler/rbx-client/pkg/roblox"
)

// app bundles the transport and the session built from the viper settings.
type app struct {
	client  *client.Client
	session *roblox.Session
	redis   *redis.Client
}

func newApp(ctx context.Context) (*app, error) {
	a := &app{}

	if addr := viper.GetString("redis"); addr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: addr})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.redis.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
		}
	}

	ccfg := client.DefaultConfig(a.redis, viper.GetString("user-agent"))
	ccfg.Token = viper.GetString("token")
	ccfg.RateLimitDelay = viper.GetDuration("rate-limit-delay")
	ccfg.MaxRateLimitRetries = viper.GetInt("max-rate-limit-retries")
	ccfg.DebugRequests = viper.GetBool("debug-requests")

	c, err := client.New(ccfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.client = c

	cfg := roblox.DefaultConfig()
	cfg.AllowPartials = viper.GetBool("allow-partials")
	cfg.DoCaching = viper.GetBool("caching")
	if domain := viper.GetString("base-domain"); domain != "" {
		cfg.BaseDomain = domain
	}
	cfg.BaseURL = viper.GetString("base-url")

	s, err := roblox.New(c, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.session = s

	return a, nil
}

// Close releases the transport and the Redis connection.
func (a *app) Close() error {
	if a.client != nil {
		a.client.Close()
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
