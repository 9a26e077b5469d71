package roblox

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/rbx-client/internal/testutil"
	"github.com/Sternrassler/rbx-client/pkg/cache"
	"github.com/Sternrassler/rbx-client/pkg/client"
)

const (
	userPath     = "/users/v1/users/1"
	userPayload  = `{"id":1,"name":"Roblox","displayName":"Roblox","description":"Welcome","created":"2006-02-27T21:06:40.3Z","isBanned":false,"hasVerifiedBadge":true}`
	groupPath    = "/groups/v1/groups/7"
	groupPayload = `{"id":7,"name":"Builders","description":"d","memberCount":12,"publicEntryAllowed":true,"isLocked":false,
		"owner":{"userId":1,"username":"Roblox","displayName":"Roblox","hasVerifiedBadge":true},
		"shout":{"body":"hello","poster":{"userId":2,"username":"Builderman","displayName":"Builderman"},"created":"2020-01-01T00:00:00Z","updated":"2020-01-02T00:00:00Z"}}`
)

func newTestSession(t *testing.T, mutate func(*Config)) (*Session, *testutil.MockAPI) {
	t.Helper()

	mock := testutil.NewMockAPI()
	t.Cleanup(mock.Close)

	ccfg := client.DefaultConfig(nil, "TestApp/1.0.0")
	ccfg.RateLimitDelay = 5 * time.Millisecond
	ccfg.InitialBackoff = time.Millisecond
	ccfg.MaxBackoff = 5 * time.Millisecond
	c, err := client.New(ccfg)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.BaseURL = mock.URL()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := New(c, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, mock
}

func withoutPartials(cfg *Config) { cfg.AllowPartials = false }

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default", cfg: DefaultConfig()},
		{name: "base url only", cfg: Config{BaseURL: "http://localhost:8080"}},
		{name: "empty", cfg: Config{}, wantErr: true},
		{name: "relative base url", cfg: Config{BaseURL: "/api"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestNew_RequiresTransport(t *testing.T) {
	_, err := New(nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNoTransport)
}

func TestURLGenerator(t *testing.T) {
	tests := []struct {
		name string
		gen  URLGenerator
		want string
	}{
		{
			name: "domain",
			gen:  URLGenerator{BaseDomain: "roblox.com"},
			want: "https://users.roblox.com/v1/users/1",
		},
		{
			name: "base url",
			gen:  URLGenerator{BaseDomain: "roblox.com", BaseURL: "http://127.0.0.1:9000/"},
			want: "http://127.0.0.1:9000/users/v1/users/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.gen.URL("users", "/v1/users/1"))
			assert.Equal(t, tt.want, tt.gen.URLf("users", "v1/users/%d", 1))
		})
	}
}

func TestSession_GetIsCached(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetJSON(userPath, userPayload)
	ctx := context.Background()

	first, err := s.Users.Get(ctx, 1)
	require.NoError(t, err)
	second, err := s.Users.Get(ctx, 1)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, mock.PathCount(userPath))
	assert.Equal(t, 1, s.Cache().Len(cache.BucketUsers))
}

func TestSession_CachingDisabled(t *testing.T) {
	s, mock := newTestSession(t, func(c *Config) { c.DoCaching = false })
	mock.SetJSON(userPath, userPayload)
	ctx := context.Background()

	_, err := s.Users.Get(ctx, 1)
	require.NoError(t, err)
	_, err = s.Users.Get(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, mock.PathCount(userPath))
}

func TestSession_ConcurrentGet(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetJSON(userPath, userPayload)
	ctx := context.Background()

	var wg sync.WaitGroup
	users := make([]*User, 16)
	errs := make([]error, 16)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			users[i], errs[i] = s.Users.Get(ctx, 1)
		}(i)
	}
	wg.Wait()

	for i := range users {
		require.NoError(t, errs[i])
		assert.Equal(t, int64(1), users[i].ID)
	}
	// Racing misses may each fetch; afterwards the cache answers.
	count := mock.PathCount(userPath)
	_, err := s.Users.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, count, mock.PathCount(userPath))
}

func TestSession_RefreshReplacesCacheEntry(t *testing.T) {
	s, mock := newTestSession(t, nil)
	mock.SetSequence(userPath,
		testutil.NewJSONResponse(userPayload),
		testutil.NewJSONResponse(`{"id":1,"name":"Roblox","displayName":"Renamed","description":"Updated"}`),
	)
	ctx := context.Background()

	old, err := s.Users.Get(ctx, 1)
	require.NoError(t, err)

	fresh, err := old.Refresh(ctx)
	require.NoError(t, err)

	assert.NotSame(t, old, fresh)
	assert.Equal(t, "Roblox", old.DisplayName(), "refresh must not modify the receiver")
	assert.Equal(t, "Renamed", fresh.DisplayName())
	assert.Equal(t, "Updated", fresh.Profile.Description)

	again, err := s.Users.Get(ctx, 1)
	require.NoError(t, err)
	assert.Same(t, fresh, again)
	assert.Equal(t, 2, mock.PathCount(userPath))
}
