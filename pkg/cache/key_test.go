package cache

import (
	"net/url"
	"testing"
)

func TestCacheKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  CacheKey
		want string
	}{
		{
			name: "simple endpoint no params",
			key: CacheKey{
				Host:     "users.roblox.com",
				Endpoint: "/v1/users/1",
			},
			want: "rbx:users.roblox.com:v1/users/1",
		},
		{
			name: "host is lowercased",
			key: CacheKey{
				Host:     "Games.Roblox.com",
				Endpoint: "/v1/games",
			},
			want: "rbx:games.roblox.com:v1/games",
		},
		{
			name: "query params sorted",
			key: CacheKey{
				Host:     "groups.roblox.com",
				Endpoint: "/v1/groups/7/users",
				QueryParams: url.Values{
					"sortOrder": []string{"Asc"},
					"limit":     []string{"10"},
					"cursor":    []string{"abc"},
				},
			},
			want: "rbx:groups.roblox.com:v1/groups/7/users:cursor=abc:limit=10:sortOrder=Asc",
		},
		{
			name: "multi-valued param",
			key: CacheKey{
				Host:        "games.roblox.com",
				Endpoint:    "/v1/games",
				QueryParams: url.Values{"universeIds": []string{"1", "2"}},
			},
			want: "rbx:games.roblox.com:v1/games:universeIds=1,2",
		},
		{
			name: "scoped key",
			key: CacheKey{
				Host:     "economy.roblox.com",
				Endpoint: "/v1/users/1/currency",
				Scope:    "00000000000000ff",
			},
			want: "rbx:economy.roblox.com:v1/users/1/currency:scope=00000000000000ff",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheKey_Deterministic(t *testing.T) {
	key := CacheKey{
		Host:     "games.roblox.com",
		Endpoint: "/v1/games",
		QueryParams: url.Values{
			"z": []string{"1"},
			"a": []string{"2"},
			"m": []string{"3"},
		},
	}

	first := key.String()
	for i := 0; i < 20; i++ {
		if got := key.String(); got != first {
			t.Fatalf("String() not deterministic: %q vs %q", got, first)
		}
	}
}

func TestScopeForToken(t *testing.T) {
	if got := ScopeForToken(""); got != "" {
		t.Errorf("ScopeForToken(\"\") = %q, want empty", got)
	}

	a := ScopeForToken("token-a")
	b := ScopeForToken("token-b")
	if a == b {
		t.Errorf("different tokens share scope %q", a)
	}
	if a != ScopeForToken("token-a") {
		t.Error("ScopeForToken not stable")
	}
	if len(a) != 16 {
		t.Errorf("scope length = %d, want 16", len(a))
	}
}

func TestKeyFor(t *testing.T) {
	u, err := url.Parse("https://badges.roblox.com/v1/universes/5/badges?limit=10&sortOrder=Asc")
	if err != nil {
		t.Fatal(err)
	}

	got := KeyFor(u, "s").String()
	want := "rbx:badges.roblox.com:v1/universes/5/badges:limit=10:sortOrder=Asc:scope=s"
	if got != want {
		t.Errorf("KeyFor() = %q, want %q", got, want)
	}
}
