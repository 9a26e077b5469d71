package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/rbx-client/internal/testutil"
	"github.com/Sternrassler/rbx-client/pkg/client"
	"github.com/Sternrassler/rbx-client/pkg/entity"
	"github.com/Sternrassler/rbx-client/pkg/ratelimit"
	"github.com/Sternrassler/rbx-client/pkg/roblox"
)

func setupGateway(t *testing.T) (http.Handler, *testutil.MockAPI, *client.Client) {
	t.Helper()

	mock := testutil.NewMockAPI()
	t.Cleanup(mock.Close)

	ccfg := client.DefaultConfig(nil, "test/1.0")
	ccfg.RateLimitDelay = 5 * time.Millisecond
	ccfg.MaxRateLimitRetries = 0
	ccfg.InitialBackoff = time.Millisecond
	ccfg.MaxBackoff = 5 * time.Millisecond
	c, err := client.New(ccfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	cfg := roblox.DefaultConfig()
	cfg.BaseURL = mock.URL()
	s, err := roblox.New(c, cfg)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	return newServer(s, c.RateLimiter(), zerolog.Nop()), mock, c
}

func get(t *testing.T, h http.Handler, path string) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	return resp, body
}

func TestHealthEndpoint(t *testing.T) {
	h, mock, _ := setupGateway(t)

	resp, body := get(t, h, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var health healthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("Invalid health body %s: %v", body, err)
	}
	if health.Status != "ok" {
		t.Errorf("Expected status ok, got %s", health.Status)
	}

	// A rate-limited lookup flips the gateway to degraded.
	mock.SetResponse("/users/v1/users/1", testutil.NewRateLimitResponse())
	resp, _ = get(t, h, "/users/1")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", resp.StatusCode)
	}

	_, body = get(t, h, "/health")
	if err := json.Unmarshal(body, &health); err != nil {
		t.Fatalf("Invalid health body %s: %v", body, err)
	}
	if health.Status != "degraded" {
		t.Errorf("Expected status degraded, got %s", health.Status)
	}
	if health.RateLimit == nil || health.RateLimit.LimitedTotal != 1 {
		t.Errorf("Expected one limited response, got %+v", health.RateLimit)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h, mock, _ := setupGateway(t)
	mock.SetJSON("/users/v1/users/1", `{"id":1,"name":"Roblox"}`)

	// Issue a request so the request metrics have samples.
	get(t, h, "/users/1")

	resp, body := get(t, h, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	bodyStr := string(body)
	if !strings.Contains(bodyStr, "# HELP") || !strings.Contains(bodyStr, "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}
	if !strings.Contains(bodyStr, "rbx_requests_total") {
		t.Error("Expected metrics output to contain rbx_requests_total")
	}
}

func TestLookupEndpoints(t *testing.T) {
	h, mock, _ := setupGateway(t)
	mock.SetJSON("/users/v1/users/1", `{"id":1,"name":"Roblox","displayName":"Roblox","description":"hi"}`)
	mock.SetJSON("/badges/v1/badges/100", `{"id":100,"name":"Welcome","awardingUniverse":{"id":20,"name":"Obby","rootPlaceId":30}}`)
	mock.SetJSON("/games/v1/games", `{"data":[]}`)
	mock.SetJSON("/presence/v1/presence/users", `{"userPresences":[{"userPresenceType":1,"lastLocation":"Website","userId":1}]}`)
	mock.SetJSON("/badges/v1/badges/101", `{"id":101,"awardingUniverse":{}}`)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantField  string
		wantValue  any
	}{
		{"user", "/users/1", http.StatusOK, "name", "Roblox"},
		{"badge with partial universe", "/badges/100", http.StatusOK, "awarding_universe", float64(20)},
		{"presence", "/users/1/presence", http.StatusOK, "status", "Online"},
		{"unknown universe", "/universes/20", http.StatusNotFound, "", nil},
		{"unknown user", "/users/2", http.StatusNotFound, "", nil},
		{"invalid id", "/users/abc", http.StatusBadRequest, "", nil},
		{"malformed reference", "/badges/101", http.StatusBadGateway, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, h, tt.path)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d (%s)", tt.wantStatus, resp.StatusCode, body)
			}
			if tt.wantField == "" {
				return
			}
			var got map[string]any
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("Invalid body %s: %v", body, err)
			}
			if got[tt.wantField] != tt.wantValue {
				t.Errorf("%s = %v, want %v", tt.wantField, got[tt.wantField], tt.wantValue)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("x: %w", roblox.ErrNotFound), http.StatusNotFound},
		{"api 404", &client.APIError{StatusCode: 404}, http.StatusNotFound},
		{"api 500", &client.APIError{StatusCode: 500}, http.StatusBadGateway},
		{"rate limited", fmt.Errorf("%w after 4 attempts: %w", client.ErrRetryExhausted, client.ErrRateLimited), http.StatusTooManyRequests},
		{"invalid entity", entity.ErrInvalidEntity, http.StatusBadGateway},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrintRecord(t *testing.T) {
	r := record{
		{"id", int64(1)},
		{"name", "Roblox"},
		{"created", time.Date(2006, 2, 27, 21, 6, 40, 0, time.UTC)},
	}

	tests := []struct {
		format string
		want   []string
	}{
		{"json", []string{`"id": 1`, `"name": "Roblox"`}},
		{"yaml", []string{"id: 1", "name: Roblox"}},
		{"table", []string{"PROPERTY", "Roblox", "2006-02-27 21:06:40"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := printRecord(&buf, tt.format, r); err != nil {
				t.Fatalf("printRecord() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(strings.ToUpper(buf.String()), strings.ToUpper(want)) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}

	if err := printRecord(io.Discard, "xml", r); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestPrintRecords_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := printRecords(&buf, "table", nil); err != nil {
		t.Fatalf("printRecords() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No results.") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestPrintRecords_Table(t *testing.T) {
	records := []record{
		{{"id", int64(1)}, {"name", "Roblox"}, {"online", true}},
		{{"id", int64(2)}, {"name", "Builderman"}, {"online", false}},
	}

	var buf bytes.Buffer
	if err := printRecords(&buf, "table", records); err != nil {
		t.Fatalf("printRecords() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"NAME", "Roblox", "Builderman", "true", "false"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Roblox") > strings.Index(out, "Builderman") {
		t.Errorf("rows out of order:\n%s", out)
	}
}

func TestRefID(t *testing.T) {
	var nilUser *roblox.User
	var nilEntity entity.Entity

	if got := refID(nilUser); got != nil {
		t.Errorf("refID(nil *User) = %v, want nil", got)
	}
	if got := refID(nilEntity); got != nil {
		t.Errorf("refID(nil Entity) = %v, want nil", got)
	}
	if got := refID(entity.ID(7)); got != int64(7) {
		t.Errorf("refID(7) = %v, want 7", got)
	}
}

func TestParseID(t *testing.T) {
	for _, bad := range []string{"", "abc", "0", "-3"} {
		if _, err := parseID(bad); err == nil {
			t.Errorf("parseID(%q) expected error", bad)
		}
	}
	if id, err := parseID("42"); err != nil || id != 42 {
		t.Errorf("parseID(42) = %d, %v", id, err)
	}
}

func TestHealthHandler_NoLimiter(t *testing.T) {
	w := httptest.NewRecorder()
	healthHandler((*ratelimit.Tracker)(nil))(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}
