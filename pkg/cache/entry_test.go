package cache

import (
	"testing"
	"time"
)

func TestCacheEntry_Expiry(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name        string
		expires     time.Time
		wantExpired bool
		wantMinTTL  time.Duration
		wantMaxTTL  time.Duration
	}{
		{"zero value", time.Time{}, true, 0, 0},
		{"past", now.Add(-time.Second), true, 0, 0},
		{"one minute left", now.Add(time.Minute), false, 59 * time.Second, time.Minute},
		{"default ttl left", now.Add(DefaultTTL), false, DefaultTTL - time.Second, DefaultTTL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &CacheEntry{StatusCode: 200, Expires: tt.expires}

			if got := entry.IsExpired(); got != tt.wantExpired {
				t.Errorf("IsExpired() = %v, want %v", got, tt.wantExpired)
			}
			if ttl := entry.TTL(); ttl < tt.wantMinTTL || ttl > tt.wantMaxTTL {
				t.Errorf("TTL() = %v, want in [%v, %v]", ttl, tt.wantMinTTL, tt.wantMaxTTL)
			}
		})
	}
}
