package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLimiter returns a limiter whose clock only moves when advanced.
func newTestLimiter(config *Config) (*Limiter, func(time.Duration)) {
	l := NewLimiter(config)
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	l.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	return l, func(d time.Duration) {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(d)
	}
}

func TestLimiter_Allow(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/jobs", "GET")
		require.True(t, allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/jobs", "GET")
	assert.False(t, allowed, "11th request should be denied")
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, float64(6*time.Second), float64(info.RetryAfter), float64(time.Millisecond), "one token refills every six seconds")
	assert.True(t, info.ResetTime.After(limiter.now()))
}

func TestLimiter_Refill(t *testing.T) {
	limiter, advance := newTestLimiter(&Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 60; i++ {
		limiter.Allow("c", "/jobs", "GET")
	}
	allowed, _ := limiter.Allow("c", "/jobs", "GET")
	require.False(t, allowed)

	advance(time.Second)
	allowed, _ = limiter.Allow("c", "/jobs", "GET")
	assert.True(t, allowed, "one token should refill after a second")

	allowed, _ = limiter.Allow("c", "/jobs", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Whitelist(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute,
		Whitelist: map[string]bool{"127.0.0.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/jobs", "GET")
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute,
		Blacklist: map[string]bool{"10.0.0.1": true},
	})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("10.0.0.1", "/jobs", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow("c", "/jobs", "GET")
		assert.True(t, allowed)
	}
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("c", "/auth/login", "POST")
		require.True(t, allowed, "login %d", i+1)
		assert.Equal(t, 10, info.Limit)
	}
	allowed, _ := limiter.Allow("c", "/auth/login", "POST")
	assert.False(t, allowed, "login burst is 5")

	allowed, info := limiter.Allow("c", "/jobs", "GET")
	assert.True(t, allowed, "reads use the default limit")
	assert.Equal(t, 1000, info.Limit)

	allowed, _ = limiter.Allow("other", "/auth/login", "POST")
	assert.True(t, allowed, "clients have separate buckets")
}

func TestLimiter_PrefixEndpointsShareBucket(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{
		Enabled: true, DefaultLimit: 1000, DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{{Path: "/jobs/", Method: "POST", Limit: 2, Window: time.Minute}},
	})
	defer limiter.Stop()

	a, _ := limiter.Allow("c", "/jobs/1/apply", "POST")
	b, _ := limiter.Allow("c", "/jobs/2/apply", "POST")
	c, _ := limiter.Allow("c", "/jobs/3/save", "POST")

	assert.True(t, a)
	assert.True(t, b)
	assert.False(t, c)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := limiter.Allow("c", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if ok, _ := limiter.Allow("c", "/jobs", "GET"); ok {
					mu.Lock()
					allowedCount++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount)
}

func TestLimiter_CleanupDropsIdleBuckets(t *testing.T) {
	limiter, advance := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		limiter.Allow(fmt.Sprintf("client-%d", i), "/jobs", "GET")
	}
	advance(30 * time.Minute)
	limiter.Allow("client-0", "/jobs", "GET")
	advance(45 * time.Minute)

	limiter.cleanupBuckets()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.buckets, 1)
	assert.Contains(t, limiter.buckets, "client-0:GET:/jobs")
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Minute})
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("c", "/jobs", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path, method string
		wantPath     string
		wantNil      bool
	}{
		{path: "/auth/login", method: "POST", wantPath: "/auth/login"},
		{path: "/jobs", method: "POST", wantPath: "/jobs"},
		{path: "/jobs/4/apply", method: "POST", wantPath: "/jobs/"},
		{path: "/jobs/4", method: "PUT", wantPath: "/jobs/"},
		{path: "/applications/1/status", method: "PUT", wantPath: "/applications/"},
		{path: "/jobs", method: "GET", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}

	health := MatchEndpoint("/health", "GET", configs)
	require.NotNil(t, health)
	assert.Equal(t, 0, health.Limit)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.True(t, cfg.Whitelist["10.0.0.2"])
	assert.NotEmpty(t, cfg.EndpointConfigs)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}

func TestParseRule(t *testing.T) {
	tests := []struct {
		in      string
		want    EndpointConfig
		wantErr bool
	}{
		{in: "POST /jobs/=20/1m:5", want: EndpointConfig{Path: "/jobs/", Method: "POST", Limit: 20, Window: time.Minute, Burst: 5}},
		{in: " get /jobs=100/30s ", want: EndpointConfig{Path: "/jobs", Method: "GET", Limit: 100, Window: 30 * time.Second}},
		{in: "* /admin/=10/1h", want: EndpointConfig{Path: "/admin/", Limit: 10, Window: time.Hour}},
		{in: "POST /jobs", wantErr: true},
		{in: "/jobs=1/1m", wantErr: true},
		{in: "POST jobs=1/1m", wantErr: true},
		{in: "POST /jobs=ten/1m", wantErr: true},
		{in: "POST /jobs=10", wantErr: true},
		{in: "POST /jobs=10/0s", wantErr: true},
		{in: "POST /jobs=10/1m:x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRule(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadConfig_Rules(t *testing.T) {
	env := map[string]string{
		"RATE_LIMIT_RULES":         "POST /auth/login=3/1m:1; GET /jobs=50/1m; bogus",
		"RATE_LIMIT_DEFAULT_LIMIT": "not-a-number",
	}
	cfg := loadConfig(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	assert.Equal(t, 600, cfg.DefaultLimit, "malformed values fall back to the default")
	assert.Len(t, cfg.EndpointConfigs, len(DefaultEndpointConfigs())+1)

	login := MatchEndpoint("/auth/login", "POST", cfg.EndpointConfigs)
	require.NotNil(t, login)
	assert.Equal(t, 3, login.Limit)
	assert.Equal(t, 1, login.Burst)

	list := MatchEndpoint("/jobs", "GET", cfg.EndpointConfigs)
	require.NotNil(t, list)
	assert.Equal(t, 50, list.Limit)
}
