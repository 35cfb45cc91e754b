package ratelimit

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the allowance for one route. A Path ending in "/" covers
// every path below it.
type EndpointConfig struct {
	Path   string
	Method string // empty matches any method
	Limit  int    // requests per Window
	Window time.Duration
	Burst  int // defaults to Limit
}

func (e EndpointConfig) String() string {
	return fmt.Sprintf("%s %s=%d/%s:%d", e.Method, e.Path, e.Limit, e.Window, e.Burst)
}

// DefaultEndpointConfigs returns the built-in per-route allowances. Reads
// fall back to the default limit; GET /health is never limited.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Credential endpoints are the strictest to slow down guessing.
		{Path: "/auth/login", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/auth/register", Method: "POST", Limit: 5, Window: time.Hour, Burst: 3},

		{Path: "/jobs", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/jobs/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/jobs/", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/applications/", Method: "PUT", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

// LoadConfig builds the limiter configuration from RATE_LIMIT_* variables.
//
//	RATE_LIMIT_ENABLED           default true
//	RATE_LIMIT_DEFAULT_LIMIT     requests per window for unlisted routes (600)
//	RATE_LIMIT_DEFAULT_WINDOW    (1m)
//	RATE_LIMIT_CLEANUP_INTERVAL  (5m)
//	RATE_LIMIT_IDLE_TTL          (1h)
//	RATE_LIMIT_WHITELIST         comma-separated client IPs never limited
//	RATE_LIMIT_BLACKLIST         comma-separated client IPs always refused
//	RATE_LIMIT_RULES             semicolon-separated route overrides, see ParseRule
//
// Malformed values are logged and replaced by their default.
func LoadConfig() *Config {
	return loadConfig(os.LookupEnv)
}

func loadConfig(lookup func(string) (string, bool)) *Config {
	env := envSource{lookup: lookup}
	if !env.boolean("RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    env.integer("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   env.duration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.duration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         env.duration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Whitelist:       env.set("RATE_LIMIT_WHITELIST"),
		Blacklist:       env.set("RATE_LIMIT_BLACKLIST"),
		EndpointConfigs: mergeRules(DefaultEndpointConfigs(), env.rules("RATE_LIMIT_RULES")),
	}
}

// ParseRule parses a route override of the form
//
//	METHOD PATH=LIMIT/WINDOW[:BURST]
//
// for example "POST /jobs/=20/1m:5". METHOD may be "*" for any method.
func ParseRule(s string) (EndpointConfig, error) {
	route, allowance, ok := strings.Cut(strings.TrimSpace(s), "=")
	if !ok {
		return EndpointConfig{}, fmt.Errorf("rule %q: missing '='", s)
	}
	fields := strings.Fields(route)
	if len(fields) != 2 || !strings.HasPrefix(fields[1], "/") {
		return EndpointConfig{}, fmt.Errorf("rule %q: route must be \"METHOD /path\"", s)
	}
	ep := EndpointConfig{Method: strings.ToUpper(fields[0]), Path: fields[1]}
	if ep.Method == "*" {
		ep.Method = ""
	}

	allowance, burst, hasBurst := strings.Cut(allowance, ":")
	limit, window, ok := strings.Cut(allowance, "/")
	if !ok {
		return EndpointConfig{}, fmt.Errorf("rule %q: allowance must be LIMIT/WINDOW", s)
	}
	var err error
	if ep.Limit, err = strconv.Atoi(limit); err != nil || ep.Limit < 0 {
		return EndpointConfig{}, fmt.Errorf("rule %q: bad limit %q", s, limit)
	}
	if ep.Window, err = time.ParseDuration(window); err != nil || ep.Window <= 0 {
		return EndpointConfig{}, fmt.Errorf("rule %q: bad window %q", s, window)
	}
	if hasBurst {
		if ep.Burst, err = strconv.Atoi(burst); err != nil || ep.Burst < 0 {
			return EndpointConfig{}, fmt.Errorf("rule %q: bad burst %q", s, burst)
		}
	}
	return ep, nil
}

// mergeRules replaces base entries with the same method and path as an
// override and appends the rest.
func mergeRules(base, overrides []EndpointConfig) []EndpointConfig {
	out := append([]EndpointConfig(nil), base...)
next:
	for _, o := range overrides {
		for i := range out {
			if out[i].Method == o.Method && out[i].Path == o.Path {
				out[i] = o
				continue next
			}
		}
		out = append(out, o)
	}
	return out
}

type envSource struct {
	lookup func(string) (string, bool)
}

func (e envSource) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e envSource) invalid(key, value string, err error) {
	log.Printf("[rate-limit] ignoring %s=%q: %v", key, value, err)
}

func (e envSource) boolean(key string, def bool) bool {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.invalid(key, v, err)
		return def
	}
	return b
}

func (e envSource) integer(key string, def int) int {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.invalid(key, v, err)
		return def
	}
	return n
}

func (e envSource) duration(key string, def time.Duration) time.Duration {
	v, ok := e.get(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.invalid(key, v, err)
		return def
	}
	return d
}

func (e envSource) set(key string) map[string]bool {
	out := make(map[string]bool)
	v, ok := e.get(key)
	if !ok {
		return out
	}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out[item] = true
		}
	}
	return out
}

func (e envSource) rules(key string) []EndpointConfig {
	v, ok := e.get(key)
	if !ok {
		return nil
	}
	var out []EndpointConfig
	for _, raw := range strings.Split(v, ";") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		ep, err := ParseRule(raw)
		if err != nil {
			e.invalid(key, raw, err)
			continue
		}
		log.Printf("[rate-limit] rule override: %s", ep)
		out = append(out, ep)
	}
	return out
}
