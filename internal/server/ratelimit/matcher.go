package ratelimit

import "strings"

// unlimited is returned for routes that are never limited.
var unlimited = &EndpointConfig{}

var unlimitedRoutes = map[string]bool{
	"GET /health": true,
}

// MatchEndpoint returns the config governing method and path, or nil when
// the default limit applies. An exact path wins over a prefix; among prefixes
// the longest wins.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if unlimitedRoutes[method+" "+path] {
		return unlimited
	}

	var best *EndpointConfig
	for i := range configs {
		c := &configs[i]
		if c.Method != "" && c.Method != method {
			continue
		}
		if c.Path == path {
			return c
		}
		if strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) &&
			(best == nil || len(c.Path) > len(best.Path)) {
			best = c
		}
	}
	return best
}
