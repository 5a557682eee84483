package ratelimit

// unlimited marks endpoints that are never throttled.
var unlimited = EndpointConfig{}

// MatchEndpoint returns the configuration for method and path, or nil when
// the default limit applies. GET /health is always unlimited.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if path == "/health" && method == "GET" {
		return &unlimited
	}
	for i := range configs {
		if configs[i].Path == path && configs[i].Method == method {
			return &configs[i]
		}
	}
	return nil
}
