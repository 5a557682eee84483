package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit applied to one method and path.
type EndpointConfig struct {
	Path   string        // Exact request path
	Method string        // HTTP method
	Limit  int           // Requests per Window; 0 means unlimited
	Window time.Duration // Refill window
	Burst  int           // Bucket capacity; defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration // Buckets unused for this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig is used when NewLimiter is given nil.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// LoadConfig reads RATE_LIMIT_* environment variables over DefaultConfig.
func LoadConfig() *Config {
	return loadConfig(os.Getenv)
}

func loadConfig(getenv func(string) string) *Config {
	cfg := DefaultConfig()
	cfg.Enabled = envBool(getenv, "RATE_LIMIT_ENABLED", cfg.Enabled)
	if !cfg.Enabled {
		return cfg
	}
	cfg.DefaultLimit = envInt(getenv, "RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit)
	cfg.DefaultWindow = envDuration(getenv, "RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow)
	cfg.CleanupInterval = envDuration(getenv, "RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval)
	cfg.Whitelist = parseIPList(getenv("RATE_LIMIT_WHITELIST"))
	cfg.Blacklist = parseIPList(getenv("RATE_LIMIT_BLACKLIST"))
	return cfg
}

// DefaultEndpointConfigs limits the pipeline endpoints. Every single-file
// request costs one model call and one sheet append; a batch walks the
// whole folder.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/process", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/batch", Method: "POST", Limit: 6, Window: time.Hour, Burst: 1},
	}
}

func envInt(getenv func(string) string, key string, def int) int {
	if v, err := strconv.Atoi(getenv(key)); err == nil {
		return v
	}
	return def
}

func envBool(getenv func(string) string, key string, def bool) bool {
	if v, err := strconv.ParseBool(getenv(key)); err == nil {
		return v
	}
	return def
}

func envDuration(getenv func(string) string, key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(getenv(key)); err == nil {
		return v
	}
	return def
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
