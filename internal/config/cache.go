package config

import (
	"strings"
	"time"
)

// CacheConfig configures the response cache in front of the listing routes.
// Comparison and review routes are per-user and never cached. The cache is
// off when Enabled is false or Redis is unreachable.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
	// VaryHeaders are request headers folded into the cache key. Listing
	// names render per language, so Accept-Language is the default.
	VaryHeaders []string
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		Methods:      map[string]bool{},
		TTL:          envDur("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStr("CACHE_KEY_STRATEGY", "route_query"),
		Prefix:       envStr("CACHE_PREFIX", "dorm-cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
		VaryHeaders:  splitList(envStr("CACHE_VARY", "Accept-Language")),
	}
	for _, m := range splitList(envStr("CACHE_METHODS", "GET")) {
		cfg.Methods[strings.ToUpper(m)] = true
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return cfg
}
